package enumerator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/model/enum"
)

func TestAuxSyncSplitBeforeSameBarPoint(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	at := time.Date(2020, 8, 31, 9, 30, 0, 0, loc)
	trade := bar(at, at, 500)
	split := &model.DataPoint{
		Symbol:    model.NewSymbol("AAPL", "usa", enum.SecurityTypeEquity),
		StartTime: at,
		EndTime:   at,
		Payload: &model.Split{
			Factor: decimal.NewFromFloat(0.25),
		},
	}

	merged := NewAuxSync(FromSlice([]*model.DataPoint{trade}), FromSlice([]*model.DataPoint{split}))
	out := drain(merged)
	require.Len(t, out, 2)
	assert.Equal(t, split, out[0], "the split takes effect on the bar where it applies")
	assert.Equal(t, trade, out[1])
}

func TestAuxSyncOrdersByEndTime(t *testing.T) {
	base := time.Date(2020, 6, 1, 9, 30, 0, 0, time.UTC)
	main := FromSlice([]*model.DataPoint{
		bar(base, base.Add(time.Minute), 1),
		bar(base.Add(2*time.Minute), base.Add(3*time.Minute), 3),
	})
	dividend := &model.DataPoint{
		StartTime: base.Add(2 * time.Minute),
		EndTime:   base.Add(2 * time.Minute),
		Payload:   &model.Dividend{},
	}

	out := drain(NewAuxSync(main, FromSlice([]*model.DataPoint{dividend})))
	require.Len(t, out, 3)
	assert.Equal(t, base.Add(time.Minute), out[0].EndTime)
	assert.Equal(t, dividend, out[1])
	assert.Equal(t, base.Add(3*time.Minute), out[2].EndTime)
}

func TestAuxSyncSilentAuxDoesNotStallMain(t *testing.T) {
	base := time.Date(2020, 6, 1, 9, 30, 0, 0, time.UTC)
	main := FromSlice([]*model.DataPoint{bar(base, base.Add(time.Minute), 1)})
	silentAux := FromFunc(func() (*model.DataPoint, bool) { return nil, true })

	merged := NewAuxSync(main, silentAux)
	require.True(t, merged.MoveNext())
	require.NotNil(t, merged.Current())
	assert.Equal(t, base.Add(time.Minute), merged.Current().EndTime)
}
