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

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func bar(start, end time.Time, close float64) *model.DataPoint {
	price := decimal.NewFromFloat(close)
	return &model.DataPoint{
		Symbol:    model.NewSymbol("AAPL", "usa", enum.SecurityTypeEquity),
		StartTime: start,
		EndTime:   end,
		Payload: &model.TradeBar{
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: decimal.NewFromInt(100),
		},
	}
}

func barClose(p *model.DataPoint) decimal.Decimal {
	return p.Payload.(*model.TradeBar).Close
}

// drain pulls until the stream ends, dropping nil ticks.
func drain(e Enumerator) []*model.DataPoint {
	var out []*model.DataPoint
	for e.MoveNext() {
		if p := e.Current(); p != nil {
			out = append(out, p)
		}
	}
	return out
}

type closeTracker struct {
	Enumerator
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return c.Enumerator.Close()
}

func TestSliceEnumerator(t *testing.T) {
	base := time.Date(2020, 6, 1, 9, 30, 0, 0, time.UTC)
	points := []*model.DataPoint{
		bar(base, base.Add(time.Minute), 1),
		bar(base.Add(time.Minute), base.Add(2*time.Minute), 2),
	}
	out := drain(FromSlice(points))
	require.Len(t, out, 2)
	assert.Equal(t, points[0], out[0])
	assert.Equal(t, points[1], out[1])
}

func TestConcatClosesNonTerminalStagesAndKeepsTheTail(t *testing.T) {
	base := time.Date(2020, 6, 1, 9, 30, 0, 0, time.UTC)
	first := &closeTracker{Enumerator: FromSlice([]*model.DataPoint{bar(base, base.Add(time.Minute), 1)})}
	second := &closeTracker{Enumerator: FromSlice([]*model.DataPoint{bar(base.Add(time.Minute), base.Add(2*time.Minute), 2)})}
	tail := &closeTracker{Enumerator: FromSlice([]*model.DataPoint{bar(base.Add(2*time.Minute), base.Add(3*time.Minute), 3)})}

	c := NewConcat(first, second, tail)
	out := drain(c)
	require.Len(t, out, 3)
	assert.True(t, first.closed)
	assert.True(t, second.closed)
	assert.False(t, tail.closed, "the live tail is never disposed by concat")

	// Once the tail is reached concat never reverts.
	assert.False(t, c.MoveNext())
	assert.False(t, c.MoveNext())
}

func TestFilterDropsRejectedPoints(t *testing.T) {
	base := time.Date(2020, 6, 1, 9, 30, 0, 0, time.UTC)
	keep := bar(base, base.Add(time.Minute), 1)
	dropped := bar(base.Add(time.Minute), base.Add(2*time.Minute), 2)
	dropped.IsFillForward = true

	f := NewFilter(FromSlice([]*model.DataPoint{keep, dropped}), func(p *model.DataPoint) bool {
		return !p.IsFillForward
	})
	out := drain(f)
	require.Len(t, out, 1)
	assert.Equal(t, keep, out[0])
}

func TestFromFunc(t *testing.T) {
	calls := 0
	e := FromFunc(func() (*model.DataPoint, bool) {
		calls++
		if calls > 2 {
			return nil, false
		}
		return nil, true
	})
	assert.True(t, e.MoveNext())
	assert.Nil(t, e.Current())
	assert.True(t, e.MoveNext())
	assert.False(t, e.MoveNext())
	assert.False(t, e.MoveNext(), "stays ended")
}
