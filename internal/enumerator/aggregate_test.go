package enumerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/model/enum"
)

func TestAggregateGroupsEqualEndTimes(t *testing.T) {
	universe := model.NewSymbol("COARSE-USA", "usa", enum.SecurityTypeEquity)
	day1 := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	points := []*model.DataPoint{
		bar(day1, day1, 1),
		bar(day1, day1, 2),
		bar(day2, day2, 3),
	}
	agg := NewAggregate(FromSlice(points), universe)
	out := drain(agg)
	require.Len(t, out, 2)

	first := out[0].Payload.(*model.Collection)
	assert.Equal(t, universe, out[0].Symbol)
	assert.Len(t, first.Points, 2)
	assert.Equal(t, day1, out[0].EndTime)

	second := out[1].Payload.(*model.Collection)
	assert.Len(t, second.Points, 1)
	assert.Equal(t, day2, out[1].EndTime)
}

func TestAggregateFlushesOnSilence(t *testing.T) {
	universe := model.NewSymbol("COARSE-USA", "usa", enum.SecurityTypeEquity)
	day := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	fed := []*model.DataPoint{bar(day, day, 1), bar(day, day, 2)}
	idx := 0
	live := FromFunc(func() (*model.DataPoint, bool) {
		if idx < len(fed) {
			idx++
			return fed[idx-1], true
		}
		return nil, true
	})

	agg := NewAggregate(live, universe)
	require.True(t, agg.MoveNext())
	require.NotNil(t, agg.Current())
	assert.Len(t, agg.Current().Payload.(*model.Collection).Points, 2)

	// Still running, just quiet.
	require.True(t, agg.MoveNext())
	assert.Nil(t, agg.Current())
}
