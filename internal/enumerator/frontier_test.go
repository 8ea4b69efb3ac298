package enumerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/timing"
)

func TestFrontierGateHoldsFuturePoint(t *testing.T) {
	frozen := time.Date(2020, 6, 1, 14, 0, 0, 0, time.UTC)
	frontier := timing.NewManual(frozen)

	future := bar(frozen, frozen.Add(time.Second), 42)
	gate := NewFrontierGate(FromSlice([]*model.DataPoint{future}), frontier)

	// Frontier frozen at T, point knowable at T+1s: no data until the
	// frontier advances.
	for i := 0; i < 3; i++ {
		require.True(t, gate.MoveNext())
		assert.Nil(t, gate.Current())
	}

	frontier.Advance(time.Second)
	require.True(t, gate.MoveNext())
	require.NotNil(t, gate.Current())
	assert.Equal(t, future, gate.Current())
	assert.False(t, gate.Current().EndTimeUTC().After(frontier.NowUTC()))

	assert.False(t, gate.MoveNext())
}

func TestFrontierGatePassesNilTicksThrough(t *testing.T) {
	frontier := timing.NewManual(time.Date(2020, 6, 1, 14, 0, 0, 0, time.UTC))
	silent := FromFunc(func() (*model.DataPoint, bool) { return nil, true })
	gate := NewFrontierGate(silent, frontier)
	require.True(t, gate.MoveNext())
	assert.Nil(t, gate.Current())
}

func TestFrontierGateNeverEmitsAheadOfFrontier(t *testing.T) {
	start := time.Date(2020, 6, 1, 14, 0, 0, 0, time.UTC)
	frontier := timing.NewManual(start)

	var points []*model.DataPoint
	for i := 0; i < 10; i++ {
		ts := start.Add(time.Duration(i) * time.Second)
		points = append(points, bar(ts, ts.Add(time.Second), float64(i)))
	}
	gate := NewFrontierGate(FromSlice(points), frontier)

	emitted := 0
	for i := 0; i < 100; i++ {
		if !gate.MoveNext() {
			break
		}
		if p := gate.Current(); p != nil {
			assert.False(t, p.EndTimeUTC().After(frontier.NowUTC()))
			emitted++
		}
		frontier.Advance(250 * time.Millisecond)
	}
	assert.Equal(t, 10, emitted)
}
