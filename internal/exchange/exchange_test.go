package exchange

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bus"
	"main/internal/enumerator"
	"main/internal/model"
	"main/internal/model/enum"
)

func symbol(ticker string) model.Symbol {
	return model.NewSymbol(ticker, "usa", enum.SecurityTypeBase)
}

func pointAt(ts time.Time) *model.DataPoint {
	return &model.DataPoint{StartTime: ts, EndTime: ts}
}

func TestExchangeDeliversPolledPoints(t *testing.T) {
	x := New(5 * time.Millisecond)
	defer x.Stop()

	fed := []*model.DataPoint{pointAt(time.Now()), pointAt(time.Now())}
	idx := 0
	src := enumerator.FromFunc(func() (*model.DataPoint, bool) {
		if idx < len(fed) {
			idx++
			return fed[idx-1], true
		}
		return nil, true
	})

	received := make(chan *model.DataPoint, 4)
	x.Add(symbol("POLLED"), src, func(p *model.DataPoint) { received <- p }, nil)
	x.Start()

	for i := 0; i < 2; i++ {
		select {
		case p := <-received:
			assert.Equal(t, fed[i], p)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for polled point")
		}
	}
}

func TestExchangeFiresFinishedOnExhaustion(t *testing.T) {
	x := New(5 * time.Millisecond)
	defer x.Stop()

	finished := make(chan struct{})
	src := enumerator.FromFunc(func() (*model.DataPoint, bool) { return nil, false })
	x.Add(symbol("DONE"), src, nil, func() { close(finished) })
	x.Start()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("finished hook never fired")
	}
}

func TestExchangeSurvivesPanickingPull(t *testing.T) {
	x := New(5 * time.Millisecond)
	defer x.Stop()

	var healthyPulls atomic.Int64
	panicky := enumerator.FromFunc(func() (*model.DataPoint, bool) { panic("boom") })
	healthy := enumerator.FromFunc(func() (*model.DataPoint, bool) {
		healthyPulls.Add(1)
		return nil, true
	})

	x.Add(symbol("BAD"), panicky, nil, nil)
	x.Add(symbol("GOOD"), healthy, nil, nil)
	x.Start()

	require.Eventually(t, func() bool { return healthyPulls.Load() >= 3 },
		time.Second, 5*time.Millisecond, "neighbouring entries keep polling")
}

func TestExchangeStopSignalsAllQueues(t *testing.T) {
	x := New(5 * time.Millisecond)

	queue1 := bus.NewPointQueue(8, bus.OverflowBlock, nil)
	queue2 := bus.NewPointQueue(8, bus.OverflowBlock, nil)
	silent := func() enumerator.Enumerator {
		return enumerator.FromFunc(func() (*model.DataPoint, bool) { return nil, true })
	}
	x.Add(symbol("ONE"), silent(), nil, queue1.Stop)
	x.Add(symbol("TWO"), silent(), nil, queue2.Stop)
	x.Start()

	start := time.Now()
	x.Stop()
	assert.Less(t, time.Since(start), 250*time.Millisecond, "stop within one sleep interval")

	assert.False(t, queue1.MoveNext())
	assert.False(t, queue2.MoveNext())

	x.Stop() // idempotent
}

func TestExchangeRemoveClosesEnumerator(t *testing.T) {
	x := New(5 * time.Millisecond)
	defer x.Stop()

	closed := false
	src := &closeSpy{onClose: func() { closed = true }}
	x.Add(symbol("GONE"), src, nil, nil)
	x.Remove(symbol("GONE"))
	assert.True(t, closed)
}

type closeSpy struct {
	onClose func()
}

func (c *closeSpy) MoveNext() bool            { return true }
func (c *closeSpy) Current() *model.DataPoint { return nil }
func (c *closeSpy) Close() error {
	c.onClose()
	return nil
}
