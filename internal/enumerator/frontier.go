package enumerator

import (
	"main/internal/model"
	"main/internal/timing"
)

type frontierGate struct {
	upstream Enumerator
	frontier timing.Provider
	pending  *model.DataPoint
	current  *model.DataPoint
	done     bool
}

// NewFrontierGate suspends emission while the upstream point's knowable
// instant is ahead of the shared frontier clock. The held point is released
// on a later poll once the frontier catches up; a future point is never
// emitted.
func NewFrontierGate(upstream Enumerator, frontier timing.Provider) Enumerator {
	return &frontierGate{upstream: upstream, frontier: frontier}
}

func (e *frontierGate) MoveNext() bool {
	e.current = nil
	if e.done {
		return false
	}
	if e.pending == nil {
		if !e.upstream.MoveNext() {
			e.done = true
			return false
		}
		e.pending = e.upstream.Current()
	}
	if e.pending == nil {
		return true
	}
	if e.pending.EndTimeUTC().After(e.frontier.NowUTC()) {
		return true
	}
	e.current = e.pending
	e.pending = nil
	return true
}

func (e *frontierGate) Current() *model.DataPoint { return e.current }

func (e *frontierGate) Close() error { return e.upstream.Close() }
