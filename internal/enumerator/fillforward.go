package enumerator

import (
	"time"

	"main/internal/hours"
	"main/internal/model"
	"main/internal/timing"
)

type fillForward struct {
	upstream  Enumerator
	exchange  *hours.Exchange
	increment time.Duration
	extended  bool
	localEnd  time.Time
	clock     timing.Provider

	previous  *model.DataPoint
	buffered  *model.DataPoint
	current   *model.DataPoint
	exhausted bool
}

// NewFillForward synthesizes bars during gaps: when the upstream has no new
// point by the next expected in-session bar boundary, it emits a clone of
// the last real point with IsFillForward set and the new bar's timestamps.
//
// clock bounds synthesis in live mode: a gap bar is only produced once the
// clock has passed its end, so a late real bar still wins the slot. Pass
// nil for historical streams, where exhaustion of the upstream is the only
// signal and gaps are filled up to localEnd.
func NewFillForward(upstream Enumerator, exchange *hours.Exchange, increment time.Duration, extended bool, localEnd time.Time, clock timing.Provider) Enumerator {
	return &fillForward{
		upstream:  upstream,
		exchange:  exchange,
		increment: increment,
		extended:  extended,
		localEnd:  localEnd,
		clock:     clock,
	}
}

func (e *fillForward) MoveNext() bool {
	e.current = nil
	if e.buffered == nil && !e.exhausted {
		if e.upstream.MoveNext() {
			e.buffered = e.upstream.Current()
		} else {
			e.exhausted = true
		}
	}

	if e.previous == nil {
		if e.buffered != nil {
			e.emitBuffered()
			return true
		}
		return !e.exhausted
	}

	nextEnd := e.exchange.NextBarEnd(e.previous.EndTime, e.increment, e.extended)
	pastLocalEnd := !e.localEnd.IsZero() && nextEnd.After(e.localEnd)

	if e.buffered != nil {
		if e.buffered.IsAuxiliary() || !e.buffered.EndTime.After(nextEnd) {
			e.emitBuffered()
			return true
		}
		if pastLocalEnd {
			e.emitBuffered()
			return true
		}
		e.emitSynthetic(nextEnd)
		return true
	}

	if pastLocalEnd {
		return !e.exhausted
	}
	if e.exhausted {
		// A stopped live source ends the stream; historical gaps are
		// filled through localEnd.
		if e.clock != nil {
			return false
		}
		e.emitSynthetic(nextEnd)
		return true
	}
	// Upstream alive but silent. Only fill once the clock has passed the
	// bar end, so a real bar arriving on time still claims the slot.
	if e.clock != nil && e.clock.NowUTC().Before(nextEnd.UTC()) {
		return true
	}
	e.emitSynthetic(nextEnd)
	return true
}

func (e *fillForward) emitBuffered() {
	point := e.buffered
	e.buffered = nil
	e.current = point
	if !point.IsAuxiliary() && !point.IsFillForward {
		e.previous = point
	}
}

func (e *fillForward) emitSynthetic(end time.Time) {
	clone := e.previous.Clone()
	clone.IsFillForward = true
	clone.StartTime = end.Add(-e.increment)
	clone.EndTime = end
	e.previous = clone
	e.current = clone
}

func (e *fillForward) Current() *model.DataPoint { return e.current }

func (e *fillForward) Close() error { return e.upstream.Close() }
