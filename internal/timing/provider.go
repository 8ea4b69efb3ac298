package timing

import (
	"sync"
	"time"
)

// Provider supplies the current UTC instant. The frontier clock shared by
// all subscriptions is a Provider; so are the simulated clocks in tests.
type Provider interface {
	NowUTC() time.Time
}

// RealTime reads the system clock.
type RealTime struct{}

func (RealTime) NowUTC() time.Time { return time.Now().UTC() }

// Manual is an externally advanced clock.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start.UTC()}
}

func (m *Manual) NowUTC() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// SetTime moves the clock to t. Moving backwards is allowed here; the
// frontier invariant is enforced by the consumers, not the clock.
func (m *Manual) SetTime(t time.Time) {
	m.mu.Lock()
	m.now = t.UTC()
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Predicated wraps a Provider and refuses to advance when the accept
// predicate rejects the proposed instant, returning the last accepted
// instant instead. Construction during a rejected window rewinds to the
// most recent accepted instant, so consumers gated by this clock stay
// behind data produced inside the window.
type Predicated struct {
	mu           sync.Mutex
	inner        Provider
	accept       func(time.Time) bool
	lastAccepted time.Time
}

// rewindStep and rewindCap bound the construction-time search for an
// accepted instant (one week at minute granularity).
const (
	rewindStep = time.Minute
	rewindCap  = 7 * 24 * 60
)

func NewPredicated(inner Provider, accept func(time.Time) bool) *Predicated {
	now := inner.NowUTC()
	start := now
	for i := 0; i < rewindCap && !accept(start); i++ {
		start = start.Add(-rewindStep)
	}
	if !accept(start) {
		start = now
	}
	return &Predicated{
		inner:        inner,
		accept:       accept,
		lastAccepted: start,
	}
}

func (p *Predicated) NowUTC() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	candidate := p.inner.NowUTC()
	if p.accept(candidate) {
		p.lastAccepted = candidate
	}
	return p.lastAccepted
}
