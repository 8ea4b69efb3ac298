package subscription

import (
	"sync"
	"sync/atomic"

	"github.com/yanun0323/logs"

	"main/internal/enumerator"
	"main/internal/model"
	"main/internal/timing"
)

// Subscription owns exactly one ordered enumerator of data points aligned
// to its configuration. The algorithm's slice loop drains it; the feed
// disposes it exactly once on removal.
type Subscription struct {
	cfg     Config
	offset  *timing.OffsetProvider
	stream  enumerator.Enumerator
	expired bool

	onNewData   atomic.Value // func()
	disposeOnce sync.Once
	disposed    atomic.Bool
}

func New(cfg Config, offset *timing.OffsetProvider, stream enumerator.Enumerator, expired bool) *Subscription {
	return &Subscription{
		cfg:     cfg,
		offset:  offset,
		stream:  stream,
		expired: expired,
	}
}

func (s *Subscription) Configuration() Config { return s.cfg }

func (s *Subscription) OffsetProvider() *timing.OffsetProvider { return s.offset }

// Expired reports that the live branch was intentionally skipped because
// the symbol was already delisted; only warmup data can flow.
func (s *Subscription) Expired() bool { return s.expired }

// SetOnNewDataAvailable installs the wake-up callback slot. The callback
// holds a lookup key into the feed's subscription set, never ownership.
func (s *Subscription) SetOnNewDataAvailable(fn func()) {
	if fn == nil {
		return
	}
	s.onNewData.Store(fn)
}

// NotifyNewData fires the callback slot. Safe from producer threads,
// including after disposal.
func (s *Subscription) NotifyNewData() {
	if s.disposed.Load() {
		return
	}
	if fn, ok := s.onNewData.Load().(func()); ok && fn != nil {
		fn()
	}
}

func (s *Subscription) MoveNext() bool {
	if s.disposed.Load() {
		return false
	}
	return s.stream.MoveNext()
}

func (s *Subscription) Current() *model.DataPoint {
	if s.disposed.Load() {
		return nil
	}
	return s.stream.Current()
}

// Dispose tears down the enumerator chain. Idempotent and safe to call
// while a producer callback is in flight.
func (s *Subscription) Dispose() {
	s.disposeOnce.Do(func() {
		s.disposed.Store(true)
		if err := s.stream.Close(); err != nil {
			logs.Warnf("close subscription %s, err: %+v", s.cfg.Symbol, err)
		}
	})
}
