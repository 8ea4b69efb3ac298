package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/enumerator"
	"main/internal/model"
)

// DefaultSleepInterval paces the poll loop between cycles.
const DefaultSleepInterval = 100 * time.Millisecond

type entry struct {
	stream     enumerator.Enumerator
	onData     func(*model.DataPoint)
	onFinished func()
}

// CustomDataExchange advances slow or polled producers cooperatively on a
// single shared worker. Each registered enumerator is pulled at most once
// per sleep interval; a pull that panics is logged and the entry retained
// for the next cycle, while exhaustion fires the finished hook and drops
// the entry.
type CustomDataExchange struct {
	mu      sync.Mutex
	entries map[model.Symbol]*entry
	sleep   time.Duration
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(sleep time.Duration) *CustomDataExchange {
	if sleep <= 0 {
		sleep = DefaultSleepInterval
	}
	return &CustomDataExchange{
		entries: make(map[model.Symbol]*entry),
		sleep:   sleep,
	}
}

// Add registers a pollable enumerator for symbol. onData receives each
// yielded point; onFinished fires once when the enumerator ends or the
// exchange stops.
func (x *CustomDataExchange) Add(symbol model.Symbol, stream enumerator.Enumerator, onData func(*model.DataPoint), onFinished func()) {
	x.mu.Lock()
	x.entries[symbol] = &entry{stream: stream, onData: onData, onFinished: onFinished}
	x.mu.Unlock()
}

// Remove unregisters symbol and closes its enumerator. The finished hook
// does not fire; removal is the caller's own teardown path.
func (x *CustomDataExchange) Remove(symbol model.Symbol) {
	x.mu.Lock()
	e, ok := x.entries[symbol]
	if ok {
		delete(x.entries, symbol)
	}
	x.mu.Unlock()
	if ok {
		if err := e.stream.Close(); err != nil {
			logs.Warnf("close polled enumerator %s, err: %+v", symbol, err)
		}
	}
}

// Start launches the worker. No-op when already running.
func (x *CustomDataExchange) Start() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	x.cancel = cancel
	x.done = make(chan struct{})
	go x.run(ctx, x.done)
}

// Stop halts the worker within one sleep interval and signals every
// remaining entry to finish. It drains no data. Idempotent.
func (x *CustomDataExchange) Stop() {
	x.mu.Lock()
	cancel := x.cancel
	done := x.done
	x.cancel = nil
	x.done = nil
	x.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	x.mu.Lock()
	remaining := make([]*entry, 0, len(x.entries))
	for symbol, e := range x.entries {
		remaining = append(remaining, e)
		delete(x.entries, symbol)
	}
	x.mu.Unlock()
	for _, e := range remaining {
		if e.onFinished != nil {
			e.onFinished()
		}
		if err := e.stream.Close(); err != nil {
			logs.Warnf("close polled enumerator, err: %+v", err)
		}
	}
}

func (x *CustomDataExchange) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(x.sleep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			x.pollAll()
		}
	}
}

func (x *CustomDataExchange) pollAll() {
	x.mu.Lock()
	symbols := make([]model.Symbol, 0, len(x.entries))
	for symbol := range x.entries {
		symbols = append(symbols, symbol)
	}
	x.mu.Unlock()

	for _, symbol := range symbols {
		x.mu.Lock()
		e, ok := x.entries[symbol]
		x.mu.Unlock()
		if !ok {
			continue
		}
		if finished := pullOnce(symbol, e); finished {
			x.mu.Lock()
			delete(x.entries, symbol)
			x.mu.Unlock()
			if e.onFinished != nil {
				e.onFinished()
			}
		}
	}
}

// pullOnce advances one entry a single step. A panicking pull never kills
// the worker or neighbouring entries.
func pullOnce(symbol model.Symbol, e *entry) (finished bool) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("polled enumerator %s panicked: %+v", symbol, r)
			finished = false
		}
	}()
	if !e.stream.MoveNext() {
		return true
	}
	if point := e.stream.Current(); point != nil && e.onData != nil {
		e.onData(point)
	}
	return false
}
