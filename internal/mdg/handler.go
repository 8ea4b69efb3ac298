package mdg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/bus"
	"main/internal/enumerator"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/subscription"
	"main/internal/timing"
)

// Handler is a simulated data queue handler: a single producer goroutine
// drives a generator per subscribed configuration into bounded bridge
// queues. It also answers chain-universe lookups with synthetic contracts,
// which makes it a complete stand-in for a broker handler in demos and
// tests.
type Handler struct {
	mu       sync.Mutex
	interval time.Duration
	clock    timing.Provider
	entries  map[subscription.Config]*handlerEntry
	cancel   context.CancelFunc
	done     chan struct{}
}

type handlerEntry struct {
	gen   *Generator
	queue *bus.PointQueue
}

func NewHandler(interval time.Duration, clock timing.Provider) *Handler {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	if clock == nil {
		clock = timing.RealTime{}
	}
	return &Handler{
		interval: interval,
		clock:    clock,
		entries:  make(map[subscription.Config]*handlerEntry),
	}
}

// Subscribe registers cfg and returns the pull side of its bridge queue.
func (h *Handler) Subscribe(cfg subscription.Config, notifier func()) (enumerator.Enumerator, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.entries[cfg]; exists {
		return nil, fmt.Errorf("already subscribed: %s %s", cfg.Symbol, cfg.DataKind)
	}
	entry := &handlerEntry{
		gen:   NewGenerator(cfg, decimal.NewFromInt(100), decimal.NewFromInt(100)),
		queue: bus.NewPointQueue(256, bus.OverflowDropNewest, notifier),
	}
	h.entries[cfg] = entry
	return entry.queue, nil
}

// Unsubscribe stops the configuration's queue and drops the generator.
func (h *Handler) Unsubscribe(cfg subscription.Config) error {
	h.mu.Lock()
	entry, ok := h.entries[cfg]
	if ok {
		delete(h.entries, cfg)
	}
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("not subscribed: %s %s", cfg.Symbol, cfg.DataKind)
	}
	entry.queue.Stop()
	return nil
}

// CanPerformSelection implements the universe-provider capability for
// option and future chains.
func (h *Handler) CanPerformSelection(securityType enum.SecurityType) bool {
	return securityType == enum.SecurityTypeOption || securityType == enum.SecurityTypeFuture
}

// LookupSymbols fabricates a small chain of contract symbols for the
// underlying.
func (h *Handler) LookupSymbols(symbol model.Symbol, at time.Time) ([]model.Symbol, error) {
	expiry := at.Format("060102")
	contracts := make([]model.Symbol, 0, 3)
	for i := 1; i <= 3; i++ {
		contracts = append(contracts, model.Symbol{
			Ticker:       fmt.Sprintf("%s_%s_C%d", symbol.Ticker, expiry, 100+10*i),
			SecurityType: symbol.SecurityType,
			Market:       symbol.Market,
		})
	}
	return contracts, nil
}

// Start launches the producer goroutine.
func (h *Handler) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan struct{})
	go h.run(ctx, h.done)
}

// Stop halts production and stops every bridge queue.
func (h *Handler) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	done := h.done
	h.cancel = nil
	h.done = nil
	h.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	h.mu.Lock()
	entries := make([]*handlerEntry, 0, len(h.entries))
	for cfg, entry := range h.entries {
		entries = append(entries, entry)
		delete(h.entries, cfg)
	}
	h.mu.Unlock()
	for _, entry := range entries {
		entry.queue.Stop()
	}
}

func (h *Handler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.produce()
		}
	}
}

func (h *Handler) produce() {
	now := h.clock.NowUTC()
	h.mu.Lock()
	entries := make([]*handlerEntry, 0, len(h.entries))
	for _, entry := range h.entries {
		entries = append(entries, entry)
	}
	h.mu.Unlock()
	for _, entry := range entries {
		if point := entry.gen.Next(now); point != nil {
			entry.queue.Enqueue(point)
		}
	}
}
