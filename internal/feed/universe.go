package feed

import (
	"time"

	"github.com/yanun0323/logs"

	"main/internal/enumerator"
	"main/internal/hours"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/provider"
	"main/internal/subscription"
	"main/internal/timing"
)

// selectionAllowed gates universe selection to legal hours: the clock may
// only advance when the local hour is inside (5, 23) and the day is not
// Saturday, which keeps snapshot selection away from the overnight
// maintenance window.
func selectionAllowed(loc *time.Location) func(time.Time) bool {
	return func(t time.Time) bool {
		local := t.In(loc)
		if local.Weekday() == time.Saturday {
			return false
		}
		return local.Hour() > 5 && local.Hour() < 23
	}
}

// newTimeTriggeredEnumerator spoofs selection-interval ticks in the
// configuration's data time zone. A tick is only produced once the clock
// has passed its boundary, so polling through the custom-data exchange
// cannot run ahead of real time.
func newTimeTriggeredEnumerator(cfg subscription.Config, interval time.Duration, startUTC time.Time, clock timing.Provider) enumerator.Enumerator {
	loc := cfg.DataLocation()
	next := startUTC.Truncate(interval).Add(interval)
	return enumerator.FromFunc(func() (*model.DataPoint, bool) {
		if clock.NowUTC().Before(next) {
			return nil, true
		}
		point := &model.DataPoint{
			Symbol:    cfg.Symbol,
			StartTime: next.Add(-interval).In(loc),
			EndTime:   next.In(loc),
			Payload:   &model.Tick{Type: enum.TickTypeTrade},
		}
		next = next.Add(interval)
		return point, true
	})
}

// contractFactory opens the per-contract stream for chain universes. The
// assembly composes subscribe plus fill-forward for options and plain
// subscribe for futures.
type contractFactory func(contract model.Symbol) (enumerator.Enumerator, error)

// chainEnumerator queries the universe provider once per tradable day and
// emits the chain as a collection keyed by the universe symbol. Contract
// streams opened through the factory persist across selections; contracts
// leaving the chain are closed.
type chainEnumerator struct {
	cfg       subscription.Config
	universe  provider.UniverseProvider
	contracts contractFactory
	clock     timing.Provider
	exchange  *hours.Exchange

	open     map[model.Symbol]enumerator.Enumerator
	lastDate time.Time
	current  *model.DataPoint
}

func newChainEnumerator(cfg subscription.Config, universe provider.UniverseProvider, contracts contractFactory, clock timing.Provider, exchange *hours.Exchange) *chainEnumerator {
	return &chainEnumerator{
		cfg:       cfg,
		universe:  universe,
		contracts: contracts,
		clock:     clock,
		exchange:  exchange,
		open:      make(map[model.Symbol]enumerator.Enumerator),
	}
}

func (e *chainEnumerator) MoveNext() bool {
	e.current = nil
	now := e.clock.NowUTC()
	loc := e.cfg.DataLocation()
	local := now.In(loc)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if !e.exchange.IsTradableDate(date) || date.Equal(e.lastDate) {
		return true
	}

	symbols, err := e.universe.LookupSymbols(e.cfg.Symbol, now)
	if err != nil {
		logs.Warnf("chain selection for %s, err: %+v", e.cfg.Symbol, err)
		return true
	}
	e.lastDate = date

	selected := make(map[model.Symbol]bool, len(symbols))
	points := make([]*model.DataPoint, 0, len(symbols))
	for _, contract := range symbols {
		selected[contract] = true
		stream, ok := e.open[contract]
		if !ok && e.contracts != nil {
			opened, err := e.contracts(contract)
			if err != nil {
				logs.Warnf("open contract %s, err: %+v", contract, err)
			} else {
				e.open[contract] = opened
				stream = opened
			}
		}
		point := &model.DataPoint{
			Symbol:    contract,
			StartTime: date,
			EndTime:   date,
		}
		if stream != nil && stream.MoveNext() {
			if latest := stream.Current(); latest != nil {
				point = latest
			}
		}
		points = append(points, point)
	}
	for contract, stream := range e.open {
		if !selected[contract] {
			_ = stream.Close()
			delete(e.open, contract)
		}
	}

	e.current = &model.DataPoint{
		Symbol:    e.cfg.Symbol,
		StartTime: date,
		EndTime:   date,
		Payload:   &model.Collection{Points: points},
	}
	return true
}

func (e *chainEnumerator) Current() *model.DataPoint { return e.current }

func (e *chainEnumerator) Close() error {
	for contract, stream := range e.open {
		if err := stream.Close(); err != nil {
			logs.Warnf("close contract %s, err: %+v", contract, err)
		}
		delete(e.open, contract)
	}
	return nil
}
