package feed

import (
	"sync"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/enumerator"
	"main/internal/exchange"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/provider"
	"main/internal/subscription"
	"main/internal/timing"
	"main/pkg/exception"
)

// factory assembles the per-request pipeline: live source, transformer
// chain in the mandatory order, warmup prefix, subscription wrapper.
type factory struct {
	settings ops.Settings
	source   *handlerSource
	custom   *exchange.CustomDataExchange
	warmup   *warmupPlanner

	channel     provider.ChannelProvider
	mapFiles    provider.MapFileProvider
	factorFiles provider.FactorFileProvider
	customData  provider.CustomEnumeratorFactory
	algorithm   provider.Algorithm

	clock    timing.Provider
	frontier timing.Provider
	metrics  *obs.Metrics
}

func (f *factory) newSubscription(req subscription.Request, notifier func()) (sub *subscription.Subscription, teardown func(), err error) {
	defer func() {
		if r := recover(); r != nil {
			sub, teardown = nil, nil
			err = errors.Errorf("assemble %s panicked: %+v", req.Config.Symbol, r)
		}
	}()
	if req.IsUniverse {
		return f.newUniverseSubscription(req, notifier)
	}
	return f.newDataSubscription(req, notifier)
}

func (f *factory) newDataSubscription(req subscription.Request, notifier func()) (*subscription.Subscription, func(), error) {
	cfg := req.Config
	nowUTC := f.clock.NowUTC()
	expired := f.isExpired(cfg, nowUTC)

	var live enumerator.Enumerator
	teardown := func() {}
	switch {
	case expired:
		// Not an error: warmup may still attach a history prefix.
		logs.Infof("%s is already delisted, live branch is empty", cfg.Symbol)
		live = enumerator.Empty()
	case f.channel.ShouldStream(cfg):
		stream, err := f.source.subscribe(cfg, notifier)
		if err != nil {
			return nil, nil, err
		}
		live = stream
		teardown = func() {
			if err := f.source.unsubscribe(cfg); err != nil {
				logs.Warnf("unsubscribe %s, err: %+v", cfg.Symbol, err)
			}
		}
	default:
		if f.customData == nil {
			return nil, nil, errors.Errorf("no custom enumerator factory for polled %s", cfg.Symbol)
		}
		src, err := f.customData.Create(cfg, nowUTC)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "create polled enumerator %s", cfg.Symbol)
		}
		queue := f.newBridgeQueue(notifier)
		teardown = f.registerPolled(cfg.Symbol, src, queue)
		live = queue
	}

	stream := f.warmup.plan(req, f.algorithm, nowUTC, f.compose(req, live))
	offset := timing.NewOffsetProvider(cfg.DataLocation())
	return subscription.New(cfg, offset, stream, expired), teardown, nil
}

// compose applies the transformer chain. Order is load-bearing: scale
// first so fill-forward copies scaled values, fill-forward before the
// hours filter so synthetic bars outside trading hours are dropped, and
// the frontier gate last so no transformer ever sees a future instant.
func (f *factory) compose(req subscription.Request, raw enumerator.Enumerator) enumerator.Enumerator {
	cfg := req.Config
	e := raw
	if cfg.PricesShouldBeScaled() && f.factorFiles != nil {
		if file, err := f.factorFiles.Resolve(cfg); err != nil {
			logs.Warnf("resolve factor file for %s, err: %+v", cfg.Symbol, err)
		} else {
			e = enumerator.NewPriceScale(e, file.FactorAt)
		}
	}
	if cfg.FillForward && cfg.Resolution != enum.ResolutionTick && req.Exchange != nil {
		localEnd := req.EndUTC.In(cfg.DataLocation())
		e = enumerator.NewFillForward(e, req.Exchange, cfg.Increment(), cfg.ExtendedHours, localEnd, f.frontier)
	}
	if cfg.IsFiltered && req.Exchange != nil {
		e = enumerator.NewHoursFilter(e, req.Exchange, cfg.ExtendedHours)
	}
	return enumerator.NewFrontierGate(e, f.frontier)
}

// isExpired resolves the map file and compares the delisting date against
// today's UTC date.
func (f *factory) isExpired(cfg subscription.Config, nowUTC time.Time) bool {
	if f.mapFiles == nil || cfg.SecurityType != enum.SecurityTypeEquity {
		return false
	}
	file, err := f.mapFiles.Resolve(cfg)
	if err != nil {
		logs.Warnf("resolve map file for %s, err: %+v", cfg.Symbol, err)
		return false
	}
	delisted, ok := file.DelistingDate()
	if !ok {
		return false
	}
	today := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC)
	return delisted.Before(today)
}

func (f *factory) newUniverseSubscription(req subscription.Request, notifier func()) (*subscription.Subscription, func(), error) {
	cfg := req.Config
	if req.Universe == nil {
		return nil, nil, errors.Wrapf(exception.ErrInvalidArgument, "universe settings missing for %s", cfg.Symbol)
	}

	var gated enumerator.Enumerator
	teardown := func() {}
	switch req.Universe.Kind {
	case enum.UniverseTimeTriggered:
		interval := req.Universe.Interval
		if interval <= 0 {
			interval = 24 * time.Hour
		}
		gen := newTimeTriggeredEnumerator(cfg, interval, req.StartUTC, f.frontier)
		queue := f.newBridgeQueue(notifier)
		teardown = f.registerPolled(cfg.Symbol, gen, queue)
		gated = enumerator.NewFrontierGate(queue, f.frontier)

	case enum.UniverseCoarse, enum.UniverseETFConstituent, enum.UniverseCustom:
		if req.Universe.CustomFactory == nil {
			return nil, nil, errors.Wrapf(exception.ErrInvalidArgument, "no custom factory for %s universe %s", req.Universe.Kind, cfg.Symbol)
		}
		src, err := req.Universe.CustomFactory(f.clock.NowUTC())
		if err != nil {
			return nil, nil, errors.Wrapf(err, "create %s universe enumerator %s", req.Universe.Kind, cfg.Symbol)
		}
		queue := f.newBridgeQueue(notifier)
		teardown = f.registerPolled(cfg.Symbol, src, queue)
		aggregated := enumerator.NewAggregate(queue, cfg.Symbol)
		frontier := f.frontier
		if req.Universe.Kind != enum.UniverseCustom {
			// Snapshot selection must not fire during illegal hours.
			frontier = timing.NewPredicated(f.frontier, selectionAllowed(f.selectionLocation(req)))
		}
		gated = enumerator.NewFrontierGate(aggregated, frontier)

	case enum.UniverseOptionChain, enum.UniverseFutureChain:
		up, err := f.source.universeFor(cfg.SecurityType)
		if err != nil {
			return nil, nil, err
		}
		fillForward := req.Universe.Kind == enum.UniverseOptionChain
		chain := newChainEnumerator(cfg, up, f.contractFactoryFor(req, notifier, fillForward), f.clock, req.Exchange)
		gated = enumerator.NewFrontierGate(chain, f.frontier)

	default:
		return nil, nil, errors.Wrapf(exception.ErrInvalidArgument, "unknown universe kind for %s", cfg.Symbol)
	}

	offset := timing.NewOffsetProvider(cfg.DataLocation())
	return subscription.New(cfg, offset, gated, false), teardown, nil
}

func (f *factory) selectionLocation(req subscription.Request) *time.Location {
	if req.Exchange != nil {
		return req.Exchange.Location()
	}
	return req.Config.DataLocation()
}

// contractFactoryFor builds per-contract streams: subscribe through the
// queue handler, plus fill-forward for option chains.
func (f *factory) contractFactoryFor(req subscription.Request, notifier func(), fillForward bool) contractFactory {
	return func(contract model.Symbol) (enumerator.Enumerator, error) {
		cfg := req.Config
		cfg.Symbol = contract
		cfg.SecurityType = contract.SecurityType
		stream, err := f.source.subscribe(cfg, notifier)
		if err != nil {
			return nil, err
		}
		e := stream
		if fillForward && cfg.Resolution != enum.ResolutionTick && req.Exchange != nil {
			localEnd := req.EndUTC.In(cfg.DataLocation())
			e = enumerator.NewFillForward(e, req.Exchange, cfg.Increment(), cfg.ExtendedHours, localEnd, f.frontier)
		}
		return &closerEnumerator{Enumerator: e, onClose: func() {
			if err := f.source.unsubscribe(cfg); err != nil {
				logs.Warnf("unsubscribe contract %s, err: %+v", cfg.Symbol, err)
			}
		}}, nil
	}
}

func (f *factory) newBridgeQueue(notifier func()) *bus.PointQueue {
	return bus.NewPointQueue(f.settings.QueueCapacity, f.settings.QueueOverflowPolicy, notifier)
}

// registerPolled wires a pollable enumerator onto the shared worker,
// bridging yielded points into the subscription's bounded queue.
func (f *factory) registerPolled(symbol model.Symbol, src enumerator.Enumerator, queue *bus.PointQueue) func() {
	f.custom.Add(symbol, src,
		func(point *model.DataPoint) {
			if !queue.Enqueue(point) {
				f.metrics.IncQueueDrop()
			}
		},
		func() {
			queue.Stop()
			f.metrics.IncQueueStop()
		},
	)
	return func() {
		f.custom.Remove(symbol)
		queue.Stop()
	}
}

// closerEnumerator runs an extra hook on Close, used to pair handler
// unsubscribes with enumerator teardown.
type closerEnumerator struct {
	enumerator.Enumerator
	onClose func()
	once    sync.Once
}

func (e *closerEnumerator) Close() error {
	var err error
	e.once.Do(func() {
		err = e.Enumerator.Close()
		if e.onClose != nil {
			e.onClose()
		}
	})
	return err
}
