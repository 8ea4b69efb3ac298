package feed

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yanun0323/logs"

	"main/internal/exchange"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/provider"
	"main/internal/subscription"
	"main/internal/timing"
	"main/pkg/exception"
)

// State is the feed lifecycle phase.
type State uint8

const (
	StateNew State = iota
	StateInitialized
	StateActive
	StateStopping
	StateStopped
)

// Dependencies bundles the external collaborators the feed consumes.
// QueueHandler and ChannelProvider are required; the rest degrade
// gracefully when absent.
type Dependencies struct {
	QueueHandler      provider.DataQueueHandler
	ChannelProvider   provider.ChannelProvider
	MapFiles          provider.MapFileProvider
	FactorFiles       provider.FactorFileProvider
	DataProvider      provider.DataProvider
	CustomData        provider.CustomEnumeratorFactory
	HistoricalFactory provider.HistoricalFeedFactory
	Algorithm         provider.Algorithm

	// Clock supplies "now"; Frontier is the shared gate clock read by
	// every subscription. Clock defaults to the real clock; Frontier
	// defaults to Clock.
	Clock    timing.Provider
	Frontier timing.Provider

	Metrics *obs.Metrics
}

// Feed owns the subscription set and coordinates start and stop of the
// live data flow. The host calls the lifecycle methods serially.
type Feed struct {
	mu       sync.Mutex
	state    State
	settings ops.Settings
	deps     Dependencies

	source    *handlerSource
	custom    *exchange.CustomDataExchange
	factory   *factory
	subs      *subscription.Set
	teardowns map[subscription.Config]func()

	exitOnce sync.Once
}

func New(deps Dependencies, settings ops.Settings) *Feed {
	if deps.Clock == nil {
		deps.Clock = timing.RealTime{}
	}
	if deps.Frontier == nil {
		deps.Frontier = deps.Clock
	}
	if deps.Metrics == nil {
		deps.Metrics = obs.NewMetrics()
	}
	return &Feed{
		state:     StateNew,
		settings:  settings,
		deps:      deps,
		subs:      subscription.NewSet(),
		teardowns: make(map[subscription.Config]func()),
	}
}

// Initialize resolves the queue handler and starts the custom-data
// exchange. Must be called exactly once with a live job packet.
func (f *Feed) Initialize(job *provider.JobPacket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateNew {
		return fmt.Errorf("feed already initialized: %w", exception.ErrInvalidJob)
	}
	if !job.IsLive() {
		return fmt.Errorf("feed requires a live job packet: %w", exception.ErrInvalidJob)
	}
	if f.deps.QueueHandler == nil || f.deps.ChannelProvider == nil {
		return fmt.Errorf("queue handler and channel provider are required: %w", exception.ErrInvalidJob)
	}
	f.state = StateInitialized

	f.source = newHandlerSource(f.deps.QueueHandler)
	f.custom = exchange.New(f.settings.CustomExchangeSleepInterval)
	f.factory = &factory{
		settings: f.settings,
		source:   f.source,
		custom:   f.custom,
		warmup: &warmupPlanner{
			lookBackDays:      f.settings.MaxWarmupHistoryDaysLookBack,
			dataProvider:      f.deps.DataProvider,
			historicalFactory: f.deps.HistoricalFactory,
		},
		channel:     f.deps.ChannelProvider,
		mapFiles:    f.deps.MapFiles,
		factorFiles: f.deps.FactorFiles,
		customData:  f.deps.CustomData,
		algorithm:   f.deps.Algorithm,
		clock:       f.deps.Clock,
		frontier:    f.deps.Frontier,
		metrics:     f.deps.Metrics,
	}
	// The auth token is handed to the custom-data layer exactly once.
	if f.settings.TiingoAuthToken != "" {
		if tokenized, ok := f.deps.CustomData.(interface{ SetAuthToken(token string) }); ok {
			tokenized.SetAuthToken(f.settings.TiingoAuthToken)
		}
	}
	f.custom.Start()
	f.state = StateActive
	logs.Infof("feed initialized, deployment %s", job.DeploymentID)
	return nil
}

// IsActive reports whether subscriptions can be created.
func (f *Feed) IsActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == StateActive
}

// CreateSubscription assembles and registers a subscription. An expired
// symbol yields a valid subscription whose Expired flag is set; assembly
// failure is reported to the caller and the feed continues.
func (f *Feed) CreateSubscription(req subscription.Request) (*subscription.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateActive {
		return nil, exception.ErrNotActive
	}
	cfg := req.Config
	if _, exists := f.subs.Get(cfg); exists {
		return nil, fmt.Errorf("%s: %w", cfg.Symbol, exception.ErrSubscriptionExists)
	}

	// The notifier holds a lookup key into the subscription set, never a
	// reference to the subscription itself.
	notifier := func() {
		if sub, ok := f.subs.Get(cfg); ok {
			sub.NotifyNewData()
		}
	}

	sub, teardown, err := f.factory.newSubscription(req, notifier)
	if err != nil {
		f.deps.Metrics.IncSubscriptionFailed()
		logs.Errorf("create subscription %s, err: %+v", cfg.Symbol, err)
		if errors.Is(err, exception.ErrUnsupportedSecurityType) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %v: %w", cfg.Symbol, err, exception.ErrSubscriptionConstruction)
	}
	f.subs.Add(sub)
	f.teardowns[cfg] = teardown
	f.deps.Metrics.IncSubscriptionCreated()
	return sub, nil
}

// RemoveSubscription unsubscribes from the owning source and disposes the
// subscription exactly once. After it returns no further points flow.
func (f *Feed) RemoveSubscription(sub *subscription.Subscription) bool {
	if sub == nil {
		return false
	}
	f.mu.Lock()
	cfg := sub.Configuration()
	registered, ok := f.subs.Remove(cfg)
	teardown := f.teardowns[cfg]
	delete(f.teardowns, cfg)
	f.mu.Unlock()
	if !ok {
		return false
	}
	if teardown != nil {
		teardown()
	}
	registered.Dispose()
	f.deps.Metrics.IncSubscriptionRemoved()
	return true
}

// Subscriptions snapshots the current subscription set.
func (f *Feed) Subscriptions() []*subscription.Subscription {
	return f.subs.All()
}

// Exit stops the custom-data exchange and every subscription. Idempotent;
// a second call observes the same stopped feed.
func (f *Feed) Exit() {
	f.exitOnce.Do(func() {
		f.mu.Lock()
		f.state = StateStopping
		custom := f.custom
		teardowns := f.teardowns
		f.teardowns = make(map[subscription.Config]func())
		subs := f.subs.All()
		f.mu.Unlock()

		if custom != nil {
			custom.Stop()
		}
		for _, teardown := range teardowns {
			teardown()
		}
		for _, sub := range subs {
			f.subs.Remove(sub.Configuration())
			sub.Dispose()
		}

		f.mu.Lock()
		f.state = StateStopped
		f.mu.Unlock()
		logs.Info("feed stopped")
	})
}

// StateNow returns the lifecycle phase, for tests and diagnostics.
func (f *Feed) StateNow() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
