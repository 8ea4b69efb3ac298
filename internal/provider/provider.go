package provider

import (
	"io"
	"time"

	"main/internal/enumerator"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/subscription"
)

// JobPacket is the live job descriptor handed to the feed at initialize.
type JobPacket struct {
	Type         string
	DeploymentID string
	Parameters   map[string]string
}

const JobTypeLive = "live"

func (j *JobPacket) IsLive() bool {
	return j != nil && j.Type == JobTypeLive
}

// DataQueueHandler is the external push producer. Subscribe returns a pull
// enumerator whose upstream is the handler's internal bounded queue; the
// notifier is fired on new-data availability.
type DataQueueHandler interface {
	Subscribe(cfg subscription.Config, notifier func()) (enumerator.Enumerator, error)
	Unsubscribe(cfg subscription.Config) error
}

// UniverseProvider is the optional queue-handler capability backing chain
// universes.
type UniverseProvider interface {
	CanPerformSelection(securityType enum.SecurityType) bool
	LookupSymbols(symbol model.Symbol, at time.Time) ([]model.Symbol, error)
}

// DataProvider opens file-based sources by key.
type DataProvider interface {
	Open(key string) (io.ReadCloser, error)
}

// MapFileProvider resolves the ticker-history map file for a configuration.
type MapFileProvider interface {
	Resolve(cfg subscription.Config) (*MapFile, error)
}

// FactorFileProvider resolves the price-adjustment factor file.
type FactorFileProvider interface {
	Resolve(cfg subscription.Config) (*FactorFile, error)
}

// HistoryRequest asks the history provider for one configuration's bars.
type HistoryRequest struct {
	Config   subscription.Config
	StartUTC time.Time
	EndUTC   time.Time
}

// HistoryProvider replays stored history as an ordered point stream.
type HistoryProvider interface {
	GetHistory(requests []HistoryRequest, loc *time.Location) (enumerator.Enumerator, error)
}

// ChannelProvider decides push-streaming versus poll-ingestion per
// configuration.
type ChannelProvider interface {
	ShouldStream(cfg subscription.Config) bool
}

// Algorithm is the consumer-side contract the feed reads during assembly.
type Algorithm interface {
	IsWarmingUp() bool
	HistoryProvider() HistoryProvider
	TimeZone() *time.Location
}

// CustomEnumeratorFactory builds pollable enumerators for configurations
// the channel provider routes away from the queue handler. The factory
// knows how to locate source files and refresh at its declared period.
type CustomEnumeratorFactory interface {
	Create(cfg subscription.Config, startUTC time.Time) (enumerator.Enumerator, error)
}

// HistoricalFeedFactory builds the file-based enumerator used by warmup;
// the live factory invokes it recursively for the same configuration.
type HistoricalFeedFactory interface {
	CreateEnumerator(req subscription.Request, data DataProvider) (enumerator.Enumerator, error)
}
