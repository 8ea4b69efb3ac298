package subscription

import (
	"time"

	"main/internal/enumerator"
	"main/internal/hours"
	"main/internal/model/enum"
)

// UniverseSettings carries the assembly parameters of a universe
// subscription.
type UniverseSettings struct {
	Kind enum.UniverseKind
	// Interval between selection ticks for time-triggered universes.
	Interval time.Duration
	// Refresh is the declared refresh period of snapshot-backed universes.
	// The feed does not read it: the enumerator built by CustomFactory is
	// pulled once per custom-data exchange sleep interval.
	Refresh time.Duration
	// CustomFactory builds the polled enumerator for coarse, ETF and
	// custom universes. The factory locates source files itself and reads
	// the previous tradable day where applicable.
	CustomFactory func(start time.Time) (enumerator.Enumerator, error)
}

// Request asks the factory for one subscription: the configuration plus
// the security handle (exchange hours), the UTC window and the optional
// universe settings.
type Request struct {
	Config     Config
	Exchange   *hours.Exchange
	StartUTC   time.Time
	EndUTC     time.Time
	Universe   *UniverseSettings
	IsUniverse bool
}
