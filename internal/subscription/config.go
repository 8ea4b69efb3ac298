package subscription

import (
	"time"

	"main/internal/model"
	"main/internal/model/enum"
)

// Config is the immutable identity of a subscription. Comparable;
// structural equality makes it the key of the feed's subscription set.
type Config struct {
	Symbol           model.Symbol
	SecurityType     enum.SecurityType
	DataKind         enum.DataKind
	TickType         enum.TickType
	Resolution       enum.Resolution
	ExchangeTimeZone string
	DataTimeZone     string
	FillForward      bool
	ExtendedHours    bool
	IsInternalFeed   bool
	IsFiltered       bool
}

// PricesShouldBeScaled reports whether the live pipeline applies
// factor-file price adjustment. Only price-bearing equity data scales.
func (c Config) PricesShouldBeScaled() bool {
	if c.SecurityType != enum.SecurityTypeEquity {
		return false
	}
	return c.DataKind == enum.DataKindTick || c.DataKind == enum.DataKindTradeBar
}

// Increment is the bar span implied by the resolution.
func (c Config) Increment() time.Duration {
	return c.Resolution.Increment()
}

// DataLocation resolves the data time zone, defaulting to UTC.
func (c Config) DataLocation() *time.Location {
	return loadLocation(c.DataTimeZone)
}

// ExchangeLocation resolves the exchange time zone, defaulting to UTC.
func (c Config) ExchangeLocation() *time.Location {
	return loadLocation(c.ExchangeTimeZone)
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
