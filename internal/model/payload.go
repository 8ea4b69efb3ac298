package model

import (
	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

// Payload is the value carried by a data point.
type Payload interface {
	Kind() enum.DataKind
	Clone() Payload
}

// Scalable payloads have price fields subject to factor-file adjustment.
type Scalable interface {
	Payload
	Scale(factor decimal.Decimal) Payload
}

// Priced payloads expose a representative price for downstream consumers.
type Priced interface {
	Price() decimal.Decimal
}

// Tick is a single trade or quote observation.
type Tick struct {
	Type     enum.TickType
	Value    decimal.Decimal
	Quantity decimal.Decimal
	BidPrice decimal.Decimal
	BidSize  decimal.Decimal
	AskPrice decimal.Decimal
	AskSize  decimal.Decimal
	Exchange string
}

func (t *Tick) Kind() enum.DataKind { return enum.DataKindTick }

func (t *Tick) Clone() Payload {
	clone := *t
	return &clone
}

func (t *Tick) Scale(factor decimal.Decimal) Payload {
	clone := *t
	clone.Value = t.Value.Mul(factor)
	clone.BidPrice = t.BidPrice.Mul(factor)
	clone.AskPrice = t.AskPrice.Mul(factor)
	return &clone
}

func (t *Tick) Price() decimal.Decimal { return t.Value }

// TradeBar aggregates OHLCV over a fixed period.
type TradeBar struct {
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

func (b *TradeBar) Kind() enum.DataKind { return enum.DataKindTradeBar }

func (b *TradeBar) Clone() Payload {
	clone := *b
	return &clone
}

func (b *TradeBar) Scale(factor decimal.Decimal) Payload {
	clone := *b
	clone.Open = b.Open.Mul(factor)
	clone.High = b.High.Mul(factor)
	clone.Low = b.Low.Mul(factor)
	clone.Close = b.Close.Mul(factor)
	return &clone
}

func (b *TradeBar) Price() decimal.Decimal { return b.Close }

// Dividend is a cash distribution event.
type Dividend struct {
	Distribution   decimal.Decimal
	ReferencePrice decimal.Decimal
}

func (d *Dividend) Kind() enum.DataKind { return enum.DataKindDividend }

func (d *Dividend) Clone() Payload {
	clone := *d
	return &clone
}

// Split is a share split or reverse split event. Factor is the price
// multiplier after the split (4:1 split => 0.25).
type Split struct {
	Factor         decimal.Decimal
	ReferencePrice decimal.Decimal
}

func (s *Split) Kind() enum.DataKind { return enum.DataKindSplit }

func (s *Split) Clone() Payload {
	clone := *s
	return &clone
}

// Delisting marks a symbol leaving the market. Warning announces the final
// trading day; otherwise the symbol is gone.
type Delisting struct {
	Warning bool
}

func (d *Delisting) Kind() enum.DataKind { return enum.DataKindDelisting }

func (d *Delisting) Clone() Payload {
	clone := *d
	return &clone
}

// SymbolChanged is a ticker rename sourced from the map file.
type SymbolChanged struct {
	OldTicker string
	NewTicker string
}

func (c *SymbolChanged) Kind() enum.DataKind { return enum.DataKindSymbolChanged }

func (c *SymbolChanged) Clone() Payload {
	clone := *c
	return &clone
}

// Coarse is one row of the daily coarse-fundamental snapshot used by
// coarse and ETF-constituent universes.
type Coarse struct {
	Ticker             string
	Value              decimal.Decimal
	Volume             decimal.Decimal
	DollarVolume       decimal.Decimal
	HasFundamentalData bool
}

func (c *Coarse) Kind() enum.DataKind { return enum.DataKindCoarse }

func (c *Coarse) Clone() Payload {
	clone := *c
	return &clone
}

func (c *Coarse) Price() decimal.Decimal { return c.Value }

// Collection packages points that share an end time, keyed by the universe
// symbol that requested them.
type Collection struct {
	Points []*DataPoint
}

func (c *Collection) Kind() enum.DataKind { return enum.DataKindCollection }

func (c *Collection) Clone() Payload {
	points := make([]*DataPoint, len(c.Points))
	copy(points, c.Points)
	return &Collection{Points: points}
}
