package mdg

import (
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/subscription"
)

// Generator creates synthetic, deterministic market data for one
// configuration: bars aligned to the resolution increment, ticks on every
// poll. Corporate-action configurations yield nothing.
type Generator struct {
	cfg       subscription.Config
	basePrice decimal.Decimal
	baseSize  decimal.Decimal
	step      int64
	lastEnd   time.Time
}

func NewGenerator(cfg subscription.Config, basePrice, baseSize decimal.Decimal) *Generator {
	if baseSize.IsZero() {
		baseSize = decimal.NewFromInt(100)
	}
	return &Generator{
		cfg:       cfg,
		basePrice: basePrice,
		baseSize:  baseSize,
	}
}

// Next creates the point due at now, or nil when the current bar is still
// forming.
func (g *Generator) Next(now time.Time) *model.DataPoint {
	if g.cfg.DataKind.IsAuxiliary() {
		return nil
	}
	loc := g.cfg.DataLocation()
	if g.cfg.Resolution == enum.ResolutionTick {
		return g.nextTick(now.In(loc))
	}
	return g.nextBar(now.In(loc))
}

func (g *Generator) nextTick(now time.Time) *model.DataPoint {
	price := g.price()
	g.step++
	return &model.DataPoint{
		Symbol:    g.cfg.Symbol,
		StartTime: now,
		EndTime:   now,
		Payload: &model.Tick{
			Type:     enum.TickTypeTrade,
			Value:    price,
			Quantity: g.baseSize,
		},
	}
}

func (g *Generator) nextBar(now time.Time) *model.DataPoint {
	increment := g.cfg.Increment()
	end := now.Truncate(increment)
	if !end.After(g.lastEnd) {
		return nil
	}
	g.lastEnd = end
	price := g.price()
	g.step++
	spread := decimal.NewFromFloat(0.5)
	return &model.DataPoint{
		Symbol:    g.cfg.Symbol,
		StartTime: end.Add(-increment),
		EndTime:   end,
		Payload: &model.TradeBar{
			Open:   price.Sub(spread),
			High:   price.Add(spread),
			Low:    price.Sub(spread),
			Close:  price,
			Volume: g.baseSize,
		},
	}
}

// price follows a deterministic triangle walk around the base price.
func (g *Generator) price() decimal.Decimal {
	offset := g.step % 10
	if offset > 5 {
		offset = 10 - offset
	}
	return g.basePrice.Add(decimal.NewFromInt(offset))
}
