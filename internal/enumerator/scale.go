package enumerator

import (
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model"
)

type priceScale struct {
	upstream Enumerator
	factorAt func(time.Time) decimal.Decimal
	current  *model.DataPoint
}

// NewPriceScale multiplies price fields by the factor-file factor evaluated
// at the point's end time. Non-price payloads pass through untouched. Sits
// before fill-forward so synthetic points inherit scaled prices.
func NewPriceScale(upstream Enumerator, factorAt func(time.Time) decimal.Decimal) Enumerator {
	return &priceScale{upstream: upstream, factorAt: factorAt}
}

func (e *priceScale) MoveNext() bool {
	if !e.upstream.MoveNext() {
		e.current = nil
		return false
	}
	point := e.upstream.Current()
	if point == nil || point.Payload == nil {
		e.current = point
		return true
	}
	scalable, ok := point.Payload.(model.Scalable)
	if !ok {
		e.current = point
		return true
	}
	factor := e.factorAt(point.EndTime)
	if factor.Equal(decimal.NewFromInt(1)) {
		e.current = point
		return true
	}
	scaled := *point
	scaled.Payload = scalable.Scale(factor)
	e.current = &scaled
	return true
}

func (e *priceScale) Current() *model.DataPoint { return e.current }

func (e *priceScale) Close() error { return e.upstream.Close() }
