package enumerator

import (
	"main/internal/hours"
	"main/internal/model"
)

type hoursFilter struct {
	upstream Enumerator
	exchange *hours.Exchange
	extended bool
	current  *model.DataPoint
}

// NewHoursFilter drops points outside the security's tradable hours.
// Auxiliary events always pass so corporate actions survive closed markets.
func NewHoursFilter(upstream Enumerator, exchange *hours.Exchange, extended bool) Enumerator {
	return &hoursFilter{upstream: upstream, exchange: exchange, extended: extended}
}

func (e *hoursFilter) MoveNext() bool {
	for e.upstream.MoveNext() {
		point := e.upstream.Current()
		if point == nil || point.IsAuxiliary() {
			e.current = point
			return true
		}
		if e.exchange.IsOpenDuringBar(point.StartTime, point.EndTime, e.extended) {
			e.current = point
			return true
		}
	}
	e.current = nil
	return false
}

func (e *hoursFilter) Current() *model.DataPoint { return e.current }

func (e *hoursFilter) Close() error { return e.upstream.Close() }
