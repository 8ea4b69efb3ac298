package enumerator

import "main/internal/model"

type aggregate struct {
	upstream  Enumerator
	symbol    model.Symbol
	buffered  *model.DataPoint
	current   *model.DataPoint
	exhausted bool
}

// NewAggregate packages consecutive points sharing an end time into one
// Collection keyed by the universe symbol.
func NewAggregate(upstream Enumerator, symbol model.Symbol) Enumerator {
	return &aggregate{upstream: upstream, symbol: symbol}
}

func (e *aggregate) MoveNext() bool {
	e.current = nil
	if e.exhausted {
		return false
	}
	var batch []*model.DataPoint
	if e.buffered != nil {
		batch = append(batch, e.buffered)
		e.buffered = nil
	}
	for {
		if !e.upstream.MoveNext() {
			e.exhausted = true
			break
		}
		point := e.upstream.Current()
		if point == nil {
			break
		}
		if len(batch) > 0 && !point.EndTime.Equal(batch[0].EndTime) {
			e.buffered = point
			break
		}
		batch = append(batch, point)
	}
	if len(batch) == 0 {
		return !e.exhausted
	}
	e.current = &model.DataPoint{
		Symbol:    e.symbol,
		StartTime: batch[0].StartTime,
		EndTime:   batch[0].EndTime,
		Payload:   &model.Collection{Points: batch},
	}
	return true
}

func (e *aggregate) Current() *model.DataPoint { return e.current }

func (e *aggregate) Close() error { return e.upstream.Close() }
