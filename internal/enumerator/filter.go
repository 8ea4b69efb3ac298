package enumerator

import "main/internal/model"

type filter struct {
	upstream Enumerator
	keep     func(*model.DataPoint) bool
	current  *model.DataPoint
}

// NewFilter passes only points matching keep. Nil "no data" ticks pass
// through untouched.
func NewFilter(upstream Enumerator, keep func(*model.DataPoint) bool) Enumerator {
	return &filter{upstream: upstream, keep: keep}
}

func (e *filter) MoveNext() bool {
	for e.upstream.MoveNext() {
		point := e.upstream.Current()
		if point == nil || e.keep(point) {
			e.current = point
			return true
		}
	}
	e.current = nil
	return false
}

func (e *filter) Current() *model.DataPoint { return e.current }

func (e *filter) Close() error { return e.upstream.Close() }
