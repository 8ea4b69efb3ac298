package enumerator

import (
	"main/internal/model"
)

// Enumerator is the uniform pull contract every stage of a subscription
// pipeline exposes. MoveNext returning false means the stream ended for
// good. A true result with a nil Current means "no data right now"; the
// caller re-polls on its own schedule.
type Enumerator interface {
	MoveNext() bool
	Current() *model.DataPoint
	Close() error
}

type sliceEnumerator struct {
	points  []*model.DataPoint
	idx     int
	current *model.DataPoint
}

// FromSlice enumerates a fixed set of points in order.
func FromSlice(points []*model.DataPoint) Enumerator {
	return &sliceEnumerator{points: points}
}

func (e *sliceEnumerator) MoveNext() bool {
	if e.idx >= len(e.points) {
		e.current = nil
		return false
	}
	e.current = e.points[e.idx]
	e.idx++
	return true
}

func (e *sliceEnumerator) Current() *model.DataPoint { return e.current }

func (e *sliceEnumerator) Close() error {
	e.points = nil
	e.current = nil
	e.idx = 0
	return nil
}

type emptyEnumerator struct{}

// Empty enumerates nothing. Used as the live branch of expired symbols.
func Empty() Enumerator { return emptyEnumerator{} }

func (emptyEnumerator) MoveNext() bool            { return false }
func (emptyEnumerator) Current() *model.DataPoint { return nil }
func (emptyEnumerator) Close() error              { return nil }

type funcEnumerator struct {
	next    func() (*model.DataPoint, bool)
	current *model.DataPoint
	done    bool
}

// FromFunc adapts a generator function. The function returns (point, true)
// to continue (point may be nil for "no data right now") and (_, false) to
// end the stream.
func FromFunc(next func() (*model.DataPoint, bool)) Enumerator {
	return &funcEnumerator{next: next}
}

func (e *funcEnumerator) MoveNext() bool {
	if e.done {
		return false
	}
	point, ok := e.next()
	if !ok {
		e.done = true
		e.current = nil
		return false
	}
	e.current = point
	return true
}

func (e *funcEnumerator) Current() *model.DataPoint { return e.current }

func (e *funcEnumerator) Close() error {
	e.done = true
	e.current = nil
	return nil
}
