package enumerator

import "main/internal/model"

type concat struct {
	stages  []Enumerator
	idx     int
	current *model.DataPoint
}

// NewConcat drains stages left to right, closing each exhausted stage
// except the last, which keeps driving the stream. Once the last stage is
// reached the enumerator never reverts to a prior one.
func NewConcat(stages ...Enumerator) Enumerator {
	return &concat{stages: stages}
}

func (e *concat) MoveNext() bool {
	for e.idx < len(e.stages) {
		stage := e.stages[e.idx]
		if stage.MoveNext() {
			e.current = stage.Current()
			return true
		}
		if e.idx == len(e.stages)-1 {
			e.current = nil
			return false
		}
		_ = stage.Close()
		e.idx++
	}
	e.current = nil
	return false
}

func (e *concat) Current() *model.DataPoint { return e.current }

func (e *concat) Close() error {
	var err error
	for ; e.idx < len(e.stages); e.idx++ {
		if cerr := e.stages[e.idx].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
