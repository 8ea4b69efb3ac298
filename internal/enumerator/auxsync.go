package enumerator

import "main/internal/model"

type syncStream struct {
	e       Enumerator
	pending *model.DataPoint
	done    bool
}

func (s *syncStream) pull() {
	if s.pending != nil || s.done {
		return
	}
	if s.e.MoveNext() {
		s.pending = s.e.Current()
	} else {
		s.done = true
	}
}

type auxSync struct {
	main    *syncStream
	auxes   []*syncStream
	current *model.DataPoint
}

// NewAuxSync merges a main stream with auxiliary split/dividend/delisting
// streams ordered by knowable instant. Ties resolve auxiliary before main
// so corporate actions take effect on the bar where they apply.
func NewAuxSync(main Enumerator, auxes ...Enumerator) Enumerator {
	s := &auxSync{main: &syncStream{e: main}}
	for _, aux := range auxes {
		s.auxes = append(s.auxes, &syncStream{e: aux})
	}
	return s
}

func (e *auxSync) MoveNext() bool {
	e.current = nil
	e.main.pull()
	for _, aux := range e.auxes {
		aux.pull()
	}

	// Earliest pending auxiliary that is not behind a pending main point
	// wins; equal instants favour the auxiliary.
	var best *syncStream
	for _, aux := range e.auxes {
		if aux.pending == nil {
			continue
		}
		if best == nil || aux.pending.EndTimeUTC().Before(best.pending.EndTimeUTC()) {
			best = aux
		}
	}
	if best != nil {
		if e.main.pending == nil || !best.pending.EndTimeUTC().After(e.main.pending.EndTimeUTC()) {
			e.current = best.pending
			best.pending = nil
			return true
		}
	}
	if e.main.pending != nil {
		e.current = e.main.pending
		e.main.pending = nil
		return true
	}
	if e.main.done && e.allAuxDone() {
		return false
	}
	return true
}

func (e *auxSync) allAuxDone() bool {
	for _, aux := range e.auxes {
		if !aux.done || aux.pending != nil {
			return false
		}
	}
	return true
}

func (e *auxSync) Current() *model.DataPoint { return e.current }

func (e *auxSync) Close() error {
	err := e.main.e.Close()
	for _, aux := range e.auxes {
		if cerr := aux.e.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
