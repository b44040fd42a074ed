package wizard

import "github.com/enetx/g"

// newMachine builds the phase machine every engine runs on:
//
//	collecting --submit--> processing --resolve--> complete
//	                       processing --reject---> failed --retry--> processing
//	any        --reset---> collecting
//
// submit is guarded by ready, which must report that every step is answered.
func newMachine(ready func() bool) *machine {
	m := &machine{
		initial:     PhaseCollecting,
		current:     PhaseCollecting,
		history:     g.SliceOf(PhaseCollecting),
		transitions: g.NewMap[Phase, g.Slice[transition]](),
	}

	m.transitionWhen(PhaseCollecting, eventSubmit, PhaseProcessing, ready).
		transition(PhaseProcessing, eventResolve, PhaseComplete).
		transition(PhaseProcessing, eventReject, PhaseFailed).
		transition(PhaseFailed, eventRetry, PhaseProcessing)

	for _, from := range phases() {
		m.transition(from, eventReset, PhaseCollecting)
	}

	return m
}

func phases() g.Slice[Phase] {
	return g.SliceOf(PhaseCollecting, PhaseProcessing, PhaseComplete, PhaseFailed)
}

// transition adds a basic transition (without a guard) from -> event -> to.
func (m *machine) transition(from Phase, ev event, to Phase) *machine {
	return m.transitionWhen(from, ev, to, nil)
}

// transitionWhen adds a guarded transition from -> event -> to.
func (m *machine) transitionWhen(from Phase, ev event, to Phase, guard func() bool) *machine {
	m.transitions.Entry(from).
		AndModify(func(s *g.Slice[transition]) { s.Push(transition{event: ev, to: to, guard: guard}) }).
		OrInsert(g.SliceOf(transition{event: ev, to: to, guard: guard}))

	return m
}

// match returns the single transition allowed for ev from the current phase.
func (m *machine) match(ev event) (transition, error) {
	var matched g.Slice[transition]

	for _, t := range m.transitions[m.current] {
		if t.event == ev && (t.guard == nil || t.guard()) {
			matched.Push(t)
		}
	}

	switch matched.Len() {
	case 0:
		return transition{}, &ErrInvalidTransition{From: m.current, Event: g.String(ev)}
	case 1:
		return matched[0], nil
	default:
		// No table built by newMachine has overlapping guards.
		return transition{}, &ErrAmbiguousTransition{From: m.current, Event: g.String(ev)}
	}
}

// fire moves the machine along ev and returns the completed change.
func (m *machine) fire(ev event) (change, error) {
	t, err := m.match(ev)
	if err != nil {
		return change{}, err
	}

	c := change{from: m.current, to: t.to}

	if ev == eventReset {
		m.history = g.SliceOf(m.initial)
	} else {
		m.history.Push(t.to)
	}

	m.current = t.to

	return c, nil
}
