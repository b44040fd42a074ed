package wizard

import (
	"encoding/json"

	"github.com/enetx/g"
)

// State is a serializable, read-only view of an engine.
type State struct {
	Index    int            `json:"index"`
	Total    int            `json:"total"`
	Phase    Phase          `json:"phase"`
	Progress float64        `json:"progress"`
	Step     *Step          `json:"step,omitempty"`
	Answers  Answers        `json:"answers"`
	Result   any            `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
	History  g.Slice[Phase] `json:"history"`
}

// Snapshot returns the current state of the engine.
func (e *Engine[R]) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state := State{
		Index:    e.index,
		Total:    e.steps.Len(),
		Phase:    e.phase.current,
		Progress: float64(e.index) / float64(e.steps.Len()),
		Answers:  e.answers.Clone(),
		History:  e.phase.history.Clone(),
	}

	if e.phase.current == PhaseCollecting {
		step := e.steps.At(e.index)
		state.Step = &step
	}

	if e.result.IsSome() {
		state.Result = e.result.Some()
	}

	if e.err != nil {
		state.Error = e.err.Error()
	}

	return state
}

// MarshalJSON implements the json.Marshaler interface.
func (e *Engine[R]) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Snapshot())
}
