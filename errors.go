package wizard

import (
	"errors"
	"fmt"

	"github.com/enetx/g"
)

// ErrNoSteps is returned when a wizard is built from an empty step set.
var ErrNoSteps = errors.New("wizard: at least one step is required")

// ErrInvalidStep is returned when an answer is recorded for a step other than
// the current one. It signals collaborator misuse and is never retried.
type ErrInvalidStep struct {
	Expected g.String
	Got      g.String
}

func (e *ErrInvalidStep) Error() string {
	return fmt.Sprintf("wizard: answer for step %q rejected; current step is %q", e.Got, e.Expected)
}

// ErrOutOfRange is returned when the step cursor cannot be read or moved:
// reading the current step outside the collecting phase, or going back from
// the first step.
type ErrOutOfRange struct {
	Phase Phase
	Index int
	Len   int
}

func (e *ErrOutOfRange) Error() string {
	if e.Phase != PhaseCollecting {
		return fmt.Sprintf("wizard: no current step in phase %q", e.Phase)
	}

	return fmt.Sprintf("wizard: step index %d out of range [1, %d]", e.Index, e.Len)
}

// ErrInvalidPhase is returned when a mutating call is made in a phase that does
// not allow it, e.g. RecordAnswer while processing.
type ErrInvalidPhase struct {
	Op    string
	Phase Phase
}

func (e *ErrInvalidPhase) Error() string {
	return fmt.Sprintf("wizard: %s is not allowed in phase %q", e.Op, e.Phase)
}

// ErrInvalidOption is returned when a step declares options and the recorded
// value is not one of them.
type ErrInvalidOption struct {
	Step  g.String
	Value any
}

func (e *ErrInvalidOption) Error() string {
	return fmt.Sprintf("wizard: value %v is not an option of step %q", e.Value, e.Step)
}

// ErrSubmissionFailed is the failure reason retained when a processor fails.
// It is the only error kind meant for user-facing recovery via Retry or Reset.
type ErrSubmissionFailed struct {
	Err error
}

func (e *ErrSubmissionFailed) Error() string {
	return fmt.Sprintf("wizard: submission failed: %v", e.Err)
}

func (e *ErrSubmissionFailed) Unwrap() error { return e.Err }

// ErrCallback wraps an error returned, or a panic raised, by a processor or hook.
type ErrCallback struct {
	// HookType is the kind of callback that failed, e.g. "Process" or "OnTransition".
	HookType string
	// Err is the original error or the error created after recovering from a panic.
	Err error
}

func (e *ErrCallback) Error() string {
	return fmt.Sprintf("wizard: error in %s callback: %v", e.HookType, e.Err)
}

func (e *ErrCallback) Unwrap() error { return e.Err }

// ErrInvalidTransition is returned by the phase machine when no transition
// matches the event from the current phase.
type ErrInvalidTransition struct {
	From  Phase
	Event g.String
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("wizard: no matching transition for event %q from phase %q", e.Event, e.From)
}

// ErrAmbiguousTransition is returned when more than one guarded transition
// accepts the same event. The transition is aborted.
type ErrAmbiguousTransition struct {
	From  Phase
	Event g.String
}

func (e *ErrAmbiguousTransition) Error() string {
	return fmt.Sprintf("wizard: ambiguous transition from phase %q on event %q", e.From, e.Event)
}

// ErrDuplicateStep is returned when two steps share an ID.
type ErrDuplicateStep struct {
	ID g.String
}

func (e *ErrDuplicateStep) Error() string {
	return fmt.Sprintf("wizard: duplicate step id %q", e.ID)
}

// ErrEmptyStepID is returned when a step has no ID.
type ErrEmptyStepID struct {
	Position int
}

func (e *ErrEmptyStepID) Error() string {
	return fmt.Sprintf("wizard: step at position %d has an empty id", e.Position)
}

// Recoverable reports whether err is a processor failure the user may recover
// from with Retry or Reset. Engine invariant violations are not recoverable.
func Recoverable(err error) bool {
	var failed *ErrSubmissionFailed
	return errors.As(err, &failed)
}

// asSubmissionFailed keeps processor errors that already carry the failure kind
// and wraps every other error.
func asSubmissionFailed(err error) *ErrSubmissionFailed {
	var failed *ErrSubmissionFailed
	if errors.As(err, &failed) {
		return failed
	}

	return &ErrSubmissionFailed{Err: err}
}
