// Package wizard provides a generic multi-step interaction engine: an ordered
// set of steps answered one at a time, back-navigation, and a terminal
// asynchronous phase that computes or submits a result from the accumulated
// answers. It is built with types and utilities from the github.com/enetx/g
// library.
package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/enetx/g"
)

// Interface compliance check.
var _ Flow = (*Engine[any])(nil)

// New creates an engine positioned on the first step with no answers.
func New[R any](steps Steps, processor Processor[R], opts ...Option) (*Engine[R], error) {
	if steps.Len() == 0 {
		return nil, ErrNoSteps
	}

	if processor == nil {
		return nil, fmt.Errorf("wizard: processor is required")
	}

	o := options{ctx: context.Background(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine[R]{
		steps:     steps,
		processor: processor,
		opts:      o,
		log:       o.logger.With("component", "wizard"),
		index:     1,
		answers:   Answers{},
		result:    g.None[R](),
	}

	e.phase = newMachine(func() bool { return len(e.answers) == e.steps.Len() })

	return e, nil
}

// RecordAnswer stores value for the current step and advances. Answering the
// last step enters the processing phase and starts the processor.
func (e *Engine[R]) RecordAnswer(id g.String, value any) error {
	e.mu.Lock()

	if e.phase.current != PhaseCollecting {
		defer e.mu.Unlock()
		return &ErrInvalidPhase{Op: "RecordAnswer", Phase: e.phase.current}
	}

	step := e.steps.At(e.index)
	if step.ID != id {
		defer e.mu.Unlock()
		return &ErrInvalidStep{Expected: step.ID, Got: id}
	}

	if err := step.Accepts(value); err != nil {
		defer e.mu.Unlock()
		return err
	}

	e.answers[id] = value

	if e.index < e.steps.Len() {
		e.index++
		e.mu.Unlock()

		return nil
	}

	c, err := e.phase.fire(eventSubmit)
	if err != nil {
		defer e.mu.Unlock()
		return &ErrInvalidPhase{Op: "RecordAnswer", Phase: e.phase.current}
	}

	e.launch()
	e.mu.Unlock()

	e.dispatch(c)

	return nil
}

// GoBack moves to the previous step. The answer of the step being left is kept
// until it is answered again.
func (e *Engine[R]) GoBack() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase.current != PhaseCollecting {
		return &ErrInvalidPhase{Op: "GoBack", Phase: e.phase.current}
	}

	if e.index <= 1 {
		return &ErrOutOfRange{Phase: e.phase.current, Index: e.index - 1, Len: e.steps.Len()}
	}

	e.index--

	return nil
}

// Reset returns the engine to its initial state from any phase. A processor
// call still in flight is cancelled and its eventual resolution discarded.
func (e *Engine[R]) Reset() {
	e.mu.Lock()

	e.invalidate()

	from := e.phase.current
	_, _ = e.phase.fire(eventReset)

	e.index = 1
	e.answers = Answers{}
	e.result = g.None[R]()
	e.err = nil

	e.mu.Unlock()

	e.log.Debug("wizard reset", "from", from)

	if from != PhaseCollecting {
		e.dispatch(change{from: from, to: PhaseCollecting})
	}
}

// Retry re-invokes the processor after a failure, keeping answers and position.
func (e *Engine[R]) Retry() error {
	e.mu.Lock()

	c, err := e.phase.fire(eventRetry)
	if err != nil {
		defer e.mu.Unlock()
		return &ErrInvalidPhase{Op: "Retry", Phase: e.phase.current}
	}

	e.err = nil
	e.launch()
	e.mu.Unlock()

	e.dispatch(c)

	return nil
}

// CurrentStep returns the step awaiting an answer.
func (e *Engine[R]) CurrentStep() (Step, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.phase.current != PhaseCollecting {
		return Step{}, &ErrOutOfRange{Phase: e.phase.current, Index: e.index, Len: e.steps.Len()}
	}

	return e.steps.At(e.index), nil
}

// Progress returns index/N. It is meant for progress indication only.
func (e *Engine[R]) Progress() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return float64(e.index) / float64(e.steps.Len())
}

// Phase returns the current phase.
func (e *Engine[R]) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.phase.current
}

// Index returns the 1-based position of the current step.
func (e *Engine[R]) Index() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.index
}

// Len returns the number of steps.
func (e *Engine[R]) Len() int { return e.steps.Len() }

// Steps returns the step set the engine was built with.
func (e *Engine[R]) Steps() Steps { return e.steps }

// Answers returns a copy of the recorded answers.
func (e *Engine[R]) Answers() Answers {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.answers.Clone()
}

// Answer returns the value recorded for a step.
func (e *Engine[R]) Answer(id g.String) g.Option[any] {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.answers.Get(id)
}

// Result returns the processor payload once the engine is complete.
func (e *Engine[R]) Result() g.Option[R] {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.result
}

// Err returns the retained failure reason while the engine is failed.
func (e *Engine[R]) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.err
}

// History returns a copy of the phases visited since creation or the last reset.
func (e *Engine[R]) History() g.Slice[Phase] {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.phase.history.Clone()
}

// Wait blocks until the engine leaves the processing phase or ctx is done,
// and returns the phase observed at that point.
func (e *Engine[R]) Wait(ctx context.Context) (Phase, error) {
	e.mu.RLock()
	if e.phase.current != PhaseProcessing {
		defer e.mu.RUnlock()
		return e.phase.current, nil
	}

	settled := e.settled
	e.mu.RUnlock()

	select {
	case <-settled:
		return e.Phase(), nil
	case <-ctx.Done():
		return e.Phase(), ctx.Err()
	}
}

// launch starts a processor call for the current answers. Must hold e.mu.
func (e *Engine[R]) launch() {
	e.gen++

	ctx, cancel := context.WithCancel(e.opts.ctx)
	e.cancel = cancel
	e.settled = make(chan struct{})

	go e.run(ctx, e.gen, e.answers.Clone())
}

// invalidate marks the in-flight call stale and wakes waiters. Must hold e.mu.
func (e *Engine[R]) invalidate() {
	e.gen++

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}

	if e.settled != nil {
		close(e.settled)
		e.settled = nil
	}
}

func (e *Engine[R]) run(ctx context.Context, gen uint64, answers Answers) {
	result, err := e.process(ctx, answers)
	e.settle(gen, result, err)
}

// process invokes the processor, recovering from panics.
func (e *Engine[R]) process(ctx context.Context, answers Answers) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ErrCallback{HookType: "Process", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	return e.processor.Process(ctx, answers)
}

// settle applies a processor resolution unless it belongs to a stale call.
func (e *Engine[R]) settle(gen uint64, result R, err error) {
	e.mu.Lock()

	if gen != e.gen {
		e.mu.Unlock()
		e.log.Debug("discarding stale processor resolution", "generation", gen)

		return
	}

	var (
		c    change
		ferr error
	)

	if err != nil {
		e.err = asSubmissionFailed(err)
		c, ferr = e.phase.fire(eventReject)
	} else {
		e.result = g.Some(result)
		c, ferr = e.phase.fire(eventResolve)
	}

	e.cancel()
	e.cancel = nil
	close(e.settled)
	e.settled = nil

	e.mu.Unlock()

	if ferr != nil {
		e.log.Error("processor resolution rejected by phase machine", "err", ferr)
		return
	}

	if err != nil {
		e.log.Warn("wizard processing failed", "err", err)
	}

	e.dispatch(c)
}

// dispatch logs a phase change and notifies hooks. Must not hold e.mu.
func (e *Engine[R]) dispatch(c change) {
	e.log.Debug("wizard phase changed", "from", c.from, "to", c.to)

	for _, hook := range e.opts.hooks {
		if err := e.callHook(hook, c); err != nil {
			e.log.Warn("transition hook failed", "err", err)
		}
	}
}

func (e *Engine[R]) callHook(hook TransitionHook, c change) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ErrCallback{HookType: "OnTransition", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	hook(c.from, c.to)

	return nil
}
