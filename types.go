package wizard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/enetx/g"
)

type (
	// Phase is the coarse lifecycle stage of a wizard instance.
	Phase g.String
	// event drives a phase transition of the internal machine.
	event g.String

	// TransitionHook is called after the engine moved from one phase to another.
	// It runs outside the engine lock, so it may safely read the engine.
	TransitionHook func(from, to Phase)

	// Option configures an Engine at construction time.
	Option func(*options)

	options struct {
		ctx    context.Context
		logger *slog.Logger
		hooks  g.Slice[TransitionHook]
	}

	// transition is an internal struct representing a possible path between phases.
	transition struct {
		event event
		to    Phase
		guard func() bool
	}

	// machine is the phase state machine shared by every engine instance.
	machine struct {
		initial     Phase
		current     Phase
		history     g.Slice[Phase]
		transitions g.Map[Phase, g.Slice[transition]]
	}

	// change records a completed phase transition waiting to be dispatched to hooks.
	change struct {
		from, to Phase
	}

	// Engine drives one wizard instance: an ordered set of steps, the answers
	// recorded so far and the terminal processing phase.
	//
	// All methods are safe for concurrent use. The processor runs on its own
	// goroutine and its resolution is applied under the engine lock.
	Engine[R any] struct {
		steps     Steps
		processor Processor[R]
		opts      options
		log       *slog.Logger

		index   int
		answers Answers
		phase   *machine
		result  g.Option[R]
		err     error

		gen     uint64
		cancel  context.CancelFunc
		settled chan struct{}

		mu sync.RWMutex
	}
)

const (
	PhaseCollecting Phase = "collecting"
	PhaseProcessing Phase = "processing"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

const (
	eventSubmit  event = "submit"
	eventResolve event = "resolve"
	eventReject  event = "reject"
	eventRetry   event = "retry"
	eventReset   event = "reset"
)

// Terminal reports whether no further transition can happen without Reset or Retry.
func (p Phase) Terminal() bool { return p == PhaseComplete || p == PhaseFailed }

// WithLogger sets the logger used for phase and processor diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithContext sets the parent context of every processor invocation.
// Cancelling it cancels in-flight processing.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// OnTransition registers a hook observing phase changes.
func OnTransition(hook TransitionHook) Option {
	return func(o *options) { o.hooks.Push(hook) }
}
