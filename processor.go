package wizard

import "context"

// Processor is the terminal computation of a wizard. It is invoked once per
// entry into the processing phase with a snapshot of every answer and returns
// either a payload or a failure reason.
type Processor[R any] interface {
	Process(ctx context.Context, answers Answers) (R, error)
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc[R any] func(ctx context.Context, answers Answers) (R, error)

// Process calls f(ctx, answers).
func (f ProcessorFunc[R]) Process(ctx context.Context, answers Answers) (R, error) {
	return f(ctx, answers)
}
