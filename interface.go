package wizard

import (
	"context"

	"github.com/enetx/g"
)

// Flow is the payload-independent surface of an Engine, for collaborators that
// drive several kinds of wizards uniformly.
type Flow interface {
	RecordAnswer(g.String, any) error
	GoBack() error
	Reset()
	Retry() error
	CurrentStep() (Step, error)
	Progress() float64
	Phase() Phase
	Index() int
	Len() int
	Err() error
	Snapshot() State
	Wait(context.Context) (Phase, error)
	ToDOT() g.String
	MarshalJSON() ([]byte, error)
}
