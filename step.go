package wizard

import (
	"fmt"
	"io"

	"github.com/enetx/g"
	"gopkg.in/yaml.v3"
)

type (
	// Step is one unit of a wizard's ordered question sequence.
	//
	// A step with Options offers a choice between labels; the option order is
	// the display order. A step without Options is free-form and is answered
	// with a Record. Fields names the record entries the collaborator must fill
	// before answering; the engine itself never inspects them.
	Step struct {
		ID      g.String          `json:"id"                yaml:"id"`
		Prompt  g.String          `json:"prompt"            yaml:"prompt"`
		Options g.Slice[g.String] `json:"options,omitempty" yaml:"options,omitempty"`
		Fields  g.Slice[g.String] `json:"fields,omitempty"  yaml:"fields,omitempty"`
	}

	// Record is the structured answer of a free-form step.
	Record = g.Map[g.String, g.String]

	// Steps is a validated, ordered, non-empty step set with unique IDs.
	// Positions are 1-based.
	Steps struct {
		list  g.Slice[Step]
		index g.Map[g.String, int]
	}
)

// NewSteps validates steps and returns them as an ordered set.
func NewSteps(steps ...Step) (Steps, error) {
	if len(steps) == 0 {
		return Steps{}, ErrNoSteps
	}

	s := Steps{
		list:  make(g.Slice[Step], 0, len(steps)),
		index: g.NewMap[g.String, int](),
	}

	for i, step := range steps {
		if step.ID == "" {
			return Steps{}, &ErrEmptyStepID{Position: i + 1}
		}

		if s.index.Contains(step.ID) {
			return Steps{}, &ErrDuplicateStep{ID: step.ID}
		}

		s.list.Push(step)
		s.index[step.ID] = i + 1
	}

	return s, nil
}

// MustSteps is like NewSteps but panics on an invalid set. It is meant for
// static step definitions declared at package level.
func MustSteps(steps ...Step) Steps {
	s, err := NewSteps(steps...)
	if err != nil {
		panic(err)
	}

	return s
}

// LoadSteps reads a YAML sequence of steps.
func LoadSteps(r io.Reader) (Steps, error) {
	var steps []Step
	if err := yaml.NewDecoder(r).Decode(&steps); err != nil {
		return Steps{}, fmt.Errorf("failed to decode steps: %w", err)
	}

	return NewSteps(steps...)
}

// Len returns the number of steps.
func (s Steps) Len() int { return int(s.list.Len()) }

// At returns the step at the 1-based position i.
func (s Steps) At(i int) Step { return s.list[i-1] }

// Position returns the 1-based position of the step with the given id, or 0.
func (s Steps) Position(id g.String) int { return s.index[id] }

// Lookup returns the step with the given id.
func (s Steps) Lookup(id g.String) g.Option[Step] {
	if i := s.Position(id); i > 0 {
		return g.Some(s.At(i))
	}

	return g.None[Step]()
}

// All returns a copy of the steps in traversal order.
func (s Steps) All() g.Slice[Step] { return s.list.Clone() }

// FreeForm reports whether the step is answered with a Record instead of an option.
func (s Step) FreeForm() bool { return s.Options.Empty() }

// Accepts checks value against the declared options. Free-form steps accept anything.
func (s Step) Accepts(value any) error {
	if s.FreeForm() {
		return nil
	}

	var label g.String

	switch v := value.(type) {
	case g.String:
		label = v
	case string:
		label = g.String(v)
	default:
		return &ErrInvalidOption{Step: s.ID, Value: value}
	}

	if !s.Options.Contains(label) {
		return &ErrInvalidOption{Step: s.ID, Value: value}
	}

	return nil
}

// Missing returns the required fields of a free-form step that are blank in record.
// Collaborators call it before RecordAnswer to gate advancement.
func (s Step) Missing(record Record) g.Slice[g.String] {
	var missing g.Slice[g.String]

	for _, field := range s.Fields {
		if record[field].Trim() == "" {
			missing.Push(field)
		}
	}

	return missing
}
