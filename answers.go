package wizard

import (
	"maps"

	"github.com/enetx/g"
)

// Answers maps step IDs to recorded values: an option label for choice steps,
// a Record (or any structured value) for free-form steps.
type Answers g.Map[g.String, any]

// Clone returns a shallow copy safe to hand to another goroutine.
func (a Answers) Clone() Answers {
	if a == nil {
		return Answers{}
	}

	return maps.Clone(a)
}

// Get returns the value recorded for id.
func (a Answers) Get(id g.String) g.Option[any] {
	if v, ok := a[id]; ok {
		return g.Some(v)
	}

	return g.None[any]()
}

// Label returns the option label recorded for id, or "" when the step is
// unanswered or was answered with a structured value.
func (a Answers) Label(id g.String) g.String {
	switch v := a[id].(type) {
	case g.String:
		return v
	case string:
		return g.String(v)
	}

	return ""
}

// Record returns the free-form record recorded for id. Plain string maps, as
// produced by JSON decoding, are converted.
func (a Answers) Record(id g.String) g.Option[Record] {
	switch v := a[id].(type) {
	case Record:
		return g.Some(v)
	case map[string]string:
		rec := make(Record, len(v))
		for k, val := range v {
			rec[g.String(k)] = g.String(val)
		}

		return g.Some(rec)
	case map[string]any:
		rec := make(Record, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				rec[g.String(k)] = g.String(s)
			}
		}

		return g.Some(rec)
	}

	return g.None[Record]()
}
