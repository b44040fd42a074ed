package server

import (
	"errors"
	"sync"
	"time"

	"github.com/enetx/g"
	"github.com/enetx/wizard"
	"github.com/google/uuid"
)

// Session limits applied when Options leaves them unset.
const (
	DefaultSessionTTL          = 30 * time.Minute
	DefaultMaxSessions         = 10000
	DefaultMaxSessionsPerOwner = 20
)

var (
	errTooManySessions = errors.New("too many live sessions")
	errOwnerLimit      = errors.New("too many live sessions for this user")
)

// session is one live wizard. Sessions live in memory only and are dropped
// when the client navigates away, when idle for longer than the store TTL,
// or when the server stops.
type session struct {
	wizard.Flow

	ID      g.String
	Kind    g.String
	Owner   g.String
	Created time.Time

	touched time.Time // guarded by store.mu
}

type store struct {
	mu       sync.RWMutex
	sessions g.Map[g.String, *session]

	ttl      time.Duration
	max      int
	perOwner int
	now      func() time.Time
}

func newStore(ttl time.Duration, total, perOwner int) *store {
	return &store{
		sessions: g.NewMap[g.String, *session](),
		ttl:      ttl,
		max:      total,
		perOwner: perOwner,
		now:      time.Now,
	}
}

// add registers a new session after evicting idle ones. It fails when the
// global or per-owner limit is reached.
func (s *store) add(flow, owner g.String, w wizard.Flow) (*session, error) {
	s.sweep()

	now := s.now()

	sess := &session{
		Flow:    w,
		ID:      g.String(uuid.NewString()),
		Kind:    flow,
		Owner:   owner,
		Created: now,
		touched: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.max {
		return nil, errTooManySessions
	}

	owned := 0
	for _, other := range s.sessions {
		if other.Owner == owner {
			owned++
		}
	}

	if owned >= s.perOwner {
		return nil, errOwnerLimit
	}

	s.sessions[sess.ID] = sess

	return sess, nil
}

// get returns the session only to its owner and only under its flow, and
// marks it as used.
func (s *store) get(flow, id, owner g.String) g.Option[*session] {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Kind != flow || sess.Owner != owner {
		return g.None[*session]()
	}

	sess.touched = s.now()

	return g.Some(sess)
}

func (s *store) remove(id g.String) g.Option[*session] {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return g.None[*session]()
	}

	delete(s.sessions, id)

	return g.Some(sess)
}

func (s *store) list() g.Slice[*session] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(g.Slice[*session], 0, len(s.sessions))
	for _, sess := range s.sessions {
		out.Push(sess)
	}

	return out
}

// sweep removes sessions idle for longer than the TTL and resets them,
// cancelling in-flight processing. It returns the number evicted.
func (s *store) sweep() int {
	deadline := s.now().Add(-s.ttl)

	var expired g.Slice[*session]

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.touched.Before(deadline) {
			expired.Push(sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Reset()
	}

	return len(expired)
}

// clear resets every session, cancelling in-flight processing, and empties the store.
func (s *store) clear() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = g.NewMap[g.String, *session]()
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Reset()
	}
}
