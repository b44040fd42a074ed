package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/enetx/g"
	"github.com/enetx/wizard"
	"github.com/enetx/wizard/nav"
)

// maxWait bounds the wait query parameter of GET session.
const maxWait = 30 * time.Second

type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type sessionView struct {
	ID   g.String `json:"id"`
	Flow g.String `json:"flow"`
	wizard.State
}

type answerRequest struct {
	Step  g.String `json:"step"`
	Value any      `json:"value"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, apiError{Error: err.Error(), Kind: kind})
}

// writeWizardError maps engine errors to statuses: phase conflicts are 409,
// answers that do not fit the current step are 422.
func writeWizardError(w http.ResponseWriter, err error) {
	var (
		phase  *wizard.ErrInvalidPhase
		rng    *wizard.ErrOutOfRange
		step   *wizard.ErrInvalidStep
		option *wizard.ErrInvalidOption
	)

	switch {
	case errors.As(err, &phase):
		writeError(w, http.StatusConflict, "invalid_phase", err)
	case errors.As(err, &rng):
		writeError(w, http.StatusConflict, "out_of_range", err)
	case errors.As(err, &step):
		writeError(w, http.StatusUnprocessableEntity, "invalid_step", err)
	case errors.As(err, &option):
		writeError(w, http.StatusUnprocessableEntity, "invalid_option", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

func view(sess *session) sessionView {
	return sessionView{ID: sess.ID, Flow: sess.Kind, State: sess.Snapshot()}
}

func owner(r *http.Request) g.String {
	return g.String(strings.TrimSpace(r.Header.Get(nav.HeaderUser)))
}

// lookup resolves the session addressed by the request or answers 404.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) g.Option[*session] {
	sess := s.store.get(g.String(r.PathValue("flow")), g.String(r.PathValue("id")), owner(r))
	if sess.IsNone() {
		writeError(w, http.StatusNotFound, "not_found", errors.New("session not found"))
	}

	return sess
}

func (s *Server) handleFlows(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(s.flows))
	for name := range s.flows {
		names = append(names, string(name))
	}

	slices.Sort(names)

	writeJSON(w, http.StatusOK, map[string]any{"flows": names})
}

// handleNav authorizes a client-side navigation against the page table so the
// client router can honour the decision before rendering.
func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("path is required"))
		return
	}

	ctx := s.session(r)
	ctx.Path = g.String(path)

	d := s.pages.Authorize(ctx)

	writeJSON(w, http.StatusOK, struct {
		nav.Decision
		Location g.String `json:"location,omitempty"`
	}{d, s.pages.Location(d)})
}

func (s *Server) handleAdminSessions(w http.ResponseWriter, _ *http.Request) {
	type summary struct {
		ID       g.String     `json:"id"`
		Flow     g.String     `json:"flow"`
		Phase    wizard.Phase `json:"phase"`
		Progress float64      `json:"progress"`
		Created  time.Time    `json:"created"`
	}

	sessions := s.store.list()
	slices.SortFunc(sessions, func(a, b *session) int { return a.Created.Compare(b.Created) })

	out := make([]summary, 0, sessions.Len())
	for _, sess := range sessions {
		out = append(out, summary{
			ID:       sess.ID,
			Flow:     sess.Kind,
			Phase:    sess.Phase(),
			Progress: sess.Progress(),
			Created:  sess.Created,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	create, ok := s.flows[g.String(r.PathValue("flow"))]
	if !ok {
		http.NotFound(w, r)
		return
	}

	flow, err := create(s.ctx, s.log)
	if err != nil {
		writeWizardError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(flow.ToDOT()))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	name := g.String(r.PathValue("flow"))

	create, ok := s.flows[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	flow, err := create(s.ctx, s.log.With("flow", name))
	if err != nil {
		writeWizardError(w, err)
		return
	}

	sess, err := s.store.add(name, owner(r), flow)
	if err != nil {
		flow.Reset()
		s.log.Warn("wizard session refused", "flow", name, "err", err)
		writeError(w, http.StatusTooManyRequests, "too_many_sessions", err)
		return
	}

	s.log.Info("wizard session started", "flow", name, "session", sess.ID)

	writeJSON(w, http.StatusCreated, view(sess))
}

// handleGet returns the session snapshot. With ?wait=<duration> it first
// waits, at most maxWait, for a processing session to settle.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess.IsNone() {
		return
	}

	if raw := r.URL.Query().Get("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("wait must be a non-negative duration"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), min(d, maxWait))
		_, _ = sess.Some().Wait(ctx)
		cancel()
	}

	writeJSON(w, http.StatusOK, view(sess.Some()))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess.IsNone() {
		return
	}

	s.store.remove(sess.Some().ID)
	sess.Some().Reset()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess.IsNone() {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if err := sess.Some().RecordAnswer(req.Step, req.Value); err != nil {
		writeWizardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view(sess.Some()))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(f wizard.Flow) error { return f.GoBack() })
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(f wizard.Flow) error {
		f.Reset()
		return nil
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(f wizard.Flow) error { return f.Retry() })
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op func(wizard.Flow) error) {
	sess := s.lookup(w, r)
	if sess.IsNone() {
		return
	}

	if err := op(sess.Some()); err != nil {
		writeWizardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view(sess.Some()))
}
