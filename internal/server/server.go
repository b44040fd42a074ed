// Package server exposes the wizards over a JSON HTTP API. Every request is
// authorized against the navigation table before it reaches a handler.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/enetx/g"
	"github.com/enetx/wizard/advisor"
	"github.com/enetx/wizard/intake"
	"github.com/enetx/wizard/nav"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server. Zero fields take defaults.
type Options struct {
	// Pages is the navigation table of the client application. DefaultTable when nil.
	Pages *nav.Table

	// Session derives the caller's session. HeaderSession when nil.
	Session nav.SessionFunc

	Advisor *advisor.Recommender
	Intake  *intake.Client
	Logger  *slog.Logger

	// Context bounds processor calls of every session. Background when nil.
	Context context.Context

	// SessionTTL is how long a session may stay untouched before it is
	// dropped. DefaultSessionTTL when zero.
	SessionTTL time.Duration

	// MaxSessions caps live sessions in total, MaxSessionsPerOwner per
	// caller. Defaults apply when zero.
	MaxSessions         int
	MaxSessionsPerOwner int
}

// Server serves wizard sessions.
type Server struct {
	pages   *nav.Table
	api     *nav.Table
	session nav.SessionFunc
	flows   g.Map[g.String, factory]
	store   *store
	log     *slog.Logger
	ctx     context.Context
}

// New creates a server.
func New(opts Options) *Server {
	if opts.Pages == nil {
		opts.Pages = nav.DefaultTable()
	}

	if opts.Session == nil {
		opts.Session = nav.HeaderSession
	}

	if opts.Advisor == nil {
		opts.Advisor = advisor.NewRecommender()
	}

	if opts.Intake == nil {
		opts.Intake = intake.NewClient("http://localhost:8081/api/onboarding")
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Context == nil {
		opts.Context = context.Background()
	}

	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}

	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}

	if opts.MaxSessionsPerOwner <= 0 {
		opts.MaxSessionsPerOwner = DefaultMaxSessionsPerOwner
	}

	return &Server{
		pages:   opts.Pages,
		api:     apiTable(opts.Pages),
		session: opts.Session,
		flows:   flows(opts.Advisor, opts.Intake),
		store:   newStore(opts.SessionTTL, opts.MaxSessions, opts.MaxSessionsPerOwner),
		log:     opts.Logger.With("component", "server"),
		ctx:     opts.Context,
	}
}

// apiTable extends the page table with the API routes. Wizard flows are public
// like the pages hosting them; the session overview is for administrators.
func apiTable(pages *nav.Table) *nav.Table {
	t := nav.NewTable(pages.Login, pages.Unauthorized)
	t.Routes = pages.Routes.Clone()

	return t.
		Public(
			"/api/flows",
			"/api/nav",
			"/api/"+FlowAdvisor+"/*",
			"/api/"+FlowOnboarding+"/*",
		).
		For(nav.Administrator, "/api/admin/sessions")
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/flows", s.handleFlows)
	mux.HandleFunc("GET /api/nav", s.handleNav)
	mux.HandleFunc("GET /api/admin/sessions", s.handleAdminSessions)

	mux.HandleFunc("GET /api/{flow}/graph", s.handleGraph)
	mux.HandleFunc("POST /api/{flow}/sessions", s.handleCreate)
	mux.HandleFunc("GET /api/{flow}/sessions/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/{flow}/sessions/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/{flow}/sessions/{id}/answer", s.handleAnswer)
	mux.HandleFunc("POST /api/{flow}/sessions/{id}/back", s.handleBack)
	mux.HandleFunc("POST /api/{flow}/sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("POST /api/{flow}/sessions/{id}/retry", s.handleRetry)

	return s.logRequests(nav.Middleware(s.api, s.session)(mux))
}

// Run serves on addr until ctx is done, then shuts down and drops every session.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve is like Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()

	go s.sweepLoop(sweepCtx)

	s.log.Info("serving wizard API", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		s.store.clear()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.store.clear()

	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.log.Info("wizard API stopped")

	return nil
}

// sweepLoop evicts idle sessions until ctx is done.
func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(max(s.store.ttl/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.store.sweep(); n > 0 {
				s.log.Info("evicted idle wizard sessions", "count", n)
			}
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"took", time.Since(start),
		)
	})
}
