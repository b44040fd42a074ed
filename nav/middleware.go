package nav

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/enetx/g"
)

const (
	// HeaderUser carries the authenticated user ID set by the upstream auth layer.
	HeaderUser = "X-Auth-User"
	// HeaderRole carries the role of the authenticated user.
	HeaderRole = "X-Auth-Role"
)

type decisionKey struct{}

// SessionFunc derives the session snapshot of a request. Path is filled in by
// the middleware.
type SessionFunc func(*http.Request) Context

// HeaderSession reads the session from HeaderUser and HeaderRole. A request
// without a user is anonymous; an unknown role leaves the session signed in
// but without any role-specific access.
func HeaderSession(r *http.Request) Context {
	user := strings.TrimSpace(r.Header.Get(HeaderUser))
	if user == "" {
		return Context{Role: Anonymous}
	}

	role, err := ParseRole(r.Header.Get(HeaderRole))
	if err != nil {
		slog.Debug("ignoring unknown session role", "component", "nav", "err", err)
	}

	return Context{Authenticated: true, Role: role}
}

// Middleware honours table decisions before a handler renders: allowed
// requests pass through with the decision attached to the request context,
// redirects answer 302 for browsers and 401/403 for JSON clients, unknown
// paths answer 404.
func Middleware(table *Table, session SessionFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := session(r)
			ctx.Path = g.String(r.URL.Path)

			d := table.Authorize(ctx)

			switch d.Outcome {
			case Allow:
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), decisionKey{}, d)))
			case NotFound:
				http.NotFound(w, r)
			default:
				location := string(table.Location(d))

				if !wantsJSON(r) {
					http.Redirect(w, r, location, http.StatusFound)
					return
				}

				status := http.StatusForbidden
				if d.Outcome == RedirectToLogin {
					status = http.StatusUnauthorized
				}

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Location", location)
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(d)
			}
		})
	}
}

// FromRequest returns the decision the middleware attached to r.
func FromRequest(r *http.Request) g.Option[Decision] {
	if d, ok := r.Context().Value(decisionKey{}).(Decision); ok {
		return g.Some(d)
	}

	return g.None[Decision]()
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}
