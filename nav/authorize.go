// Package nav decides, for every navigation attempt, whether the current
// session may render the requested view, must be redirected to login or to an
// unauthorized page, or gets a not-found page.
//
// Decisions are pure functions of an explicit Context; nothing is read from
// ambient session state.
package nav

import "github.com/enetx/g"

// Context is the session snapshot a decision is made for. It is derived per
// navigation event and never stored.
type Context struct {
	Authenticated bool
	Role          Role
	Path          g.String
}

// Outcome is what the routing collaborator must do with a navigation.
type Outcome uint8

const (
	Allow Outcome = iota
	RedirectToLogin
	RedirectToUnauthorized
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToUnauthorized:
		return "redirect-to-unauthorized"
	case NotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Decision is the result of an authorization check. Path is always the
// originally requested path so a redirect can return the user to it.
type Decision struct {
	Outcome Outcome                   `json:"outcome"`
	Path    g.String                  `json:"path"`
	Params  g.Map[g.String, g.String] `json:"params,omitempty"`
}

// Allowed reports whether the view may render.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Authorize maps a session snapshot and a view requirement to a decision:
//
//  1. public views are always allowed;
//  2. otherwise unauthenticated sessions go to login;
//  3. authenticated-only views are allowed;
//  4. role views are allowed only for a listed role, otherwise unauthorized.
//
// A view without a declared requirement is never allowed.
func Authorize(ctx Context, req Requirement) Decision {
	d := Decision{Path: ctx.Path}

	switch {
	case !req.IsSet():
		d.Outcome = RedirectToUnauthorized
	case req.IsPublic():
		d.Outcome = Allow
	case !ctx.Authenticated:
		d.Outcome = RedirectToLogin
	case req.Permits(ctx.Role):
		d.Outcome = Allow
	default:
		d.Outcome = RedirectToUnauthorized
	}

	return d
}
