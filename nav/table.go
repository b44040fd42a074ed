package nav

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/enetx/g"
	"gopkg.in/yaml.v3"
)

type (
	// Route binds a path pattern to the requirement of the view behind it.
	// Segments starting with ':' capture one path segment; a trailing '*'
	// matches the rest of the path.
	Route struct {
		Pattern g.String    `yaml:"path"`
		Require Requirement `yaml:"require"`
	}

	// Match is a route matched against a concrete path.
	Match struct {
		Route  Route
		Params g.Map[g.String, g.String]
	}

	// Table is an ordered route table. The first matching route wins, so
	// static routes must precede parametrised siblings.
	Table struct {
		Login        g.String       `yaml:"login"`
		Unauthorized g.String       `yaml:"unauthorized"`
		Routes       g.Slice[Route] `yaml:"routes"`
	}
)

// NewTable creates an empty table redirecting to the given login and
// unauthorized pages.
func NewTable(login, unauthorized g.String) *Table {
	return &Table{Login: login, Unauthorized: unauthorized}
}

// LoadTable reads a route table from YAML.
func LoadTable(r io.Reader) (*Table, error) {
	var t Table
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode route table: %w", err)
	}

	if t.Login == "" {
		return nil, fmt.Errorf("nav: route table has no login page")
	}

	if t.Unauthorized == "" {
		t.Unauthorized = t.Login
	}

	for i, route := range t.Routes {
		if route.Pattern == "" {
			return nil, fmt.Errorf("nav: route %d has no path", i+1)
		}

		if !route.Require.IsSet() {
			return nil, fmt.Errorf("nav: route %q has no requirement", route.Pattern)
		}
	}

	return &t, nil
}

// Route appends a route.
func (t *Table) Route(pattern g.String, req Requirement) *Table {
	t.Routes.Push(Route{Pattern: pattern, Require: req})
	return t
}

// Public appends public routes.
func (t *Table) Public(patterns ...g.String) *Table { return t.each(Public, patterns) }

// Protected appends routes for any authenticated session.
func (t *Table) Protected(patterns ...g.String) *Table { return t.each(Authenticated, patterns) }

// For appends routes restricted to one role.
func (t *Table) For(role Role, patterns ...g.String) *Table { return t.each(RoleOf(role), patterns) }

func (t *Table) each(req Requirement, patterns []g.String) *Table {
	for _, p := range patterns {
		t.Route(p, req)
	}

	return t
}

// Match returns the first route matching path. Query strings and trailing
// slashes are ignored.
func (t *Table) Match(path g.String) g.Option[Match] {
	segments := split(path)

	for _, route := range t.Routes {
		if params, ok := match(split(route.Pattern), segments); ok {
			return g.Some(Match{Route: route, Params: params})
		}
	}

	return g.None[Match]()
}

// Authorize resolves ctx.Path against the table and authorizes it. Unknown
// paths yield NotFound.
func (t *Table) Authorize(ctx Context) Decision {
	m := t.Match(ctx.Path)
	if m.IsNone() {
		return Decision{Outcome: NotFound, Path: ctx.Path}
	}

	d := Authorize(ctx, m.Some().Route.Require)
	d.Params = m.Some().Params

	return d
}

// Location returns where a redirect decision sends the user, carrying the
// requested path in the next query parameter. Other outcomes have no location.
func (t *Table) Location(d Decision) g.String {
	var target g.String

	switch d.Outcome {
	case RedirectToLogin:
		target = t.Login
	case RedirectToUnauthorized:
		target = t.Unauthorized
	default:
		return ""
	}

	return target + "?next=" + g.String(url.QueryEscape(string(d.Path)))
}

func split(path g.String) []string {
	p, _, _ := strings.Cut(string(path), "?")
	p = strings.Trim(p, "/")

	if p == "" {
		return nil
	}

	return strings.Split(p, "/")
}

func match(pattern, segments []string) (g.Map[g.String, g.String], bool) {
	params := g.NewMap[g.String, g.String]()

	for i, seg := range pattern {
		if seg == "*" && i == len(pattern)-1 {
			params["*"] = g.String(strings.Join(segments[min(i, len(segments)):], "/"))
			return params, true
		}

		if i >= len(segments) {
			return nil, false
		}

		switch {
		case strings.HasPrefix(seg, ":"):
			params[g.String(seg[1:])] = g.String(segments[i])
		case seg != segments[i]:
			return nil, false
		}
	}

	if len(pattern) != len(segments) {
		return nil, false
	}

	return params, true
}
