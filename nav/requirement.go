package nav

import (
	"fmt"
	"strings"

	"github.com/enetx/g"
	"gopkg.in/yaml.v3"
)

type requirementKind uint8

const (
	kindUnset requirementKind = iota
	kindPublic
	kindAuthenticated
	kindRoles
)

// Requirement is the access tier a navigable view declares. It is a closed
// variant: Public, Authenticated, or a set of acceptable roles built with
// RoleOf or AnyRole. The zero value is unset and permits nobody.
type Requirement struct {
	kind  requirementKind
	roles g.Slice[Role]
}

var (
	// Public views render for every session.
	Public = Requirement{kind: kindPublic}
	// Authenticated views render for any signed-in session regardless of role.
	Authenticated = Requirement{kind: kindAuthenticated}
)

// RoleOf requires exactly the given role.
func RoleOf(role Role) Requirement {
	return Requirement{kind: kindRoles, roles: g.SliceOf(role)}
}

// AnyRole requires one of the listed roles. With no roles it behaves like
// Authenticated.
func AnyRole(roles ...Role) Requirement {
	if len(roles) == 0 {
		return Authenticated
	}

	return Requirement{kind: kindRoles, roles: g.SliceOf(roles...)}
}

// Permits reports whether role satisfies a role requirement. Public and
// Authenticated requirements permit every role; an unset one permits none.
func (q Requirement) Permits(role Role) bool {
	switch q.kind {
	case kindUnset:
		return false
	case kindRoles:
		return q.roles.Contains(role)
	default:
		return true
	}
}

// IsPublic reports whether q is the Public requirement.
func (q Requirement) IsPublic() bool { return q.kind == kindPublic }

// IsSet reports whether q was declared, i.e. is not the zero Requirement.
func (q Requirement) IsSet() bool { return q.kind != kindUnset }

func (q Requirement) String() string {
	switch q.kind {
	case kindUnset:
		return "unset"
	case kindPublic:
		return "public"
	case kindAuthenticated:
		return "authenticated"
	}

	if q.roles.Len() == 1 {
		return "role=" + q.roles[0].String()
	}

	names := make([]string, 0, q.roles.Len())
	for _, r := range q.roles {
		names = append(names, r.String())
	}

	return "roles=" + strings.Join(names, ",")
}

// ErrInvalidRequirement is returned when a requirement string cannot be parsed.
type ErrInvalidRequirement struct {
	Text string
	Err  error
}

func (e *ErrInvalidRequirement) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nav: invalid requirement %q: %v", e.Text, e.Err)
	}

	return fmt.Sprintf("nav: invalid requirement %q", e.Text)
}

func (e *ErrInvalidRequirement) Unwrap() error { return e.Err }

// ParseRequirement parses "public", "authenticated", "role=<role>" or
// "roles=<role>,<role>".
func ParseRequirement(text string) (Requirement, error) {
	s := strings.ToLower(strings.TrimSpace(text))

	switch s {
	case "public":
		return Public, nil
	case "authenticated":
		return Authenticated, nil
	}

	key, value, ok := strings.Cut(s, "=")
	if !ok || (key != "role" && key != "roles") || value == "" {
		return Requirement{}, &ErrInvalidRequirement{Text: text}
	}

	var roles []Role

	for name := range strings.SplitSeq(value, ",") {
		role, err := ParseRole(name)
		if err != nil {
			return Requirement{}, &ErrInvalidRequirement{Text: text, Err: err}
		}

		roles = append(roles, role)
	}

	if key == "role" && len(roles) != 1 {
		return Requirement{}, &ErrInvalidRequirement{Text: text}
	}

	return AnyRole(roles...), nil
}

// MarshalText implements encoding.TextMarshaler.
func (q Requirement) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Requirement) UnmarshalText(text []byte) error {
	parsed, err := ParseRequirement(string(text))
	if err != nil {
		return err
	}

	*q = parsed

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (q *Requirement) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return err
	}

	return q.UnmarshalText([]byte(text))
}
