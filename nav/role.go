package nav

import (
	"fmt"
	"strings"
)

// Role is the access tier of a session. Roles are mutually exclusive; none
// implies another.
type Role uint8

const (
	Anonymous Role = iota
	Customer
	Subcontractor
	Administrator
)

var roleNames = [...]string{
	Anonymous:     "anonymous",
	Customer:      "customer",
	Subcontractor: "subcontractor",
	Administrator: "administrator",
}

// ErrUnknownRole is returned when a role name cannot be parsed.
type ErrUnknownRole struct {
	Name string
}

func (e *ErrUnknownRole) Error() string {
	return fmt.Sprintf("nav: unknown role %q", e.Name)
}

// ParseRole parses a role name. The empty string is Anonymous.
func ParseRole(name string) (Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Anonymous, nil
	}

	for r, n := range roleNames {
		if n == name {
			return Role(r), nil
		}
	}

	// Short form used by session payloads.
	if name == "admin" {
		return Administrator, nil
	}

	return Anonymous, &ErrUnknownRole{Name: name}
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}

	return fmt.Sprintf("role(%d)", r)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}
