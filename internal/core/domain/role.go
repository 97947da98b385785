package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the closed set of authorization labels a user can carry.
// RoleNone is the zero value and never grants anything.
type Role uint8

const (
	RoleNone Role = iota
	RoleUser
	RoleAdmin
	RoleSuperAdmin
)

var roleNames = map[Role]string{
	RoleUser:       "User",
	RoleAdmin:      "Admin",
	RoleSuperAdmin: "Super Admin",
}

// String returns the wire name of the role, or "" for RoleNone.
func (r Role) String() string {
	return roleNames[r]
}

// ParseRole maps a role name to a Role. Matching ignores case, spaces,
// underscores and dashes, so "Super Admin", "super_admin" and "SuperAdmin"
// are the same role. Unknown names return RoleNone and false.
func ParseRole(name string) (Role, bool) {
	switch normalizeRoleName(name) {
	case "user":
		return RoleUser, true
	case "admin":
		return RoleAdmin, true
	case "superadmin":
		return RoleSuperAdmin, true
	default:
		return RoleNone, false
	}
}

func normalizeRoleName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

// MarshalJSON encodes RoleNone as null and every other role by name.
func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts the role shapes the remote service has been seen to
// return: null, a bare name, {"name": ...} and the populated relation
// {"data": {"attributes": {"name": ...}}}. Unknown names decode to RoleNone.
func (r *Role) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = RoleNone
		return nil
	}

	var name string
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
	case '{':
		var obj struct {
			Name string `json:"name"`
			Data *struct {
				Attributes struct {
					Name string `json:"name"`
				} `json:"attributes"`
			} `json:"data"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		name = obj.Name
		if name == "" && obj.Data != nil {
			name = obj.Data.Attributes.Name
		}
	default:
		return fmt.Errorf("role: unsupported JSON value %s", data)
	}

	*r, _ = ParseRole(name)
	return nil
}

// RoleSet is an allow-list of roles. The empty set means "any authenticated
// user" when used as a route requirement.
type RoleSet uint8

// Roles builds a RoleSet. RoleNone is ignored.
func Roles(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		if r == RoleNone {
			continue
		}
		s |= 1 << r
	}
	return s
}

// Contains reports whether r is in the set. RoleNone is never contained.
func (s RoleSet) Contains(r Role) bool {
	if r == RoleNone {
		return false
	}
	return s&(1<<r) != 0
}

func (s RoleSet) Empty() bool { return s == 0 }

// List returns the members in declaration order.
func (s RoleSet) List() []Role {
	var out []Role
	for _, r := range []Role{RoleUser, RoleAdmin, RoleSuperAdmin} {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}
