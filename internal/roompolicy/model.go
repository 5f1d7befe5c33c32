package roompolicy

import (
	"net/http"
	"strings"

	"github.com/reservut/room-reservation/internal/pkg/apperror"
	"github.com/reservut/room-reservation/internal/role"
)

var (
	ErrEmptyPolicies = apperror.NewWithReason(http.StatusBadRequest, "missing_policies", "policies payload is required")
)

// Policy lists the roles permitted to book a room.
type Policy struct {
	Name         string      `yaml:"name"`
	AllowedRoles []role.Role `yaml:"allowed_roles"`
}

// Allows reports whether r may book the room.
func (p Policy) Allows(r role.Role) bool {
	for _, allowed := range p.AllowedRoles {
		if allowed == r {
			return true
		}
	}
	return false
}

// DefaultPolicies is the built-in room set.
func DefaultPolicies() []Policy {
	return []Policy{
		{Name: "Meeting Room", AllowedRoles: []role.Role{role.Student, role.CEO, role.Guide, role.HeadAdmin}},
		{Name: "Session Room", AllowedRoles: []role.Role{role.CEO, role.Guide, role.HeadAdmin}},
		{Name: "The Stage", AllowedRoles: []role.Role{role.CEO, role.Guide, role.HeadAdmin}},
		{Name: "The Aquarium", AllowedRoles: []role.Role{role.Student, role.CEO, role.HeadAdmin}},
		{Name: "Panda Room", AllowedRoles: []role.Role{role.CEO, role.HeadAdmin}},
		{Name: "P159", AllowedRoles: []role.Role{role.CEO, role.HeadAdmin}},
	}
}

// Sanitize normalizes an untrusted policy list. Names are trimmed; blank and
// duplicate names are dropped. Role names are normalized and unknown or
// repeated roles are dropped. Policies left without roles are dropped.
// Order is preserved.
func Sanitize(in []Policy) []Policy {
	seen := make(map[string]struct{}, len(in))
	out := make([]Policy, 0, len(in))

	for _, p := range in {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}

		roleSeen := make(map[role.Role]struct{}, len(p.AllowedRoles))
		roles := make([]role.Role, 0, len(p.AllowedRoles))
		for _, raw := range p.AllowedRoles {
			r, err := role.Parse(string(raw))
			if err != nil {
				continue
			}
			if _, dup := roleSeen[r]; dup {
				continue
			}
			roleSeen[r] = struct{}{}
			roles = append(roles, r)
		}
		if len(roles) == 0 {
			continue
		}

		seen[name] = struct{}{}
		out = append(out, Policy{Name: name, AllowedRoles: roles})
	}
	return out
}

func clonePolicies(in []Policy) []Policy {
	out := make([]Policy, len(in))
	for i, p := range in {
		out[i] = Policy{Name: p.Name, AllowedRoles: append([]role.Role(nil), p.AllowedRoles...)}
	}
	return out
}
