package http

import (
	"github.com/reservut/room-reservation/internal/role"
	"github.com/reservut/room-reservation/internal/roompolicy"
)

// PolicyBody is one room entry in a policy payload. allowedRoles is
// accepted for older clients.
type PolicyBody struct {
	Name            string   `json:"name"`
	AllowedRoles    []string `json:"allowed_roles"`
	AllowedRolesAlt []string `json:"allowedRoles,omitempty"`
}

// ReplacePoliciesRequest defines the payload for PUT /room-policies.
// policies is accepted as an alias of rooms.
type ReplacePoliciesRequest struct {
	Rooms    []PolicyBody `json:"rooms"`
	Policies []PolicyBody `json:"policies,omitempty"`
}

// ToPolicies converts the payload to domain policies. A missing rooms list
// stays nil so the service can reject it.
func (r *ReplacePoliciesRequest) ToPolicies() []roompolicy.Policy {
	rooms := r.Rooms
	if rooms == nil {
		rooms = r.Policies
	}
	if rooms == nil {
		return nil
	}
	out := make([]roompolicy.Policy, len(rooms))
	for i, p := range rooms {
		names := p.AllowedRoles
		if names == nil {
			names = p.AllowedRolesAlt
		}
		roles := make([]role.Role, len(names))
		for j, name := range names {
			roles[j] = role.Role(name)
		}
		out[i] = roompolicy.Policy{Name: p.Name, AllowedRoles: roles}
	}
	return out
}

type PolicyResponse struct {
	Name         string   `json:"name"`
	AllowedRoles []string `json:"allowed_roles"`
}

func NewPolicyResponse(p roompolicy.Policy) PolicyResponse {
	roles := make([]string, len(p.AllowedRoles))
	for i, r := range p.AllowedRoles {
		roles[i] = string(r)
	}
	return PolicyResponse{Name: p.Name, AllowedRoles: roles}
}

// RoomsResponse lists the rooms the caller's role may book.
type RoomsResponse struct {
	Role  string   `json:"role"`
	Rooms []string `json:"rooms"`
}
