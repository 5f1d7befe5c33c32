// Package role defines the organization roles and the priority table that
// ranks them for reservation pre-emption.
package role

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Role is a role code as stored with users and room policies.
type Role string

const (
	Student   Role = "STUDENT"
	CEO       Role = "CEO"
	Guide     Role = "GUIDE"
	HeadAdmin Role = "HEAD_ADMIN"
)

// All lists the known roles in ascending default priority.
var All = []Role{Student, CEO, Guide, HeadAdmin}

var ErrUnknownRole = errors.New("unknown role")

// Valid reports whether r is one of the known role codes.
func (r Role) Valid() bool {
	for _, known := range All {
		if r == known {
			return true
		}
	}
	return false
}

// Parse accepts both the stored codes and their display names
// ("Head Admin", "Student", ...), case-insensitively.
func Parse(s string) (Role, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	r := Role(norm)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// PriorityTable maps roles to their priority level. Higher levels pre-empt
// lower ones.
type PriorityTable map[Role]int

// DefaultPriorities is the stock ranking.
func DefaultPriorities() PriorityTable {
	return PriorityTable{
		Student:   1,
		CEO:       2,
		Guide:     3,
		HeadAdmin: 4,
	}
}

// Level returns the priority level for r.
func (t PriorityTable) Level(r Role) (int, bool) {
	lvl, ok := t[r]
	return lvl, ok
}

// String renders the table in the same form ParsePriorities accepts,
// ordered by level.
func (t PriorityTable) String() string {
	roles := make([]Role, 0, len(t))
	for r := range t {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool {
		if t[roles[i]] == t[roles[j]] {
			return roles[i] < roles[j]
		}
		return t[roles[i]] < t[roles[j]]
	})

	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = fmt.Sprintf("%s=%d", r, t[r])
	}
	return strings.Join(parts, ",")
}

// ParsePriorities parses "STUDENT=1,CEO=2,..." into a table. Every pair
// must name a known role and a level >= 1.
func ParsePriorities(s string) (PriorityTable, error) {
	t := PriorityTable{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, levelStr, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid priority entry %q: expected ROLE=LEVEL", pair)
		}
		r, err := Parse(name)
		if err != nil {
			return nil, err
		}
		level, err := strconv.Atoi(strings.TrimSpace(levelStr))
		if err != nil {
			return nil, fmt.Errorf("invalid priority level for %s: %w", r, err)
		}
		if level < 1 {
			return nil, fmt.Errorf("priority level for %s must be >= 1, got %d", r, level)
		}
		if _, dup := t[r]; dup {
			return nil, fmt.Errorf("duplicate priority entry for %s", r)
		}
		t[r] = level
	}
	if len(t) == 0 {
		return nil, errors.New("priority table is empty")
	}
	return t, nil
}
