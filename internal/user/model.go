package user

import (
	"net/http"
	"time"

	"github.com/reservut/room-reservation/internal/pkg/apperror"
	"github.com/reservut/room-reservation/internal/role"
)

var (
	ErrNotFound         = apperror.NewWithReason(http.StatusNotFound, "user_not_found", "user not found")
	ErrEmailRequired    = apperror.NewWithReason(http.StatusBadRequest, "missing_field", "email is required")
	ErrEmailDomain      = apperror.NewWithReason(http.StatusBadRequest, "invalid_email_domain", "an institutional e-mail address is required")
	ErrInvalidRole      = apperror.NewWithReason(http.StatusBadRequest, "invalid_role", "invalid role")
	ErrEmailAlreadyUsed = apperror.NewWithReason(http.StatusConflict, "email_already_used", "email already used")
	ErrVutIDAlreadyUsed = apperror.NewWithReason(http.StatusConflict, "vut_id_already_used", "vut id already used")
	ErrVutIDExhausted   = apperror.NewWithReason(http.StatusConflict, "vut_id_exhausted", "could not allocate a unique vut id")
)

// User represents a member of the organization.
type User struct {
	ID         string // UUID
	Email      string
	VutID      string
	Role       role.Role
	IsVerified bool
	CreatedAt  time.Time
}

// Summary is the owner attribution attached to reservations.
type Summary struct {
	ID    string
	Email string
	Role  role.Role
}

// Summary returns the public attribution for u.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, Role: u.Role}
}

// verifiedOnLogin reports whether a role is trusted without manual
// verification.
func verifiedOnLogin(r role.Role) bool {
	return r == role.Student || r == role.HeadAdmin
}
