package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/reservut/room-reservation/internal/role"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
	userRoleKey  = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	if v, ok := c.Get(userEmailKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetUserRole records the caller's current role, resolved per request.
func SetUserRole(c *gin.Context, r role.Role) {
	c.Set(userRoleKey, r)
}

// GetUserRole returns the role stored by SetUserRole.
func GetUserRole(c *gin.Context) (role.Role, bool) {
	if v, ok := c.Get(userRoleKey); ok {
		if r, ok := v.(role.Role); ok {
			return r, true
		}
	}
	return "", false
}
