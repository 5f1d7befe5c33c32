package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reservut/room-reservation/internal/auth"
	"github.com/reservut/room-reservation/internal/pkg/response"
	"github.com/reservut/room-reservation/internal/role"
	"github.com/reservut/room-reservation/internal/user"
)

// LoadUser resolves the authenticated user's current role and stores it in
// the context. Roles change on every login, so the token is not trusted
// for it. It MUST be used after auth.AuthRequired middleware.
func LoadUser(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		auth.SetUserRole(c, u.Role)
		c.Next()
	}
}

// RequireRole ensures the caller holds one of roles. It MUST be used after
// LoadUser.
func RequireRole(roles ...role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := auth.GetUserRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
	}
}
