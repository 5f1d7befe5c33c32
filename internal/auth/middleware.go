package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reservut/room-reservation/internal/pkg/apperror"
	"github.com/reservut/room-reservation/internal/pkg/response"
)

var (
	ErrMissingHeader = apperror.NewWithReason(http.StatusUnauthorized, "unauthorized", "missing Authorization header")
	ErrHeaderFormat  = apperror.NewWithReason(http.StatusUnauthorized, "unauthorized", "invalid Authorization header format")
	ErrInvalidToken  = apperror.NewWithReason(http.StatusUnauthorized, "unauthorized", "invalid or expired token")
)

// AuthRequired validates the bearer token and stores the caller's identity
// on the gin context.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, ErrMissingHeader)
			c.Abort()
			return
		}

		scheme, tokenStr, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
			response.Error(c, ErrHeaderFormat)
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(tokenStr))
		if err != nil {
			response.Error(c, apperror.Wrap(err, ErrInvalidToken))
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userEmailKey, claims.Email)

		c.Next()
	}
}
