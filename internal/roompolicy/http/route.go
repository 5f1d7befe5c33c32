package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the room policy routes. userMiddleware must
// resolve the caller's current role.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, userMiddleware, headAdminMiddleware gin.HandlerFunc) {
	g.GET("/rooms", authMiddleware, userMiddleware, h.Rooms)

	group := g.Group("/room-policies")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.PUT("", userMiddleware, headAdminMiddleware, h.Replace)
	}
}
