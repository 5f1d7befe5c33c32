package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reservut/room-reservation/internal/auth"
	"github.com/reservut/room-reservation/internal/pkg/response"
	"github.com/reservut/room-reservation/internal/roompolicy"
)

type Handler struct {
	service roompolicy.Service
}

func NewHandler(service roompolicy.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	policies, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(toResponses(policies)))
}

// Rooms lists the rooms the caller's current role may book.
func (h *Handler) Rooms(c *gin.Context) {
	r, ok := auth.GetUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rooms, err := h.service.RoomsForRole(c.Request.Context(), r)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, RoomsResponse{Role: string(r), Rooms: rooms})
}

// Replace swaps the whole policy set. Access Control: Head admin only.
func (h *Handler) Replace(c *gin.Context) {
	var req ReplacePoliciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	policies, err := h.service.Replace(c.Request.Context(), req.ToPolicies())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(toResponses(policies)))
}

func toResponses(policies []roompolicy.Policy) []PolicyResponse {
	out := make([]PolicyResponse, len(policies))
	for i, p := range policies {
		out[i] = NewPolicyResponse(p)
	}
	return out
}
