package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reservut/room-reservation/internal/auth"
	"github.com/reservut/room-reservation/internal/pkg/request"
	"github.com/reservut/room-reservation/internal/pkg/response"
	"github.com/reservut/room-reservation/internal/reservation"
	"github.com/reservut/room-reservation/internal/user"
)

type Handler struct {
	service reservation.Service
}

func NewHandler(service reservation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListReservationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	visibleTo, err := req.Validate()
	if err != nil {
		response.Error(c, user.ErrInvalidRole)
		return
	}

	items, err := h.service.List(c.Request.Context(), reservation.ListFilter{
		RoomName:  req.Room,
		VisibleTo: visibleTo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]ReservationResponse, len(items))
	for i, r := range items {
		out[i] = NewReservationResponse(r)
	}
	c.JSON(http.StatusOK, response.NewListResponse(out))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateReservationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	r, err := h.service.Submit(c.Request.Context(), body.ToSubmitRequest(userID))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReservationResponse(r))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(r))
}
