package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/transport/http/middleware"
	"github.com/bookwise/booking-platform/internal/usecase"
)

// AvailabilityHandler exposes the admin availability declaration endpoint.
type AvailabilityHandler struct {
	availability *usecase.AvailabilityService
	verifier     port.TokenVerifier
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *usecase.AvailabilityService, verifier port.TokenVerifier) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, verifier: verifier}
}

// RegisterRoutes binds the availability routes.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/availability", middleware.RequireAuth(h.verifier), h.declare)
}

func (h *AvailabilityHandler) declare(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req DeclareAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid availability payload"))
		return
	}

	published, err := h.availability.Declare(c.Request.Context(), principal, req.AvailableDays, req.StartTime, req.EndTime)
	if err != nil {
		if payloadErr := domain.AsInvalidEventPayload(err); payloadErr != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, payloadErr.Error()))
			return
		}
		var publishErr *domain.PublishError
		if errors.As(err, &publishErr) {
			c.JSON(http.StatusBadGateway, PublishFailureResponse{
				Error:     "availability events partially published",
				Published: publishErr.Delivered,
				Requested: len(req.AvailableDays),
			})
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: domain.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "authentication required"},
			{Err: domain.ErrForbidden, Status: http.StatusForbidden, Message: "admin role required"},
			{Err: domain.ErrBrokerUnavailable, Status: http.StatusServiceUnavailable, Message: "event broker unavailable"},
			{Err: domain.ErrPublishFailed, Status: http.StatusBadGateway, Message: "availability events partially published"},
		}, http.StatusInternalServerError, "failed to declare availability")
		return
	}

	c.JSON(http.StatusCreated, DeclareAvailabilityResponse{
		Message:   "availability declared",
		Published: published,
		Requested: len(req.AvailableDays),
	})
}
