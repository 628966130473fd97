package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/transport/http/middleware"
	"github.com/bookwise/booking-platform/internal/usecase"
)

// AppointmentHandler exposes the appointment request endpoint.
type AppointmentHandler struct {
	appointments *usecase.AppointmentService
	verifier     port.TokenVerifier
}

// NewAppointmentHandler constructs AppointmentHandler.
func NewAppointmentHandler(appointments *usecase.AppointmentService, verifier port.TokenVerifier) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, verifier: verifier}
}

// RegisterRoutes binds the appointment routes.
func (h *AppointmentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/appointments", middleware.RequireAuth(h.verifier), h.request)
}

func (h *AppointmentHandler) request(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req AppointmentRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid appointment payload"))
		return
	}

	err := h.appointments.Request(c.Request.Context(), principal, usecase.AppointmentRequest{
		AdminID:         req.AdminID,
		AppointmentName: req.AppointmentName,
		Date:            req.Date,
		Time:            req.Time,
		Details:         req.Details,
	})
	if err != nil {
		if payloadErr := domain.AsInvalidEventPayload(err); payloadErr != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, payloadErr.Error()))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: domain.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "authentication required"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: domain.ErrBrokerUnavailable, Status: http.StatusServiceUnavailable, Message: "event broker unavailable"},
			{Err: domain.ErrPublishFailed, Status: http.StatusBadGateway, Message: "failed to publish appointment"},
		}, http.StatusInternalServerError, "failed to request appointment")
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "appointment requested"})
}
