package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/booking-platform/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// RegisterRequest defines the payload for account registration.
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes a successful login. EventDelivered reports whether
// the login event reached the broker; a false value does not invalidate the
// session.
type LoginResponse struct {
	Token          string               `json:"token"`
	User           domain.PublicProfile `json:"user"`
	EventDelivered bool                 `json:"eventDelivered"`
}

// VerifyTokenResponse reports a successful token check alongside the account
// it resolves to. Clients use it to restore a stored session.
type VerifyTokenResponse struct {
	Valid bool                 `json:"valid"`
	User  domain.PublicProfile `json:"user"`
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ChangePasswordRequest carries a credential rotation.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// DeclareAvailabilityRequest defines the payload for an availability declaration.
type DeclareAvailabilityRequest struct {
	AvailableDays []string `json:"availableDays" binding:"required"`
	StartTime     string   `json:"startTime" binding:"required"`
	EndTime       string   `json:"endTime" binding:"required"`
}

// DeclareAvailabilityResponse reports the per-day fan-out outcome.
type DeclareAvailabilityResponse struct {
	Message   string `json:"message"`
	Published int    `json:"published"`
	Requested int    `json:"requested"`
}

// PublishFailureResponse reports a fan-out that stopped partway through,
// carrying how many events made it to the broker before the failure.
type PublishFailureResponse struct {
	Error     string `json:"error"`
	Published int    `json:"published"`
	Requested int    `json:"requested"`
}

// AppointmentRequestPayload defines the payload for an appointment request.
type AppointmentRequestPayload struct {
	AdminID         string `json:"adminId" binding:"required"`
	AppointmentName string `json:"appointmentName" binding:"required"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	Details         string `json:"details"`
}
