package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/repository"
)

// AppointmentRequest is the inbound shape of an appointment submission. The
// requesting user is the authenticated principal; the display name is looked
// up server-side rather than trusted from the request.
type AppointmentRequest struct {
	AdminID         string
	AppointmentName string
	Date            string
	Time            string
	Details         string
}

// AppointmentService publishes appointment requests from authenticated users.
type AppointmentService struct {
	users  port.UserRepository
	events port.EventPublisher
	logger *zap.Logger
}

// NewAppointmentService wires the appointment use cases.
func NewAppointmentService(users port.UserRepository, events port.EventPublisher, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{users: users, events: events, logger: logger}
}

// Request publishes an appointment-created event on behalf of the caller.
// Any authenticated principal may request an appointment.
func (s *AppointmentService) Request(ctx context.Context, caller domain.Principal, req AppointmentRequest) error {
	principal, err := caller.Require("")
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	event := domain.AppointmentRequestedEvent{
		UserID:          user.ID,
		UserName:        user.FullName,
		AdminID:         req.AdminID,
		AppointmentName: req.AppointmentName,
		Date:            req.Date,
		Time:            req.Time,
		Details:         req.Details,
	}

	if err := s.events.PublishAppointmentRequested(ctx, event); err != nil {
		s.logger.Warn("appointment fan-out failed",
			zap.String("user_id", user.ID),
			zap.String("admin_id", req.AdminID),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("appointment requested",
		zap.String("user_id", user.ID),
		zap.String("admin_id", req.AdminID),
		zap.String("date", req.Date),
	)

	return nil
}
