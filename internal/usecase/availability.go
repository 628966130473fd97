package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
)

// AvailabilityService lets admins declare recurring weekly availability. Each
// declaration fans out as one broker event per declared day.
type AvailabilityService struct {
	events port.EventPublisher
	logger *zap.Logger
}

// NewAvailabilityService wires the availability use cases.
func NewAvailabilityService(events port.EventPublisher, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{events: events, logger: logger}
}

// Declare publishes the caller's availability window for the given days.
// Only admins may declare availability; the declaring admin is always the
// authenticated principal, never a request field. Returns the number of
// per-day events that reached the broker.
func (s *AvailabilityService) Declare(ctx context.Context, caller domain.Principal, days []string, startTime, endTime string) (int, error) {
	admin, err := caller.Require(domain.RoleAdmin)
	if err != nil {
		return 0, err
	}

	declaration := domain.AvailabilityDeclaration{
		AdminID:       admin.ID,
		AvailableDays: days,
		StartTime:     startTime,
		EndTime:       endTime,
	}

	delivered, err := s.events.PublishAvailabilityDeclared(ctx, declaration)
	if err != nil {
		s.logger.Warn("availability fan-out incomplete",
			zap.String("admin_id", admin.ID),
			zap.Int("delivered", delivered),
			zap.Int("requested", len(days)),
			zap.Error(err),
		)
		return delivered, err
	}

	s.logger.Info("availability declared",
		zap.String("admin_id", admin.ID),
		zap.Strings("days", days),
		zap.String("start_time", startTime),
		zap.String("end_time", endTime),
	)

	return delivered, nil
}
