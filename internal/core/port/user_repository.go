package port

import (
	"context"

	"github.com/bookwise/booking-platform/internal/core/domain"
)

// UserRepository exposes persistence behavior for account records.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id, fullName, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
