package ports

import (
	"context"

	"github.com/ema-residences/rental-system/internal/core/domain"
)

// UserRepository defines the interface for the identity store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
}
