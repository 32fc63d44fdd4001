package ports

import (
	"context"

	"github.com/ema-residences/rental-system/internal/core/domain"
)

// RegisterInput carries the fields a new account is created from.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login verifies credentials and returns a signed bearer token plus the
	// authenticated user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
