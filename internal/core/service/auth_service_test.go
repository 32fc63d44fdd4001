package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

const testSecret = "test-secret"

func registerTestUser(t *testing.T, svc *AuthService) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Fatou",
		Email:    "Fatou@Example.com",
		Password: "s3cret99",
		Role:     domain.RoleClient,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestAuthService_Register(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)

	user := registerTestUser(t, svc)

	if user.Email != "fatou@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret99" {
		t.Errorf("password must be stored hashed")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Role: "superuser"})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(vErr.Details) != 4 {
		t.Errorf("details = %v, want name, email, password and role complaints", vErr.Details)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Other",
		Email:    "fatou@example.com",
		Password: "different",
		Role:     domain.RoleOwner,
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)
	registered := registerTestUser(t, svc)

	token, user, err := svc.Login(context.Background(), "fatou@example.com", "s3cret99")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("user id = %q, want %q", user.ID, registered.ID)
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		t.Fatalf("subject claim: %v", err)
	}
	if sub != string(registered.ID) {
		t.Errorf("sub = %q, want %q", sub, registered.ID)
	}
}

func TestAuthService_Login_Rejections(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)
	registerTestUser(t, svc)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "fatou@example.com", "nope"},
		{"unknown email", "ghost@example.com", "s3cret99"},
		{"empty credentials", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
