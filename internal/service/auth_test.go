package service

import (
	"context"
	"testing"
	"time"

	"github.com/sitesmith/sitesmith-go/internal/model"
	"github.com/sitesmith/sitesmith-go/internal/repository"
)

func newTestAuthService() *AuthService {
	return NewAuthService(
		repository.NewUserRepository(nil),
		"test-secret",
		time.Hour,
		20,
	)
}

func TestRegister_EmptyName(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Name:     "   ",
		Email:    "test@example.com",
		Password: "password123",
	})

	if err != ErrNameRequired {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
}

func TestRegister_EmptyEmail(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Name:     "Test",
		Email:    "",
		Password: "password123",
	})

	if err != ErrEmailRequired {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}
}

func TestRegister_EmptyPassword(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Name:     "Test",
		Email:    "test@example.com",
		Password: "",
	})

	if err != ErrPasswordRequired {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Name:     "Test",
		Email:    "test@example.com",
		Password: "12345",
	})

	if err != ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	got := normalizeEmail("  Alice@Example.COM ")
	if got != "alice@example.com" {
		t.Errorf("expected alice@example.com, got %q", got)
	}
}
