package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sitesmith/sitesmith-go/internal/model"
	"github.com/sitesmith/sitesmith-go/internal/repository"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNegativeCredits     = errors.New("credits must not be negative")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// creditLedger is the persistence contract for the credit ledger. Every
// mutation is atomic per user row; the decrement leaves the balance
// unchanged when it would go below zero.
type creditLedger interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetCredits(ctx context.Context, id int64) (credits, totalCreation int, err error)
	IncrementCredits(ctx context.Context, id int64, amount int) error
	DecrementCredits(ctx context.Context, id int64, amount int) error
	SetCredits(ctx context.Context, id int64, value int) error
	IncrementCreation(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, id int64, name, email string) error
}

// UserService handles the credit ledger and profile operations.
type UserService struct {
	repo creditLedger
}

// NewUserService creates a new UserService.
func NewUserService(repo creditLedger) *UserService {
	return &UserService{repo: repo}
}

// GetCredits returns a user's balance and creation counter.
func (s *UserService) GetCredits(ctx context.Context, userID int64) (model.CreditsResponse, error) {
	credits, totalCreation, err := s.repo.GetCredits(ctx, userID)
	if err != nil {
		return model.CreditsResponse{}, mapUserErr(err)
	}
	return model.CreditsResponse{Credits: credits, TotalCreation: totalCreation}, nil
}

// IncrementCredits adds amount to a user's balance and returns the new
// state.
func (s *UserService) IncrementCredits(ctx context.Context, userID int64, amount int) (model.CreditsResponse, error) {
	if amount <= 0 {
		return model.CreditsResponse{}, ErrInvalidAmount
	}
	if err := s.repo.IncrementCredits(ctx, userID, amount); err != nil {
		return model.CreditsResponse{}, mapUserErr(err)
	}
	return s.GetCredits(ctx, userID)
}

// DecrementCredits subtracts amount from a user's balance. The balance is
// left unchanged and ErrInsufficientCredits returned when it would go
// negative.
func (s *UserService) DecrementCredits(ctx context.Context, userID int64, amount int) (model.CreditsResponse, error) {
	if amount <= 0 {
		return model.CreditsResponse{}, ErrInvalidAmount
	}
	if err := s.repo.DecrementCredits(ctx, userID, amount); err != nil {
		return model.CreditsResponse{}, mapUserErr(err)
	}
	return s.GetCredits(ctx, userID)
}

// SetCredits sets a user's balance to an exact value. Administrative
// override; rejects negative values.
func (s *UserService) SetCredits(ctx context.Context, userID int64, value int) (model.CreditsResponse, error) {
	if value < 0 {
		return model.CreditsResponse{}, ErrNegativeCredits
	}
	if err := s.repo.SetCredits(ctx, userID, value); err != nil {
		return model.CreditsResponse{}, mapUserErr(err)
	}
	return s.GetCredits(ctx, userID)
}

// IncrementCreation bumps a user's creation counter and returns the new
// state.
func (s *UserService) IncrementCreation(ctx context.Context, userID int64) (model.CreditsResponse, error) {
	if err := s.repo.IncrementCreation(ctx, userID); err != nil {
		return model.CreditsResponse{}, mapUserErr(err)
	}
	return s.GetCredits(ctx, userID)
}

// GetProfile retrieves a user's profile.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, mapUserErr(err)
	}
	return userToResponse(user), nil
}

// UpdateProfile changes a user's name and/or email.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, mapUserErr(err)
	}

	name := user.Name
	email := user.Email
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return model.UserResponse{}, ErrNameRequired
		}
	}
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
		if email == "" {
			return model.UserResponse{}, ErrEmailRequired
		}
	}

	if err := s.repo.UpdateProfile(ctx, userID, name, email); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, mapUserErr(err)
	}

	return s.GetProfile(ctx, userID)
}

func mapUserErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrInsufficientCredits):
		return ErrInsufficientCredits
	default:
		return err
	}
}
