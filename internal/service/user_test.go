package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sitesmith/sitesmith-go/internal/model"
	"github.com/sitesmith/sitesmith-go/internal/repository"
)

// fakeLedger is an in-memory creditLedger. Decrement enforces the same
// balance floor the SQL statement does.
type fakeLedger struct {
	users map[int64]*model.User
}

func newFakeLedger(users ...*model.User) *fakeLedger {
	f := &fakeLedger{users: make(map[int64]*model.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeLedger) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copy := *u
	return &copy, nil
}

func (f *fakeLedger) GetCredits(_ context.Context, id int64) (int, int, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, 0, repository.ErrUserNotFound
	}
	return u.Credits, u.TotalCreation, nil
}

func (f *fakeLedger) IncrementCredits(_ context.Context, id int64, amount int) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Credits += amount
	return nil
}

func (f *fakeLedger) DecrementCredits(_ context.Context, id int64, amount int) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if u.Credits < amount {
		return repository.ErrInsufficientCredits
	}
	u.Credits -= amount
	return nil
}

func (f *fakeLedger) SetCredits(_ context.Context, id int64, value int) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Credits = value
	return nil
}

func (f *fakeLedger) IncrementCreation(_ context.Context, id int64) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.TotalCreation++
	return nil
}

func (f *fakeLedger) UpdateProfile(_ context.Context, id int64, name, email string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	for otherID, other := range f.users {
		if otherID != id && other.Email == email {
			return repository.ErrDuplicateEmail
		}
	}
	u.Name = name
	u.Email = email
	return nil
}

func TestIncrementCredits_InvalidAmount(t *testing.T) {
	svc := NewUserService(newFakeLedger(&model.User{ID: 1, Credits: 10}))

	_, err := svc.IncrementCredits(context.Background(), 1, 0)
	if err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = svc.DecrementCredits(context.Background(), 1, -3)
	if err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDecrementCredits_Floor(t *testing.T) {
	ledger := newFakeLedger(&model.User{ID: 1, Credits: 3})
	svc := NewUserService(ledger)

	_, err := svc.DecrementCredits(context.Background(), 1, 5)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	// Failed decrement must leave the balance untouched.
	resp, err := svc.GetCredits(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetCredits: %v", err)
	}
	if resp.Credits != 3 {
		t.Errorf("expected balance 3, got %d", resp.Credits)
	}
}

func TestDecrementCredits_ExactBalance(t *testing.T) {
	svc := NewUserService(newFakeLedger(&model.User{ID: 1, Credits: 5}))

	resp, err := svc.DecrementCredits(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if resp.Credits != 0 {
		t.Errorf("expected balance 0, got %d", resp.Credits)
	}
}

func TestSetCredits_Negative(t *testing.T) {
	svc := NewUserService(newFakeLedger(&model.User{ID: 1, Credits: 10}))

	_, err := svc.SetCredits(context.Background(), 1, -1)
	if err != ErrNegativeCredits {
		t.Errorf("expected ErrNegativeCredits, got %v", err)
	}
}

func TestSetCredits_Zero(t *testing.T) {
	svc := NewUserService(newFakeLedger(&model.User{ID: 1, Credits: 10}))

	resp, err := svc.SetCredits(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if resp.Credits != 0 {
		t.Errorf("expected balance 0, got %d", resp.Credits)
	}
}

func TestIncrementCreation_Counts(t *testing.T) {
	svc := NewUserService(newFakeLedger(&model.User{ID: 1, Credits: 10}))

	resp, err := svc.IncrementCreation(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if resp.TotalCreation != 1 {
		t.Errorf("expected total_creation 1, got %d", resp.TotalCreation)
	}
}

func TestGetCredits_UnknownUser(t *testing.T) {
	svc := NewUserService(newFakeLedger())

	_, err := svc.GetCredits(context.Background(), 42)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	ledger := newFakeLedger(
		&model.User{ID: 1, Name: "Alice", Email: "alice@example.com"},
		&model.User{ID: 2, Name: "Bob", Email: "bob@example.com"},
	)
	svc := NewUserService(ledger)

	email := "bob@example.com"
	_, err := svc.UpdateProfile(context.Background(), 1, model.UpdateProfileRequest{Email: &email})
	if err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateProfile_EmptyName(t *testing.T) {
	svc := NewUserService(newFakeLedger(&model.User{ID: 1, Name: "Alice", Email: "alice@example.com"}))

	name := "  "
	_, err := svc.UpdateProfile(context.Background(), 1, model.UpdateProfileRequest{Name: &name})
	if err != ErrNameRequired {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
}
