package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sitesmith/sitesmith-go/internal/model"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// UserRepository handles user persistence, including the credit ledger.
// Credit mutations are single-statement read-modify-writes so concurrent
// requests for the same user cannot produce lost updates or a negative
// balance.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, auth_hash, credits, total_creation, created_at, updated_at`

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (name, email, auth_hash, credits) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.AuthHash, user.Credits)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// UpdateProfile updates a user's name and email.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	query := `UPDATE users SET name = ?, email = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, name, email, id)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return r.requireUser(ctx, result, id)
}

// GetCredits returns a user's credit balance and creation counter.
func (r *UserRepository) GetCredits(ctx context.Context, id int64) (credits, totalCreation int, err error) {
	query := `SELECT credits, total_creation FROM users WHERE id = ?`

	err = r.db.QueryRowContext(ctx, query, id).Scan(&credits, &totalCreation)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrUserNotFound
	}
	return credits, totalCreation, err
}

// IncrementCredits adds amount to a user's balance.
func (r *UserRepository) IncrementCredits(ctx context.Context, id int64, amount int) error {
	query := `UPDATE users SET credits = credits + ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		return err
	}
	return r.requireUser(ctx, result, id)
}

// DecrementCredits subtracts amount from a user's balance. The floor guard
// is part of the statement, so a balance never goes negative under
// concurrent decrements; the balance is left unchanged on rejection.
func (r *UserRepository) DecrementCredits(ctx context.Context, id int64, amount int) error {
	return decrementCredits(ctx, r.db, id, amount)
}

// DecrementCreditsTx is DecrementCredits within the provided transaction.
func (r *UserRepository) DecrementCreditsTx(ctx context.Context, tx *sql.Tx, id int64, amount int) error {
	return decrementCredits(ctx, tx, id, amount)
}

// SetCredits sets a user's balance to an exact value.
func (r *UserRepository) SetCredits(ctx context.Context, id int64, value int) error {
	query := `UPDATE users SET credits = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return err
	}
	return r.requireUser(ctx, result, id)
}

// IncrementCreation bumps a user's creation counter by one.
func (r *UserRepository) IncrementCreation(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, incrementCreationQuery, id)
	if err != nil {
		return err
	}
	return r.requireUser(ctx, result, id)
}

// IncrementCreationTx is IncrementCreation within the provided transaction.
func (r *UserRepository) IncrementCreationTx(ctx context.Context, tx *sql.Tx, id int64) error {
	result, err := tx.ExecContext(ctx, incrementCreationQuery, id)
	if err != nil {
		return err
	}
	return requireUser(ctx, tx, result, id)
}

const incrementCreationQuery = `UPDATE users SET total_creation = total_creation + 1 WHERE id = ?`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func decrementCredits(ctx context.Context, ex execer, id int64, amount int) error {
	query := `UPDATE users SET credits = credits - ? WHERE id = ? AND credits >= ?`

	result, err := ex.ExecContext(ctx, query, amount, id, amount)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	// No row updated: either the user is absent or the balance is too low.
	var credits int
	err = ex.QueryRowContext(ctx, `SELECT credits FROM users WHERE id = ?`, id).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	return ErrInsufficientCredits
}

func (r *UserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.AuthHash,
		&user.Credits, &user.TotalCreation, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) requireUser(ctx context.Context, result sql.Result, id int64) error {
	return requireUser(ctx, r.db, result, id)
}

// requireUser distinguishes "no row changed" from "no such user": MySQL
// reports zero affected rows for updates that leave values unchanged.
func requireUser(ctx context.Context, ex execer, result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var one int
	err = ex.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
