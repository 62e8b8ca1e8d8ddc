package model

import "time"

// User represents a user in the database. AuthHash never leaves the auth
// boundary; responses use UserResponse.
type User struct {
	ID            int64
	Name          string
	Email         string
	AuthHash      string
	Credits       int
	TotalCreation int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateUserRequest represents a user registration request.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the profile fields a user may change.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// AuthResponse represents an authentication response with a JWT token and user info.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Credits       int       `json:"credits"`
	TotalCreation int       `json:"total_creation"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserSummary is the owner block embedded in project responses.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreditsResponse reports a user's credit balance and creation counter.
type CreditsResponse struct {
	Credits       int `json:"credits"`
	TotalCreation int `json:"total_creation"`
}

// SetCreditsRequest sets the balance to an exact value (administrative).
type SetCreditsRequest struct {
	Credits int `json:"credits"`
}

// CreditAmountRequest carries the amount for increment/decrement calls.
type CreditAmountRequest struct {
	Amount int `json:"amount"`
}
