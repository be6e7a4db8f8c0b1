package model

import (
	"errors"
	"time"
)

// User is a registered marketplace account as stored by the backend.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Balance      float64   `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials are the login fields.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration are the sign-up fields.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// AuthResponse is returned by both the registration and authentication endpoints.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Identity is the client's view of the logged-in user. It only carries the
// username: neither auth endpoint returns the id or email.
type Identity struct {
	Username string `json:"username"`
}

// Profile is the full account record returned by GET /me.
type Profile struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Balance  float64 `json:"balance"`
}

// Password length limits.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 30
)

// ValidatePassword enforces the password length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return errors.New("password length must be between 6 and 30")
	}
	return nil
}
