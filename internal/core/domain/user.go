package domain

import (
	"errors"
	"time"
)

var ErrEmailTaken = errors.New("email already in use")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")

// User models a registered account. PasswordHash never leaves the credential
// store boundary; the json tag keeps it out of every serialized response.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
