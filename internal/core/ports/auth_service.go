package ports

import (
	"context"

	"github.com/taskboard/task-api/internal/core/domain"
)

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.User, error)
	// Signin returns a signed bearer token plus the matched user. A wrong
	// password and an unregistered email fail with the same
	// domain.ErrInvalidCredentials so account existence never leaks.
	Signin(ctx context.Context, email, password string) (string, *domain.User, error)
}
