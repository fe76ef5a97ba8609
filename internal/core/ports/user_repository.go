package ports

import (
	"context"

	"github.com/taskboard/task-api/internal/core/domain"
)

// UserRepository defines persistence for account records.
//
// Create must reject a duplicate email atomically (unique constraint, not a
// read-then-insert in the caller) and return domain.ErrEmailTaken.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
