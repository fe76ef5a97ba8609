package ports

import (
	"context"
	"time"

	"github.com/taskboard/task-api/internal/core/domain"
)

// ListTasksInput carries the caller identity and query options for a listing.
type ListTasksInput struct {
	OwnerID       int64
	Status        domain.TaskStatus
	SortByDueDate bool
}

// CreateTaskInput carries the data needed to create a task.
type CreateTaskInput struct {
	OwnerID     int64
	Title       string
	Description string
	DueDate     *time.Time
}

// UpdateTaskInput is a full replace of the mutable fields of one task.
type UpdateTaskInput struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	Status      domain.TaskStatus
	DueDate     *time.Time
}

// TaskService defines the owner-scoped task lifecycle use cases.
type TaskService interface {
	List(ctx context.Context, input ListTasksInput) ([]*domain.Task, error)
	Get(ctx context.Context, id, ownerID int64) (*domain.Task, error)
	Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, input UpdateTaskInput) (*domain.Task, error)
	Complete(ctx context.Context, id, ownerID int64) (*domain.Task, error)
	Delete(ctx context.Context, id, ownerID int64) error
}
