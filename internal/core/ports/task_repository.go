package ports

import (
	"context"
	"time"

	"github.com/taskboard/task-api/internal/core/domain"
)

// ListTasksFilter carries the query parameters for listing tasks. OwnerID is
// always set by the service layer; a list is never unscoped.
type ListTasksFilter struct {
	OwnerID int64
	// Status restricts the list to exactly that status when non-empty.
	Status domain.TaskStatus
	// SortByDueDate switches the ordering from created_at descending to:
	// tasks with a due date first (ascending), tasks without one last,
	// ties broken by created_at descending.
	SortByDueDate bool
}

// UpdateTaskFields is the full set of mutable fields, replaced in one call.
type UpdateTaskFields struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	DueDate     *time.Time
}

// TaskRepository defines persistence for task records. Every operation that
// targets a single row filters by both id and owner id; when no row matches
// the pair, mutators return domain.ErrTaskNotFound and reads return the same
// whether the task belongs to someone else or does not exist at all.
type TaskRepository interface {
	ListByOwner(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*domain.Task, error)
	// Create assigns the id and persists the task, returning the stored record.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, id, ownerID int64, fields UpdateTaskFields, now time.Time) (*domain.Task, error)
	MarkCompleted(ctx context.Context, id, ownerID int64, now time.Time) (*domain.Task, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
}

// TaskListCache is an optional read cache for task listings. Implementations
// treat every failure as a miss; the store stays the source of truth.
type TaskListCache interface {
	// GetList returns the cached listing, if any, plus the cache version the
	// lookup observed. On a miss the caller queries the store and hands the
	// observed version back to SetList, so an invalidation that lands in
	// between orphans the write instead of promoting a stale listing.
	GetList(ctx context.Context, ownerID int64, filterKey string) ([]*domain.Task, int64, bool)
	SetList(ctx context.Context, ownerID, version int64, filterKey string, tasks []*domain.Task)
	// Invalidate drops all cached listings for the owner.
	Invalidate(ctx context.Context, ownerID int64)
}
