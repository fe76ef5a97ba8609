package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/taskboard/task-api/internal/api/metrics"
	"github.com/taskboard/task-api/internal/core/domain"
	"github.com/taskboard/task-api/internal/core/ports"
)

type stubTaskRepo struct {
	tasks          map[int64]*domain.Task
	nextID         int64
	listCalls      int
	completedCalls int
	// onList fires once, after the listing snapshot is taken but before it is
	// returned, standing in for work that lands while the store is queried.
	onList func()
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[int64]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	return &clone
}

func (r *stubTaskRepo) ListByOwner(_ context.Context, filter ports.ListTasksFilter) ([]*domain.Task, error) {
	r.listCalls++
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, cloneTask(t))
	}
	if r.onList != nil {
		hook := r.onList
		r.onList = nil
		hook()
	}
	return out, nil
}

func (r *stubTaskRepo) GetByIDAndOwner(_ context.Context, id, ownerID int64) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.nextID++
	created := cloneTask(task)
	created.ID = r.nextID
	r.tasks[created.ID] = cloneTask(created)
	return created, nil
}

func (r *stubTaskRepo) Update(_ context.Context, id, ownerID int64, fields ports.UpdateTaskFields, now time.Time) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	t.Title = fields.Title
	t.Description = fields.Description
	t.Status = fields.Status
	t.DueDate = fields.DueDate
	t.UpdatedAt = now
	return cloneTask(t), nil
}

func (r *stubTaskRepo) MarkCompleted(_ context.Context, id, ownerID int64, now time.Time) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	r.completedCalls++
	t.Status = domain.StatusCompleted
	t.UpdatedAt = now
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id, ownerID int64) (bool, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return false, nil
	}
	delete(r.tasks, t.ID)
	return true, nil
}

// stubListCache mirrors the versioned-key scheme of the Redis cache: entries
// are stored under the version passed to SetList, lookups read the owner's
// current version, and Invalidate bumps it so older entries become
// unreachable.
type stubListCache struct {
	versions    map[int64]int64
	entries     map[string][]*domain.Task
	invalidated int
}

func newStubListCache() *stubListCache {
	return &stubListCache{
		versions: make(map[int64]int64),
		entries:  make(map[string][]*domain.Task),
	}
}

func (c *stubListCache) key(ownerID, version int64, filterKey string) string {
	return fmt.Sprintf("%d:%d:%s", ownerID, version, filterKey)
}

func (c *stubListCache) GetList(_ context.Context, ownerID int64, filterKey string) ([]*domain.Task, int64, bool) {
	version := c.versions[ownerID]
	tasks, ok := c.entries[c.key(ownerID, version, filterKey)]
	return tasks, version, ok
}

func (c *stubListCache) SetList(_ context.Context, ownerID, version int64, filterKey string, tasks []*domain.Task) {
	c.entries[c.key(ownerID, version, filterKey)] = tasks
}

func (c *stubListCache) Invalidate(_ context.Context, ownerID int64) {
	c.invalidated++
	c.versions[ownerID]++
}

func TestTaskService_CreateThenGet(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nil, zerolog.Nop())

	due := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	created, err := svc.Create(context.Background(), ports.CreateTaskInput{
		OwnerID:     1,
		Title:       "T1",
		Description: "first",
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", created.Status)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("creation timestamps must match: %v / %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.Get(context.Background(), created.ID, 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Title != "T1" || got.Description != "first" || got.Status != domain.StatusPending {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("unexpected due date: %v", got.DueDate)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) || !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("timestamps changed between create and get")
	}
}

func TestTaskService_ForeignTaskReadsAsNotFound(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nil, zerolog.Nop())

	created, err := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: 1, Title: "mine"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	const intruder = int64(2)

	if _, err := svc.Get(context.Background(), created.ID, intruder); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("get: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), ports.UpdateTaskInput{
		ID: created.ID, OwnerID: intruder, Title: "hijack", Status: domain.StatusPending,
	}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("update: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := svc.Complete(context.Background(), created.ID, intruder); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("complete: expected ErrTaskNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, intruder); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("delete: expected ErrTaskNotFound, got %v", err)
	}

	// Still intact for the owner.
	if _, err := svc.Get(context.Background(), created.ID, 1); err != nil {
		t.Fatalf("owner lost access: %v", err)
	}
}

func TestTaskService_CompleteIsIdempotentOnStatus(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nil, zerolog.Nop())

	created, err := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: 1, Title: "T1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := svc.Complete(context.Background(), created.ID, 1)
	if err != nil {
		t.Fatalf("first complete failed: %v", err)
	}
	second, err := svc.Complete(context.Background(), created.ID, 1)
	if err != nil {
		t.Fatalf("second complete failed: %v", err)
	}

	if first.Status != domain.StatusCompleted || second.Status != domain.StatusCompleted {
		t.Fatalf("expected COMPLETED both times: %s / %s", first.Status, second.Status)
	}
	// The second call still issues the write and refreshes updated_at.
	if repo.completedCalls != 2 {
		t.Fatalf("expected 2 completion writes, got %d", repo.completedCalls)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Fatalf("updated_at went backwards: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if second.Title != first.Title || second.Description != first.Description {
		t.Fatalf("complete must not touch other fields")
	}
}

func TestTaskService_DeleteThenGet(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nil, zerolog.Nop())

	created, err := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: 1, Title: "T1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID, 1); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, 1); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestTaskService_ListUsesCache(t *testing.T) {
	repo := newStubTaskRepo()
	cache := newStubListCache()
	svc := NewTaskService(repo, cache, zerolog.Nop())

	if _, err := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: 1, Title: "T1"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	input := ports.ListTasksInput{OwnerID: 1}
	if _, err := svc.List(context.Background(), input); err != nil {
		t.Fatalf("first list failed: %v", err)
	}
	if _, err := svc.List(context.Background(), input); err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected second list to hit the cache, repo saw %d calls", repo.listCalls)
	}

	// A mutation invalidates; the next list goes back to the store.
	if _, err := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: 1, Title: "T2"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	tasks, err := svc.List(context.Background(), input)
	if err != nil {
		t.Fatalf("third list failed: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected list to bypass stale cache, repo saw %d calls", repo.listCalls)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}

	// Different owners never share entries.
	if _, err := svc.List(context.Background(), ports.ListTasksInput{OwnerID: 2}); err != nil {
		t.Fatalf("list for other owner failed: %v", err)
	}
	if repo.listCalls != 3 {
		t.Fatalf("expected cache miss for other owner, repo saw %d calls", repo.listCalls)
	}
}

func TestTaskService_ListDoesNotCacheOverConcurrentMutation(t *testing.T) {
	repo := newStubTaskRepo()
	cache := newStubListCache()
	svc := NewTaskService(repo, cache, zerolog.Nop())

	if _, err := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: 1, Title: "T1"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// While the listing reads the store, another request creates a task and
	// invalidates the cache. The listing's snapshot predates the create, so
	// it must land under the old version, not the bumped one.
	repo.onList = func() {
		if _, err := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: 1, Title: "T2"}); err != nil {
			t.Fatalf("concurrent create failed: %v", err)
		}
	}

	input := ports.ListTasksInput{OwnerID: 1}
	stale, err := svc.List(context.Background(), input)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("expected the pre-create snapshot, got %d tasks", len(stale))
	}

	fresh, err := svc.List(context.Background(), input)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("stale snapshot was served from the cache, repo saw %d calls", repo.listCalls)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected 2 tasks after concurrent create, got %d", len(fresh))
	}
}

func TestTaskService_OperationsObserveDuration(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTaskService(repo, nil, zerolog.Nop())

	created, err := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: 1, Title: "T1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.List(context.Background(), ports.ListTasksInput{OwnerID: 1}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID, 1); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, err := svc.Update(context.Background(), ports.UpdateTaskInput{
		ID: created.ID, OwnerID: 1, Title: "T1", Status: domain.StatusPending,
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := svc.Complete(context.Background(), created.ID, 1); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// One histogram series per operation label.
	if got := testutil.CollectAndCount(metrics.TaskOpDuration); got < 6 {
		t.Fatalf("expected a duration series per operation, got %d", got)
	}
}
