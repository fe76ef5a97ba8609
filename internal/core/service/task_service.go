package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/task-api/internal/api/metrics"
	"github.com/taskboard/task-api/internal/core/domain"
	"github.com/taskboard/task-api/internal/core/ports"
)

// TaskService orchestrates the owner-scoped task lifecycle. Every single-task
// operation first resolves ownership through GetByIDAndOwner and reports
// domain.ErrTaskNotFound both for absent tasks and for tasks owned by someone
// else; the two cases are indistinguishable to the caller on purpose.
type TaskService struct {
	repo  ports.TaskRepository
	cache ports.TaskListCache
	log   zerolog.Logger
}

// NewTaskService creates a TaskService. cache may be nil, in which case every
// listing goes straight to the store.
func NewTaskService(repo ports.TaskRepository, cache ports.TaskListCache, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, cache: cache, log: log}
}

func (s *TaskService) List(ctx context.Context, input ports.ListTasksInput) ([]*domain.Task, error) {
	defer observeTaskOp("list", time.Now())
	filterKey := fmt.Sprintf("%s:%t", input.Status, input.SortByDueDate)

	// The version is captured once, at lookup time. SetList reuses it, so a
	// mutation that lands while the store is queried orphans this listing
	// instead of caching it as current.
	var version int64
	if s.cache != nil {
		tasks, v, ok := s.cache.GetList(ctx, input.OwnerID, filterKey)
		if ok {
			metrics.TaskListCacheTotal.WithLabelValues("hit").Inc()
			return tasks, nil
		}
		metrics.TaskListCacheTotal.WithLabelValues("miss").Inc()
		version = v
	}

	tasks, err := s.repo.ListByOwner(ctx, ports.ListTasksFilter{
		OwnerID:       input.OwnerID,
		Status:        input.Status,
		SortByDueDate: input.SortByDueDate,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("owner_id", input.OwnerID).Msg("list tasks failed")
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetList(ctx, input.OwnerID, version, filterKey, tasks)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	defer observeTaskOp("get", time.Now())
	return s.repo.GetByIDAndOwner(ctx, id, ownerID)
}

func (s *TaskService) Create(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	defer observeTaskOp("create", time.Now())
	now := time.Now().UTC().Truncate(time.Second)
	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusPending,
		DueDate:     input.DueDate,
		OwnerID:     input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.log.Error().Err(err).Int64("owner_id", input.OwnerID).Msg("create task failed")
		return nil, err
	}

	s.invalidate(ctx, input.OwnerID)
	metrics.TasksCreatedTotal.Inc()
	s.log.Info().Int64("task_id", created.ID).Int64("owner_id", input.OwnerID).Msg("task created")
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, input ports.UpdateTaskInput) (*domain.Task, error) {
	defer observeTaskOp("update", time.Now())
	if _, err := s.repo.GetByIDAndOwner(ctx, input.ID, input.OwnerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	updated, err := s.repo.Update(ctx, input.ID, input.OwnerID, ports.UpdateTaskFields{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
	}, now)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, input.OwnerID)
	return updated, nil
}

// Complete sets the task to COMPLETED. Completing an already completed task
// succeeds and still refreshes updated_at, matching the legacy backend which
// issues the same UPDATE unconditionally.
func (s *TaskService) Complete(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	defer observeTaskOp("complete", time.Now())
	if _, err := s.repo.GetByIDAndOwner(ctx, id, ownerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	task, err := s.repo.MarkCompleted(ctx, id, ownerID, now)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	metrics.TasksCompletedTotal.Inc()
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id, ownerID int64) error {
	defer observeTaskOp("delete", time.Now())
	if _, err := s.repo.GetByIDAndOwner(ctx, id, ownerID); err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !removed {
		// Lost a race with a concurrent delete.
		return domain.ErrTaskNotFound
	}

	s.invalidate(ctx, ownerID)
	metrics.TasksDeletedTotal.Inc()
	s.log.Info().Int64("task_id", id).Int64("owner_id", ownerID).Msg("task deleted")
	return nil
}

func (s *TaskService) invalidate(ctx context.Context, ownerID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ownerID)
	}
}

func observeTaskOp(op string, start time.Time) {
	metrics.TaskOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
