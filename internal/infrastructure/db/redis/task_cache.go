package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskboard/task-api/internal/core/domain"
)

const defaultCacheTTL = time.Minute

// TaskListCache caches task listings per owner using a version key.
// Every mutation bumps tasks:v:<owner>; list keys embed the current version
// (tasks:list:<owner>:<version>:<filter>), so a bump orphans all previous
// entries at once and the TTL reaps them. A cache failure is always treated
// as a miss — the store stays the source of truth.
type TaskListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTaskListCache creates a TaskListCache. A non-positive ttl falls back to
// one minute.
func NewTaskListCache(client *redis.Client, ttl time.Duration) *TaskListCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &TaskListCache{client: client, ttl: ttl}
}

// GetList returns the cached listing for the owner and filter, if any, plus
// the version the lookup observed.
func (c *TaskListCache) GetList(ctx context.Context, ownerID int64, filterKey string) ([]*domain.Task, int64, bool) {
	version, err := c.version(ctx, ownerID)
	if err != nil {
		return nil, 0, false
	}

	payload, err := c.client.Get(ctx, c.listKey(ownerID, version, filterKey)).Bytes()
	if err != nil {
		return nil, version, false
	}

	var tasks []*domain.Task
	if err := json.Unmarshal(payload, &tasks); err != nil {
		return nil, version, false
	}
	return tasks, version, true
}

// SetList stores a listing under the version observed by the matching GetList.
// If a mutation bumped the version while the store was being queried, the
// entry lands under a dead key and expires unread; re-reading the version
// here would promote that stale listing to current.
func (c *TaskListCache) SetList(ctx context.Context, ownerID, version int64, filterKey string, tasks []*domain.Task) {
	payload, err := json.Marshal(tasks)
	if err != nil {
		return
	}

	_ = c.client.Set(ctx, c.listKey(ownerID, version, filterKey), payload, c.ttl).Err()
}

// Invalidate bumps the owner's version, orphaning every cached listing.
func (c *TaskListCache) Invalidate(ctx context.Context, ownerID int64) {
	_ = c.client.Incr(ctx, c.versionKey(ownerID)).Err()
}

func (c *TaskListCache) version(ctx context.Context, ownerID int64) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(ownerID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

func (c *TaskListCache) versionKey(ownerID int64) string {
	return fmt.Sprintf("tasks:v:%d", ownerID)
}

func (c *TaskListCache) listKey(ownerID, version int64, filterKey string) string {
	return fmt.Sprintf("tasks:list:%d:%d:%s", ownerID, version, filterKey)
}
