package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

const taskListTTL = 5 * time.Minute

// CachedTaskRepository fronts a TaskRepository with a redis read cache
// for list queries. Any mutation evicts every cached list; a cold or
// unreachable redis just falls through to the database.
type CachedTaskRepository struct {
	inner TaskRepository
	redis *redis.Client

	hits   int64
	misses int64
}

func NewCachedTaskRepository(inner TaskRepository, client *redis.Client) *CachedTaskRepository {
	return &CachedTaskRepository{inner: inner, redis: client}
}

func listKey(scope Scope) string {
	return fmt.Sprintf("tasks:list:%s:%s", scope.Role, scope.UserID)
}

func (r *CachedTaskRepository) Create(ctx context.Context, task *Task) error {
	if err := r.inner.Create(ctx, task); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedTaskRepository) Update(ctx context.Context, scope Scope, task *Task) error {
	if err := r.inner.Update(ctx, scope, task); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedTaskRepository) Delete(ctx context.Context, scope Scope, id uuid.UUID) error {
	if err := r.inner.Delete(ctx, scope, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedTaskRepository) GetByID(ctx context.Context, scope Scope, id uuid.UUID) (Task, error) {
	return r.inner.GetByID(ctx, scope, id)
}

func (r *CachedTaskRepository) List(ctx context.Context, scope Scope) ([]Task, error) {
	key := listKey(scope)

	if data, err := r.redis.Get(ctx, key).Bytes(); err == nil {
		var tasks []Task
		if err := json.Unmarshal(data, &tasks); err == nil {
			r.hits++
			return tasks, nil
		}
	}
	r.misses++

	tasks, err := r.inner.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tasks); err == nil {
		if err := r.redis.Set(ctx, key, data, taskListTTL).Err(); err != nil {
			log.Printf("taskstore: cache set %s: %v", key, err)
		}
	}
	return tasks, nil
}

func (r *CachedTaskRepository) invalidate(ctx context.Context) {
	iter := r.redis.Scan(ctx, 0, "tasks:list:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.redis.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("taskstore: cache evict %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("taskstore: cache invalidation scan: %v", err)
	}
}

func (r *CachedTaskRepository) Stats() map[string]interface{} {
	return map[string]interface{}{
		"hits":   r.hits,
		"misses": r.misses,
	}
}
