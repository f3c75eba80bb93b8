// Package syncer gives callers the illusion of instantaneous mutations:
// every operation applies to the local cache first, then confirms
// against the remote store, rolling the cache back when the backend
// says no.
package syncer

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/remotestore"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/taskcache"
)

// ErrorHook is called whenever a mutation is rolled back, so the UI can
// surface a transient notice. It must not block.
type ErrorHook func(op string, taskID uuid.UUID, err error)

type Coordinator struct {
	cache   *taskcache.Cache
	store   remotestore.Store
	locks   *keyedLock
	onError ErrorHook
	nowFn   func() time.Time

	applied    int64
	rolledBack int64
}

func New(cache *taskcache.Cache, store remotestore.Store, onError ErrorHook) *Coordinator {
	if onError == nil {
		onError = func(op string, taskID uuid.UUID, err error) {
			log.Printf("syncer: %s %s failed: %v", op, taskID, err)
		}
	}
	return &Coordinator{
		cache:   cache,
		store:   store,
		locks:   newKeyedLock(),
		onError: onError,
		nowFn:   time.Now,
	}
}

// Reload refetches the full task set and wholesale-replaces the cache.
func (c *Coordinator) Reload(ctx context.Context) error {
	tasks, err := c.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("reload tasks: %w", err)
	}
	c.cache.ReplaceAll(tasks)
	log.Printf("syncer: reloaded %d tasks from remote store", len(tasks))
	return nil
}

// CreateTask inserts an optimistic placeholder under a fresh id, then
// reconciles it with the server-confirmed record. The returned task is
// the canonical one on success. On failure the placeholder is removed.
func (c *Coordinator) CreateTask(ctx context.Context, draft models.Task) (models.Task, error) {
	draft.Tags = models.NormalizeTags(draft.Tags)
	if err := draft.Validate(); err != nil {
		return models.Task{}, err
	}

	optimistic := draft.Clone()
	optimistic.ID = uuid.Must(uuid.NewV4())
	optimistic.Status = models.StatusPending
	optimistic.CreatedAt = c.nowFn()
	optimistic.CompletedAt = nil
	if optimistic.DueDate != nil && len(optimistic.Reminders) == 0 {
		optimistic.Reminders = models.RemindersForDueDate(optimistic.ID, optimistic.DueDate,
			[]models.ReminderType{models.ReminderOnDue})
	}
	for i := range optimistic.Reminders {
		optimistic.Reminders[i].TaskID = optimistic.ID
	}

	c.cache.Insert(optimistic)
	atomic.AddInt64(&c.applied, 1)

	canonical, err := c.store.CreateTask(ctx, optimistic)
	if err != nil {
		c.cache.Remove(optimistic.ID)
		atomic.AddInt64(&c.rolledBack, 1)
		c.onError("create", optimistic.ID, err)
		return models.Task{}, err
	}

	// Server-assigned id and timestamps win over the placeholder's.
	c.cache.Replace(optimistic.ID, canonical)
	return canonical, nil
}

// UpdateTask applies mutate to the cached entry, pushes the full updated
// record, and restores the exact pre-mutation snapshot on failure.
func (c *Coordinator) UpdateTask(ctx context.Context, id uuid.UUID, mutate func(*models.Task)) error {
	c.locks.lock(id)
	defer c.locks.unlock(id)

	before, ok := c.cache.Get(id)
	if !ok {
		return remotestore.ErrNotFound
	}

	updated := before.Clone()
	mutate(&updated)
	updated.ID = id
	updated.CreatedAt = before.CreatedAt
	updated.Tags = models.NormalizeTags(updated.Tags)
	if err := updated.Validate(); err != nil {
		return err
	}

	c.cache.Replace(id, updated)
	atomic.AddInt64(&c.applied, 1)

	if err := c.store.UpdateTask(ctx, id, updated); err != nil {
		c.cache.Replace(id, before)
		atomic.AddInt64(&c.rolledBack, 1)
		c.onError("update", id, err)
		return err
	}
	return nil
}

// DeleteTask removes the entry optimistically and re-inserts the
// captured record if the backend refuses the delete.
func (c *Coordinator) DeleteTask(ctx context.Context, id uuid.UUID) error {
	c.locks.lock(id)
	defer c.locks.unlock(id)

	before, ok := c.cache.Get(id)
	if !ok {
		return remotestore.ErrNotFound
	}

	c.cache.Remove(id)
	atomic.AddInt64(&c.applied, 1)

	if err := c.store.DeleteTask(ctx, id); err != nil {
		c.cache.Insert(before)
		atomic.AddInt64(&c.rolledBack, 1)
		c.onError("delete", id, err)
		return err
	}
	return nil
}

// ToggleStatus flips pending/completed and sets or clears CompletedAt in
// the same update, never as two separate mutations.
func (c *Coordinator) ToggleStatus(ctx context.Context, id uuid.UUID) error {
	return c.UpdateTask(ctx, id, func(t *models.Task) {
		if t.Status == models.StatusCompleted {
			t.Status = models.StatusPending
			t.CompletedAt = nil
		} else {
			t.Status = models.StatusCompleted
			now := c.nowFn()
			t.CompletedAt = &now
		}
	})
}

func (c *Coordinator) Stats() map[string]interface{} {
	return map[string]interface{}{
		"applied":     atomic.LoadInt64(&c.applied),
		"rolled_back": atomic.LoadInt64(&c.rolledBack),
	}
}
