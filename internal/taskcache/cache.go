// Package taskcache holds the in-memory task set the dashboard renders
// from. It is authoritative for reads; the sync coordinator reconciles
// it against the remote store on every mutation and full reload.
package taskcache

import (
	"sync"

	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
)

type Cache struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*models.Task

	inserts int64
	patches int64
	removes int64
}

func New() *Cache {
	return &Cache{
		tasks: make(map[uuid.UUID]*models.Task),
	}
}

// ReplaceAll swaps the full task set, last write wins. Used after a
// reload from the remote store; no merge logic.
func (c *Cache) ReplaceAll(tasks []models.Task) {
	next := make(map[uuid.UUID]*models.Task, len(tasks))
	for i := range tasks {
		t := tasks[i].Clone()
		next[t.ID] = &t
	}

	c.mu.Lock()
	c.tasks = next
	c.mu.Unlock()
}

// Insert adds a new entry. Callers must guarantee fresh ids; inserting
// an id that is already present overwrites the existing entry.
func (c *Cache) Insert(task models.Task) {
	t := task.Clone()

	c.mu.Lock()
	c.tasks[t.ID] = &t
	c.inserts++
	c.mu.Unlock()
}

// Patch merges fields into the entry matching id by running mutate
// against it under the write lock. It is a no-op (not an error) when id
// is absent, which makes late reconciliation of deleted entries safe.
func (c *Cache) Patch(id uuid.UUID, mutate func(*models.Task)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tasks[id]
	if !ok {
		return false
	}
	mutate(t)
	c.patches++
	return true
}

// Replace swaps the entry keyed by id with a full record. The record may
// carry a different id: the entry is re-keyed, which is how an optimistic
// placeholder is reconciled with the server-confirmed row. No-op when id
// is absent.
func (c *Cache) Replace(id uuid.UUID, task models.Task) bool {
	t := task.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tasks[id]; !ok {
		return false
	}
	if t.ID != id {
		delete(c.tasks, id)
	}
	c.tasks[t.ID] = &t
	c.patches++
	return true
}

// Remove deletes the entry; no-op if absent.
func (c *Cache) Remove(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tasks[id]; !ok {
		return false
	}
	delete(c.tasks, id)
	c.removes++
	return true
}

// Get returns a copy of the entry, so callers can never mutate cache
// state behind the lock's back.
func (c *Cache) Get(id uuid.UUID) (models.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return t.Clone(), true
}

// Snapshot returns deep copies of every entry, in no particular order.
func (c *Cache) Snapshot() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		out = append(out, t.Clone())
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"items":   len(c.tasks),
		"inserts": c.inserts,
		"patches": c.patches,
		"removes": c.removes,
	}
}
