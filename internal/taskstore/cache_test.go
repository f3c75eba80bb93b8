package taskstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/authz"
)

// stubRepo counts calls so cache hits are observable.
type stubRepo struct {
	tasks     []Task
	listCalls int
}

func (s *stubRepo) Create(_ context.Context, task *Task) error {
	s.tasks = append(s.tasks, *task)
	return nil
}

func (s *stubRepo) Update(context.Context, Scope, *Task) error { return nil }

func (s *stubRepo) Delete(context.Context, Scope, uuid.UUID) error { return nil }

func (s *stubRepo) GetByID(context.Context, Scope, uuid.UUID) (Task, error) {
	return Task{}, ErrTaskNotFound
}

func (s *stubRepo) List(context.Context, Scope) ([]Task, error) {
	s.listCalls++
	return s.tasks, nil
}

func setupCached(t *testing.T) (*stubRepo, *CachedTaskRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &stubRepo{tasks: []Task{{ID: uuid.Must(uuid.NewV4()), Title: "cached"}}}
	return inner, NewCachedTaskRepository(inner, client), mr
}

func memberScope() Scope {
	return Scope{UserID: uuid.Must(uuid.NewV4()), Role: authz.RoleMember}
}

func TestCachedList_SecondReadHitsRedis(t *testing.T) {
	inner, cached, _ := setupCached(t)
	scope := memberScope()
	ctx := context.Background()

	if _, err := cached.List(ctx, scope); err != nil {
		t.Fatalf("first list failed: %v", err)
	}
	if _, err := cached.List(ctx, scope); err != nil {
		t.Fatalf("second list failed: %v", err)
	}

	if inner.listCalls != 1 {
		t.Errorf("inner list calls = %d, want 1 (second read should hit cache)", inner.listCalls)
	}
}

func TestCachedList_MutationInvalidates(t *testing.T) {
	inner, cached, _ := setupCached(t)
	scope := memberScope()
	ctx := context.Background()

	if _, err := cached.List(ctx, scope); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	task := Task{ID: uuid.Must(uuid.NewV4()), OwnerID: scope.UserID, Title: "new"}
	if err := cached.Create(ctx, &task); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := cached.List(ctx, scope)
	if err != nil {
		t.Fatalf("list after create failed: %v", err)
	}
	if inner.listCalls != 2 {
		t.Errorf("inner list calls = %d, want 2 (create must evict)", inner.listCalls)
	}
	if len(got) != 2 {
		t.Errorf("tasks = %d, want 2", len(got))
	}
}

func TestCachedList_ScopesDoNotShareEntries(t *testing.T) {
	inner, cached, _ := setupCached(t)
	ctx := context.Background()

	if _, err := cached.List(ctx, memberScope()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if _, err := cached.List(ctx, memberScope()); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if inner.listCalls != 2 {
		t.Errorf("inner list calls = %d, want 2 (distinct scopes, distinct keys)", inner.listCalls)
	}
}
