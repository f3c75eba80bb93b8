package taskstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/authz"
)

var (
	ErrTaskNotFound = errors.New("taskstore: task not found")
	ErrForbidden    = errors.New("taskstore: row not visible to caller")
)

// Scope is the caller's row-level view: elevated roles see every row,
// everyone else only rows they own or are assigned to.
type Scope struct {
	UserID uuid.UUID
	Role   authz.Role
}

func (s Scope) apply(q *gorm.DB) *gorm.DB {
	if authz.Elevated(s.Role) {
		return q
	}
	return q.Where("owner_id = ? OR assigned_to = ?", s.UserID, s.UserID)
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, scope Scope, task *Task) error
	Delete(ctx context.Context, scope Scope, id uuid.UUID) error
	GetByID(ctx context.Context, scope Scope, id uuid.UUID) (Task, error)
	List(ctx context.Context, scope Scope) ([]Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.Must(uuid.NewV4())
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, scope Scope, task *Task) error {
	existing, err := r.GetByID(ctx, scope, task.ID)
	if err != nil {
		return err
	}

	task.OwnerID = existing.OwnerID
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now()

	// Save writes every column so cleared fields (completed_at, due
	// date) actually null out; Updates would skip zero values.
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, scope Scope, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, scope, id); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&Task{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, scope Scope, id uuid.UUID) (Task, error) {
	var task Task
	err := scope.apply(r.db.WithContext(ctx)).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Hide rows outside the caller's scope entirely.
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, scope Scope) ([]Task, error) {
	var tasks []Task
	err := scope.apply(r.db.WithContext(ctx)).Order("created_at DESC").Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	List(ctx context.Context, ownerID uuid.UUID) ([]Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.Must(uuid.NewV4())
	}
	category.CreatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) List(ctx context.Context, ownerID uuid.UUID) ([]Category, error) {
	var categories []Category
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
