// Package remotestore speaks to the hosted task backend. The backend is
// the system of record; it applies row-ownership and role checks on its
// side, so the client only ever sees records it is entitled to.
package remotestore

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
)

var (
	// ErrNotFound is returned when the backend has no matching row.
	ErrNotFound = errors.New("remotestore: record not found")
	// ErrUnauthorized covers both missing credentials and rows the
	// caller is not allowed to touch.
	ErrUnauthorized = errors.New("remotestore: unauthorized")
	// ErrValidation is returned when the backend rejects the payload.
	ErrValidation = errors.New("remotestore: validation failed")
	// ErrUnavailable covers network failures and 5xx responses.
	ErrUnavailable = errors.New("remotestore: backend unavailable")
)

type Store interface {
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, task models.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category models.Category) (models.Category, error)
}
