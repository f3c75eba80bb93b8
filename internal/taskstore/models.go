// Package taskstore is the hosted backend: the system of record the
// dashboard's sync coordinator talks to. It owns persistence, auth and
// row-level access checks.
package taskstore

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null;default:'member'"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID   uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_owner_name"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_owner_name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// ReminderList stores a task's reminders as a jsonb column; the task
// owns them, so there is no separate reminders table.
type ReminderList []models.Reminder

func (l ReminderList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode reminders: %w", err)
	}
	return string(data), nil
}

func (l *ReminderList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported reminders column type %T", src)
	}
	return json.Unmarshal(data, l)
}

type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
	return json.Unmarshal(data, l)
}

type Task struct {
	ID               uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID          uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	AssignedTo       *uuid.UUID     `json:"assigned_to" gorm:"type:uuid"`
	Title            string         `json:"title" gorm:"not null"`
	Description      string         `json:"description"`
	Priority         string         `json:"priority" gorm:"not null;default:'medium'"`
	Status           string         `json:"status" gorm:"not null;default:'pending'"`
	DueDate          *time.Time     `json:"due_date"`
	Category         string         `json:"category"`
	Tags             StringList     `json:"tags" gorm:"type:jsonb"`
	EstimatedMinutes *int           `json:"estimated_minutes"`
	Reminders        ReminderList   `json:"reminders" gorm:"type:jsonb"`
	CompletedAt      *time.Time     `json:"completed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

func (t Task) ToDomain() models.Task {
	return models.Task{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Priority:         models.TaskPriority(t.Priority),
		Status:           models.TaskStatus(t.Status),
		DueDate:          t.DueDate,
		Category:         t.Category,
		Tags:             t.Tags,
		EstimatedMinutes: t.EstimatedMinutes,
		CreatedAt:        t.CreatedAt,
		CompletedAt:      t.CompletedAt,
		Reminders:        t.Reminders,
		AssignedTo:       t.AssignedTo,
	}
}

func FromDomain(owner uuid.UUID, task models.Task) Task {
	return Task{
		ID:               task.ID,
		OwnerID:          owner,
		AssignedTo:       task.AssignedTo,
		Title:            task.Title,
		Description:      task.Description,
		Priority:         string(task.Priority),
		Status:           string(task.Status),
		DueDate:          task.DueDate,
		Category:         task.Category,
		Tags:             StringList(task.Tags),
		EstimatedMinutes: task.EstimatedMinutes,
		Reminders:        ReminderList(task.Reminders),
		CompletedAt:      task.CompletedAt,
		CreatedAt:        task.CreatedAt,
	}
}
