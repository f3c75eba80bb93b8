package models

import (
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Task is the dashboard's view of a task. The remote store is the system
// of record; instances held in the local cache are transient projections.
type Task struct {
	ID               uuid.UUID    `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Priority         TaskPriority `json:"priority"`
	Status           TaskStatus   `json:"status"`
	DueDate          *time.Time   `json:"due_date"`
	Category         string       `json:"category"`
	Tags             []string     `json:"tags"`
	EstimatedMinutes *int         `json:"estimated_minutes"`
	CreatedAt        time.Time    `json:"created_at"`
	CompletedAt      *time.Time   `json:"completed_at"`
	Reminders        []Reminder   `json:"reminders"`
	AssignedTo       *uuid.UUID   `json:"assigned_to"`
}

var (
	ErrEmptyTitle      = errors.New("task title must not be empty")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidEstimate = errors.New("estimated minutes must be positive")
)

func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	switch t.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return ErrInvalidPriority
	}
	if t.EstimatedMinutes != nil && *t.EstimatedMinutes <= 0 {
		return ErrInvalidEstimate
	}
	return nil
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Clone returns a deep copy. Cache snapshots and rollback captures must
// never alias slices or pointers held by the cached entry.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.CompletedAt != nil {
		done := *t.CompletedAt
		c.CompletedAt = &done
	}
	if t.EstimatedMinutes != nil {
		est := *t.EstimatedMinutes
		c.EstimatedMinutes = &est
	}
	if t.AssignedTo != nil {
		who := *t.AssignedTo
		c.AssignedTo = &who
	}
	if t.Tags != nil {
		c.Tags = make([]string, len(t.Tags))
		copy(c.Tags, t.Tags)
	}
	if t.Reminders != nil {
		c.Reminders = make([]Reminder, len(t.Reminders))
		copy(c.Reminders, t.Reminders)
	}
	return c
}

// NormalizeTags lowercases and de-duplicates tags while keeping order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
