package remotestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
)

// HTTPStore is the production Store: a JSON client for the hosted
// backend (cmd/taskstore, or anything speaking the same contract).
type HTTPStore struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPStore(baseURL, token string, timeout time.Duration) *HTTPStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPStore{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// taskPayload is the backend's task schema. Nullable timestamps are
// pointers without omitempty so an absent value serializes as an
// explicit JSON null, never an empty string.
type taskPayload struct {
	ID               uuid.UUID         `json:"id,omitempty"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Priority         string            `json:"priority"`
	Status           string            `json:"status"`
	DueDate          *time.Time        `json:"due_date"`
	Category         string            `json:"category"`
	Tags             []string          `json:"tags"`
	EstimatedMinutes *int              `json:"estimated_minutes"`
	CreatedAt        *time.Time        `json:"created_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at"`
	Reminders        []models.Reminder `json:"reminders"`
	AssignedTo       *uuid.UUID        `json:"assigned_to"`
}

func toPayload(t models.Task) taskPayload {
	p := taskPayload{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Priority:         string(t.Priority),
		Status:           string(t.Status),
		DueDate:          t.DueDate,
		Category:         t.Category,
		Tags:             t.Tags,
		EstimatedMinutes: t.EstimatedMinutes,
		CompletedAt:      t.CompletedAt,
		Reminders:        t.Reminders,
		AssignedTo:       t.AssignedTo,
	}
	if !t.CreatedAt.IsZero() {
		created := t.CreatedAt
		p.CreatedAt = &created
	}
	return p
}

func (p taskPayload) toTask() models.Task {
	t := models.Task{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Priority:         models.TaskPriority(p.Priority),
		Status:           models.TaskStatus(p.Status),
		DueDate:          p.DueDate,
		Category:         p.Category,
		Tags:             p.Tags,
		EstimatedMinutes: p.EstimatedMinutes,
		CompletedAt:      p.CompletedAt,
		Reminders:        p.Reminders,
		AssignedTo:       p.AssignedTo,
	}
	if p.CreatedAt != nil {
		t.CreatedAt = *p.CreatedAt
	}
	return t
}

func (s *HTTPStore) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	var created taskPayload
	err := s.do(ctx, http.MethodPost, "/api/v1/tasks", toPayload(task), &created)
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return created.toTask(), nil
}

func (s *HTTPStore) UpdateTask(ctx context.Context, id uuid.UUID, task models.Task) error {
	err := s.do(ctx, http.MethodPut, "/api/v1/tasks/"+id.String(), toPayload(task), nil)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	return nil
}

func (s *HTTPStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	err := s.do(ctx, http.MethodDelete, "/api/v1/tasks/"+id.String(), nil, nil)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func (s *HTTPStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	var resp struct {
		Tasks []taskPayload `json:"tasks"`
	}
	if err := s.do(ctx, http.MethodGet, "/api/v1/tasks", nil, &resp); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]models.Task, 0, len(resp.Tasks))
	for _, p := range resp.Tasks {
		tasks = append(tasks, p.toTask())
	}
	return tasks, nil
}

func (s *HTTPStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var resp struct {
		Categories []models.Category `json:"categories"`
	}
	if err := s.do(ctx, http.MethodGet, "/api/v1/categories", nil, &resp); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return resp.Categories, nil
}

func (s *HTTPStore) CreateCategory(ctx context.Context, category models.Category) (models.Category, error) {
	var created models.Category
	if err := s.do(ctx, http.MethodPost, "/api/v1/categories", category, &created); err != nil {
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return err
	}

	if dest != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func classifyStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	// The body is advisory; classification comes from the status code.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Error)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrValidation, apiErr.Error)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, apiErr.Error)
	default:
		return fmt.Errorf("remotestore: unexpected status %d: %s", resp.StatusCode, apiErr.Error)
	}
}
