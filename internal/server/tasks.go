package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/remotestore"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/views"
)

// ListTasks serves the filtered, sorted view straight from the cache.
// No remote round trip happens on the read path.
func (s *Server) ListTasks(c *gin.Context) {
	filter := models.TaskFilter{
		Priority: c.Query("priority"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	sortBy := models.SortField(c.DefaultQuery("sort_by", string(models.SortByDueDate)))
	order := models.SortOrder(c.DefaultQuery("order", string(models.OrderAsc)))

	tasks := views.Filter(s.cache.Snapshot(), filter)
	views.Sort(tasks, sortBy, order)

	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "total": s.cache.Len()})
}

type createTaskRequest struct {
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description"`
	Priority         string     `json:"priority"`
	DueDate          *time.Time `json:"due_date"`
	Category         string     `json:"category"`
	Tags             []string   `json:"tags"`
	EstimatedMinutes *int       `json:"estimated_minutes"`
	ReminderTypes    []string   `json:"reminder_types"`
}

func (s *Server) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priority := models.TaskPriority(req.Priority)
	if req.Priority == "" {
		priority = models.PriorityMedium
	}

	draft := models.Task{
		Title:            req.Title,
		Description:      req.Description,
		Priority:         priority,
		DueDate:          req.DueDate,
		Category:         req.Category,
		Tags:             req.Tags,
		EstimatedMinutes: req.EstimatedMinutes,
	}
	if len(req.ReminderTypes) > 0 {
		types := make([]models.ReminderType, 0, len(req.ReminderTypes))
		for _, rt := range req.ReminderTypes {
			types = append(types, models.ReminderType(rt))
		}
		// The coordinator stamps the task id onto each reminder once the
		// placeholder id exists.
		draft.Reminders = models.RemindersForDueDate(uuid.Nil, req.DueDate, types)
	}

	created, err := s.syncer.CreateTask(c.Request.Context(), draft)
	if err != nil {
		s.writeSyncError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// updateTaskRequest supports partial updates: absent fields stay
// unchanged. due_date and estimated_minutes are raw so an explicit JSON
// null clears them while absence leaves them alone.
type updateTaskRequest struct {
	Title            *string         `json:"title"`
	Description      *string         `json:"description"`
	Priority         *string         `json:"priority"`
	Category         *string         `json:"category"`
	Tags             *[]string       `json:"tags"`
	DueDate          json.RawMessage `json:"due_date"`
	EstimatedMinutes json.RawMessage `json:"estimated_minutes"`
}

var jsonNull = []byte("null")

func (req updateTaskRequest) apply(t *models.Task) error {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		t.Priority = models.TaskPriority(*req.Priority)
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Tags != nil {
		t.Tags = *req.Tags
	}
	if len(req.DueDate) > 0 {
		if bytes.Equal(req.DueDate, jsonNull) {
			t.DueDate = nil
		} else {
			var due time.Time
			if err := json.Unmarshal(req.DueDate, &due); err != nil {
				return fmt.Errorf("invalid due_date: %w", err)
			}
			t.DueDate = &due
		}
	}
	if len(req.EstimatedMinutes) > 0 {
		if bytes.Equal(req.EstimatedMinutes, jsonNull) {
			t.EstimatedMinutes = nil
		} else {
			var est int
			if err := json.Unmarshal(req.EstimatedMinutes, &est); err != nil {
				return fmt.Errorf("invalid estimated_minutes: %w", err)
			}
			t.EstimatedMinutes = &est
		}
	}
	return nil
}

func (s *Server) UpdateTask(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var applyErr error
	err = s.syncer.UpdateTask(c.Request.Context(), id, func(t *models.Task) {
		applyErr = req.apply(t)
	})
	if applyErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": applyErr.Error()})
		return
	}
	if err != nil {
		s.writeSyncError(c, err)
		return
	}

	task, _ := s.cache.Get(id)
	c.JSON(http.StatusOK, task)
}

func (s *Server) ToggleTask(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := s.syncer.ToggleStatus(c.Request.Context(), id); err != nil {
		s.writeSyncError(c, err)
		return
	}

	task, _ := s.cache.Get(id)
	c.JSON(http.StatusOK, task)
}

func (s *Server) DeleteTask(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := s.syncer.DeleteTask(c.Request.Context(), id); err != nil {
		s.writeSyncError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ReloadTasks(c *gin.Context) {
	if err := s.syncer.Reload(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": s.cache.Len()})
}

func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context())
	if err != nil {
		s.writeSyncError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type createCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.store.CreateCategory(c.Request.Context(), models.Category{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		s.writeSyncError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) DashboardStats(c *gin.Context) {
	c.JSON(http.StatusOK, views.BuildStats(s.cache.Snapshot(), s.nowFn()))
}

// writeSyncError maps store/validation failures to HTTP statuses. A
// rolled-back mutation surfaces here; the cache is already consistent.
func (s *Server) writeSyncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, remotestore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, remotestore.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "remote store rejected credentials"})
	case errors.Is(err, remotestore.ErrValidation),
		errors.Is(err, models.ErrEmptyTitle),
		errors.Is(err, models.ErrInvalidPriority),
		errors.Is(err, models.ErrInvalidEstimate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, remotestore.ErrUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
