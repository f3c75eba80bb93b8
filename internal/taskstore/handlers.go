package taskstore

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/authz"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
)

// Handler exposes the backend's JSON API over gin.
type Handler struct {
	tasks      TaskRepository
	categories CategoryRepository
	users      UserRepository
	auth       *AuthService
}

func NewHandler(tasks TaskRepository, categories CategoryRepository, users UserRepository, auth *AuthService) *Handler {
	return &Handler{tasks: tasks, categories: categories, users: users, auth: auth}
}

// RegisterRoutes mounts the public auth endpoints and the
// token-protected v1 API on router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(h.auth))
	{
		v1.GET("/tasks", h.ListTasks)
		v1.POST("/tasks", h.CreateTask)
		v1.PUT("/tasks/:id", h.UpdateTask)
		v1.DELETE("/tasks/:id", h.DeleteTask)

		v1.GET("/categories", h.ListCategories)
		v1.POST("/categories", h.CreateCategory)
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         string(authz.RoleMember),
		IsActive:     true,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			c.JSON(http.StatusConflict, gin.H{"error": "email or username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !user.IsActive || !VerifyPassword(user.PasswordHash, req.Password) {
		// One answer for every failure mode, so logins cannot be used
		// to probe which emails exist.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.auth.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// taskRequest mirrors the dashboard client's wire schema. Nullable
// fields are pointers so an explicit JSON null clears the column.
type taskRequest struct {
	Title            string            `json:"title" binding:"required"`
	Description      string            `json:"description"`
	Priority         string            `json:"priority"`
	Status           string            `json:"status"`
	DueDate          *time.Time        `json:"due_date"`
	Category         string            `json:"category"`
	Tags             []string          `json:"tags"`
	EstimatedMinutes *int              `json:"estimated_minutes"`
	CompletedAt      *time.Time        `json:"completed_at"`
	Reminders        []models.Reminder `json:"reminders"`
	AssignedTo       *uuid.UUID        `json:"assigned_to"`
}

func (req taskRequest) toRow(id, owner uuid.UUID) Task {
	priority := req.Priority
	if priority == "" {
		priority = string(models.PriorityMedium)
	}
	status := req.Status
	if status == "" {
		status = string(models.StatusPending)
	}
	return Task{
		ID:               id,
		OwnerID:          owner,
		AssignedTo:       req.AssignedTo,
		Title:            req.Title,
		Description:      req.Description,
		Priority:         priority,
		Status:           status,
		DueDate:          req.DueDate,
		Category:         req.Category,
		Tags:             StringList(req.Tags),
		EstimatedMinutes: req.EstimatedMinutes,
		Reminders:        ReminderList(req.Reminders),
		CompletedAt:      req.CompletedAt,
	}
}

func (h *Handler) ListTasks(c *gin.Context) {
	scope := scopeFrom(c)
	if !authz.Allowed(scope.Role, authz.ActionTaskRead) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not read tasks"})
		return
	}

	rows, err := h.tasks.List(c.Request.Context(), scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tasks"})
		return
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.ToDomain())
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) CreateTask(c *gin.Context) {
	scope := scopeFrom(c)
	if !authz.Allowed(scope.Role, authz.ActionTaskCreate) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not create tasks"})
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AssignedTo != nil && !authz.Allowed(scope.Role, authz.ActionTaskAssign) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not assign tasks"})
		return
	}

	row := req.toRow(uuid.Nil, scope.UserID)
	domain := row.ToDomain()
	if err := domain.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.tasks.Create(c.Request.Context(), &row); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create task"})
		return
	}

	c.JSON(http.StatusCreated, row.ToDomain())
}

func (h *Handler) UpdateTask(c *gin.Context) {
	scope := scopeFrom(c)
	if !authz.Allowed(scope.Role, authz.ActionTaskUpdate) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not update tasks"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AssignedTo != nil && !authz.Allowed(scope.Role, authz.ActionTaskAssign) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not assign tasks"})
		return
	}

	row := req.toRow(id, scope.UserID)
	domain := row.ToDomain()
	if err := domain.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.tasks.Update(c.Request.Context(), scope, &row); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update task"})
		return
	}

	c.JSON(http.StatusOK, row.ToDomain())
}

func (h *Handler) DeleteTask(c *gin.Context) {
	scope := scopeFrom(c)
	if !authz.Allowed(scope.Role, authz.ActionTaskDelete) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not delete tasks"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), scope, id); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete task"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCategories(c *gin.Context) {
	scope := scopeFrom(c)
	if !authz.Allowed(scope.Role, authz.ActionTaskRead) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not read categories"})
		return
	}

	rows, err := h.categories.List(c.Request.Context(), scope.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list categories"})
		return
	}

	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, models.Category{
			ID:    row.ID,
			Name:  row.Name,
			Color: row.Color,
			Icon:  row.Icon,
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (h *Handler) CreateCategory(c *gin.Context) {
	scope := scopeFrom(c)
	if !authz.Allowed(scope.Role, authz.ActionCategoryManage) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not manage categories"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row := Category{
		OwnerID: scope.UserID,
		Name:    req.Name,
		Color:   req.Color,
		Icon:    req.Icon,
	}
	if err := h.categories.Create(c.Request.Context(), &row); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create category"})
		return
	}

	c.JSON(http.StatusCreated, models.Category{
		ID:    row.ID,
		Name:  row.Name,
		Color: row.Color,
		Icon:  row.Icon,
	})
}
