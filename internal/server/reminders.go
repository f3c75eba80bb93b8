package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/notify"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/prefs"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/scheduler"
)

func (s *Server) ActiveReminders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reminders": s.scheduler.ActiveReminders()})
}

func (s *Server) SnoozeReminder(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder id"})
		return
	}

	count, err := s.scheduler.Snooze(id)
	if err != nil {
		if errors.Is(err, scheduler.ErrNotActive) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reminder is not active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snooze_count": count})
}

func (s *Server) DismissReminder(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder id"})
		return
	}

	if err := s.scheduler.Dismiss(id); err != nil {
		if errors.Is(err, scheduler.ErrNotActive) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reminder is not active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Notifications serves the toast ring, newest first. The UI polls this.
func (s *Server) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": s.toasts.Recent()})
}

func (s *Server) GetPermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"permission": s.desktop.Permission()})
}

type permissionRequest struct {
	Permission string `json:"permission" binding:"required"`
}

func (s *Server) SetPermission(c *gin.Context) {
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := notify.Permission(req.Permission)
	switch p {
	case notify.PermissionGranted, notify.PermissionDenied, notify.PermissionDefault:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "permission must be granted, denied or default"})
		return
	}

	s.desktop.SetPermission(p)
	c.JSON(http.StatusOK, gin.H{"permission": s.desktop.Permission()})
}

func (s *Server) GetPrefs(c *gin.Context) {
	p, err := prefs.Load(s.cfg.PrefsPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) PutPrefs(c *gin.Context) {
	var p prefs.Prefs
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := prefs.Save(s.cfg.PrefsPath, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}
