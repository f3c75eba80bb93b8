// Package server is the dashboard's HTTP surface: task views served
// from the local cache, mutations routed through the sync coordinator,
// and the reminder/notification endpoints the UI polls.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/config"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/middleware"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/monitoring"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/notify"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/remotestore"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/scheduler"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/syncer"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/taskcache"
)

type Server struct {
	cfg       *config.Config
	cache     *taskcache.Cache
	syncer    *syncer.Coordinator
	scheduler *scheduler.Scheduler
	store     remotestore.Store
	toasts    *notify.ToastSink
	desktop   *notify.DesktopSink
	nowFn     func() time.Time
}

func New(
	cfg *config.Config,
	cache *taskcache.Cache,
	coordinator *syncer.Coordinator,
	sched *scheduler.Scheduler,
	store remotestore.Store,
	toasts *notify.ToastSink,
	desktop *notify.DesktopSink,
) *Server {
	return &Server{
		cfg:       cfg,
		cache:     cache,
		syncer:    coordinator,
		scheduler: sched,
		store:     store,
		toasts:    toasts,
		desktop:   desktop,
		nowFn:     time.Now,
	}
}

// Router assembles the gin engine with the full middleware stack.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.SecureHeader())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	if s.cfg.RateLimit.RequestsPerMin > 0 {
		perSecond := rate.Limit(float64(s.cfg.RateLimit.RequestsPerMin) / 60.0)
		router.Use(middleware.RateLimiter(perSecond, s.cfg.RateLimit.BurstSize))
	}

	router.GET("/health", s.Health)
	router.GET("/metrics", monitoring.MetricsHandler())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/tasks", s.ListTasks)
		v1.POST("/tasks", s.CreateTask)
		v1.PUT("/tasks/:id", s.UpdateTask)
		v1.DELETE("/tasks/:id", s.DeleteTask)
		v1.POST("/tasks/:id/toggle", s.ToggleTask)
		v1.POST("/tasks/reload", s.ReloadTasks)

		v1.GET("/categories", s.ListCategories)
		v1.POST("/categories", s.CreateCategory)

		v1.GET("/dashboard/stats", s.DashboardStats)

		v1.GET("/reminders/active", s.ActiveReminders)
		v1.POST("/reminders/:id/snooze", s.SnoozeReminder)
		v1.POST("/reminders/:id/dismiss", s.DismissReminder)

		v1.GET("/notifications", s.Notifications)
		v1.GET("/notifications/permission", s.GetPermission)
		v1.PUT("/notifications/permission", s.SetPermission)

		v1.GET("/prefs", s.GetPrefs)
		v1.PUT("/prefs", s.PutPrefs)
	}

	return router
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "ok",
		"cache":     s.cache.Stats(),
		"syncer":    s.syncer.Stats(),
		"scheduler": s.scheduler.Stats(),
		"toasts":    s.toasts.Stats(),
		"desktop":   s.desktop.Stats(),
	})
}
