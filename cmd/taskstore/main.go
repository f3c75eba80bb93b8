// Command taskstore runs the hosted backend: postgres persistence,
// JWT auth and the JSON API the dashboard's sync coordinator speaks.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/config"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/database"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/middleware"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/monitoring"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/taskstore"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("migrations", "file://migrations", "migration source URL")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("jwt_secret must be set (config file or JWT_SECRET)")
	}
	if cfg.Database.DSN == "" {
		log.Fatal("database dsn must be set (config file or DATABASE_DSN)")
	}

	if err := taskstore.RunMigrations(*migrationsPath, cfg.Database.DSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Connect(cfg.Database, cfg.IsProduction())
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	tasks := taskstore.NewTaskRepository(db)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Printf("redis unreachable, list cache disabled: %v", err)
		} else {
			tasks = taskstore.NewCachedTaskRepository(tasks, client)
			log.Printf("redis list cache enabled (%s)", cfg.Redis.Addr)
		}
		pingCancel()
	}

	auth := taskstore.NewAuthService(cfg.JWTSecret, 24*time.Hour)
	handler := taskstore.NewHandler(
		tasks,
		taskstore.NewCategoryRepository(db),
		taskstore.NewUserRepository(db),
		auth,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.SecureHeader())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.Default())
	if cfg.RateLimit.RequestsPerMin > 0 {
		perSecond := rate.Limit(float64(cfg.RateLimit.RequestsPerMin) / 60.0)
		router.Use(middleware.RateLimiter(perSecond, cfg.RateLimit.BurstSize))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", monitoring.MetricsHandler())
	handler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	go func() {
		log.Printf("taskstore listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	log.Println("bye")
}
