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

	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/config"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/notify"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/remotestore"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/scheduler"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/server"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/syncer"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/taskcache"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store := remotestore.NewHTTPStore(cfg.RemoteStore.BaseURL, cfg.RemoteStore.Token,
		cfg.RemoteStore.Timeout.Std())
	cache := taskcache.New()

	toasts := notify.NewToastSink(cfg.Notify.ToastCapacity)
	desktop := notify.NewDesktopSink(notify.Permission(cfg.Notify.DesktopPermission), nil)
	sinks := []notify.Sink{toasts, desktop}
	if cfg.Notify.Email.Enabled {
		sinks = append(sinks, notify.NewEmailSink(
			cfg.Notify.Email.SMTPHost, cfg.Notify.Email.SMTPPort,
			cfg.Notify.Email.SMTPUser, cfg.Notify.Email.Password,
			cfg.Notify.Email.From, cfg.Notify.Email.To))
	}
	fanout := notify.NewFanout(sinks...)

	coordinator := syncer.New(cache, store, func(op string, taskID uuid.UUID, err error) {
		log.Printf("sync: %s on task %s rolled back: %v", op, taskID, err)
	})

	// Failing to reach the store at boot is survivable: the cache starts
	// empty and a later /tasks/reload can backfill.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := coordinator.Reload(ctx); err != nil {
		log.Printf("initial reload failed, starting with empty cache: %v", err)
	}
	cancel()

	sched := scheduler.New(cache, store, fanout, scheduler.WithIntervals(
		cfg.Scheduler.ScanInterval.Std(),
		cfg.Scheduler.FireWindow.Std(),
		cfg.Scheduler.SnoozeDelay.Std(),
	))
	sched.Start()

	srv := server.New(cfg, cache, coordinator, sched, store, toasts, desktop)
	httpServer := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	go func() {
		log.Printf("dashboard listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	log.Println("bye")
}
