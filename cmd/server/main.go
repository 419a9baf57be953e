package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/karnell/boxlens/internal/api"
	"github.com/karnell/boxlens/internal/config"
	"github.com/karnell/boxlens/internal/raster"
	"github.com/karnell/boxlens/internal/session"
	"github.com/karnell/boxlens/internal/upstream"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session persistence.
	var repo *session.Repo
	if cfg.SessionDBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SessionDBPath), 0o755); err != nil {
			log.Error("create session db dir", "error", err)
			os.Exit(1)
		}
		db, err := session.Open(cfg.SessionDBPath)
		if err != nil {
			log.Error("open session db", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := session.Migrate(db); err != nil {
			log.Error("migrate session db", "error", err)
			os.Exit(1)
		}
		repo = session.NewRepo(db)
	}

	sessions := session.NewRegistry(cfg.SessionTTL, repo, log)
	if err := sessions.Restore(ctx); err != nil {
		log.Warn("session restore failed", "error", err)
	}
	sessions.Start(ctx)

	// Collaborators.
	backend := upstream.NewClient(cfg.BackendURL, cfg.BackendAPIKey)
	rast := raster.NewController(raster.NewPDFRasterizer(cfg.PDFDir))

	srv := api.NewServer(backend, sessions, rast, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		backend.Close()
	}()

	log.Info("starting boxlens", "port", cfg.Port, "backend", cfg.BackendURL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
