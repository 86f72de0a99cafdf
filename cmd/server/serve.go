package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"proofkit/internal/config"
	"proofkit/internal/domain/album"
	"proofkit/internal/domain/project"
	"proofkit/internal/domain/viewer"
	"proofkit/internal/sqlite"
	"proofkit/internal/storage"
	"proofkit/internal/transport"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	projectRepo := sqlite.NewProjectRepository(db)
	albumRepo := sqlite.NewAlbumRepository(db)
	itemRepo := sqlite.NewItemRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)
	keyRepo := sqlite.NewKeyRepository(db)

	media := newMediaStore(cfg.CDN, logger)

	projectSvc := project.NewService(projectRepo, logger)
	albumSvc := album.NewService(albumRepo, itemRepo, projectSvc, projectSvc, media, logger)
	viewerSvc := viewer.NewService(albumRepo, itemRepo, sessionRepo, logger)

	srv := transport.NewServer(projectSvc, albumSvc, viewerSvc, cfg.Viewer.BaseURL, logger)
	router := srv.Router(transport.AuthMiddleware(keyRepo))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
	return nil
}

// newMediaStore picks the upload backend. Without a configured CDN zone
// uploads stay in process memory, which only suits local development.
func newMediaStore(cfg config.CDNConfig, logger *slog.Logger) storage.Store {
	if cfg.Zone == "" {
		logger.Warn("no CDN zone configured, storing uploads in memory")
		return storage.NewMemStore()
	}
	return storage.NewCDNStore(cfg.Endpoint, cfg.Zone, cfg.AccessKey, cfg.PullZone)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
