package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/config"
	"github.com/vbonduro/briefdesk/internal/db"
	"github.com/vbonduro/briefdesk/internal/logging"
	"github.com/vbonduro/briefdesk/internal/mediastore/local"
	"github.com/vbonduro/briefdesk/internal/service"
	"github.com/vbonduro/briefdesk/internal/store"
	"github.com/vbonduro/briefdesk/internal/web"
	"github.com/vbonduro/briefdesk/internal/web/templates"
)

const purgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	database, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	staging, err := local.New(cfg.MediaStagingPath)
	if err != nil {
		logger.Error("failed to initialize media staging", "error", err)
		return err
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	uploads := service.NewUploads(staging, client, logger)
	// Uploads still in flight need the database to record their outcome.
	defer uploads.Wait()

	svc := web.Services{
		Drafts:   service.NewDraftService(store.NewDraftStore(database), uploads, client, logger),
		Reviews:  service.NewReviewService(store.NewReviewStore(database), client, uploads, logger),
		Settings: service.NewSettingsService(store.NewSettingsCache(database), client, logger),
		Catalog:  service.NewCatalogService(client, logger),
		Accounts: service.NewAccountService(client, logger),
	}
	server := web.NewServer(svc, templates.FS, web.Options{
		JWTSecret:    cfg.JWTSecret,
		CookieSecure: cfg.CookieSecure,
	}, logger)

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set, session tokens are not verified")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeLoop(ctx, svc, cfg.DraftTTL, logger)

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if cfg.TestMode {
		return db.OpenForTesting()
	}
	return db.Open(cfg.DBPath)
}

// purgeLoop drops abandoned drafts, review sessions and staged files once
// they are older than ttl. Staged files go with the drafts.
func purgeLoop(ctx context.Context, svc web.Services, ttl time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		purge(ctx, svc, ttl, logger)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func purge(ctx context.Context, svc web.Services, ttl time.Duration, logger *slog.Logger) {
	if n, err := svc.Drafts.Purge(ctx, ttl); err != nil {
		logger.Error("purge drafts failed", "error", err)
	} else if n > 0 {
		logger.Info("purged drafts", "count", n)
	}
	if n, err := svc.Reviews.Purge(ctx, ttl); err != nil {
		logger.Error("purge review sessions failed", "error", err)
	} else if n > 0 {
		logger.Info("purged review sessions", "count", n)
	}
}
