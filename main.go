package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/apiclient"
	"github.com/danielhkuo/odr-frontend/auth"
	"github.com/danielhkuo/odr-frontend/cliparse"
	"github.com/danielhkuo/odr-frontend/db"
	"github.com/danielhkuo/odr-frontend/features"
	"github.com/danielhkuo/odr-frontend/logging"
	"github.com/danielhkuo/odr-frontend/metrics"
	"github.com/danielhkuo/odr-frontend/router"
	"github.com/danielhkuo/odr-frontend/storage"
)

const (
	shutdownTimeout      = 15 * time.Second
	sessionPurgeInterval = time.Hour
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:                "serve [flags]",
		Short:              "Run the HTTP server",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), args)
		},
	}

	rootCmd := &cobra.Command{
		Use:                "odr",
		Short:              "Open Data Repository frontend server",
		SilenceUsage:       true,
		DisableFlagParsing: true,
		RunE:               serveCmd.RunE,
	}

	migrateCmd := &cobra.Command{
		Use:                "migrate [flags]",
		Short:              "Create or update the database schema",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gdb, err := setup(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer db.Close(gdb)
			return nil
		},
	}

	var superuserEmail string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert default feature toggles and optionally promote a superuser",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gdb, err := setup(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			n, err := db.SeedFeatureToggles(cmd.Context(), gdb)
			if err != nil {
				return err
			}
			slog.Info("feature toggles seeded", "inserted", n)

			if superuserEmail != "" {
				user, err := db.PromoteSuperuser(cmd.Context(), gdb, superuserEmail)
				if err != nil {
					return err
				}
				slog.Info("superuser ready", "user_id", user.ID, "email", user.Email)
			}
			return nil
		},
	}
	seedCmd.Flags().StringVar(&superuserEmail, "superuser-email", "", "Promote this existing user to an active superuser")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
	return rootCmd
}

// setup parses configuration, installs the logger, then opens and migrates the database
func setup(ctx context.Context, args []string) (cliparse.Config, *gorm.DB, error) {
	cfg, err := cliparse.ParseFlags(args)
	if err != nil {
		return cfg, nil, fmt.Errorf("parse configuration: %w", err)
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return cfg, nil, err
	}

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return cfg, nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		db.Close(gdb)
		return cfg, nil, err
	}
	slog.Info("Database schema ready")
	return cfg, gdb, nil
}

func serve(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, gdb, err := setup(ctx, args)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	if _, err := db.SeedFeatureToggles(ctx, gdb); err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}

	m, err := metrics.NewMetrics()
	if err != nil {
		return err
	}

	sessions := auth.NewSessionManager(gdb, cfg.AuthSecret, cfg.Production())
	providers := auth.SetupProviders(cfg, sessions.Store())
	slog.Info("OAuth providers configured", "providers", providers)

	handler := router.NewRouter(router.Deps{
		DB:        gdb,
		Config:    cfg,
		Sessions:  sessions,
		API:       apiclient.New(cfg.APIServiceURL, cfg.APIRateLimit, cfg.APITimeout, m),
		Store:     store,
		Features:  features.NewService(gdb, cfg.FeatureCacheTTL),
		Metrics:   m,
		Providers: providers,
	})

	server := &http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go purgeSessions(ctx, sessions)

	errc := make(chan error, 1)
	go func() {
		slog.Info("Listening", "port", cfg.Port, "env", cfg.AppEnv, "s3", cfg.S3Active())
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("Server closed")
	return nil
}

// purgeSessions deletes expired sessions until ctx is cancelled
func purgeSessions(ctx context.Context, sm *auth.SessionManager) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sm.PurgeExpired(ctx)
			if err != nil {
				slog.Error("failed to purge sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions purged", "count", n)
			}
		}
	}
}
