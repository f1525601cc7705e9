package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/finance-tracker/internal/config"
	"github.com/Dan9191/finance-tracker/internal/handler"
	"github.com/Dan9191/finance-tracker/internal/middleware"
	"github.com/Dan9191/finance-tracker/internal/repository"
	"github.com/Dan9191/finance-tracker/internal/scheduler"
	"github.com/Dan9191/finance-tracker/internal/service"
	"github.com/Dan9191/finance-tracker/internal/utils"
	"github.com/Dan9191/finance-tracker/internal/utils/email"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, autoMigrate)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "apply pending migrations before serving")

	return cmd
}

func runServe(ctx context.Context, autoMigrate bool) error {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg.LogLevel)

	if autoMigrate {
		if err := repository.RunMigrations(cfg.DatabaseURL, false); err != nil {
			return err
		}
		logger.Info("Migrations applied")
	}

	// Initialize database
	db, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Initialize layers
	repo := repository.NewRepository(db, cfg.DBQueryTimeout)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	svc := service.NewService(repo, logger, tokens)
	h := handler.NewHandler(svc, logger, cfg).WithDatabase(repo)
	limiter := middleware.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMaxRequests)
	limiter.TrustProxy = cfg.TrustProxy

	// Background jobs
	jobs := scheduler.New(logger)
	if err := jobs.AddPrune(scheduler.PruneSchedule, limiter); err != nil {
		return err
	}
	if cfg.DigestEnabled() {
		if err := jobs.AddDigest(cfg.DigestSchedule, svc, email.NewSender(cfg, logger)); err != nil {
			return err
		}
	} else {
		logger.Info("SMTP not configured, monthly digest disabled")
	}
	jobs.Start()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(h, cfg, tokens, limiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
	jobs.Stop(shutdownCtx)
	logger.Info("Server stopped")
	return nil
}
