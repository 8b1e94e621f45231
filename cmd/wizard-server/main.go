// cmd/wizard-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"loan-wizard/internal/api"
	"loan-wizard/internal/common/camunda"
	"loan-wizard/internal/common/config"
	"loan-wizard/internal/common/database"
	"loan-wizard/internal/common/loanapi"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/common/observability"
	"loan-wizard/internal/review"
	"loan-wizard/internal/session"
	"loan-wizard/internal/wizard"
)

const (
	sessionIdle   = 30 * time.Minute
	sweepInterval = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Require(config.SectionBackend, config.SectionRedis); err != nil {
		fmt.Fprintf(os.Stderr, "config incomplete: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := run(cfg, zapLog, log); err != nil {
		zapLog.Fatal("wizard server stopped with error", zap.Error(err))
	}
	zapLog.Info("Wizard server stopped gracefully")
}

func run(cfg *config.Config, zapLog *zap.Logger, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New("wizard-server")
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	defer obs.Shutdown(context.Background())

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	zapLog.Info("Redis connected successfully")

	drafts := session.NewRedisDraftStore(rdb.Cmdable(), config.GetDuration(cfg.Wizard.DraftTTL))
	staging := session.NewOSStaging(cfg.Wizard.StagingDir, cfg.Wizard.MaxUploadBytes)
	sessions := session.NewManager(drafts, staging, log,
		session.WithWizardOptions(wizard.WithWarningTTL(config.GetDuration(cfg.Wizard.LockWarningTTL))),
	)

	backend := loanapi.NewClient(cfg.Backend, log)
	opts := []api.Option{
		api.WithObservability(obs),
		api.WithRequestTimeout(config.GetDuration(cfg.Server.WriteTimeout)),
	}

	if cfg.Wizard.StartReview {
		if err := cfg.Require(config.SectionCamunda); err != nil {
			return err
		}
		zeebe, err := camunda.NewClient(cfg.Camunda)
		if err != nil {
			return fmt.Errorf("zeebe: %w", err)
		}
		defer zeebe.Close()
		opts = append(opts, api.WithListener(review.NewStarter(zeebe, cfg.Wizard.ReviewProcessID, log)))
		zapLog.Info("Review process start enabled", zap.String("processId", cfg.Wizard.ReviewProcessID))
	}

	handler := api.NewHandler(sessions, func(token string) api.Backend {
		return backend.WithToken(token)
	}, log, opts...)

	router := api.NewRouter(handler)
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zapLog.Info("Wizard server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, draining requests...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				sessions.Sweep(sessionIdle)
			}
		}
	})

	return g.Wait()
}
