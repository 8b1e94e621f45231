// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-wizard/internal/common/aws"
	"loan-wizard/internal/common/camunda"
	"loan-wizard/internal/common/config"
	"loan-wizard/internal/common/database"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/common/observability"

	ila "loan-wizard/internal/workers/application/index-loan-application"
	nla "loan-wizard/internal/workers/application/notify-loan-applicant"
	rls "loan-wizard/internal/workers/application/record-loan-submission"
	vla "loan-wizard/internal/workers/application/validate-loan-application"
)

const defaultMetricsAddress = ":9091"

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Require(config.SectionCamunda); err != nil {
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

	zapLog.Info("Starting worker manager...")

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.HandlerFunc) {
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log); w != nil {
			workers = append(workers, w)
		}
	}

	if config.IsWorkerEnabled(cfg, vla.TaskType) {
		handler := vla.NewHandler(vla.LoadConfig(config.GetWorkerConfig(cfg, vla.TaskType)), log)
		start(vla.TaskType, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, rls.TaskType) {
		if err := cfg.Require(config.SectionPostgres); err != nil {
			zapLog.Fatal("record worker needs postgres", zap.Error(err))
		}
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")

		handler := rls.NewHandler(rls.LoadConfig(config.GetWorkerConfig(cfg, rls.TaskType)), pg.DB, log)
		start(rls.TaskType, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, nla.TaskType) {
		var (
			mailer nla.Mailer
			texter nla.Texter
		)
		if err := cfg.Require(config.SectionNotifications); err != nil {
			zapLog.Fatal("notify worker misconfigured", zap.Error(err))
		}
		n := cfg.Notifications
		if n.Email.Enabled {
			ses, err := aws.NewSESClient(ctx, n.AWS.Region, n.Email.FromEmail)
			if err != nil {
				zapLog.Fatal("SES client failed", zap.Error(err))
			}
			mailer = ses
		}
		if n.SMS.Enabled {
			sns, err := aws.NewSNSClient(ctx, n.AWS.Region, n.SMS.SenderID)
			if err != nil {
				zapLog.Fatal("SNS client failed", zap.Error(err))
			}
			texter = sns
		}
		handler := nla.NewHandler(nla.LoadConfig(cfg, config.GetWorkerConfig(cfg, nla.TaskType)), mailer, texter, log)
		start(nla.TaskType, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, ila.TaskType) {
		if err := cfg.Require(config.SectionElasticsearch); err != nil {
			zapLog.Fatal("index worker needs elasticsearch", zap.Error(err))
		}
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		handler := ila.NewHandler(ila.LoadConfig(cfg, config.GetWorkerConfig(cfg, ila.TaskType)), es, log)
		start(ila.TaskType, handler.Handle)
	}

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	metricsAddr := os.Getenv("WORKER_METRICS_ADDRESS")
	if metricsAddr == "" {
		metricsAddr = defaultMetricsAddress
	}
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			status, code := "ready", http.StatusOK
			hctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := zeebe.HealthCheck(hctx); err != nil {
				status, code = "unavailable", http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", metricsAddr))
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped gracefully")
}
