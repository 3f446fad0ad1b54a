package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	apihttp "ozzus/prime-checker/internal/api/http"
	"ozzus/prime-checker/internal/checks"
	"ozzus/prime-checker/internal/config"
	"ozzus/prime-checker/internal/domain"
	"ozzus/prime-checker/internal/lib/logger/sl"
	"ozzus/prime-checker/internal/lib/logger/slogpretty"
	"ozzus/prime-checker/internal/repository"
	"ozzus/prime-checker/internal/repository/kafka"
	"ozzus/prime-checker/internal/service"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "unknown"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	log := setupLogger(cfg.Env, cfg.Log.Level)

	log.Info("starting application",
		"env", cfg.Env,
		"service", cfg.Name,
		"version", version,
		"max_value", cfg.Checks.MaxValue,
		"timeout", cfg.Checks.Timeout.String(),
		"max_concurrent", cfg.Checks.MaxConcurrent,
	)

	if err := run(cfg, log); err != nil {
		log.Error("application stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("application stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		results  repository.ResultRepository = repository.NoopResultRepository{}
		requests repository.RequestRepository
	)

	if cfg.Kafka.Enabled {
		log.Info("initializing kafka components", "brokers", cfg.Kafka.Brokers)

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.Requests, cfg.Kafka.GroupID, log)
		defer consumer.Close()

		if err := consumer.CheckConnection(ctx); err != nil {
			log.Warn("kafka is not reachable yet", sl.Err(err))
		}

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.Results)
		defer producer.Close()

		results = repository.NewKafkaResultRepository(producer, log)
		requests = repository.NewKafkaRequestRepository(consumer, log)
	}

	primeService := service.NewPrimeService(
		checks.NewPrimeChecker(cfg.Checks.Timeout),
		results,
		log,
		service.Config{
			Name:          cfg.Name,
			Policy:        cfg.Policy(),
			MaxConcurrent: cfg.Checks.MaxConcurrent,
			QueueTimeout:  cfg.Checks.QueueTimeout,
		},
	)
	primeService.Start()
	defer primeService.Stop()

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := apihttp.NewRouter(
		apihttp.RouterConfig{Debug: cfg.Server.Debug, Prod: cfg.Env == envProd},
		log,
		apihttp.NewPrimeController(primeService),
		apihttp.NewHealthController(primeService, domain.BuildInfo{
			Service: cfg.Name,
			Version: version,
			Commit:  commit,
		}),
	)

	httpServer := &nethttp.Server{
		Addr:           cfg.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	if requests != nil {
		worker := service.NewQueueWorker(requests, primeService, log, service.QueueConfig{
			PollInterval: cfg.Kafka.PollInterval,
			Workers:      cfg.Checks.MaxConcurrent,
		})
		g.Go(func() error {
			return worker.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		primeService.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	})

	log.Info("application started and ready", "addr", httpServer.Addr)

	return g.Wait()
}

func setupLogger(env, level string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
