package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/haniwon/clinic-platform/cmd/mainconfig"
	"github.com/haniwon/clinic-platform/internal/ambiguity"
	"github.com/haniwon/clinic-platform/internal/api/router"
	"github.com/haniwon/clinic-platform/internal/chat"
	appconfig "github.com/haniwon/clinic-platform/internal/config"
	"github.com/haniwon/clinic-platform/internal/inventory"
	"github.com/haniwon/clinic-platform/internal/observability/metrics"
	"github.com/haniwon/clinic-platform/internal/patients"
	"github.com/haniwon/clinic-platform/internal/prescription"
	"github.com/haniwon/clinic-platform/internal/schedule"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	gate := ambiguity.NewGate(cfg.AmbiguousHerbs)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prescriptionMetrics := metrics.NewPrescriptionMetrics(registry)
	inventoryMetrics := metrics.NewInventoryMetrics(registry)

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var (
		patientRepo      patients.Repository
		inventoryRepo    inventory.Repository
		prescriptionRepo prescription.Repository
		scheduleRepo     schedule.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		patientRepo = patients.NewPostgresRepository(pool)
		inventoryRepo = inventory.NewPostgresRepository(pool)
		prescriptionRepo = prescription.NewPostgresRepository(pool)
		scheduleRepo = schedule.NewPostgresRepository(pool)
		logger.Info("using PostgreSQL storage")
	} else {
		patientRepo = patients.NewInMemoryRepository()
		inventoryRepo = inventory.NewInMemoryRepository()
		prescriptionRepo = prescription.NewInMemoryRepository()
		scheduleRepo = schedule.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Chat history: Redis when configured, in-memory otherwise.
	var chatStore chat.Store
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()

		chatStore = chat.NewRedisStore(redisClient, cfg.ChatMessageTTL, cfg.ChatHistoryLimit)
		logger.Info("using Redis chat storage", "addr", cfg.RedisAddr)
	} else {
		chatStore = chat.NewMemoryStore()
		logger.Warn("REDIS_ADDR not set, chat history is in-memory only")
	}

	// Workflow run log: optional DynamoDB audit trail.
	var runRecorder prescription.RunRecorder
	if cfg.WorkflowRunsTable != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		dynamoClient := dynamodb.NewFromConfig(awsCfg)
		runRecorder = prescription.NewRunStore(dynamoClient, cfg.WorkflowRunsTable, logger)
		logger.Info("workflow run log enabled", "table", cfg.WorkflowRunsTable)
	}

	// Services
	inventorySvc := inventory.NewService(inventoryRepo, logger, inventoryMetrics)

	hub := chat.NewHub()
	chatSvc := chat.NewService(chatStore, hub, gate, inventorySvc, logger,
		cfg.PrescriptionRoomID, cfg.CreatedByName)

	prescriptionSvc := prescription.NewService(
		prescriptionRepo, patientRepo, scheduleRepo, chatSvc, runRecorder,
		gate, prescriptionMetrics, logger, cfg.PrescriptionRoomID,
	)

	// Router
	r := router.New(&router.Config{
		Logger:              logger,
		PatientsHandler:     patients.NewHandler(patientRepo, logger),
		InventoryHandler:    inventory.NewHandler(inventoryRepo, logger),
		PrescriptionHandler: prescription.NewHandler(prescriptionSvc, prescriptionRepo, logger),
		ScheduleHandler:     schedule.NewHandler(scheduleRepo, logger),
		ChatHandler:         chat.NewHandler(chatSvc, hub, cfg.ChatHistoryLimit, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
