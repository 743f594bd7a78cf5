package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/advisor"
	"storefront/internal/api"
	"storefront/internal/broker"
	"storefront/internal/catalog"
	"storefront/internal/redisclient"
	"storefront/internal/session"
	"storefront/internal/util"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront",
		zap.String("env", cfg.Server.Env),
		zap.String("session_store", cfg.Session.Store))

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	ctx := context.Background()
	menu := catalog.Default()

	var store session.Store
	var ready api.Checker
	var sweeper *worker.SessionSweeper

	switch cfg.Session.Store {
	case config.StoreRedis:
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))

		store = session.NewRedisStore(redisClient, menu, cfg.Session.TTL)
		ready = redisClient.Ping
	default:
		memStore := session.NewMemoryStore(cfg.Session.TTL)
		store = memStore
		sweeper = worker.NewSessionSweeper(memStore, cfg.Session.SweepInterval)
	}

	var publisher session.EventPublisher = broker.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicStorefront)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicStorefront))
	} else {
		logger.Info("KAFKA_BROKERS not set, storefront events disabled")
	}

	var generator advisor.Generator
	gemini, err := advisor.NewGeminiGenerator(ctx, cfg.Advisor.APIKey, cfg.Advisor.Model)
	switch {
	case err == nil:
		generator = gemini
	case errors.Is(err, advisor.ErrNotConfigured):
		logger.Warn("GEMINI_API_KEY not set, Rosie will always apologise")
	default:
		logger.Error("Failed to initialize advisory service", zap.Error(err))
	}
	adv := advisor.New(generator, menu, cfg.Advisor.Timeout())

	manager := session.NewManager(store, menu, adv, publisher)
	manager.SetAdviceTimeout(cfg.Advisor.Timeout())

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if sweeper != nil {
		go func() {
			if err := sweeper.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Session sweeper error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(manager, ready)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	if sweeper != nil {
		_ = sweeper.Stop()
	}
	workerCancel()

	logger.Info("Server exited")
}
