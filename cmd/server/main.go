package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"diagnostic-imaging-service/internal/adapters/primary/http/handlers"
	"diagnostic-imaging-service/internal/adapters/primary/http/middleware"
	"diagnostic-imaging-service/internal/adapters/secondary/gcs"
	"diagnostic-imaging-service/internal/adapters/secondary/postgres"
	"diagnostic-imaging-service/internal/adapters/secondary/roboflow"
	"diagnostic-imaging-service/internal/config"
	"diagnostic-imaging-service/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	loc, err := time.LoadLocation(cfg.Pipeline.Timezone)
	if err != nil {
		log.Fatalf("load history timezone %q: %v", cfg.Pipeline.Timezone, err)
	}

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports)
	historyRepo := postgres.NewHistoryRepository(pool)

	storageGateway, err := gcs.NewClient(context.Background(), &cfg.Storage)
	if err != nil {
		log.Fatalf("create storage gateway: %v", err)
	}
	log.Infof("storage gateway initialized (bucket %s)", cfg.Storage.Bucket)

	inferenceGateway := roboflow.NewClient(&cfg.Inference)
	log.Infof("inference gateway initialized (model %s)", cfg.Inference.ModelID)

	renderer := services.NewRenderer()
	if cfg.Pipeline.FontPath != "" {
		renderer, err = services.NewRendererWithFont(cfg.Pipeline.FontPath, cfg.Pipeline.FontSize)
		if err != nil {
			log.Warnf("label font init failed (falling back to built-in face): %v", err)
			renderer = services.NewRenderer()
		}
	}

	// Core Services (Application Layer)
	historySvc := services.NewHistoryService(historyRepo, storageGateway)
	pipelineSvc := services.NewPipelineService(
		storageGateway, inferenceGateway, historySvc, renderer,
		cfg.Pipeline.StageTimeout, loc,
	)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(pipelineSvc, historySvc, storageGateway)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
