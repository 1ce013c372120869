package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/GoNotify/notigate/internal/audit"
	"github.com/GoNotify/notigate/internal/config"
	"github.com/GoNotify/notigate/internal/handler"
	"github.com/GoNotify/notigate/internal/logclient"
	"github.com/GoNotify/notigate/internal/masking"
	"github.com/GoNotify/notigate/internal/middleware"
	"github.com/GoNotify/notigate/internal/pkg/logger"
	"github.com/GoNotify/notigate/internal/repository"
	"github.com/GoNotify/notigate/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(cfg.LogLevel)

	// 3. Idempotency Store (Redis > Memory)
	idemTTL := time.Duration(cfg.Redis.IdempotencyTTLSeconds) * time.Second
	var idemStore middleware.IdempotencyStore
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			idemStore = middleware.NewRedisIdempotencyStore(redisClient, idemTTL)
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if idemStore == nil {
		idemStore = middleware.NewMemoryIdempotencyStore(idemTTL)
	}

	// 4. Initialize Core Services
	emailSvc, err := service.NewEmailService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if cfg.Email.FromAddress == "" {
		logger.Warn("⚠️ email.from_address is not set, sends will fail")
	}

	logClient := logclient.New(cfg.LoggingServiceURL, time.Duration(cfg.Logging.TimeoutSeconds)*time.Second)

	policy := masking.NewPolicy()
	emitter := audit.NewEmitter(logClient, policy, audit.Options{
		QueueSize:   cfg.Logging.QueueSize,
		Workers:     cfg.Logging.Workers,
		SendTimeout: time.Duration(cfg.Logging.TimeoutSeconds) * time.Second,
	})

	// 5. Initialize Handlers
	notificationHandler := handler.NewNotificationHandler(emailSvc)
	logsHandler := handler.NewLogsHandler(logClient)

	// 6. Setup Router
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Global Middleware
	// 审计在最外层, 看到所有请求的最终状态码和响应体
	if cfg.EnableRequestLogging {
		r.Use(middleware.RequestAudit(middleware.AuditConfig{
			ServiceName:     cfg.ServiceName,
			LogRequestBody:  cfg.LogRequestBody,
			LogResponseBody: cfg.LogResponseBody,
			MaxBodySize:     cfg.MaxLogBodySize,
		}, policy, emitter))
	}
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware())
	// ErrorHandler 注册在审计之后, 错误信封先写出, 审计才能抓到真实响应
	r.Use(middleware.ErrorHandler())

	// Health Check
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"service": cfg.ServiceName, "status": "running"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": cfg.ServiceName})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API V1 Routes
	v1 := r.Group("/api/v1")
	if cfg.Auth.RequireAPIKey {
		v1.Use(middleware.APIKeyAuth(cfg.Auth.APIKey))
	}
	if cfg.Rate.RPS > 0 {
		v1.Use(middleware.RateLimit(rate.NewLimiter(rate.Limit(cfg.Rate.RPS), cfg.Rate.Burst)))
	}

	notifications := v1.Group("/notifications")
	{
		notifications.POST("/send", middleware.Idempotency(idemStore), notificationHandler.Send)
		notifications.GET("/health", notificationHandler.Health)
		notifications.POST("/support-ticket", middleware.Idempotency(idemStore), notificationHandler.SupportTicket)
	}

	logs := v1.Group("/logs")
	{
		logs.GET("", logsHandler.List)
		logs.GET("/:id", logsHandler.Get)
		logs.GET("/:id/:sub", logsHandler.Subresource)
		logs.DELETE("/cleanup", logsHandler.Cleanup)
	}

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 Notification service started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	// 排空审计队列再退出
	emitter.Close()

	logger.Info("Server exiting")
}
