package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"go.uber.org/zap"

	"github.com/enrolhq/enrolment-relay/internal/api/handlers"
	"github.com/enrolhq/enrolment-relay/internal/store"
	"github.com/enrolhq/enrolment-relay/pkg/env"
	"github.com/enrolhq/enrolment-relay/pkg/logger"
	"github.com/enrolhq/enrolment-relay/pkg/middleware"
	"github.com/enrolhq/enrolment-relay/pkg/otel"
)

// Server wires the webhook handlers to their collaborators.
type Server struct {
	cfg         *env.Config
	redisClient *redis.Client
	handler     *handlers.Handler
}

func main() {
	cfg, err := env.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize OpenTelemetry if enabled
	if cfg.OTELEnabled {
		shutdown, err := otel.InitTracing("enrolment-relay", "1.0.0", cfg.OTELEndpoint)
		if err != nil {
			logger.Log.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer shutdown()
			logger.Log.Info("OpenTelemetry tracing enabled", zap.String("endpoint", cfg.OTELEndpoint))
		}
	}

	logger.Log.Info("Starting enrolment relay",
		zap.String("env", cfg.AppEnv),
		zap.String("port", cfg.AppPort),
	)

	// Initialize Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	apiHandler := handlers.NewHandler(cfg, store.NewRedis(redisClient), logger.Log)

	server := &Server{
		cfg:         cfg,
		redisClient: redisClient,
		handler:     apiHandler,
	}

	router := server.setupRouter()

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("Enrolment relay listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}

func (s *Server) setupRouter() *gin.Engine {
	if s.cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(1 << 20)) // 1 MB limit

	// Add OpenTelemetry middleware if enabled
	if s.cfg.OTELEnabled {
		router.Use(otel.GinMiddleware())
	}

	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s\n",
			param.TimeStamp.Format(time.RFC3339),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
		)
	}))

	// CORS
	corsConfig := cors.DefaultConfig()
	if s.cfg.CORSAllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{s.cfg.CORSAllowedOrigins}
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "tally-signature"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", s.handler.HealthCheck)

	// Webhook endpoints (public, HMAC verified)
	hooks := router.Group("/webhook")
	if s.cfg.WebhookRateLimitRPM > 0 {
		rateLimiter := middleware.NewRateLimiter(s.redisClient, s.cfg.WebhookRateLimitRPM)
		hooks.Use(rateLimiter.Middleware())
	}
	{
		hooks.POST("/submission", s.handler.SubmissionWebhook)
		hooks.GET("/submission", s.handler.ListSubmissions)
		hooks.DELETE("/submission", s.handler.DeleteSubmission)
		hooks.HEAD("/submission", s.handler.Probe)
		hooks.OPTIONS("/submission", s.handler.Probe)

		hooks.POST("/participants/teams/update", s.handler.TeamUpdateWebhook)
		hooks.HEAD("/participants/teams/update", s.handler.Probe)
		hooks.OPTIONS("/participants/teams/update", s.handler.Probe)
	}

	return router
}
