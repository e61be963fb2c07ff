package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"insight-profile/internal/config"
	"insight-profile/internal/db"
	apihttp "insight-profile/internal/http"
	"insight-profile/internal/llm"
	"insight-profile/internal/profiling"
	"insight-profile/internal/repository"
	"insight-profile/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "2.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	if cfg.LogDevelopment {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL, db.DirectionUp, 0); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		logger.Info("migrations applied")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	profileRepo := repository.NewPgProfileRepository(pool)
	analysisRepo := repository.NewPgAnalysisRepository(pool)

	provider := profiling.NewHTTPClient(cfg.HumanticBaseURL, cfg.HumanticAPIKey, cfg.HumanticPersona, cfg.HumanticTimeout(), logger)
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger,
		llm.WithSystemPrompt(service.AnalysisSystemPrompt),
	)
	analysisSvc := service.NewAnalysisService(llmClient, logger)

	refreshLimiter := service.NewRefreshLimiter(cfg.ForceRefreshWindow(), cfg.ForceRefreshMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory refresh limiter", zap.Error(err))
		} else {
			refreshLimiter = service.NewRedisRefreshLimiter(redisClient, cfg.ForceRefreshWindow(), cfg.ForceRefreshMax)
		}
		cancel()
	}

	insightSvc := service.NewInsightService(profileRepo, analysisRepo, provider, analysisSvc,
		service.InsightConfig{
			CacheExpiry:     cfg.CacheExpiry(),
			ProcessingDelay: cfg.ProcessingDelay(),
			Model:           llmClient.Model(),
		},
		logger,
		service.WithRefreshLimiter(refreshLimiter),
	)

	adminTokens := service.NewAdminTokenService(cfg.AdminJWTSecret, cfg.AdminJWTIssuer)
	if !adminTokens.Enabled() {
		logger.Warn("admin jwt secret not configured, cache invalidation is unauthenticated")
	}

	insightHandler := apihttp.NewInsightHandler(logger, insightSvc)
	healthHandler := apihttp.NewHealthHandler(logger, insightSvc, version)
	router := apihttp.NewRouter(logger, insightHandler, healthHandler, adminTokens, cfg.CORSOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.Duration("cache_expiry", cfg.CacheExpiry()),
		zap.Duration("processing_delay", cfg.ProcessingDelay()),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
