package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"employee-review/internal/config"
	"employee-review/internal/db"
	apihttp "employee-review/internal/http"
	"employee-review/internal/llm"
	"employee-review/internal/repository"
	"employee-review/internal/service"
	"employee-review/internal/weight"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	employeeRepo := repository.NewPgEmployeeRepository(pool)
	reviewerRepo := repository.NewPgReviewerRepository(pool)
	aspectRepo := repository.NewPgAspectRepository(pool)
	feedbackRepo := repository.NewPgFeedbackRepository(pool)
	summaryRepo := repository.NewPgSummaryRepository(pool)

	llmOpts := llm.DefaultOptions()
	llmOpts.SystemPrompt = cfg.LLMSystemPrompt
	llmOpts.MaxTokens = cfg.LLMMaxTokens
	llmOpts.Temperature = cfg.LLMTemperature
	httpClient := llm.NewHTTPClient(cfg.LLMEndpoint, llmOpts, &http.Client{Timeout: cfg.LLMTimeout}, logger)
	llmClient, err := llm.NewCachingClient(httpClient, cfg.LLMCacheSize)
	if err != nil {
		logger.Fatal("llm cache init", zap.Error(err))
	}

	var locker service.RunLocker = service.NewLocalRunLocker()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using local run lock", zap.Error(err))
		} else {
			locker = service.NewRedisRunLocker(redisClient, cfg.RunLockTTL, logger)
		}
		cancel()
	}

	var jwtSvc *service.JWTService
	if cfg.APIJWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.APIJWTSecret, cfg.APITokenTTL)
	} else {
		logger.Warn("jwt secret not configured, write routes are open")
	}

	weightEngine := weight.NewEngine(weight.NewVaderSentiment(), weight.PopulationStdDev{})
	feedbackSvc := service.NewFeedbackService(employeeRepo, reviewerRepo, feedbackRepo, weightEngine, logger)
	summarySvc := service.NewSummaryService(llmClient, employeeRepo, aspectRepo, feedbackRepo, summaryRepo, locker, cfg.MaxPromptLength, logger)

	router := apihttp.NewRouter(
		logger,
		jwtSvc,
		apihttp.NewHealthHandler(logger, pool),
		apihttp.NewFeedbackHandler(logger, feedbackSvc),
		apihttp.NewAspectHandler(logger, aspectRepo),
		apihttp.NewSummaryHandler(logger, summarySvc, employeeRepo, summaryRepo),
		apihttp.NewEmployeeHandler(logger, employeeRepo),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
