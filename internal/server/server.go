package server

import (
	"codearena/configs"
	"codearena/internal/dbs"
	"codearena/internal/handlers"
	"codearena/internal/judge0"
	"codearena/internal/judging"
	"codearena/internal/logger"
	"codearena/internal/middlewares"
	"codearena/internal/plagiarism"
	"codearena/internal/repositories"
	"codearena/internal/services"
	"codearena/internal/workerpool"

	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func StartGinServer() {
	logger.InitLogger()
	defer logger.SyncLogger()

	config := configs.LoadConfig()

	db, err := dbs.Init(config)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := dbs.InitRedis(ctx, config.RedisAddr); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer dbs.CloseRedis()

	cache := services.NewRedisCache(dbs.RedisClient)
	tokenService := services.NewTokenService(config.JWTSecret)

	judgeClient := judge0.NewClient(
		config.Judge0URL,
		config.Judge0APIHost,
		config.Judge0APIKey,
		time.Duration(config.Judge0TimeoutSec)*time.Second,
		judge0.DefaultLanguages(config.FallbackLanguageID),
	)

	problemRepo := repositories.NewProblemRepository(db, cache)
	submissionRepo := repositories.NewSubmissionRepository(db)
	plagiarismRepo := repositories.NewPlagiarismRepository(db)
	userRepo := repositories.NewUserRepository(db, cache)

	orchestrator := judging.NewOrchestrator(judgeClient, submissionRepo)
	poller := judging.NewPoller(judgeClient, submissionRepo, problemRepo)
	dispatcher := judging.NewDispatcher(judgeClient, submissionRepo, problemRepo)
	detector := plagiarism.NewDetector(submissionRepo, plagiarismRepo)

	pool := workerpool.NewDispatchWorkerPool(
		config.NumberOfWorkers,
		dbs.RedisClient,
		handlers.DispatchStream,
		"judgers",
		dispatcher,
	)
	if err := pool.Start(ctx); err != nil {
		logger.Log.Error("Failed starting worker pool")
		log.Fatalf("failed to start worker pool: %v", err)
	}
	defer pool.Stop()

	router := gin.New()
	router.Use(middlewares.ErrorHandlerMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	auth := middlewares.AuthMiddleware(tokenService)
	admin := middlewares.AdminMiddleware()

	handlers.NewAuthHandler(userRepo, tokenService).RegisterRoutes(router)
	handlers.NewProblemHandler(problemRepo).RegisterRoutes(router)
	handlers.NewSubmissionHandler(submissionRepo, problemRepo, orchestrator, poller, judgeClient, dbs.RedisClient).RegisterRoutes(router, auth)
	handlers.NewPlagiarismHandler(detector, plagiarismRepo).RegisterRoutes(router, auth, admin)

	port := ":" + config.ServerPort
	log.Printf("Starting server on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
