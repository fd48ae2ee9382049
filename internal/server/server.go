package server

import (
	"context"
	"log"
	"net/http"

	"codearena/configs"
	"codearena/internal/dbs"
	"codearena/internal/handlers"
	"codearena/internal/judge"
	"codearena/internal/logger"
	"codearena/internal/middlewares"
	"codearena/internal/repositories"
	"codearena/internal/services"
	"codearena/internal/workerpool"

	"github.com/gin-gonic/gin"
)

// StartGinServer wires the whole service: clients are constructed here and
// injected down, nothing lives as package-level mutable state.
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
	redisClient, err := dbs.InitRedis(ctx, config)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	cache := services.NewTestCaseCache(services.NewRedisCache(redisClient))
	problemRepo := repositories.NewProblemRepository(db, cache)
	submissionRepo := repositories.NewSubmissionRepository(db)

	executor, err := judge.NewProcessExecutor(config.JudgeWorkDir)
	if err != nil {
		log.Fatalf("Failed to create process executor: %v", err)
	}
	judgeService := judge.NewService(executor)

	pool := workerpool.NewJudgeWorkerPool(config.NumberOfWorkers, redisClient,
		handlers.SubmissionStream, "judgers", problemRepo, submissionRepo, judgeService)
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("failed to start worker pool: %v", err)
	}
	defer pool.Stop()

	router := gin.New()
	router.Use(middlewares.ErrorHandlerMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	handlers.NewProblemHandler(problemRepo).RegisterRoutes(router)
	handlers.NewSubmissionHandler(submissionRepo, redisClient).RegisterRoutes(router)
	handlers.NewJudgeHandler(problemRepo, submissionRepo, judgeService, config).RegisterRoutes(router)

	port := ":" + config.ServerPort
	log.Printf("Starting server on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
