package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contract-backend/config"
	"contract-backend/handlers"
	"contract-backend/llm"
	"contract-backend/logger"
	"contract-backend/repository"
	"contract-backend/service"
	"contract-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Invalid configuration: %v", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Log.Fatalf("Failed to initialize logger: %v", err)
	}
	log := logger.Log

	ctx := context.Background()

	// Initialize database connection
	db, err := initPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize Postgres: %v", err)
	}
	defer db.Close()

	// Initialize storage
	fileStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.WithField("type", cfg.Storage.Type).Info("Storage initialized")

	// Initialize generation backend
	generator, closeGenerator, err := llm.New(ctx, llm.Settings{
		Provider:          cfg.LLM.Provider,
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		Burst:             cfg.LLM.Burst,
	})
	if err != nil {
		log.Fatalf("Failed to initialize %s generator: %v", cfg.LLM.Provider, err)
	}
	defer closeGenerator()
	log.WithField("provider", cfg.LLM.Provider).Info("Generation backend initialized")

	// Initialize repositories
	analysisRepo := repository.NewContractAnalysisRepository(db)
	jobRepo := repository.NewAnalysisJobRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// Initialize services
	analysisService := service.NewAnalysisService(
		service.WithGenerator(generator),
		service.WithCitationCheck(cfg.Analysis.VerifyCitations),
	)
	fileService := service.NewFileService(
		service.WithFileStore(fileRepo),
		service.WithStorage(fileStorage),
		service.WithMaxFileSize(cfg.MaxUploadBytes),
	)
	contractService := service.NewContractService(
		service.WithAnalysisStore(analysisRepo),
		service.WithJobStore(jobRepo),
		service.WithFileService(fileService),
		service.WithAnalyzer(analysisService),
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(
		handlers.NewAnalyzeHandler(analysisService),
		handlers.NewAnalysisHandler(contractService, cfg.Analysis.Timeout),
		handlers.NewFileHandler(fileService),
	)
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Log.Info("Postgres connection established")
	return pool, nil
}
