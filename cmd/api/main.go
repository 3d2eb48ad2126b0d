package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/api/handlers"
	"github.com/docuassist/backend/internal/cache/redis"
	"github.com/docuassist/backend/internal/feedback"
	"github.com/docuassist/backend/internal/generation"
	"github.com/docuassist/backend/internal/ingestion"
	"github.com/docuassist/backend/internal/llm"
	"github.com/docuassist/backend/internal/metrics"
	"github.com/docuassist/backend/internal/middleware/ratelimit"
	"github.com/docuassist/backend/internal/middleware/security"
	"github.com/docuassist/backend/internal/middleware/validation"
	"github.com/docuassist/backend/internal/pipeline"
	"github.com/docuassist/backend/internal/retrieval"
	"github.com/docuassist/backend/internal/storage/sqlite"
	"github.com/docuassist/backend/internal/vector/milvus"
	"github.com/docuassist/backend/pkg/config"
	appLogger "github.com/docuassist/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting DocuAssist API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// The operating mode is fixed here: if the vector backend cannot be
	// constructed the orchestrator serves canned demo answers for the
	// lifetime of the process.
	var (
		retriever *retrieval.Client
		generator *generation.Client
		processor *ingestion.Processor
	)

	milvusClient, err := milvus.NewClient(
		cfg.Milvus.Endpoint,
		cfg.Milvus.APIKey,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
	)
	if err != nil {
		appLogger.Warn("Could not initialize vector store (using demo mode)", zap.Error(err))
	} else {
		defer milvusClient.Close()

		if err := milvusClient.EnsureCollection(context.Background()); err != nil {
			appLogger.Warn("Could not prepare collection (using demo mode)", zap.Error(err))
		} else {
			llmClient := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				Model:          cfg.LLM.Model,
				EmbeddingModel: cfg.LLM.EmbeddingModel,
				Temperature:    cfg.LLM.Temperature,
				MaxTokens:      cfg.LLM.MaxTokens,
				TopP:           cfg.LLM.TopP,
				TimeoutSec:     cfg.LLM.TimeoutSec,
			})

			var cache retrieval.EmbeddingCache
			if cfg.Redis.Enabled {
				redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
				if err != nil {
					appLogger.Warn("Redis unavailable, embedding cache disabled", zap.Error(err))
				} else {
					defer redisClient.Close()
					cache = redisClient
				}
			}

			retriever = retrieval.NewClient(llmClient, milvusClient, cache)
			generator = generation.NewClient(llmClient, generation.Config{
				HighRelevance:   cfg.RAG.HighRelevance,
				MediumRelevance: cfg.RAG.MediumRelevance,
			})
			processor = ingestion.NewProcessor(retriever)
		}
	}

	sink := feedback.NewSink(sqliteClient)

	orchestrator := pipeline.New(pipeline.Config{
		TopK:               cfg.RAG.TopK,
		SimulatedLatencyMS: cfg.RAG.SimulatedLatencyMS,
		HistoryWindow:      cfg.RAG.HistoryWindow,
	}, retriever, generator, sink, sqliteClient)

	if processor != nil && cfg.RAG.LoadSampleDocuments {
		count, err := processor.LoadSamples(context.Background())
		if err != nil {
			appLogger.Warn("Failed to load sample documents", zap.Error(err))
		} else {
			appLogger.Info("Sample documents loaded", zap.Int("count", count))
		}
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	queryHandler := handlers.NewQueryHandler(orchestrator)
	feedbackHandler := handlers.NewFeedbackHandler(orchestrator, sink)
	documentHandler := handlers.NewDocumentHandler(processor, retriever)
	wsHandler := handlers.NewWebSocketHandler(orchestrator)

	api := app.Group("/api/v1")

	api.Post("/chat/query", queryHandler.HandleQuery)
	api.Get("/chat/history/:user_id", queryHandler.GetHistory)
	api.Get("/chat/health", queryHandler.GetChatHealth)

	api.Post("/feedback", feedbackHandler.SubmitFeedback)
	api.Get("/feedback/metrics", feedbackHandler.GetFeedbackMetrics)

	api.Post("/documents", documentHandler.UploadDocuments)
	api.Delete("/documents/:id", documentHandler.DeleteDocument)
	api.Get("/documents/health", documentHandler.GetStoreHealth)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"mode":   orchestrator.Mode(),
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting",
		zap.String("address", addr),
		zap.String("mode", orchestrator.Mode()),
	)

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
