package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/summarizer/api/internal/client"
	"github.com/summarizer/api/internal/config"
	"github.com/summarizer/api/internal/handler"
	"github.com/summarizer/api/internal/middleware"
	"github.com/summarizer/api/internal/model"
	"github.com/summarizer/api/internal/notify"
	"github.com/summarizer/api/internal/service"
	"github.com/summarizer/api/internal/storage"
	"github.com/summarizer/api/internal/task"
	"github.com/summarizer/api/internal/vector"
	"github.com/summarizer/api/internal/worker"
	ws "github.com/summarizer/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize AI clients
	llmClient := client.NewLLMClient(cfg.LLM)
	qaClient := client.NewLLMClient(cfg.QAModel)
	embedClient := client.NewEmbedClient(cfg.Embedder)
	rerankClient := client.NewRerankClient(cfg.Reranker)

	// Initialize vector indexer (optional)
	var indexer *vector.Indexer
	if cfg.Vector.DatabaseURL != "" {
		indexer, err = vector.NewIndexer(ctx, cfg.Vector, embedClient)
		if err != nil {
			log.Printf("Warning: vector store unavailable, indexing disabled: %v", err)
		} else {
			defer indexer.Close()
		}
	}

	// Initialize storage, registry and conversion runner
	store := storage.NewStore(cfg.Storage)
	registry := task.NewRegistry()
	notifier := notify.NewEmailNotifier(cfg.SMTP)
	runner := task.NewRunner(registry, notifier, cfg.Whisper)
	runner.SetObserver(func(key string, job model.Job) {
		switch job.Status {
		case model.JobStatusError:
			hub.BroadcastError(key, "CONVERT_FAILED", job.Message)
		case model.JobStatusDone:
			vtt := strings.TrimSuffix(key, filepath.Ext(key)) + ".vtt"
			hub.BroadcastComplete(key, filepath.Base(vtt))
		default:
			hub.BroadcastStatus(key, job.Status)
		}
	})

	// Initialize services
	convertService := service.NewConvertService(registry, store, asynqClient)
	analyzeService := service.NewAnalyzeService(llmClient, store)
	summarizeService := service.NewSummarizeService(llmClient)
	qaService := service.NewQAService(qaClient, indexer, rerankClient)

	// Initialize handlers
	convertHandler := handler.NewConvertHandler(convertService, store, notifier, validate, cfg.Storage.MaxUploadSize)
	analyzeHandler := handler.NewAnalyzeHandler(analyzeService, validate)
	summarizeHandler := handler.NewSummarizeHandler(summarizeService, validate)
	qaHandler := handler.NewQAHandler(qaService, validate)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(redisClient)
	authenticate := middleware.NewAuthMiddleware(cfg.JWT.Secret).Authenticate()
	if cfg.Gateway.Enabled {
		// Identity comes from the auth gateway in front of us
		authenticate = middleware.GatewayAuthMiddleware()
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(cfg.Storage.MaxUploadSize),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api/v1", authenticate)

	// Conversion routes
	api.Post("/audio-to-vtt", rateLimiter.ConvertLimit(cfg.RateLimit.ConvertPerHour), convertHandler.AudioToVtt)
	api.Post("/audio-to-vtt/complete", convertHandler.Complete)
	api.Get("/convert-process", convertHandler.Process)
	api.Get("/task-status", convertHandler.TaskStatus)
	api.Get("/vtt", convertHandler.ListVtts)

	// Analysis routes
	api.Post("/analyze", rateLimiter.AnalyzeLimit(cfg.RateLimit.AnalyzePerMin), analyzeHandler.Analyze)
	api.Post("/summarize", rateLimiter.SummarizeLimit(cfg.RateLimit.SummarizePerMin), summarizeHandler.Summarize)
	api.Post("/ask", rateLimiter.SummarizeLimit(cfg.RateLimit.SummarizePerMin), qaHandler.Ask)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobKey", websocket.New(func(c *websocket.Conn) {
		jobKey := c.Params("jobKey")
		hub.HandleConnection(c, jobKey)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, runner, indexer, store)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, runner *task.Runner, indexer *vector.Indexer, store *storage.Store) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"convert": 6,
				"index":   4,
			},
		},
	)

	// Create workers
	convertWorker := worker.NewConvertWorker(runner)
	indexWorker := worker.NewIndexWorker(indexer, store)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeConvert, convertWorker.ProcessTask)
	mux.HandleFunc(service.TaskTypeIndex, indexWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
