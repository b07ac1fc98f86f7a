package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-rag-chatbot/internal/ai"
	"pdf-rag-chatbot/internal/config"
	"pdf-rag-chatbot/internal/logger"
	"pdf-rag-chatbot/internal/telemetry"
	"pdf-rag-chatbot/middleware"
	"pdf-rag-chatbot/routes"
	"pdf-rag-chatbot/services"
	"pdf-rag-chatbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer(cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("Failed to initialize tracer:", err)
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics(cfg.ServiceName)
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	ctx := context.Background()

	embedder, err := ai.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}
	defer closeProvider("embedder", embedder)
	completer, err := ai.NewCompleter(ctx, cfg, metrics)
	if err != nil {
		log.Fatal("Failed to initialize LLM client:", err)
	}
	defer closeProvider("llm", completer)

	pingers := map[string]routes.Pinger{}

	// Sessions live in Redis when configured, otherwise in memory with a
	// periodic sweep.
	var store services.SessionStore
	var rdb *redis.Client
	cron := services.NewCronService()
	if cfg.RedisURL != "" {
		rdb, err = config.NewRedisClient(cfg)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer rdb.Close()
		compression, err := utils.ParseCompression(cfg.SessionCompression)
		if err != nil {
			log.Fatal("Invalid session compression:", err)
		}
		store = services.NewRedisSessionStore(rdb, cfg.SessionTTL, compression)
		pingers["redis"] = routes.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		mem := services.NewMemorySessionStore(cfg.SessionTTL).WithMaxSessions(cfg.MaxSessions)
		if err := cron.ScheduleSessionSweep(mem, time.Minute); err != nil {
			log.Fatal("Failed to schedule session sweep:", err)
		}
		store = mem
	}
	cron.Start()
	defer cron.Stop()

	var transcripts services.TranscriptStore = services.NopTranscriptStore{}
	if cfg.MongoURI != "" {
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			mongoClient.Disconnect(ctx)
		}()
		transcripts = services.NewMongoTranscriptStore(mongoClient.Database(cfg.DBName).Collection(config.MessagesCollection))
		pingers["mongo"] = mongoPinger(mongoClient)
	}

	svc := services.NewChatService(services.ChatServiceDeps{
		Extractor:   services.NewPDFExtractor(cfg.MaxFileSize),
		Chunker:     services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		Embedder:    embedder,
		Completer:   completer,
		Store:       store,
		Transcripts: transcripts,
		Metrics:     metrics,
		TopK:        cfg.TopK,
		Temperature: cfg.LLMTemperature,
	})

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware(cfg.ServiceName))
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.SessionIDFromHeader())
	router.Use(middleware.AccessLogMiddleware())
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitReqs, cfg.RateLimitWindow))

	routes.SetupHealthRoutes(router, pingers)
	routes.SetupAPIRoutes(router, cfg, svc)
	routes.SetupStaticRoutes(router, cfg.StaticDir)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting",
			"port", cfg.Port,
			"llm_provider", cfg.LLMProvider,
			"llm_model", completer.Model(),
			"embedder", embedder.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// closeProvider releases provider clients that hold connections.
func closeProvider(name string, v any) {
	if err := ai.Close(v); err != nil {
		logger.Warn("Failed to close provider client", "provider", name, "error", err)
	}
}

func mongoPinger(client *mongo.Client) routes.PingFunc {
	return func(ctx context.Context) error { return client.Ping(ctx, nil) }
}
