package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"shopmate/internal/config"
	"shopmate/internal/handler"
	"shopmate/internal/repository"
	"shopmate/internal/service"
	"shopmate/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("Shopmate Conversational Shopping Assistant")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// OpenAI-compatible client backs the classifiers, the composer and
	// the image analyzer. Without a key, per-turn calls fail and the
	// coordinator substitutes its fallbacks.
	aiClient := service.NewOpenAIClient(&cfg.OpenAI)
	if cfg.OpenAI.Enabled {
		log.Printf("OpenAI client initialized")
		log.Printf("  - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("  - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("  - Vision model: %s", cfg.OpenAI.VisionModel)
		log.Printf("  - Embedding model: %s", cfg.OpenAI.EmbeddingModel)
	} else {
		log.Println("Warning: OpenAI is disabled - conversation analysis will fall back to clarification replies")
		log.Println("  Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Catalog provider credentials are a startup-time requirement
	searcher, err := service.NewSerperClient(&cfg.Serper)
	if err != nil {
		log.Fatalf("Failed to initialize catalog search: %v", err)
	}

	// Optional Postgres analytics/product store
	var repo *repository.Repository
	if cfg.Postgres.Enabled {
		repo, err = repository.NewRepository(
			cfg.Postgres.DSN,
			cfg.Postgres.MaxConnections,
			cfg.Postgres.MaxIdleConnections,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()
		log.Println("Connected to PostgreSQL database")
	} else {
		log.Println("Postgres is disabled - search logging and semantic recall are off")
	}

	// Initialize services
	analyzer, err := service.NewAnalyzer(
		service.NewConversationClassifier(aiClient),
		service.NewParamExtractor(aiClient),
	)
	if err != nil {
		log.Fatalf("Failed to initialize analyzer: %v", err)
	}

	var embedder service.Embedder
	if cfg.OpenAI.Enabled {
		embedder = aiClient
	}

	chatService := service.NewChatService(
		session.NewStore(),
		analyzer,
		searcher,
		service.NewComposer(aiClient),
		service.NewImageAnalyzer(aiClient),
		embedder,
		repo,
		cfg.Search.ReturnLimit,
	)

	log.Println("Services initialized")

	// Upload directory for image chat
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService, cfg.Upload.Dir)
	feedbackHandler := handler.NewFeedbackHandler(chatService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "shopping-assistant",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	api := router.Group("/api")
	{
		api.POST("/chat/text", chatHandler.HandleText)
		api.POST("/chat/image", chatHandler.HandleImage)
		api.GET("/images/:name", chatHandler.ServeImage)
	}
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	addr := cfg.Addr()
	log.Printf("Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	log.Println("Server stopped")
}
