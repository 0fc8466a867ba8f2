package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/salasvega/easyvinted8-sub003/db"
	"github.com/salasvega/easyvinted8-sub003/internal/handler"
	"github.com/salasvega/easyvinted8-sub003/internal/insight"
	"github.com/salasvega/easyvinted8-sub003/internal/repository"
	"github.com/salasvega/easyvinted8-sub003/pkg/llm"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	llmClient, err := newLLMClient()
	if err != nil {
		log.Fatalf("error creating LLM client: %v", err)
	}

	insightRepo := repository.NewInsightRepository(db.DB)
	itemRepo := repository.NewItemRepository(db.DB)
	overlay := repository.NewDismissalOverlay(db.Redis)

	pricing := insight.NewPricingGenerator(llmClient)
	proactive := insight.NewProactiveGenerator(llmClient, itemRepo)
	executor := insight.NewExecutor(insightRepo, itemRepo, llmClient, insight.NewQueueScheduler())
	service := insight.NewService(insightRepo, itemRepo, pricing, proactive, executor, overlay)

	insightHandler := handler.NewInsightHandler(service, db.DB.Ping)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "X-Owner-ID"},
	}))

	r.GET("/health", insightHandler.GetHealth)

	authed := r.Group("/", handler.OwnerRequired())
	authed.GET("/insights", insightHandler.GetInsights)
	authed.POST("/insights/:id/dismiss", insightHandler.DismissInsight)
	authed.POST("/insights/:id/execute", insightHandler.ExecuteInsight)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	err = r.Run(":" + port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func newLLMClient() (llm.Client, error) {
	switch os.Getenv("LLM_PROVIDER") {
	case "anthropic":
		return llm.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY")), nil
	case "gemini":
		return llm.NewGeminiClient(context.Background(), os.Getenv("GEMINI_API_KEY"))
	default:
		return llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY")), nil
	}
}
