package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/salasvega/easyvinted8-sub003/db"
	"github.com/salasvega/easyvinted8-sub003/internal/insight"
	"github.com/salasvega/easyvinted8-sub003/internal/repository"
	"github.com/salasvega/easyvinted8-sub003/pkg/llm"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	err = db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

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

	for {
		ownerID, err := db.PopRegeneration(30 * time.Second)
		if err != nil {
			if err != redis.Nil {
				slog.Error("error popping from regeneration queue", "error", err)
				time.Sleep(5 * time.Second)
			}
			continue
		}

		slog.Info("regenerating insight caches", "owner_id", ownerID)

		snap, err := service.Regenerate(context.Background(), ownerID)
		if err != nil {
			slog.Error("error regenerating insights", "owner_id", ownerID, "error", err)
			continue
		}

		for cacheKey, msg := range snap.PipelineErrors {
			slog.Error("pipeline failed during regeneration", "owner_id", ownerID, "cache_key", cacheKey, "error", msg)
		}

		slog.Info("insight caches regenerated",
			"owner_id", ownerID,
			"general", len(snap.General),
			"pricing", len(snap.Pricing),
			"scheduling", len(snap.Scheduling))
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
