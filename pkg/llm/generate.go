package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

const maxInsightsPerBatch = 5

type PricingInsight struct {
	Type           string   `json:"type"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	ActionLabel    string   `json:"action_label"`
	ArticleIDs     []string `json:"article_ids"`
	CurrentPrice   float64  `json:"current_price"`
	SuggestedPrice float64  `json:"suggested_price"`
	Reasoning      string   `json:"reasoning"`
	Confidence     float64  `json:"confidence"`
}

type ProactiveInsight struct {
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	ActionLabel string   `json:"action_label"`
	ArticleIDs  []string `json:"article_ids"`
	MemberIDs   []string `json:"member_ids"`
}

type BundleCopy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GeneratePricingInsights runs one structured completion and parses the whole
// batch. A malformed response fails the batch, there is no partial acceptance.
func GeneratePricingInsights(ctx context.Context, c Client, userPrompt string) ([]PricingInsight, error) {
	content, err := c.Complete(ctx, PricingSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	content = cleanJSONResponse(content)

	var parsed struct {
		Insights []PricingInsight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse pricing response: %w, content: %s", err, content)
	}

	if len(parsed.Insights) == 0 {
		return nil, fmt.Errorf("no insights in pricing response")
	}

	for i, ins := range parsed.Insights {
		if ins.Title == "" || ins.Message == "" {
			return nil, fmt.Errorf("pricing insight %d is missing title or message", i)
		}
		if len(ins.ArticleIDs) == 0 {
			return nil, fmt.Errorf("pricing insight %d references no articles", i)
		}
		if ins.SuggestedPrice <= 0 {
			return nil, fmt.Errorf("pricing insight %d has invalid suggested price %.2f", i, ins.SuggestedPrice)
		}
		if ins.Confidence < 0 || ins.Confidence > 1 {
			return nil, fmt.Errorf("pricing insight %d has confidence %.2f outside [0,1]", i, ins.Confidence)
		}
	}

	if len(parsed.Insights) > maxInsightsPerBatch {
		parsed.Insights = parsed.Insights[:maxInsightsPerBatch]
	}

	return parsed.Insights, nil
}

func GenerateProactiveInsights(ctx context.Context, c Client, systemPrompt, userPrompt string) ([]ProactiveInsight, error) {
	content, err := c.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	content = cleanJSONResponse(content)

	var parsed struct {
		Insights []ProactiveInsight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse proactive response: %w, content: %s", err, content)
	}

	for i, ins := range parsed.Insights {
		if ins.Title == "" || ins.Message == "" {
			return nil, fmt.Errorf("proactive insight %d is missing title or message", i)
		}
	}

	if len(parsed.Insights) > maxInsightsPerBatch {
		parsed.Insights = parsed.Insights[:maxInsightsPerBatch]
	}

	return parsed.Insights, nil
}

func GenerateBundleCopy(ctx context.Context, c Client, userPrompt string) (*BundleCopy, error) {
	content, err := c.Complete(ctx, BundleCopySystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	content = cleanJSONResponse(content)

	var parsed BundleCopy
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse bundle copy response: %w, content: %s", err, content)
	}

	if parsed.Title == "" || parsed.Description == "" {
		return nil, fmt.Errorf("bundle copy response is missing title or description")
	}

	return &parsed, nil
}
