package llm

import (
	"context"
	"strings"
)

// Client is a single-turn generative backend. Implementations return the raw
// model text; schema parsing and validation happen in the task helpers so the
// providers stay interchangeable.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	ModelName() string
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.IndexAny(content, "{[")
	end := strings.LastIndexAny(content, "}]")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
