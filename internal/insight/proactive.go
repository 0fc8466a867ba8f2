package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
	"github.com/salasvega/easyvinted8-sub003/pkg/llm"
)

const (
	TypeReadyToList       = "ready_to_list"
	TypeStaleListing      = "stale_listing"
	TypeSeasonal          = "seasonal"
	TypeIncompleteListing = "incomplete_listing"
	TypeBundleOpportunity = "bundle_opportunity"
	TypeSEOImprovement    = "seo_improvement"

	TypeListNow       = "list_now"
	TypeScheduleLater = "schedule_later"
)

var generalTypes = map[string]bool{
	TypeReadyToList:       true,
	TypeStaleListing:      true,
	TypeSeasonal:          true,
	TypeIncompleteListing: true,
	TypeBundleOpportunity: true,
	TypeSEOImprovement:    true,
}

var schedulingTypes = map[string]bool{
	TypeListNow:       true,
	TypeScheduleLater: true,
}

type TitleResolver interface {
	GetArticlesByIDs(ids []string) ([]model.Article, error)
}

// ProactiveGenerator produces the non-pricing recommendations: readiness,
// staleness, seasonality, completeness, bundling and SEO, plus the separate
// scheduling pipeline.
type ProactiveGenerator struct {
	llm   llm.Client
	items TitleResolver
	now   func() time.Time
}

func NewProactiveGenerator(c llm.Client, items TitleResolver) *ProactiveGenerator {
	return &ProactiveGenerator{llm: c, items: items, now: time.Now}
}

func (g *ProactiveGenerator) Generate(ctx context.Context, articles []model.Article, sales []model.Sale) ([]model.Insight, error) {
	return g.generate(ctx, llm.ProactiveSystemPrompt, generalTypes, articles, sales)
}

func (g *ProactiveGenerator) GenerateScheduling(ctx context.Context, articles []model.Article, sales []model.Sale) ([]model.Insight, error) {
	return g.generate(ctx, llm.SchedulingSystemPrompt, schedulingTypes, articles, sales)
}

func (g *ProactiveGenerator) generate(ctx context.Context, systemPrompt string, allowed map[string]bool, articles []model.Article, sales []model.Sale) ([]model.Insight, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	byID := make(map[string]model.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	var sb strings.Builder
	sb.WriteString(formatInventory(articles, g.now()))
	sb.WriteString("\n")
	sb.WriteString(formatSales(sales))

	results, err := llm.GenerateProactiveInsights(ctx, g.llm, systemPrompt, sb.String())
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	slog.Info("proactive generation complete", "model", g.llm.ModelName(), "insights", len(results))

	insights := make([]model.Insight, 0, len(results))
	for i, r := range results {
		if !allowed[r.Type] {
			return nil, &GenerationError{Err: fmt.Errorf("unknown insight type %q", r.Type)}
		}
		for _, id := range r.ArticleIDs {
			if _, ok := byID[id]; !ok {
				return nil, &GenerationError{Err: fmt.Errorf("insight %d references unknown article %q", i, id)}
			}
		}

		priority := r.Priority
		if priority != model.PriorityHigh && priority != model.PriorityMedium && priority != model.PriorityLow {
			priority = model.PriorityMedium
		}

		ins := model.Insight{
			ID:          newID(),
			Type:        r.Type,
			Priority:    priority,
			Title:       r.Title,
			Message:     r.Message,
			ActionLabel: r.ActionLabel,
			ArticleIDs:  r.ArticleIDs,
		}

		if r.Type == TypeBundleOpportunity {
			members := r.MemberIDs
			if len(members) == 0 {
				members = r.ArticleIDs
			}
			if len(members) < 2 {
				return nil, &GenerationError{Err: fmt.Errorf("bundle opportunity %d has fewer than 2 members", i)}
			}
			for _, id := range members {
				if _, ok := byID[id]; !ok {
					return nil, &GenerationError{Err: fmt.Errorf("bundle opportunity %d references unknown article %q", i, id)}
				}
			}
			ins.Action = &model.SuggestedAction{
				Kind:      model.ActionCreateBundle,
				MemberIDs: members,
			}
		}

		insights = append(insights, ins)
	}

	g.enrichTitles(insights)

	return insights, nil
}

// enrichTitles resolves article titles for display. A failed lookup degrades
// to an insight without titles rather than failing the batch.
func (g *ProactiveGenerator) enrichTitles(insights []model.Insight) {
	if g.items == nil {
		return
	}

	idSet := make(map[string]bool)
	for _, ins := range insights {
		for _, id := range ins.ArticleIDs {
			idSet[id] = true
		}
	}
	if len(idSet) == 0 {
		return
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	articles, err := g.items.GetArticlesByIDs(ids)
	if err != nil {
		slog.Warn("title enrichment lookup failed, serving insights without titles", "error", err)
		return
	}

	titles := make(map[string]string, len(articles))
	for _, a := range articles {
		titles[a.ID] = a.Title
	}

	for i := range insights {
		for _, id := range insights[i].ArticleIDs {
			if t, ok := titles[id]; ok {
				insights[i].ArticleTitles = append(insights[i].ArticleTitles, t)
			}
		}
	}
}
