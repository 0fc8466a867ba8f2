package insight

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
)

func proactiveResponse(typ, priority string, articleIDs, memberIDs string) string {
	return fmt.Sprintf(`{"insights":[{"type":%q,"priority":%q,"title":"Do the thing","message":"It would help your shop.","action_label":"Go","article_ids":[%s],"member_ids":[%s]}]}`,
		typ, priority, articleIDs, memberIDs)
}

func newProactiveFixture() (*ProactiveGenerator, *fakeLLM, *fakeItemStore) {
	client := newFakeLLM()
	items := newFakeItemStore()
	items.articles = []model.Article{
		{ID: "a1", Title: "Air Max 90", Price: 20, Status: model.ArticleStatusActive},
		{ID: "a2", Title: "Air Force 1", Price: 30, Status: model.ArticleStatusActive},
	}
	return NewProactiveGenerator(client, items), client, items
}

func TestProactiveGenerator_EnrichesTitles(t *testing.T) {
	g, client, items := newProactiveFixture()
	client.responses["proactive"] = proactiveResponse(TypeStaleListing, model.PriorityLow, `"a1","a2"`, "")

	insights, err := g.Generate(context.Background(), items.articles, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	titles := insights[0].ArticleTitles
	if len(titles) != 2 || titles[0] == titles[1] {
		t.Errorf("expected both article titles resolved, got %v", titles)
	}
}

func TestProactiveGenerator_EnrichmentDegradesOnLookupFailure(t *testing.T) {
	g, client, items := newProactiveFixture()
	client.responses["proactive"] = proactiveResponse(TypeStaleListing, model.PriorityLow, `"a1"`, "")

	articles := items.articles
	items.fetchErr = errors.New("lookup offline")

	insights, err := g.Generate(context.Background(), articles, nil)
	if err != nil {
		t.Fatalf("expected batch served despite failed lookup, got %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if len(insights[0].ArticleTitles) != 0 {
		t.Errorf("expected no titles after failed lookup, got %v", insights[0].ArticleTitles)
	}
}

func TestProactiveGenerator_RejectsUnknownType(t *testing.T) {
	g, client, items := newProactiveFixture()
	client.responses["proactive"] = proactiveResponse("sell_everything", model.PriorityHigh, `"a1"`, "")

	_, err := g.Generate(context.Background(), items.articles, nil)

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestProactiveGenerator_RejectsUnknownArticle(t *testing.T) {
	g, client, items := newProactiveFixture()
	client.responses["proactive"] = proactiveResponse(TypeSeasonal, model.PriorityMedium, `"ghost"`, "")

	_, err := g.Generate(context.Background(), items.articles, nil)

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestProactiveGenerator_BundleOpportunitySetsAction(t *testing.T) {
	g, client, items := newProactiveFixture()
	client.responses["proactive"] = proactiveResponse(TypeBundleOpportunity, model.PriorityMedium, `"a1"`, `"a1","a2"`)

	insights, err := g.Generate(context.Background(), items.articles, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	action := insights[0].Action
	if action == nil || action.Kind != model.ActionCreateBundle {
		t.Fatalf("expected create_bundle action, got %+v", action)
	}
	if len(action.MemberIDs) != 2 {
		t.Errorf("expected 2 bundle members, got %v", action.MemberIDs)
	}
}

func TestProactiveGenerator_BundleOpportunityNeedsTwoMembers(t *testing.T) {
	g, client, items := newProactiveFixture()
	client.responses["proactive"] = proactiveResponse(TypeBundleOpportunity, model.PriorityMedium, `"a1"`, "")

	_, err := g.Generate(context.Background(), items.articles, nil)

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError for single-member bundle, got %v", err)
	}
}

func TestProactiveGenerator_BundleOpportunityRejectsUnknownMember(t *testing.T) {
	g, client, items := newProactiveFixture()
	client.responses["proactive"] = proactiveResponse(TypeBundleOpportunity, model.PriorityMedium, `"a1"`, `"a1","ghost"`)

	_, err := g.Generate(context.Background(), items.articles, nil)

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError for unknown bundle member, got %v", err)
	}
}

func TestProactiveGenerator_SchedulingTypeGate(t *testing.T) {
	g, client, items := newProactiveFixture()

	// A general type must not leak into the scheduling pipeline.
	client.responses["scheduling"] = proactiveResponse(TypeReadyToList, model.PriorityMedium, `"a1"`, "")
	_, err := g.GenerateScheduling(context.Background(), items.articles, nil)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError for general type in scheduling, got %v", err)
	}

	// And the scheduling types are only valid there.
	client.responses["proactive"] = proactiveResponse(TypeListNow, model.PriorityMedium, `"a1"`, "")
	_, err = g.Generate(context.Background(), items.articles, nil)
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError for scheduling type in general, got %v", err)
	}

	client.responses["scheduling"] = proactiveResponse(TypeListNow, model.PriorityMedium, `"a1"`, "")
	insights, err := g.GenerateScheduling(context.Background(), items.articles, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 1 || insights[0].Type != TypeListNow {
		t.Fatalf("expected one list_now suggestion, got %+v", insights)
	}
}

func TestProactiveGenerator_DefaultsInvalidPriority(t *testing.T) {
	g, client, items := newProactiveFixture()
	client.responses["proactive"] = proactiveResponse(TypeSEOImprovement, "urgent", `"a1"`, "")

	insights, err := g.Generate(context.Background(), items.articles, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights[0].Priority != model.PriorityMedium {
		t.Errorf("expected unrecognized priority coerced to medium, got %q", insights[0].Priority)
	}
}

func TestProactiveGenerator_EmptyInventorySkipsGeneration(t *testing.T) {
	g, client, _ := newProactiveFixture()

	insights, err := g.Generate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights != nil {
		t.Errorf("expected no insights for empty inventory, got %v", insights)
	}
	if client.callCount("proactive") != 0 {
		t.Errorf("expected no model call for empty inventory, got %d", client.callCount("proactive"))
	}
}
