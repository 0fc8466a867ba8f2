package insight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
	"github.com/salasvega/easyvinted8-sub003/pkg/llm"
)

// bundleDiscount is the default discount applied to the summed member prices.
const bundleDiscount = 0.10

// Executor applies the side effects of an accepted insight and moves its
// lifecycle forward. A failed execute leaves the insight active.
type Executor struct {
	insights InsightStore
	items    ItemStore
	llm      llm.Client
	regen    RegenScheduler
}

func NewExecutor(insights InsightStore, items ItemStore, c llm.Client, regen RegenScheduler) *Executor {
	return &Executor{insights: insights, items: items, llm: c, regen: regen}
}

func (e *Executor) Execute(ctx context.Context, ins *model.Insight) error {
	if ins.Terminal() {
		return &ValidationError{Reason: fmt.Sprintf("insight is %s, only active insights can be executed", ins.Status)}
	}
	if ins.Action == nil {
		return &ValidationError{Reason: "insight has no executable action"}
	}

	switch ins.Action.Kind {
	case model.ActionAdjustPrice:
		return e.adjustPrice(ctx, ins)
	case model.ActionCreateBundle:
		return e.createBundle(ctx, ins)
	default:
		return &ValidationError{Reason: fmt.Sprintf("action %q is informational and cannot be executed", ins.Action.Kind)}
	}
}

// adjustPrice writes the suggested price to every referenced article.
// Best-effort batch: items already updated when a later write fails stay
// updated, the failure is surfaced once with no compensation.
func (e *Executor) adjustPrice(ctx context.Context, ins *model.Insight) error {
	if len(ins.ArticleIDs) == 0 {
		return &ValidationError{Reason: "price adjustment references no articles"}
	}
	if ins.Action.SuggestedPrice <= 0 {
		return &ValidationError{Reason: fmt.Sprintf("invalid suggested price %.2f", ins.Action.SuggestedPrice)}
	}

	for k, id := range ins.ArticleIDs {
		if err := e.items.UpdatePrice(id, ins.Action.SuggestedPrice); err != nil {
			return &PartialApplyError{Applied: k, Total: len(ins.ArticleIDs), Err: err}
		}
	}

	return e.complete(ins)
}

// createBundle runs the multi-step bundle transaction: fetch members, compute
// the discounted price, generate copy, insert the container, insert
// membership rows. Each completed write pushes its compensation so a later
// failure can unwind in reverse order.
func (e *Executor) createBundle(ctx context.Context, ins *model.Insight) error {
	members := ins.Action.MemberIDs
	if len(members) == 0 {
		members = ins.ArticleIDs
	}
	if len(members) < 2 {
		return &ValidationError{Reason: "a bundle needs at least 2 articles"}
	}

	articles, err := e.items.GetArticlesByIDs(members)
	if err != nil {
		return &StorageError{Op: "fetch bundle members", Err: err}
	}
	if len(articles) != len(members) {
		return &ValidationError{Reason: fmt.Sprintf("bundle references missing articles: wanted %d, found %d", len(members), len(articles))}
	}

	var total float64
	for _, a := range articles {
		total += a.Price
	}
	price := round2(total * (1 - bundleDiscount))

	bundleCopy, err := llm.GenerateBundleCopy(ctx, e.llm, formatBundleItems(articles))
	if err != nil {
		return &GenerationError{Err: err}
	}

	var undo []func() error

	bundle := &model.Bundle{
		ID:          newID(),
		OwnerID:     ins.OwnerID,
		Title:       bundleCopy.Title,
		Description: bundleCopy.Description,
		Price:       price,
		Discount:    bundleDiscount,
	}
	if err := e.items.InsertBundle(bundle); err != nil {
		return &StorageError{Op: "insert bundle", Err: err}
	}
	undo = append(undo, func() error { return e.items.DeleteBundle(bundle.ID) })

	if err := e.items.InsertBundleArticles(bundle.ID, members); err != nil {
		// An orphan container with no members is worse than no bundle.
		e.compensate(undo)
		return &StorageError{Op: "insert bundle members", Err: err}
	}

	return e.complete(ins)
}

func (e *Executor) complete(ins *model.Insight) error {
	if err := e.insights.SetStatus(ins.ID, model.StatusCompleted); err != nil {
		return &StorageError{Op: "complete insight", Err: err}
	}
	ins.Status = model.StatusCompleted

	if e.regen != nil {
		e.regen.Schedule(ins.OwnerID)
	}
	return nil
}

func (e *Executor) compensate(undo []func() error) {
	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](); err != nil {
			slog.Error("compensating action failed", "error", err)
		}
	}
}
