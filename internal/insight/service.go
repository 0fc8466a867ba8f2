package insight

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
)

// SoftStaleness forces regeneration for interactive use before the hard TTL
// elapses. The store keeps expired-but-recent rows around until the next
// replace.
const SoftStaleness = 30 * time.Minute

var ErrNotFound = errors.New("insight not found")

type InsightStore interface {
	LoadActive(ownerID, cacheKey string) ([]model.Insight, error)
	Replace(ownerID, cacheKey string, insights []model.Insight) error
	SetStatus(id, status string) error
	GetByID(id string) (*model.Insight, error)
}

type ItemStore interface {
	GetArticles(ownerID string) ([]model.Article, error)
	GetActiveArticles(ownerID string) ([]model.Article, error)
	GetArticlesByIDs(ids []string) ([]model.Article, error)
	GetRecentSales(ownerID string, since time.Time, limit int) ([]model.Sale, error)
	UpdatePrice(articleID string, price float64) error
	InsertBundle(b *model.Bundle) error
	InsertBundleArticles(bundleID string, articleIDs []string) error
	DeleteBundle(bundleID string) error
}

type Overlay interface {
	Add(ctx context.Context, ownerID, title string) error
	Remove(ctx context.Context, ownerID, title string) error
	Members(ctx context.Context, ownerID string) (map[string]bool, error)
}

// Service runs the three recommendation pipelines, merges their counts and
// owns the dismiss/execute verbs exposed to the presentation layer.
type Service struct {
	insights  InsightStore
	items     ItemStore
	pricing   *PricingGenerator
	proactive *ProactiveGenerator
	executor  *Executor
	overlay   Overlay
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewService(insights InsightStore, items ItemStore, pricing *PricingGenerator, proactive *ProactiveGenerator, executor *Executor, overlay Overlay) *Service {
	return &Service{
		insights:  insights,
		items:     items,
		pricing:   pricing,
		proactive: proactive,
		executor:  executor,
		overlay:   overlay,
		now:       time.Now,
		inFlight:  make(map[string]bool),
	}
}

type Snapshot struct {
	General        []model.Insight
	Pricing        []model.Insight
	Scheduling     []model.Insight
	LocalDismissed map[string]bool
	BadgeCount     int
	PipelineErrors map[string]string
}

// LoadAll starts the three pipelines concurrently and awaits them
// independently, so a slow or failing pricing generation never blocks the
// general insights. force bypasses the cache for every pipeline.
func (s *Service) LoadAll(ctx context.Context, ownerID string, force bool) (*Snapshot, error) {
	type pipeline struct {
		cacheKey string
		generate func(ctx context.Context, ownerID string) ([]model.Insight, error)
		result   []model.Insight
		err      error
	}

	pipelines := []*pipeline{
		{cacheKey: model.CacheKeyGeneral, generate: s.generateGeneral},
		{cacheKey: model.CacheKeyPricing, generate: s.generatePricing},
		{cacheKey: model.CacheKeyScheduling, generate: s.generateScheduling},
	}

	var wg sync.WaitGroup
	for _, p := range pipelines {
		wg.Add(1)
		go func(p *pipeline) {
			defer wg.Done()
			p.result, p.err = s.loadPipeline(ctx, ownerID, p.cacheKey, force, p.generate)
		}(p)
	}
	wg.Wait()

	snap := &Snapshot{
		General:        pipelines[0].result,
		Pricing:        pipelines[1].result,
		Scheduling:     pipelines[2].result,
		PipelineErrors: make(map[string]string),
	}
	for _, p := range pipelines {
		if p.err != nil {
			slog.Error("insight pipeline failed", "cache_key", p.cacheKey, "owner_id", ownerID, "error", p.err)
			snap.PipelineErrors[p.cacheKey] = p.err.Error()
		}
	}

	snap.LocalDismissed = s.reconcileOverlay(ctx, ownerID, snap)
	snap.BadgeCount = s.badgeCount(snap)

	return snap, nil
}

// loadPipeline serves from cache unless the batch is missing, expired or soft
// stale. A load is a no-op when one is already in flight for the same
// pipeline; the caller gets whatever is currently cached.
func (s *Service) loadPipeline(ctx context.Context, ownerID, cacheKey string, force bool, generate func(ctx context.Context, ownerID string) ([]model.Insight, error)) ([]model.Insight, error) {
	if !force {
		cached, err := s.insights.LoadActive(ownerID, cacheKey)
		if err != nil {
			return nil, &StorageError{Op: "load " + cacheKey, Err: err}
		}
		if len(cached) > 0 && !s.stale(cached) {
			return cached, nil
		}
	}

	if !s.acquire(ownerID + "|" + cacheKey) {
		cached, err := s.insights.LoadActive(ownerID, cacheKey)
		if err != nil {
			return nil, &StorageError{Op: "load " + cacheKey, Err: err}
		}
		return cached, nil
	}
	defer s.release(ownerID + "|" + cacheKey)

	batch, err := generate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.insights.Replace(ownerID, cacheKey, batch); err != nil {
		return nil, &StorageError{Op: "replace " + cacheKey, Err: err}
	}

	return batch, nil
}

// stale applies the soft rule: older than 30 minutes since last refresh means
// regenerate, even when the hard TTL has not elapsed.
func (s *Service) stale(batch []model.Insight) bool {
	return s.now().Sub(batch[0].LastRefreshAt) >= SoftStaleness
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[key] {
		return false
	}
	s.inFlight[key] = true
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

func (s *Service) generateGeneral(ctx context.Context, ownerID string) ([]model.Insight, error) {
	articles, sales, err := s.fetchInputs(ownerID, false)
	if err != nil {
		return nil, err
	}
	return s.proactive.Generate(ctx, articles, sales)
}

func (s *Service) generatePricing(ctx context.Context, ownerID string) ([]model.Insight, error) {
	articles, sales, err := s.fetchInputs(ownerID, true)
	if err != nil {
		return nil, err
	}
	stats := ComputeMarketStats(sales)
	return s.pricing.Generate(ctx, articles, sales, stats)
}

func (s *Service) generateScheduling(ctx context.Context, ownerID string) ([]model.Insight, error) {
	articles, sales, err := s.fetchInputs(ownerID, false)
	if err != nil {
		return nil, err
	}
	return s.proactive.GenerateScheduling(ctx, articles, sales)
}

// fetchInputs loads the inventory and the bounded sale history. Pricing only
// looks at online listings; the other pipelines also see drafts.
func (s *Service) fetchInputs(ownerID string, activeOnly bool) ([]model.Article, []model.Sale, error) {
	var articles []model.Article
	var err error
	if activeOnly {
		articles, err = s.items.GetActiveArticles(ownerID)
	} else {
		articles, err = s.items.GetArticles(ownerID)
	}
	if err != nil {
		return nil, nil, &StorageError{Op: "fetch inventory", Err: err}
	}

	sales, err := s.items.GetRecentSales(ownerID, s.now().Add(-SalesWindow), MaxSalesSample)
	if err != nil {
		return nil, nil, &StorageError{Op: "fetch sale history", Err: err}
	}

	return articles, sales, nil
}

// reconcileOverlay drops overlay entries whose insight is no longer active,
// so a server-side dismissal eventually clears the local shadow. Overlay
// failures degrade to an empty set; the persisted status stays authoritative.
func (s *Service) reconcileOverlay(ctx context.Context, ownerID string, snap *Snapshot) map[string]bool {
	if s.overlay == nil {
		return map[string]bool{}
	}

	dismissed, err := s.overlay.Members(ctx, ownerID)
	if err != nil {
		slog.Warn("failed to read local dismissal overlay", "owner_id", ownerID, "error", err)
		return map[string]bool{}
	}

	activeTitles := make(map[string]bool)
	for _, batch := range [][]model.Insight{snap.General, snap.Pricing, snap.Scheduling} {
		for _, ins := range batch {
			activeTitles[ins.Title] = true
		}
	}

	for title := range dismissed {
		if !activeTitles[title] {
			if err := s.overlay.Remove(ctx, ownerID, title); err != nil {
				slog.Warn("failed to reconcile dismissal overlay entry", "owner_id", ownerID, "error", err)
				continue
			}
			delete(dismissed, title)
		}
	}

	return dismissed
}

func (s *Service) badgeCount(snap *Snapshot) int {
	count := 0
	for _, ins := range snap.General {
		if !snap.LocalDismissed[ins.Title] {
			count++
		}
	}
	count += len(snap.Pricing)
	count += len(snap.Scheduling)
	return count
}

// Dismiss transitions the insight to its terminal dismissed state and
// write-throughs the local overlay so the UI hides it immediately. Repeats
// are no-ops.
func (s *Service) Dismiss(ctx context.Context, ownerID, insightID string) error {
	ins, err := s.insights.GetByID(insightID)
	if err != nil {
		return &StorageError{Op: "load insight", Err: err}
	}
	if ins == nil || ins.OwnerID != ownerID {
		return ErrNotFound
	}

	if err := s.insights.SetStatus(insightID, model.StatusDismissed); err != nil {
		return &StorageError{Op: "dismiss insight", Err: err}
	}

	if s.overlay != nil {
		if err := s.overlay.Add(ctx, ownerID, ins.Title); err != nil {
			slog.Warn("failed to record local dismissal", "owner_id", ownerID, "error", err)
		}
	}

	return nil
}

func (s *Service) Execute(ctx context.Context, ownerID, insightID string) error {
	ins, err := s.insights.GetByID(insightID)
	if err != nil {
		return &StorageError{Op: "load insight", Err: err}
	}
	if ins == nil || ins.OwnerID != ownerID {
		return ErrNotFound
	}

	return s.executor.Execute(ctx, ins)
}

// Regenerate force-rebuilds every pipeline for an owner. Used by the queue
// worker after an accepted action changed the inventory.
func (s *Service) Regenerate(ctx context.Context, ownerID string) (*Snapshot, error) {
	return s.LoadAll(ctx, ownerID, true)
}
