package insight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
	"github.com/salasvega/easyvinted8-sub003/internal/repository"
)

var errFakeWrite = errors.New("write failed")

// memoryInsightStore mirrors the Postgres store contract: active+unexpired
// reads, transactional batch replace, terminal status transitions.
type memoryInsightStore struct {
	mu            sync.Mutex
	rows          map[string]*model.Insight
	now           func() time.Time
	replaceCalls  int
	failReplace   error
	failSetStatus error
	failLoad      error
}

func newMemoryInsightStore(now func() time.Time) *memoryInsightStore {
	return &memoryInsightStore{rows: make(map[string]*model.Insight), now: now}
}

func (s *memoryInsightStore) LoadActive(ownerID, cacheKey string) ([]model.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failLoad != nil {
		return nil, s.failLoad
	}

	var out []model.Insight
	for _, ins := range s.rows {
		if ins.OwnerID == ownerID && ins.CacheKey == cacheKey &&
			ins.Status == model.StatusActive && ins.ExpiresAt.After(s.now()) {
			out = append(out, *ins)
		}
	}
	return out, nil
}

func (s *memoryInsightStore) Replace(ownerID, cacheKey string, insights []model.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceCalls++
	if s.failReplace != nil {
		return s.failReplace
	}

	for id, ins := range s.rows {
		if ins.OwnerID == ownerID && ins.CacheKey == cacheKey {
			delete(s.rows, id)
		}
	}

	refreshedAt := s.now()
	for i := range insights {
		ins := insights[i]
		ins.OwnerID = ownerID
		ins.CacheKey = cacheKey
		ins.Status = model.StatusActive
		ins.CreatedAt = refreshedAt
		ins.LastRefreshAt = refreshedAt
		ins.ExpiresAt = refreshedAt.Add(repository.CacheTTL)
		s.rows[ins.ID] = &ins
	}
	return nil
}

func (s *memoryInsightStore) SetStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSetStatus != nil {
		return s.failSetStatus
	}

	ins, ok := s.rows[id]
	if ok && ins.Status == model.StatusActive {
		ins.Status = status
	}
	return nil
}

func (s *memoryInsightStore) GetByID(id string) (*model.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ins, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	copy := *ins
	return &copy, nil
}

func (s *memoryInsightStore) seed(ins model.Insight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[ins.ID] = &ins
}

type fakeItemStore struct {
	mu       sync.Mutex
	articles []model.Article
	sales    []model.Sale

	prices          map[string]float64
	failPriceAfter  int // fail the Nth UpdatePrice call (1-based), 0 = never
	priceUpdates    int
	fetchErr        error
	bundles         []*model.Bundle
	deletedBundles  []string
	memberships     map[string][]string
	failMemberships error
	failBundle      error
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{
		prices:      make(map[string]float64),
		memberships: make(map[string][]string),
	}
}

func (f *fakeItemStore) GetArticles(ownerID string) ([]model.Article, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.articles, nil
}

func (f *fakeItemStore) GetActiveArticles(ownerID string) ([]model.Article, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []model.Article
	for _, a := range f.articles {
		if a.Status == model.ArticleStatusActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeItemStore) GetArticlesByIDs(ids []string) ([]model.Article, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []model.Article
	for _, id := range ids {
		for _, a := range f.articles {
			if a.ID == id {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeItemStore) GetRecentSales(ownerID string, since time.Time, limit int) ([]model.Sale, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.sales, nil
}

func (f *fakeItemStore) UpdatePrice(articleID string, price float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.priceUpdates++
	if f.failPriceAfter > 0 && f.priceUpdates == f.failPriceAfter {
		return errFakeWrite
	}
	f.prices[articleID] = price
	return nil
}

func (f *fakeItemStore) InsertBundle(b *model.Bundle) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failBundle != nil {
		return f.failBundle
	}
	b.CreatedAt = time.Now()
	f.bundles = append(f.bundles, b)
	return nil
}

func (f *fakeItemStore) InsertBundleArticles(bundleID string, articleIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failMemberships != nil {
		return f.failMemberships
	}
	f.memberships[bundleID] = articleIDs
	return nil
}

func (f *fakeItemStore) DeleteBundle(bundleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletedBundles = append(f.deletedBundles, bundleID)
	for i, b := range f.bundles {
		if b.ID == bundleID {
			f.bundles = append(f.bundles[:i], f.bundles[i+1:]...)
			break
		}
	}
	return nil
}

type fakeOverlay struct {
	mu   sync.Mutex
	sets map[string]map[string]bool
	err  error
}

func newFakeOverlay() *fakeOverlay {
	return &fakeOverlay{sets: make(map[string]map[string]bool)}
}

func (f *fakeOverlay) Add(ctx context.Context, ownerID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.sets[ownerID] == nil {
		f.sets[ownerID] = make(map[string]bool)
	}
	f.sets[ownerID][title] = true
	return nil
}

func (f *fakeOverlay) Remove(ctx context.Context, ownerID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.sets[ownerID], title)
	return nil
}

func (f *fakeOverlay) Members(ctx context.Context, ownerID string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]bool, len(f.sets[ownerID]))
	for t := range f.sets[ownerID] {
		out[t] = true
	}
	return out, nil
}

type fakeScheduler struct {
	mu     sync.Mutex
	owners []string
}

func (f *fakeScheduler) Schedule(ownerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners = append(f.owners, ownerID)
}

// fakeLLM routes on a distinctive fragment of the system prompt so one fake
// serves all three pipelines.
type fakeLLM struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		responses: make(map[string]string),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeLLM) route(system string) string {
	switch {
	case strings.Contains(system, "pricing analyst"):
		return "pricing"
	case strings.Contains(system, "selling coach"):
		return "proactive"
	case strings.Contains(system, "listing-schedule advisor"):
		return "scheduling"
	default:
		return "bundle"
	}
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := f.route(system)
	f.calls[key]++
	if err := f.errs[key]; err != nil {
		return "", err
	}
	return f.responses[key], nil
}

func (f *fakeLLM) ModelName() string { return "fake" }

func (f *fakeLLM) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}
