package artrec

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/artrec/core"
	"github.com/rushteam/artrec/explain"
	"github.com/rushteam/artrec/filter"
)

// fakeCatalog returns a fixed candidate pool and records the last query.
// It deliberately ignores ExcludeIDs: the engine must enforce exclusion
// locally even when the collaborator does not.
type fakeCatalog struct {
	items     []*core.Item
	related   []*core.Item
	err       error
	lastQuery core.CatalogQuery
}

func (c *fakeCatalog) Query(_ context.Context, q core.CatalogQuery) ([]*core.Item, error) {
	c.lastQuery = q
	if c.err != nil {
		return nil, c.err
	}
	return c.items, nil
}

func (c *fakeCatalog) Related(_ context.Context, _ string, _ int) ([]*core.Item, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.related, nil
}

func galleryItem(id, artist, category string, price float64) *core.Item {
	it := core.NewItem(id)
	it.ArtistID = artist
	it.CategoryID = category
	it.Price = price
	return it
}

func newTestEngine(t *testing.T, catalog core.Catalog, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine("u1", catalog, nil, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEngine_NeverRecommendsRecentlyViewed(t *testing.T) {
	ctx := context.Background()

	pool := make([]*core.Item, 0, 30)
	for i := 0; i < 30; i++ {
		pool = append(pool, galleryItem(fmt.Sprintf("item-%d", i), "a1", "c1", 100))
	}
	catalog := &fakeCatalog{items: pool}
	e := newTestEngine(t, catalog)

	// View the first 25 items; the 20 most recent are item-5 .. item-24.
	for i := 0; i < 25; i++ {
		e.RecordView(ctx, pool[i])
	}

	got := e.GetRecommendations(ctx, 30)
	recent := map[string]bool{}
	for i := 5; i < 25; i++ {
		recent[fmt.Sprintf("item-%d", i)] = true
	}
	for _, it := range got {
		if recent[it.ID] {
			t.Errorf("recently viewed %q leaked into recommendations", it.ID)
		}
	}
	// the exclusion list was also forwarded to the catalog query
	if len(catalog.lastQuery.ExcludeIDs) != 20 {
		t.Errorf("ExcludeIDs length = %d, want 20", len(catalog.lastQuery.ExcludeIDs))
	}
	if catalog.lastQuery.ExcludeIDs[0] != "item-24" {
		t.Errorf("ExcludeIDs[0] = %q, want item-24 (newest first)", catalog.lastQuery.ExcludeIDs[0])
	}
}

func TestEngine_DerivesPriceBandAndPreferences(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{}
	e := newTestEngine(t, catalog)

	e.RecordView(ctx, galleryItem("i1", "a1", "c1", 100))
	e.RecordView(ctx, galleryItem("i2", "a2", "c2", 300))

	e.GetRecommendations(ctx, 10)
	q := catalog.lastQuery
	// avg viewed price 200 → band [100, 300]
	if q.PriceMin != 100 || q.PriceMax != 300 {
		t.Errorf("price band = [%v, %v], want [100, 300]", q.PriceMin, q.PriceMax)
	}
	if len(q.Categories) != 2 || q.Categories[0] != "c2" {
		t.Errorf("categories = %v, want [c2 c1] (most recent first)", q.Categories)
	}
	if len(q.Artists) != 2 || q.Artists[0] != "a2" {
		t.Errorf("artists = %v, want [a2 a1]", q.Artists)
	}
}

func TestEngine_CatalogFailureReturnsEmpty(t *testing.T) {
	catalog := &fakeCatalog{err: core.ErrCatalogUnavailable}
	e := newTestEngine(t, catalog)

	got := e.GetRecommendations(context.Background(), 10)
	if got == nil {
		t.Fatal("result must be an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("result = %v, want empty", got)
	}
}

func TestEngine_CountTruncation(t *testing.T) {
	pool := make([]*core.Item, 0, 30)
	for i := 0; i < 30; i++ {
		pool = append(pool, galleryItem(fmt.Sprintf("item-%d", i), "a1", "c1", 100))
	}
	e := newTestEngine(t, &fakeCatalog{items: pool})

	if got := e.GetRecommendations(context.Background(), 5); len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
	// count <= 0 falls back to the default page size
	if got := e.GetRecommendations(context.Background(), 0); len(got) != core.DefaultFetchConfig().DefaultCount {
		t.Errorf("len = %d, want default %d", len(got), core.DefaultFetchConfig().DefaultCount)
	}
}

func TestEngine_ZeroConfiguredDefaultsStillTruncate(t *testing.T) {
	pool := make([]*core.Item, 0, 30)
	for i := 0; i < 30; i++ {
		pool = append(pool, galleryItem(fmt.Sprintf("item-%d", i), "a1", "c1", 100))
	}
	related := make([]*core.Item, 0, 20)
	for i := 0; i < 20; i++ {
		related = append(related, galleryItem(fmt.Sprintf("rel-%d", i), "a1", "c1", 100))
	}

	// A custom fetch config that leaves the default counts unset must not
	// disable truncation when the caller passes count <= 0.
	cfg := core.DefaultFetchConfig()
	cfg.DefaultCount = 0
	cfg.SimilarCount = 0
	e := newTestEngine(t, &fakeCatalog{items: pool, related: related}, WithFetchConfig(cfg))

	if got := e.GetRecommendations(context.Background(), 0); len(got) != core.DefaultFetchConfig().DefaultCount {
		t.Errorf("recommendations = %d, want %d", len(got), core.DefaultFetchConfig().DefaultCount)
	}
	seed := galleryItem("seed", "a1", "c1", 100)
	if got := e.GetSimilarItems(context.Background(), seed, 0); len(got) != core.DefaultFetchConfig().SimilarCount {
		t.Errorf("similar items = %d, want %d", len(got), core.DefaultFetchConfig().SimilarCount)
	}
}

func TestEngine_FilterRules(t *testing.T) {
	pool := []*core.Item{
		galleryItem("cheap", "a1", "c1", 100),
		galleryItem("pricey", "a1", "c1", 99999),
	}
	rule, err := filter.NewExprFilter(`item.price > 50000.0`)
	if err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, &fakeCatalog{items: pool}, WithFilterRules(rule))

	got := e.GetRecommendations(context.Background(), 10)
	for _, it := range got {
		if it.ID == "pricey" {
			t.Error("rule-filtered item leaked into recommendations")
		}
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestEngine_GetSimilarItems(t *testing.T) {
	seed := galleryItem("seed", "a1", "c1", 100)
	related := []*core.Item{
		galleryItem("far", "a9", "c9", 9000),
		galleryItem("near", "a1", "c1", 110),
		galleryItem("seed", "a1", "c1", 100), // catalog echoing the seed back
	}
	e := newTestEngine(t, &fakeCatalog{related: related})

	got := e.GetSimilarItems(context.Background(), seed, 10)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (seed itself excluded)", len(got))
	}
	if got[0].ID != "near" {
		t.Errorf("first = %q, want near (highest similarity)", got[0].ID)
	}
	for _, it := range got {
		if it.ID == "seed" {
			t.Error("seed item must never appear in its own similar list")
		}
	}
}

func TestEngine_GetSimilarItemsNilSeed(t *testing.T) {
	e := newTestEngine(t, &fakeCatalog{})
	if got := e.GetSimilarItems(context.Background(), nil, 10); got != nil {
		t.Errorf("nil seed: got %v, want nil", got)
	}
}

func TestEngine_DescribeAlgorithmProgression(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, &fakeCatalog{})

	if r := e.DescribeAlgorithm(); r.Regime != explain.RegimePopularity {
		t.Errorf("cold start regime = %q, want %q", r.Regime, explain.RegimePopularity)
	}

	for i := 0; i < 5; i++ {
		e.RecordView(ctx, galleryItem(fmt.Sprintf("i%d", i), "a1", "c1", 100))
	}
	if r := e.DescribeAlgorithm(); r.Regime != explain.RegimeContent {
		t.Errorf("regime after 5 views = %q, want %q", r.Regime, explain.RegimeContent)
	}

	for i := 5; i < 15; i++ {
		e.RecordView(ctx, galleryItem(fmt.Sprintf("i%d", i), "a1", "c1", 100))
	}
	if r := e.DescribeAlgorithm(); r.Regime != explain.RegimeHybrid {
		t.Errorf("regime after 15 interactions = %q, want %q", r.Regime, explain.RegimeHybrid)
	}
	if r := e.DescribeAlgorithm(); r.SampleSize != 15 {
		t.Errorf("sample size = %d, want 15", r.SampleSize)
	}
}

func TestEngine_ResetHistory(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{}
	e := newTestEngine(t, catalog)

	e.RecordView(ctx, galleryItem("i1", "a1", "c1", 100))
	e.ResetHistory(ctx)

	e.GetRecommendations(ctx, 10)
	q := catalog.lastQuery
	if len(q.Categories) != 0 || len(q.ExcludeIDs) != 0 || q.PriceMin != 0 {
		t.Errorf("query after reset not cold: %+v", q)
	}
	if r := e.DescribeAlgorithm(); r.Regime != explain.RegimePopularity {
		t.Errorf("regime after reset = %q, want %q", r.Regime, explain.RegimePopularity)
	}
}

func TestEngine_RejectsInvalidWeights(t *testing.T) {
	cfg := core.DefaultScoringConfig()
	cfg.PopularityWeight = 0.9
	if _, err := NewEngine("u1", &fakeCatalog{}, nil, zerolog.Nop(), WithScoringConfig(cfg)); err == nil {
		t.Fatal("invalid weights must be rejected at construction")
	}
}
