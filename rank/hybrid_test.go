package rank

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/artrec/core"
)

func emptyContext() *core.RecommendContext {
	return &core.RecommendContext{
		UserID:  "u1",
		Profile: core.NewPreferenceProfile(),
	}
}

func viewOf(artist, category string, price float64) core.Interaction {
	return core.Interaction{ItemID: "x", ArtistID: artist, CategoryID: category, Price: price}
}

// closeTo compares scores with a tolerance for float rounding.
func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestDefaultScoringConfig_WeightClosure(t *testing.T) {
	if err := core.DefaultScoringConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := core.DefaultScoringConfig()
	bad.DiversityWeight = 0.5
	if err := bad.Validate(); err == nil {
		t.Error("weights not summing to 1.0 must fail validation")
	}
}

func TestHybrid_PopularityOnlyComposite(t *testing.T) {
	// Item with views=20000, likes=2000, rating=5 and no user history:
	// popularity = 40+40+20 = 100, collaborative/content = 0, diversity = 100
	// composite = 0.4*0 + 0.3*0 + 0.2*100 + 0.1*100 = 30
	n := NewHybridNode(core.DefaultScoringConfig())
	it := core.NewItem("i1")
	it.ArtistID = "a1"
	it.CategoryID = "c1"
	it.Views = 20000
	it.Likes = 2000
	it.Rating = 5

	rctx := emptyContext()
	if got := n.Popularity(it); got != 100 {
		t.Errorf("Popularity = %v, want 100", got)
	}
	if got := n.Collaborative(it, rctx); got != 0 {
		t.Errorf("Collaborative = %v, want 0", got)
	}
	if got := n.ContentBased(it, rctx); got != 0 {
		t.Errorf("ContentBased = %v, want 0", got)
	}
	if got := n.Diversity(it, rctx); got != 100 {
		t.Errorf("Diversity = %v, want 100", got)
	}
	if got := n.Score(it, rctx); !closeTo(got, 30) {
		t.Errorf("Score = %v, want 30", got)
	}
}

func TestHybrid_CollaborativeCaps(t *testing.T) {
	n := NewHybridNode(core.DefaultScoringConfig())
	it := core.NewItem("i1")
	it.ArtistID = "a1"
	it.CategoryID = "c1"

	tests := []struct {
		name       string
		artistHits int // occurrences of a1 in the view log
		likeHits   int // occurrences of c1 in the like log
		want       float64
	}{
		{name: "no history", want: 0},
		{name: "two artist views", artistHits: 2, want: 40},
		{name: "artist capped at 60", artistHits: 5, want: 60},
		{name: "two category likes", likeHits: 2, want: 30},
		{name: "category capped at 40", likeHits: 4, want: 40},
		{name: "both capped", artistHits: 10, likeHits: 10, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx := emptyContext()
			for i := 0; i < tt.artistHits; i++ {
				rctx.ViewLog = append(rctx.ViewLog, viewOf("a1", "other", 0))
			}
			for i := 0; i < tt.likeHits; i++ {
				rctx.LikeLog = append(rctx.LikeLog, viewOf("other", "c1", 0))
			}
			if got := n.Collaborative(it, rctx); got != tt.want {
				t.Errorf("Collaborative = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHybrid_ContentBasedRankMatch(t *testing.T) {
	n := NewHybridNode(core.DefaultScoringConfig())
	now := time.Now()

	rctx := emptyContext()
	// c0 ranks 0, c1 ranks 1; a0 ranks 0
	rctx.Profile.FavoriteCategories.Reinforce("c1", 1, now)
	rctx.Profile.FavoriteCategories.Reinforce("c0", 1, now)
	rctx.Profile.FavoriteArtists.Reinforce("a0", 1, now)

	it := core.NewItem("i1")
	it.CategoryID = "c0"
	it.ArtistID = "a0"
	// rank 0 category: 0.35*100 = 35; rank 0 artist: 0.30*100 = 30
	if got := n.ContentBased(it, rctx); !closeTo(got, 65) {
		t.Errorf("ContentBased = %v, want 65", got)
	}

	it2 := core.NewItem("i2")
	it2.CategoryID = "c1" // rank 1: 0.35*90 = 31.5
	if got := n.ContentBased(it2, rctx); !closeTo(got, 31.5) {
		t.Errorf("ContentBased = %v, want 31.5", got)
	}
}

func TestHybrid_ContentBasedDeepRankClampsToZero(t *testing.T) {
	n := NewHybridNode(core.DefaultScoringConfig())
	now := time.Now()
	rctx := emptyContext()

	// 15 categories; the first inserted ends up at rank 14 (100-140 < 0 → 0)
	for i := 14; i >= 0; i-- {
		rctx.Profile.FavoriteCategories.Reinforce(categoryID(i), 1, now)
	}
	it := core.NewItem("i1")
	it.CategoryID = categoryID(14)
	if got := n.ContentBased(it, rctx); got != 0 {
		t.Errorf("deep rank score = %v, want 0 (clamped)", got)
	}
}

func categoryID(i int) string {
	return string(rune('A' + i))
}

func TestHybrid_ContentBasedPriceMatch(t *testing.T) {
	n := NewHybridNode(core.DefaultScoringConfig())

	tests := []struct {
		name  string
		views []float64
		price float64
		want  float64
	}{
		{name: "exact avg", views: []float64{100, 300}, price: 200, want: 10},    // 0.10*100
		{name: "half off avg", views: []float64{200}, price: 100, want: 5},       // 0.10*50
		{name: "way above avg clamps", views: []float64{100}, price: 500, want: 0},
		{name: "no view history contributes 0", price: 100, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx := emptyContext()
			for _, p := range tt.views {
				rctx.ViewLog = append(rctx.ViewLog, viewOf("a", "c", p))
			}
			it := core.NewItem("i1")
			it.Price = tt.price
			if got := n.ContentBased(it, rctx); !closeTo(got, tt.want) {
				t.Errorf("ContentBased = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHybrid_DiversityRewardsNovelty(t *testing.T) {
	n := NewHybridNode(core.DefaultScoringConfig())
	now := time.Now()

	rctx := emptyContext()
	rctx.Profile.FavoriteCategories.Reinforce("known-c", 1, now)
	rctx.Profile.FavoriteArtists.Reinforce("known-a", 1, now)

	tests := []struct {
		name             string
		artist, category string
		isNew            bool
		want             float64
	}{
		{name: "both known", artist: "known-a", category: "known-c", want: 0},
		{name: "new category only", artist: "known-a", category: "fresh-c", want: 50},
		{name: "both novel", artist: "fresh-a", category: "fresh-c", want: 100},
		{name: "novel and flagged new clamps at 100", artist: "fresh-a", category: "fresh-c", isNew: true, want: 100},
		{name: "known but flagged new", artist: "known-a", category: "known-c", isNew: true, want: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := core.NewItem("i1")
			it.ArtistID = tt.artist
			it.CategoryID = tt.category
			it.IsNew = tt.isNew
			if got := n.Diversity(it, rctx); got != tt.want {
				t.Errorf("Diversity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHybrid_ScoreIdempotentAndBounded(t *testing.T) {
	n := NewHybridNode(core.DefaultScoringConfig())
	now := time.Now()

	rctx := emptyContext()
	rctx.Profile.FavoriteCategories.Reinforce("c1", 1, now)
	rctx.Profile.FavoriteArtists.Reinforce("a1", 1, now)
	rctx.Profile.PreferredStyles["oil"] = true
	for i := 0; i < 10; i++ {
		rctx.ViewLog = append(rctx.ViewLog, viewOf("a1", "c1", 100))
		rctx.LikeLog = append(rctx.LikeLog, viewOf("a1", "c1", 100))
	}

	it := core.NewItem("i1")
	it.ArtistID = "a1"
	it.CategoryID = "c1"
	it.Style = "oil"
	it.Price = 100
	it.Views = 999999
	it.Likes = 999999
	it.Rating = 5
	it.IsNew = true

	first := n.Score(it, rctx)
	second := n.Score(it, rctx)
	if first != second {
		t.Errorf("scoring not idempotent: %v then %v", first, second)
	}
	if first < 0 || first > 100 {
		t.Errorf("composite score %v out of [0,100]", first)
	}
}

func TestHybrid_ProcessSortsDescending(t *testing.T) {
	n := NewHybridNode(core.DefaultScoringConfig())
	rctx := emptyContext()

	low := core.NewItem("low") // novelty only
	low.ArtistID = "a1"
	low.CategoryID = "c1"

	high := core.NewItem("high") // novelty + max popularity
	high.ArtistID = "a2"
	high.CategoryID = "c2"
	high.Views = 20000
	high.Likes = 2000
	high.Rating = 5

	items, err := n.Process(context.Background(), rctx, []*core.Item{low, high})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if items[0].ID != "high" {
		t.Errorf("first item = %q, want high", items[0].ID)
	}
	if items[0].Score <= items[1].Score {
		t.Errorf("not sorted: %v <= %v", items[0].Score, items[1].Score)
	}
	// explain labels carry the sub-score breakdown
	if _, ok := items[0].Labels["score_popularity"]; !ok {
		t.Error("missing score_popularity label")
	}
}
