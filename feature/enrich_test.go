package feature

import (
	"context"
	"fmt"
	"testing"

	"github.com/rushteam/artrec/core"
)

type stubProvider struct {
	stats map[string]ItemStats
	err   error
}

func (p *stubProvider) BatchStats(context.Context, []string) (map[string]ItemStats, error) {
	return p.stats, p.err
}

func (p *stubProvider) Close() error { return nil }

func TestEnrichNode_OverridesStats(t *testing.T) {
	it := core.NewItem("a1")
	it.Views = 10
	it.Likes = 1
	it.Rating = 3.0

	n := &EnrichNode{Provider: &stubProvider{stats: map[string]ItemStats{
		"a1": {Views: 5000, Likes: 400, Rating: 4.6},
	}}}
	out, err := n.Process(context.Background(), nil, []*core.Item{it})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out[0].Views != 5000 || out[0].Likes != 400 || out[0].Rating != 4.6 {
		t.Errorf("stats not refreshed: %+v", out[0])
	}
	if _, ok := out[0].Labels["stats_source"]; !ok {
		t.Error("missing stats_source label")
	}
}

func TestEnrichNode_ZeroRatingKeepsCatalogValue(t *testing.T) {
	it := core.NewItem("a1")
	it.Rating = 4.2

	n := &EnrichNode{Provider: &stubProvider{stats: map[string]ItemStats{
		"a1": {Views: 100, Likes: 10}, // no rating in the feature store
	}}}
	out, _ := n.Process(context.Background(), nil, []*core.Item{it})
	if out[0].Rating != 4.2 {
		t.Errorf("rating = %v, want catalog value kept", out[0].Rating)
	}
}

func TestEnrichNode_ProviderFailureDegrades(t *testing.T) {
	it := core.NewItem("a1")
	it.Views = 10

	n := &EnrichNode{Provider: &stubProvider{err: fmt.Errorf("feature store down")}}
	out, err := n.Process(context.Background(), nil, []*core.Item{it})
	if err != nil {
		t.Fatalf("provider failure must not propagate: %v", err)
	}
	if out[0].Views != 10 {
		t.Errorf("catalog stats must survive provider failure: %+v", out[0])
	}
}

func TestEnrichNode_MissingItemKept(t *testing.T) {
	it := core.NewItem("unknown")
	it.Views = 7

	n := &EnrichNode{Provider: &stubProvider{stats: map[string]ItemStats{}}}
	out, _ := n.Process(context.Background(), nil, []*core.Item{it})
	if out[0].Views != 7 {
		t.Errorf("item missing from stats must keep catalog values: %+v", out[0])
	}
}
