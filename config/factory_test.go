package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/artrec/core"
	"github.com/rushteam/artrec/pipeline"
)

type stubCatalog struct {
	items   []*core.Item
	related []*core.Item
}

func (c *stubCatalog) Query(context.Context, core.CatalogQuery) ([]*core.Item, error) {
	return c.items, nil
}

func (c *stubCatalog) Related(context.Context, string, int) ([]*core.Item, error) {
	return c.related, nil
}

const pipelineYAML = `
pipeline:
  name: art_feed
  nodes:
    - type: recall.catalog
      config:
        top_categories: 2
        limit: 50
    - type: filter
      config:
        seen: true
        rules:
          - 'item.price > 100000.0'
    - type: rank.hybrid
      config:
        weights:
          collaborative: 0.4
          content: 0.3
          popularity: 0.2
          diversity: 0.1
    - type: rerank.topn
      config:
        n: 10
`

func TestBuildPipelineFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(pipelineYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := pipeline.LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if cfg.Pipeline.Name != "art_feed" || len(cfg.Pipeline.Nodes) != 4 {
		t.Fatalf("parsed config = %+v", cfg.Pipeline)
	}

	pool := []*core.Item{core.NewItem("a1"), core.NewItem("a2")}
	factory := NewFactory(Deps{Catalog: &stubCatalog{items: pool}})
	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}
	if len(p.Nodes) != 4 {
		t.Fatalf("node count = %d, want 4", len(p.Nodes))
	}

	rctx := &core.RecommendContext{Profile: core.NewPreferenceProfile(), Params: map[string]any{}}
	items, err := p.Run(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("pipeline result = %d items, want 2", len(items))
	}
}

const fanoutYAML = `
pipeline:
  name: art_feed_fanout
  nodes:
    - type: recall.fanout
      config:
        dedup: true
        timeout_ms: 200
        max_concurrent: 2
        sources:
          - type: catalog
            limit: 50
          - type: related
    - type: rerank.topn
      config:
        n: 10
`

func TestBuildFanoutPipelineFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(fanoutYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := pipeline.LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}

	seed := core.NewItem("seed")
	catalog := &stubCatalog{
		items:   []*core.Item{core.NewItem("a1"), core.NewItem("a2")},
		related: []*core.Item{core.NewItem("a1"), core.NewItem("a2")},
	}
	factory := NewFactory(Deps{Catalog: catalog})
	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}

	// the related source picks the seed up from the request params
	rctx := &core.RecommendContext{
		Profile: core.NewPreferenceProfile(),
		Params:  map[string]any{"seed_item": seed},
	}
	items, err := p.Run(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// both sources return the same two ids; dedup keeps each once
	if len(items) != 2 {
		t.Errorf("fanout result = %d items, want 2 after dedup", len(items))
	}
}

func TestFactory_FanoutRequiresSources(t *testing.T) {
	factory := NewFactory(Deps{Catalog: &stubCatalog{}})
	if _, err := factory.Build("recall.fanout", map[string]any{}); err == nil {
		t.Fatal("fanout without sources must fail")
	}
	_, err := factory.Build("recall.fanout", map[string]any{
		"sources": []any{map[string]any{"type": "mystery"}},
	})
	if err == nil {
		t.Fatal("unknown fanout source type must fail")
	}
}

func TestFactory_UnknownNodeType(t *testing.T) {
	factory := NewFactory(Deps{Catalog: &stubCatalog{}})
	if _, err := factory.Build("recall.mystery", nil); err == nil {
		t.Fatal("unknown node type must fail")
	}
}

func TestFactory_HybridRejectsBadWeights(t *testing.T) {
	factory := NewFactory(Deps{})
	_, err := factory.Build("rank.hybrid", map[string]any{
		"weights": map[string]any{
			"collaborative": 0.9,
			"content":       0.3,
			"popularity":    0.2,
			"diversity":     0.1,
		},
	})
	if err == nil {
		t.Fatal("weights not summing to 1.0 must fail")
	}
}

func TestFactory_EnrichRequiresProvider(t *testing.T) {
	factory := NewFactory(Deps{Catalog: &stubCatalog{}})
	if _, err := factory.Build("feature.enrich", nil); err == nil {
		t.Fatal("feature.enrich without a stats provider must fail")
	}
}

func TestFactory_FilterRuleSyntaxChecked(t *testing.T) {
	factory := NewFactory(Deps{Catalog: &stubCatalog{}})
	_, err := factory.Build("filter", map[string]any{
		"rules": []any{"item.price >"},
	})
	if err == nil {
		t.Fatal("invalid rule expression must fail at build time")
	}
}
