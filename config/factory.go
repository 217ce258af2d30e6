// Package config 把 YAML/JSON 的 Pipeline 配置翻译成可执行的 Node 链。
//
// 与纯配置驱动不同，召回/特征节点需要注入目录协作方等外部依赖，
// 因此工厂从 Deps 构建（显式依赖注入），而不是全局 init 注册。
package config

import (
	"fmt"
	"time"

	"github.com/rushteam/artrec/core"
	"github.com/rushteam/artrec/feature"
	"github.com/rushteam/artrec/filter"
	"github.com/rushteam/artrec/pipeline"
	"github.com/rushteam/artrec/pkg/conv"
	"github.com/rushteam/artrec/rank"
	"github.com/rushteam/artrec/recall"
	"github.com/rushteam/artrec/rerank"
)

// Deps 是配置驱动的 Node 所需的外部协作方。
type Deps struct {
	Catalog core.Catalog
	Stats   feature.StatsProvider // 可为 nil：feature.enrich 节点不可用
}

// NewFactory 返回包含所有内置 Node 构建器的工厂。
// 自定义 Node 可以继续通过 factory.Register 扩展。
func NewFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	factory.Register("recall.catalog", buildCatalogRecall(deps))
	factory.Register("recall.related", buildRelatedRecall(deps))
	factory.Register("recall.fanout", buildFanoutNode(deps))
	factory.Register("filter", buildFilterNode)
	factory.Register("feature.enrich", buildEnrichNode(deps))
	factory.Register("rank.hybrid", buildHybridNode)
	factory.Register("rank.similarity", buildSimilarityNode)
	factory.Register("rerank.topn", buildTopNNode)

	return factory
}

func buildCatalogRecall(deps Deps) pipeline.NodeBuilder {
	return func(cfg map[string]any) (pipeline.Node, error) {
		if deps.Catalog == nil {
			return nil, fmt.Errorf("recall.catalog requires a catalog collaborator")
		}
		fetch := core.DefaultFetchConfig()
		fetch.TopCategories = int(conv.ConfigGetInt64(cfg, "top_categories", int64(fetch.TopCategories)))
		fetch.TopArtists = int(conv.ConfigGetInt64(cfg, "top_artists", int64(fetch.TopArtists)))
		fetch.ExcludeRecent = int(conv.ConfigGetInt64(cfg, "exclude_recent", int64(fetch.ExcludeRecent)))
		fetch.PriceBandLower = conv.ConfigGetFloat64(cfg, "price_band_lower", fetch.PriceBandLower)
		fetch.PriceBandUpper = conv.ConfigGetFloat64(cfg, "price_band_upper", fetch.PriceBandUpper)
		return &recall.CatalogRecall{
			Catalog: deps.Catalog,
			Fetch:   fetch,
			Limit:   int(conv.ConfigGetInt64(cfg, "limit", 0)),
		}, nil
	}
}

func buildRelatedRecall(deps Deps) pipeline.NodeBuilder {
	return func(cfg map[string]any) (pipeline.Node, error) {
		if deps.Catalog == nil {
			return nil, fmt.Errorf("recall.related requires a catalog collaborator")
		}
		return &recall.RelatedRecall{
			Catalog: deps.Catalog,
			Limit:   int(conv.ConfigGetInt64(cfg, "limit", 0)),
		}, nil
	}
}

// buildFanoutNode 组装并发召回：sources 是源配置列表，
// 每项携带 type（catalog / related）与各自的内联配置。
func buildFanoutNode(deps Deps) pipeline.NodeBuilder {
	return func(cfg map[string]any) (pipeline.Node, error) {
		sourcesConfig, ok := cfg["sources"].([]any)
		if !ok || len(sourcesConfig) == 0 {
			return nil, fmt.Errorf("recall.fanout: sources not found or invalid")
		}

		sources := make([]recall.Source, 0, len(sourcesConfig))
		for _, sc := range sourcesConfig {
			sourceMap, ok := sc.(map[string]any)
			if !ok {
				continue
			}
			var (
				node pipeline.Node
				err  error
			)
			sourceType := conv.ConfigGet(sourceMap, "type", "")
			switch sourceType {
			case "catalog":
				node, err = buildCatalogRecall(deps)(sourceMap)
			case "related":
				node, err = buildRelatedRecall(deps)(sourceMap)
			default:
				return nil, fmt.Errorf("recall.fanout: unknown source type: %s", sourceType)
			}
			if err != nil {
				return nil, err
			}
			sources = append(sources, node.(recall.Source))
		}

		fanout := &recall.Fanout{
			Sources:       sources,
			Dedup:         conv.ConfigGet(cfg, "dedup", true),
			MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", ""),
		}
		if ms := conv.ConfigGetInt64(cfg, "timeout_ms", 0); ms > 0 {
			fanout.Timeout = time.Duration(ms) * time.Millisecond
		}
		if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
			fanout.MaxConcurrent = int(n)
		}
		return fanout, nil
	}
}

func buildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	node := &filter.FilterNode{}

	if conv.ConfigGet(cfg, "seen", true) {
		node.Filters = append(node.Filters, &filter.SeenFilter{
			Recent: int(conv.ConfigGetInt64(cfg, "seen_recent", 0)),
		})
	}
	for _, expr := range conv.SliceAnyToString(cfg["rules"]) {
		f, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, fmt.Errorf("filter rule: %w", err)
		}
		node.Filters = append(node.Filters, f)
	}
	return node, nil
}

func buildEnrichNode(deps Deps) pipeline.NodeBuilder {
	return func(cfg map[string]any) (pipeline.Node, error) {
		if deps.Stats == nil {
			return nil, fmt.Errorf("feature.enrich requires a stats provider")
		}
		return &feature.EnrichNode{Provider: deps.Stats}, nil
	}
}

func buildHybridNode(cfg map[string]any) (pipeline.Node, error) {
	sc := core.DefaultScoringConfig()
	if weights, ok := cfg["weights"].(map[string]any); ok {
		w := conv.MapToFloat64(weights)
		if v, ok := w["collaborative"]; ok {
			sc.CollaborativeWeight = v
		}
		if v, ok := w["content"]; ok {
			sc.ContentWeight = v
		}
		if v, ok := w["popularity"]; ok {
			sc.PopularityWeight = v
		}
		if v, ok := w["diversity"]; ok {
			sc.DiversityWeight = v
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	node := rank.NewHybridNode(sc)
	node.Explain = conv.ConfigGet(cfg, "explain", true)
	return node, nil
}

func buildSimilarityNode(_ map[string]any) (pipeline.Node, error) {
	return &rank.SimilarityNode{}, nil
}

func buildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N: int(conv.ConfigGetInt64(cfg, "n", 0)),
	}, nil
}
