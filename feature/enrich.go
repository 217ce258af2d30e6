package feature

import (
	"context"

	"github.com/rushteam/artrec/core"
	"github.com/rushteam/artrec/pipeline"
	"github.com/rushteam/artrec/pkg/utils"
)

// EnrichNode 是特征补全节点：打分前用 StatsProvider 的实时计数
// 覆盖候选作品携带的热度统计（popularity 子分的输入）。
//
// 失败语义：Provider 不可用或单个作品缺失时保留目录响应里的旧值，
// 不中断链路——热度略旧只影响排序质量，不影响可用性。
type EnrichNode struct {
	Provider StatsProvider
}

func (n *EnrichNode) Name() string        { return "feature.enrich" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Provider == nil || len(items) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it != nil && it.ID != "" {
			ids = append(ids, it.ID)
		}
	}

	stats, err := n.Provider.BatchStats(ctx, ids)
	if err != nil {
		// 降级：保留目录响应里的统计值
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		s, ok := stats[it.ID]
		if !ok {
			continue
		}
		it.Views = s.Views
		it.Likes = s.Likes
		if s.Rating > 0 {
			it.Rating = s.Rating
		}
		it.PutLabel("stats_source", utils.Label{Value: "feature_store", Source: "feature"})
	}
	return items, nil
}
