package rank

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/rushteam/artrec/core"
	"github.com/rushteam/artrec/pipeline"
	"github.com/rushteam/artrec/pkg/utils"
)

// SimilarityNode 按与源作品的两两相似度重排候选（“相似作品”场景）。
// 源作品来自 rctx.Params（见 recall.SeedItemParam）。
// 相似度与合成分是两套量纲：上限约 100，但不归一化到合成分的区间。
type SimilarityNode struct{}

func (n *SimilarityNode) Name() string        { return "rank.similarity" }
func (n *SimilarityNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *SimilarityNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	var seed *core.Item
	if rctx != nil && rctx.Params != nil {
		seed, _ = rctx.Params["seed_item"].(*core.Item)
	}
	if seed == nil {
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score = Similarity(seed, it)
		if it.Labels == nil {
			it.Labels = make(map[string]utils.Label)
		}
		it.Labels["similarity"] = utils.Label{
			Value:  strconv.FormatFloat(it.Score, 'f', 1, 64),
			Source: "rank",
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// Similarity 计算两个作品的两两相似度：
//   - 同艺术家 +40
//   - 同类目 +30
//   - 同风格 +15
//   - 价格接近时最多 +15：两价相差不超过 30% 时计 (1-relDiff)*15，
//     relDiff = |p1-p2| / min(p1,p2)（100 vs 120 → 0.2 → +12）
func Similarity(a, b *core.Item) float64 {
	if a == nil || b == nil {
		return 0
	}

	var score float64
	if a.ArtistID != "" && a.ArtistID == b.ArtistID {
		score += 40
	}
	if a.CategoryID != "" && a.CategoryID == b.CategoryID {
		score += 30
	}
	if a.Style != "" && a.Style == b.Style {
		score += 15
	}
	if a.Price > 0 && b.Price > 0 {
		relDiff := math.Abs(a.Price-b.Price) / math.Min(a.Price, b.Price)
		if relDiff <= 0.3 {
			score += (1 - relDiff) * 15
		}
	}
	return score
}
