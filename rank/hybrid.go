// Package rank 实现混合打分：四个加权子分合成 0-100 的排序分。
//
// 所有子分都是纯函数：输入是画像/日志快照与候选字段，无隐藏状态，
// 同一输入重复打分结果完全一致。缺失的可选字段贡献 0 分，永不报错。
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

// HybridNode 是混合打分 Node：
//
//	score = 0.4*collaborative + 0.3*content + 0.2*popularity + 0.1*diversity
//
// 权重来自 ScoringConfig，可整体调权而不触碰子分逻辑。
// 每个子分都被钳制到 [0,100]，因此合成分也落在 [0,100]。
// 打分后按分数降序排序（稳定排序，分数相同保持召回顺序）。
type HybridNode struct {
	Config core.ScoringConfig

	// Explain 为 true 时在每个候选上写入分数拆解 Label
	// （score_collaborative / score_content / score_popularity / score_diversity）
	Explain bool
}

func NewHybridNode(cfg core.ScoringConfig) *HybridNode {
	return &HybridNode{Config: cfg, Explain: true}
}

func (n *HybridNode) Name() string        { return "rank.hybrid" }
func (n *HybridNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HybridNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score = n.Score(it, rctx)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// Score 计算一个候选的合成分。
func (n *HybridNode) Score(item *core.Item, rctx *core.RecommendContext) float64 {
	cfg := n.Config

	collab := n.Collaborative(item, rctx)
	content := n.ContentBased(item, rctx)
	pop := n.Popularity(item)
	div := n.Diversity(item, rctx)

	if n.Explain {
		putScoreLabel(item, "score_collaborative", collab)
		putScoreLabel(item, "score_content", content)
		putScoreLabel(item, "score_popularity", pop)
		putScoreLabel(item, "score_diversity", div)
	}

	return cfg.CollaborativeWeight*collab +
		cfg.ContentWeight*content +
		cfg.PopularityWeight*pop +
		cfg.DiversityWeight*div
}

// Collaborative 是协同子分（上限 100）：
//   - 浏览日志中同一艺术家的每次出现 +20，上限 60
//   - 点赞日志中同一类目的每次出现 +15，上限 40
//
// 注意：这是用单用户自身历史近似“看过此作品的人还看过”，
// 源设计中没有跨用户数据。这是有意的简化，不是缺陷；
// 若未来接入真正的多用户信号，此公式需要重新评估。
func (n *HybridNode) Collaborative(item *core.Item, rctx *core.RecommendContext) float64 {
	if rctx == nil {
		return 0
	}

	var artistHits float64
	if item.ArtistID != "" {
		for _, rec := range rctx.ViewLog {
			if rec.ArtistID == item.ArtistID {
				artistHits += 20
			}
		}
	}
	artistHits = math.Min(artistHits, 60)

	var categoryHits float64
	if item.CategoryID != "" {
		for _, rec := range rctx.LikeLog {
			if rec.CategoryID == item.CategoryID {
				categoryHits += 15
			}
		}
	}
	categoryHits = math.Min(categoryHits, 40)

	return clamp(artistHits + categoryHits)
}

// ContentBased 是内容子分：五个特征维度的加权和。
//   - 类目匹配（0.35）：画像排名 i 得 100-10i，深排名钳到 0
//   - 艺术家匹配（0.30）：画像排名 i 得 100-8i，同上
//   - 风格匹配（0.15）：二值 100/0
//   - 价格匹配（0.10）：100 - |p-avg|/avg*100，钳到 ≥0；无浏览历史贡献 0
//   - 时期匹配（0.10）：二值 100/0
func (n *HybridNode) ContentBased(item *core.Item, rctx *core.RecommendContext) float64 {
	if rctx == nil || rctx.Profile == nil {
		return 0
	}
	cfg := n.Config
	p := rctx.Profile

	var score float64
	if i := p.FavoriteCategories.Rank(item.CategoryID); i >= 0 {
		score += cfg.ContentCategoryWeight * math.Max(0, 100-float64(i)*10)
	}
	if i := p.FavoriteArtists.Rank(item.ArtistID); i >= 0 {
		score += cfg.ContentArtistWeight * math.Max(0, 100-float64(i)*8)
	}
	if item.Style != "" && p.PreferredStyles[item.Style] {
		score += cfg.ContentStyleWeight * 100
	}
	if avg := rctx.AvgViewedPrice(); avg > 0 && item.Price > 0 {
		match := 100 - math.Abs(item.Price-avg)/avg*100
		score += cfg.ContentPriceWeight * math.Max(0, match)
	}
	if item.Period != "" && p.PreferredPeriods[item.Period] {
		score += cfg.ContentPeriodWeight * 100
	}

	return clamp(score)
}

// Popularity 是热度子分：
//
//	min(views/10000,1)*40 + min(likes/1000,1)*40 + rating/5*20
//
// 归一化分母（10000 浏览 / 1000 点赞 / 5 分制）是打分模型的固定常数，
// 不从线上数据分布推导。
func (n *HybridNode) Popularity(item *core.Item) float64 {
	cfg := n.Config
	viewNorm := cfg.PopularityViewNorm
	likeNorm := cfg.PopularityLikeNorm
	scale := cfg.RatingScale
	if viewNorm <= 0 || likeNorm <= 0 || scale <= 0 {
		def := core.DefaultScoringConfig()
		viewNorm, likeNorm, scale = def.PopularityViewNorm, def.PopularityLikeNorm, def.RatingScale
	}

	score := math.Min(float64(item.Views)/viewNorm, 1)*40 +
		math.Min(float64(item.Likes)/likeNorm, 1)*40 +
		item.Rating/scale*20
	return clamp(score)
}

// Diversity 是多样性子分，奖励探索、对冲内容子分的信息茧房倾向：
//   - 类目不在偏好列表 +50
//   - 艺术家不在偏好列表 +50
//   - 新作品额外 +20（钳到 100）
func (n *HybridNode) Diversity(item *core.Item, rctx *core.RecommendContext) float64 {
	var score float64
	var p *core.PreferenceProfile
	if rctx != nil {
		p = rctx.Profile
	}

	if p == nil || !p.FavoriteCategories.Contains(item.CategoryID) {
		score += 50
	}
	if p == nil || !p.FavoriteArtists.Contains(item.ArtistID) {
		score += 50
	}
	if item.IsNew {
		score += 20
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// 直接覆盖而不是 Merge：重复打分不应累积历史值（幂等）。
func putScoreLabel(item *core.Item, key string, v float64) {
	if item.Labels == nil {
		item.Labels = make(map[string]utils.Label)
	}
	item.Labels[key] = utils.Label{
		Value:  strconv.FormatFloat(v, 'f', 1, 64),
		Source: "rank",
	}
}
