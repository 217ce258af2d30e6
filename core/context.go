package core

import "github.com/rushteam/artrec/pkg/utils"

// RecommendContext 承载用户偏好画像与行为历史快照，贯穿整个 Pipeline 透传。
//
// 快照语义：Profile 与各日志在进入 Pipeline 前由 Recorder 拷贝一次，
// 打分期间不会被并发修改，因此所有子分都是纯函数（幂等、无锁）。
type RecommendContext struct {
	UserID string

	// Profile 是偏好画像快照（只读）
	Profile *PreferenceProfile

	// 行为日志快照：index 0 = 最新
	ViewLog   []Interaction
	LikeLog   []Interaction
	SearchLog []SearchInteraction

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数（count、seed_item 等）
	Params map[string]any
}

// AvgViewedPrice 返回浏览历史的平均价格；无浏览历史时返回 0。
// 价格子分与候选价格带都以它为基准。
func (rctx *RecommendContext) AvgViewedPrice() float64 {
	if rctx == nil || len(rctx.ViewLog) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, rec := range rctx.ViewLog {
		if rec.Price > 0 {
			sum += rec.Price
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// RecentViewedIDs 返回最近浏览的 n 个作品 ID（去重，最新在前）。
func (rctx *RecommendContext) RecentViewedIDs(n int) []string {
	if rctx == nil || len(rctx.ViewLog) == 0 {
		return nil
	}
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for _, rec := range rctx.ViewLog {
		if n > 0 && len(out) >= n {
			break
		}
		if rec.ItemID == "" || seen[rec.ItemID] {
			continue
		}
		seen[rec.ItemID] = true
		out = append(out, rec.ItemID)
	}
	return out
}

// InteractionCount 返回浏览+点赞的总行为数，驱动 explain 的算法档位。
func (rctx *RecommendContext) InteractionCount() int {
	if rctx == nil {
		return 0
	}
	return len(rctx.ViewLog) + len(rctx.LikeLog)
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
