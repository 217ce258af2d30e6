package filter

import (
	"context"

	"github.com/rushteam/artrec/core"
)

// SeenFilter 过滤掉用户最近浏览过的作品。
//
// 目录查询已经带了 ExcludeIDs，这里在本地再断言一次：
// 协作方不保证严格遵守排除列表，而“不推荐刚看过的”是本引擎的硬约束。
// 数据源是 rctx 的浏览日志快照，不需要访问存储。
type SeenFilter struct {
	// Recent 取最近浏览的前 N 个作品（默认 20）
	Recent int
}

func (f *SeenFilter) Name() string {
	return "filter.seen"
}

func (f *SeenFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil {
		return false, nil
	}

	recent := f.Recent
	if recent <= 0 {
		recent = core.DefaultFetchConfig().ExcludeRecent
	}

	for _, id := range rctx.RecentViewedIDs(recent) {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}
