package pipeline

import (
	"context"

	"github.com/rushteam/artrec/core"
)

// Pipeline 是 artrec 的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 一次推荐请求 = 召回（catalog）→ 过滤（已看过/规则）→ 特征补全 → 打分 → 截断。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
