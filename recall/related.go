package recall

import (
	"context"

	"github.com/rushteam/artrec/core"
	"github.com/rushteam/artrec/pipeline"
	"github.com/rushteam/artrec/pkg/utils"
)

// SeedItemParam 是 rctx.Params 中承载相似查询源作品的 key。
// Engine 在发起“相似作品”请求时写入 *core.Item。
const SeedItemParam = "seed_item"

// RelatedRecall 是相关作品召回源：按源作品 ID 查询目录的
// "items related to X" 接口，供相似度重排使用。
type RelatedRecall struct {
	Catalog core.Catalog
	Limit   int // 候选池上限（0 时使用目录默认值）
}

func (r *RelatedRecall) Name() string        { return "recall.related" }
func (r *RelatedRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *RelatedRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *RelatedRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	seed := SeedItem(rctx)
	if r.Catalog == nil || seed == nil {
		return nil, nil
	}

	items, err := r.Catalog.Related(ctx, seed.ID, r.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil || it.ID == seed.ID {
			continue
		}
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// SeedItem 从 rctx.Params 取出源作品。
func SeedItem(rctx *core.RecommendContext) *core.Item {
	if rctx == nil || rctx.Params == nil {
		return nil
	}
	seed, _ := rctx.Params[SeedItemParam].(*core.Item)
	return seed
}
