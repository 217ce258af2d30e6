package recall

import (
	"context"

	"github.com/rushteam/artrec/core"
	"github.com/rushteam/artrec/pipeline"
	"github.com/rushteam/artrec/pkg/utils"
)

// CatalogRecall 是目录召回源：把偏好画像翻译成目录过滤查询。
//
// 派生参数（FetchConfig 可调）：
//   - Top 3 偏好类目、Top 5 偏好艺术家
//   - 价格带 [avg*0.5, avg*1.5]（仅当有浏览历史）
//   - 排除最近浏览的 20 个作品 ID
//
// 候选池的大小与内部排序由目录协作方决定，本地只负责重排。
// CatalogRecall 同时实现 Source 和 Node 接口。
type CatalogRecall struct {
	Catalog core.Catalog
	Fetch   core.FetchConfig
	Limit   int // 候选池上限（0 表示由协作方决定）
}

func (r *CatalogRecall) Name() string        { return "recall.catalog" }
func (r *CatalogRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *CatalogRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *CatalogRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil {
		return nil, nil
	}

	items, err := r.Catalog.Query(ctx, r.DeriveQuery(rctx))
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
	}
	return items, nil
}

// DeriveQuery 从画像快照派生目录查询参数。
func (r *CatalogRecall) DeriveQuery(rctx *core.RecommendContext) core.CatalogQuery {
	cfg := r.Fetch
	if cfg.TopCategories == 0 && cfg.TopArtists == 0 {
		cfg = core.DefaultFetchConfig()
	}

	q := core.CatalogQuery{Limit: r.Limit}
	if rctx.Profile != nil {
		q.Categories = rctx.Profile.FavoriteCategories.Top(cfg.TopCategories)
		q.Artists = rctx.Profile.FavoriteArtists.Top(cfg.TopArtists)
	}
	if avg := rctx.AvgViewedPrice(); avg > 0 {
		q.PriceMin = avg * cfg.PriceBandLower
		q.PriceMax = avg * cfg.PriceBandUpper
	}
	q.ExcludeIDs = rctx.RecentViewedIDs(cfg.ExcludeRecent)
	return q
}
