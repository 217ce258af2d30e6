package core

import "context"

// CatalogQuery 是发给目录协作方的过滤查询参数。
// 候选池的大小与内部排序是协作方的职责，本引擎只做本地重排。
type CatalogQuery struct {
	Categories []string // 偏好画像的 Top 类目
	Artists    []string // 偏好画像的 Top 艺术家
	PriceMin   float64  // 价格带下限（0 表示不限）
	PriceMax   float64  // 价格带上限（0 表示不限）
	ExcludeIDs []string // 最近浏览过的作品，避免推荐刚看过的
	Limit      int      // 候选池上限（0 表示由协作方决定）
}

// Catalog 是目录协作方的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由宿主应用注入实现
//   - 目录查询是本引擎唯一的异步边界；超时/重试策略由协作方自理
//   - 查询失败时引擎降级为空结果，绝不向 UI 抛错
type Catalog interface {
	// Query 按过滤条件返回候选池
	Query(ctx context.Context, q CatalogQuery) ([]*Item, error)

	// Related 返回与指定作品相关的候选池（“相似作品”入口）
	Related(ctx context.Context, itemID string, limit int) ([]*Item, error)
}
