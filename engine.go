package artrec

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/artrec/core"
	"github.com/rushteam/artrec/explain"
	"github.com/rushteam/artrec/feature"
	"github.com/rushteam/artrec/filter"
	"github.com/rushteam/artrec/pipeline"
	"github.com/rushteam/artrec/profile"
	"github.com/rushteam/artrec/rank"
	"github.com/rushteam/artrec/recall"
	"github.com/rushteam/artrec/rerank"
)

// Engine 是面向 UI 的推荐引擎门面。
//
// 显式构造、显式注入（目录协作方 + 偏好存储 + 日志器），无全局状态；
// 每个用户/会话一个实例。打分同步且无锁（见 core.RecommendContext 的快照语义），
// 唯一的异步边界是目录查询，超时/重试由协作方自理。
//
// 失败语义：目录失败返回空列表、存储失败降级纯内存，都只记日志；
// 任何错误都不会从这里抛给 UI。
type Engine struct {
	catalog  core.Catalog
	recorder *profile.Recorder
	log      zerolog.Logger

	scoring core.ScoringConfig
	fetch   core.FetchConfig
	stats   feature.StatsProvider
	rules   []filter.Filter
}

// Option 配置 Engine。
type Option func(*Engine)

// WithScoringConfig 覆盖打分配置（权重必须闭合，NewEngine 校验）。
func WithScoringConfig(cfg core.ScoringConfig) Option {
	return func(e *Engine) { e.scoring = cfg }
}

// WithFetchConfig 覆盖候选获取配置。
func WithFetchConfig(cfg core.FetchConfig) Option {
	return func(e *Engine) { e.fetch = cfg }
}

// WithStatsProvider 注入热度统计源（如 Feast），打分前刷新候选计数。
func WithStatsProvider(p feature.StatsProvider) Option {
	return func(e *Engine) { e.stats = p }
}

// WithFilterRules 追加规则过滤器（CEL 表达式，见 filter.NewExprFilter）。
func WithFilterRules(rules ...filter.Filter) Option {
	return func(e *Engine) { e.rules = append(e.rules, rules...) }
}

// NewEngine 创建推荐引擎。
//
// userID 标识偏好画像的归属；catalog 是目录协作方（必填）；
// st 是持久化偏好存储，可为 nil（纯内存，画像只活在当前会话）。
func NewEngine(
	userID string,
	catalog core.Catalog,
	st core.Store,
	log zerolog.Logger,
	opts ...Option,
) (*Engine, error) {
	e := &Engine{
		catalog: catalog,
		log:     log.With().Str("component", "artrec").Logger(),
		scoring: core.DefaultScoringConfig(),
		fetch:   core.DefaultFetchConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.scoring.Validate(); err != nil {
		return nil, err
	}
	e.recorder = profile.NewRecorder(userID, st, log)
	return e, nil
}

// Recorder 暴露底层交互记录器（测试/高级用法）。
func (e *Engine) Recorder() *profile.Recorder { return e.recorder }

// RecordView 记录一次浏览。
func (e *Engine) RecordView(ctx context.Context, item *core.Item) {
	e.recorder.RecordView(ctx, item)
}

// RecordLike 记录一次点赞。
func (e *Engine) RecordLike(ctx context.Context, item *core.Item) {
	e.recorder.RecordLike(ctx, item)
}

// RecordSearch 记录一次搜索（过滤条件中的类目/艺术家计入兴趣）。
func (e *Engine) RecordSearch(ctx context.Context, query string, filters profile.SearchFilters) {
	e.recorder.RecordSearch(ctx, query, filters)
}

// RecordCategoryInterest 记录一次类目点击。
func (e *Engine) RecordCategoryInterest(ctx context.Context, categoryID string) {
	e.recorder.RecordCategoryInterest(ctx, categoryID)
}

// RecordArtistInterest 记录一次艺术家点击。
func (e *Engine) RecordArtistInterest(ctx context.Context, artistID string) {
	e.recorder.RecordArtistInterest(ctx, artistID)
}

// ResetHistory 清空全部历史与画像（四个持久化 blob 一并删除）。
func (e *Engine) ResetHistory(ctx context.Context) {
	e.recorder.Reset(ctx)
}

// GetRecommendations 返回打分排序后的推荐列表。
// count <= 0 时使用默认条数（12）。目录失败时返回空列表，不上抛。
func (e *Engine) GetRecommendations(ctx context.Context, count int) []*core.Item {
	if count <= 0 {
		count = e.fetch.DefaultCount
	}
	if count <= 0 {
		count = core.DefaultFetchConfig().DefaultCount
	}
	rctx := e.recorder.Snapshot()

	filters := append([]filter.Filter{&filter.SeenFilter{Recent: e.fetch.ExcludeRecent}}, e.rules...)
	nodes := []pipeline.Node{
		&recall.CatalogRecall{Catalog: e.catalog, Fetch: e.fetch},
		&filter.FilterNode{Filters: filters},
	}
	if e.stats != nil {
		nodes = append(nodes, &feature.EnrichNode{Provider: e.stats})
	}
	nodes = append(nodes,
		rank.NewHybridNode(e.scoring),
		&rerank.TopNNode{N: count},
	)

	return e.run(ctx, rctx, nodes)
}

// GetSimilarItems 返回与源作品相似的作品列表（两两相似度重排）。
// count <= 0 时使用默认条数（6）。目录失败时返回空列表，不上抛。
func (e *Engine) GetSimilarItems(ctx context.Context, item *core.Item, count int) []*core.Item {
	if item == nil {
		return nil
	}
	if count <= 0 {
		count = e.fetch.SimilarCount
	}
	if count <= 0 {
		count = core.DefaultFetchConfig().SimilarCount
	}
	rctx := e.recorder.Snapshot()
	rctx.Params[recall.SeedItemParam] = item

	nodes := []pipeline.Node{
		&recall.RelatedRecall{Catalog: e.catalog},
		&rank.SimilarityNode{},
		&rerank.TopNNode{N: count},
	}

	return e.run(ctx, rctx, nodes)
}

// DescribeAlgorithm 返回当前算法档位的可读描述（纯 UI 向，不影响排序）。
func (e *Engine) DescribeAlgorithm() explain.Report {
	rctx := e.recorder.Snapshot()
	return explain.Describe(rctx.InteractionCount(), e.scoring.Weights())
}

// Close 落盘待写变更并释放资源。
func (e *Engine) Close() error {
	if e.stats != nil {
		if err := e.stats.Close(); err != nil {
			e.log.Warn().Err(err).Msg("stats provider close failed")
		}
	}
	return e.recorder.Close()
}

func (e *Engine) run(ctx context.Context, rctx *core.RecommendContext, nodes []pipeline.Node) []*core.Item {
	p := &pipeline.Pipeline{Nodes: nodes}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		// 目录不可用：降级为空结果，由 UI 渲染空态
		e.log.Error().Err(err).Msg("pipeline failed, returning empty result")
		return []*core.Item{}
	}
	if items == nil {
		items = []*core.Item{}
	}
	return items
}
