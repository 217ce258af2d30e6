// Package profile 维护用户偏好画像与行为日志：推荐链路的唯一写者。
//
// 设计要点：
//   - 画像只由 Recorder 写入；打分与召回拿到的是只读快照
//   - 类目/艺术家按“最近一次强化”排名（重插到队首，不累加计数）
//   - 点赞的强化权重约为浏览的 2 倍
//   - 持久化经过写合并窗口（默认 200ms），失败只记日志不上抛，
//     内存状态始终是当前会话的权威数据
package profile

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/artrec/core"
)

// 强化权重：点赞约为浏览的 2 倍。
const (
	ViewWeight = 1.0
	LikeWeight = 2.0
)

// DefaultFlushWindow 是写合并窗口。窗口内的多次变更只落盘一次，
// 这是针对高频交互的性能优化，不是正确性要求。
const DefaultFlushWindow = 200 * time.Millisecond

// SearchFilters 是一次搜索携带的过滤条件，类目/艺术家会被转发给兴趣记录。
type SearchFilters struct {
	Category string
	Artist   string
}

// Recorder 是交互记录器：接收 UI 事件，维护画像与三条有界日志，
// 并把四个 JSON blob 写回持久化存储。
//
// 并发模型：单一逻辑写者。内部加锁只为保护快照读取与后台落盘，
// 多个标签页之间不做协调（last write wins）。
type Recorder struct {
	mu sync.Mutex

	userID string
	store  core.Store // 可为 nil：纯内存运行
	log    zerolog.Logger

	profile   *core.PreferenceProfile
	viewLog   []core.Interaction
	likeLog   []core.Interaction
	searchLog []core.SearchInteraction

	capacity    int
	flushWindow time.Duration
	flushTimer  *time.Timer
	dirty       map[string]bool // key -> 待落盘

	now func() time.Time
}

// Option 配置 Recorder。
type Option func(*Recorder)

// WithCapacity 覆盖日志容量（默认 100）。
func WithCapacity(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithFlushWindow 覆盖写合并窗口；<=0 表示每次变更立即落盘。
func WithFlushWindow(d time.Duration) Option {
	return func(r *Recorder) { r.flushWindow = d }
}

// WithClock 注入时钟，测试用。
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder 创建 Recorder 并从 Store 加载存量画像与日志。
// 读失败或数据损坏都不是致命错误：丢弃、重置为默认值、记日志。
func NewRecorder(userID string, st core.Store, log zerolog.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		userID:      userID,
		store:       st,
		log:         log.With().Str("component", "profile").Str("user", userID).Logger(),
		profile:     core.NewPreferenceProfile(),
		capacity:    core.LogCapacity,
		flushWindow: DefaultFlushWindow,
		dirty:       make(map[string]bool),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.load()
	return r
}

// 存储 key：四个独立的 JSON blob。
func (r *Recorder) keyViews() string    { return "artrec:" + r.userID + ":views" }
func (r *Recorder) keyLikes() string    { return "artrec:" + r.userID + ":likes" }
func (r *Recorder) keySearches() string { return "artrec:" + r.userID + ":searches" }
func (r *Recorder) keyProfile() string  { return "artrec:" + r.userID + ":profile" }

func (r *Recorder) load() {
	if r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	keys := []string{r.keyViews(), r.keyLikes(), r.keySearches(), r.keyProfile()}
	blobs, err := r.store.BatchGet(ctx, keys)
	if err != nil {
		r.log.Warn().Err(err).Msg("store unavailable, running in-memory only")
		return
	}

	// 先解码到临时值，成功才接收：json.Unmarshal 在半途报错时
	// 已经填充了前面的字段，直接解码到目标会留下部分损坏数据。
	decode := func(key string, v any) bool {
		data, ok := blobs[key]
		if !ok {
			return false
		}
		if err := json.Unmarshal(data, v); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("corrupt stored data, reinitializing")
			return false
		}
		return true
	}

	var viewLog []core.Interaction
	if decode(r.keyViews(), &viewLog) {
		r.viewLog = viewLog
	}
	var likeLog []core.Interaction
	if decode(r.keyLikes(), &likeLog) {
		r.likeLog = likeLog
	}
	var searchLog []core.SearchInteraction
	if decode(r.keySearches(), &searchLog) {
		r.searchLog = searchLog
	}
	var prof core.PreferenceProfile
	if decode(r.keyProfile(), &prof) {
		r.profile = &prof
	}
	r.profile.Normalize()

	// 存量日志可能超出当前配置的容量（例如 WithCapacity 调小之后）
	if len(r.viewLog) > r.capacity {
		r.viewLog = r.viewLog[:r.capacity]
	}
	if len(r.likeLog) > r.capacity {
		r.likeLog = r.likeLog[:r.capacity]
	}
	if len(r.searchLog) > r.capacity {
		r.searchLog = r.searchLog[:r.capacity]
	}
}

// RecordView 记录一次浏览：写入浏览日志并以权重 1 强化画像。
func (r *Recorder) RecordView(ctx context.Context, item *core.Item) {
	if item == nil {
		return
	}
	r.mu.Lock()
	r.viewLog = core.PrependInteraction(r.viewLog, r.interaction(item), r.capacity)
	r.reinforce(item, ViewWeight)
	r.markDirty(r.keyViews(), r.keyProfile())
	r.mu.Unlock()
	r.flushIfImmediate()
}

// RecordLike 记录一次点赞：写入点赞日志并以权重 2 强化画像。
func (r *Recorder) RecordLike(ctx context.Context, item *core.Item) {
	if item == nil {
		return
	}
	r.mu.Lock()
	r.likeLog = core.PrependInteraction(r.likeLog, r.interaction(item), r.capacity)
	r.reinforce(item, LikeWeight)
	r.markDirty(r.keyLikes(), r.keyProfile())
	r.mu.Unlock()
	r.flushIfImmediate()
}

// RecordSearch 记录一次搜索；过滤条件中的类目/艺术家转发给兴趣记录。
func (r *Recorder) RecordSearch(ctx context.Context, query string, filters SearchFilters) {
	r.mu.Lock()
	rec := core.SearchInteraction{
		Query:      query,
		CategoryID: filters.Category,
		ArtistID:   filters.Artist,
		Timestamp:  r.now(),
	}
	r.searchLog = core.PrependSearch(r.searchLog, rec, r.capacity)
	if filters.Category != "" {
		r.profile.FavoriteCategories.Reinforce(filters.Category, ViewWeight, r.now())
	}
	if filters.Artist != "" {
		r.profile.FavoriteArtists.Reinforce(filters.Artist, ViewWeight, r.now())
	}
	r.markDirty(r.keySearches(), r.keyProfile())
	r.mu.Unlock()
	r.flushIfImmediate()
}

// RecordCategoryInterest 记录一次类目点击。
func (r *Recorder) RecordCategoryInterest(ctx context.Context, categoryID string) {
	if categoryID == "" {
		return
	}
	r.mu.Lock()
	r.profile.FavoriteCategories.Reinforce(categoryID, ViewWeight, r.now())
	r.markDirty(r.keyProfile())
	r.mu.Unlock()
	r.flushIfImmediate()
}

// RecordArtistInterest 记录一次艺术家点击。
func (r *Recorder) RecordArtistInterest(ctx context.Context, artistID string) {
	if artistID == "" {
		return
	}
	r.mu.Lock()
	r.profile.FavoriteArtists.Reinforce(artistID, ViewWeight, r.now())
	r.markDirty(r.keyProfile())
	r.mu.Unlock()
	r.flushIfImmediate()
}

func (r *Recorder) interaction(item *core.Item) core.Interaction {
	return core.Interaction{
		ItemID:     item.ID,
		Title:      item.Title,
		ArtistID:   item.ArtistID,
		CategoryID: item.CategoryID,
		Price:      item.Price,
		Timestamp:  r.now(),
	}
}

// reinforce 是共享的画像更新入口：强化类目/艺术家排名、
// 扩展价格区间、补充风格/时期偏好。调用方持锁。
func (r *Recorder) reinforce(item *core.Item, weight float64) {
	now := r.now()
	if item.CategoryID != "" {
		r.profile.FavoriteCategories.Reinforce(item.CategoryID, weight, now)
	}
	if item.ArtistID != "" {
		r.profile.FavoriteArtists.Reinforce(item.ArtistID, weight, now)
	}
	r.profile.ObservePrice(item.Price)
	if item.Style != "" {
		r.profile.PreferredStyles[item.Style] = true
	}
	if item.Period != "" {
		r.profile.PreferredPeriods[item.Period] = true
	}
}

// Snapshot 返回画像与日志的只读快照，供 Pipeline 打分使用。
// 快照期间不持有锁，目录查询被取消也不会留下半更新的画像。
func (r *Recorder) Snapshot() *core.RecommendContext {
	r.mu.Lock()
	defer r.mu.Unlock()

	viewLog := make([]core.Interaction, len(r.viewLog))
	copy(viewLog, r.viewLog)
	likeLog := make([]core.Interaction, len(r.likeLog))
	copy(likeLog, r.likeLog)
	searchLog := make([]core.SearchInteraction, len(r.searchLog))
	copy(searchLog, r.searchLog)

	return &core.RecommendContext{
		UserID:    r.userID,
		Profile:   r.profile.Clone(),
		ViewLog:   viewLog,
		LikeLog:   likeLog,
		SearchLog: searchLog,
		Params:    make(map[string]any),
	}
}

// Reset 清空全部历史与画像，并删除持久化的四个 blob。
func (r *Recorder) Reset(ctx context.Context) {
	r.mu.Lock()
	r.profile = core.NewPreferenceProfile()
	r.viewLog = nil
	r.likeLog = nil
	r.searchLog = nil
	r.dirty = make(map[string]bool)
	if r.flushTimer != nil {
		r.flushTimer.Stop()
		r.flushTimer = nil
	}
	r.mu.Unlock()

	if r.store == nil {
		return
	}
	for _, key := range []string{r.keyViews(), r.keyLikes(), r.keySearches(), r.keyProfile()} {
		if err := r.store.Delete(ctx, key); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("reset: delete failed")
		}
	}
}

// markDirty 标记待落盘的 key 并启动写合并窗口。调用方持锁。
// 窗口 <=0 时不起定时器，由调用方在解锁后同步调用 flushNow。
func (r *Recorder) markDirty(keys ...string) {
	if r.store == nil {
		return
	}
	for _, k := range keys {
		r.dirty[k] = true
	}
	if r.flushWindow <= 0 {
		return
	}
	if r.flushTimer == nil {
		r.flushTimer = time.AfterFunc(r.flushWindow, r.flushNow)
	}
}

// flushIfImmediate 在无写合并窗口时同步落盘。调用方不得持锁。
func (r *Recorder) flushIfImmediate() {
	if r.flushWindow <= 0 && r.store != nil {
		r.flushNow()
	}
}

// flushNow 把所有脏 blob 序列化后一次批量写回。
// 写失败只记日志：内存状态仍是权威数据。
func (r *Recorder) flushNow() {
	r.mu.Lock()
	if len(r.dirty) == 0 {
		r.flushTimer = nil
		r.mu.Unlock()
		return
	}
	kvs := make(map[string][]byte, len(r.dirty))
	for key := range r.dirty {
		var v any
		switch key {
		case r.keyViews():
			v = r.viewLog
		case r.keyLikes():
			v = r.likeLog
		case r.keySearches():
			v = r.searchLog
		case r.keyProfile():
			v = r.profile
		default:
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			r.log.Error().Err(err).Str("key", key).Msg("marshal failed")
			continue
		}
		kvs[key] = data
	}
	r.dirty = make(map[string]bool)
	r.flushTimer = nil
	st := r.store
	r.mu.Unlock()

	if st == nil || len(kvs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := st.BatchSet(ctx, kvs); err != nil {
		r.log.Warn().Err(err).Msg("store write failed, in-memory state remains authoritative")
	}
}

// Flush 立即落盘所有待写变更（关闭前调用）。
func (r *Recorder) Flush(ctx context.Context) {
	r.mu.Lock()
	if r.flushTimer != nil {
		r.flushTimer.Stop()
		r.flushTimer = nil
	}
	r.mu.Unlock()
	r.flushNow()
}

// Close 落盘并停止后台定时器。
func (r *Recorder) Close() error {
	r.Flush(context.Background())
	return nil
}
