package core

// PriceRange 是观测到的价格区间。
// Min == 0 && Max == 0 表示尚无观测。
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PreferenceProfile 是用户偏好画像：推荐链路的全局决策信号。
//
// 它不属于某一个 Node，而是：
//   - 由 profile.Recorder 独占写入（单一逻辑写者）
//   - 对打分与召回只读
//   - 持久化到 Store，跨会话存活，只能被显式 Reset 清空
//
// 排名语义：FavoriteCategories / FavoriteArtists 按“最近一次强化”排序，
// 重复强化移到队首而不是累加计数（见 RankedList）。
type PreferenceProfile struct {
	FavoriteCategories *RankedList     `json:"favorite_categories"`
	FavoriteArtists    *RankedList     `json:"favorite_artists"`
	PriceRange         PriceRange      `json:"price_range"`
	PreferredStyles    map[string]bool `json:"preferred_styles"`
	PreferredPeriods   map[string]bool `json:"preferred_periods"`
}

func NewPreferenceProfile() *PreferenceProfile {
	return &PreferenceProfile{
		FavoriteCategories: NewRankedList(),
		FavoriteArtists:    NewRankedList(),
		PreferredStyles:    make(map[string]bool),
		PreferredPeriods:   make(map[string]bool),
	}
}

// Normalize 补齐反序列化后可能缺失的内部容器（损坏/旧版本数据兜底）。
func (p *PreferenceProfile) Normalize() {
	if p.FavoriteCategories == nil {
		p.FavoriteCategories = NewRankedList()
	}
	if p.FavoriteArtists == nil {
		p.FavoriteArtists = NewRankedList()
	}
	if p.PreferredStyles == nil {
		p.PreferredStyles = make(map[string]bool)
	}
	if p.PreferredPeriods == nil {
		p.PreferredPeriods = make(map[string]bool)
	}
}

// ObservePrice 扩展观测到的价格区间。
func (p *PreferenceProfile) ObservePrice(price float64) {
	if price <= 0 {
		return
	}
	if p.PriceRange.Min == 0 && p.PriceRange.Max == 0 {
		p.PriceRange = PriceRange{Min: price, Max: price}
		return
	}
	if price < p.PriceRange.Min {
		p.PriceRange.Min = price
	}
	if price > p.PriceRange.Max {
		p.PriceRange.Max = price
	}
}

// Clone 返回深拷贝，用于打分快照。
func (p *PreferenceProfile) Clone() *PreferenceProfile {
	if p == nil {
		return NewPreferenceProfile()
	}
	out := &PreferenceProfile{
		FavoriteCategories: p.FavoriteCategories.Clone(),
		FavoriteArtists:    p.FavoriteArtists.Clone(),
		PriceRange:         p.PriceRange,
		PreferredStyles:    make(map[string]bool, len(p.PreferredStyles)),
		PreferredPeriods:   make(map[string]bool, len(p.PreferredPeriods)),
	}
	for k, v := range p.PreferredStyles {
		out.PreferredStyles[k] = v
	}
	for k, v := range p.PreferredPeriods {
		out.PreferredPeriods[k] = v
	}
	return out
}
