package core

import "fmt"

// ScoringConfig 是混合打分模型的配置。
//
// 四个子分权重必须和为 1.0（Validate 校验），可以整体调权
// 而不触碰任何子分逻辑。归一化常量（PopularityViewNorm 等）
// 是打分模型的固定常数，不从线上数据分布推导。
type ScoringConfig struct {
	// 子分权重，和为 1.0
	CollaborativeWeight float64 `yaml:"collaborative_weight"`
	ContentWeight       float64 `yaml:"content_weight"`
	PopularityWeight    float64 `yaml:"popularity_weight"`
	DiversityWeight     float64 `yaml:"diversity_weight"`

	// 内容子分的维度权重，和为 1.0
	ContentCategoryWeight float64 `yaml:"content_category_weight"`
	ContentArtistWeight   float64 `yaml:"content_artist_weight"`
	ContentStyleWeight    float64 `yaml:"content_style_weight"`
	ContentPriceWeight    float64 `yaml:"content_price_weight"`
	ContentPeriodWeight   float64 `yaml:"content_period_weight"`

	// popularity 子分的归一化常数（固定模型常数）
	PopularityViewNorm float64 `yaml:"popularity_view_norm"` // 浏览数饱和点
	PopularityLikeNorm float64 `yaml:"popularity_like_norm"` // 点赞数饱和点
	RatingScale        float64 `yaml:"rating_scale"`         // 评分满分
}

// DefaultScoringConfig 返回默认打分配置。
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		CollaborativeWeight: 0.4,
		ContentWeight:       0.3,
		PopularityWeight:    0.2,
		DiversityWeight:     0.1,

		ContentCategoryWeight: 0.35,
		ContentArtistWeight:   0.30,
		ContentStyleWeight:    0.15,
		ContentPriceWeight:    0.10,
		ContentPeriodWeight:   0.10,

		PopularityViewNorm: 10000,
		PopularityLikeNorm: 1000,
		RatingScale:        5,
	}
}

// Weights 以 map 形式返回四个子分权重，供 explain 透出。
func (c ScoringConfig) Weights() map[string]float64 {
	return map[string]float64{
		"collaborative": c.CollaborativeWeight,
		"content":       c.ContentWeight,
		"popularity":    c.PopularityWeight,
		"diversity":     c.DiversityWeight,
	}
}

// Validate 校验权重闭合性（两组权重分别和为 1.0，允许浮点误差）。
func (c ScoringConfig) Validate() error {
	const eps = 1e-9
	sum := c.CollaborativeWeight + c.ContentWeight + c.PopularityWeight + c.DiversityWeight
	if diff := sum - 1.0; diff > eps || diff < -eps {
		return fmt.Errorf("scoring weights must sum to 1.0, got %v", sum)
	}
	sum = c.ContentCategoryWeight + c.ContentArtistWeight + c.ContentStyleWeight +
		c.ContentPriceWeight + c.ContentPeriodWeight
	if diff := sum - 1.0; diff > eps || diff < -eps {
		return fmt.Errorf("content dimension weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// FetchConfig 是候选获取的派生参数配置。
type FetchConfig struct {
	TopCategories  int     `yaml:"top_categories"`  // 取偏好画像前 N 个类目
	TopArtists     int     `yaml:"top_artists"`     // 取偏好画像前 N 个艺术家
	ExcludeRecent  int     `yaml:"exclude_recent"`  // 排除最近浏览的 N 个作品
	PriceBandLower float64 `yaml:"price_band_lower"` // 价格带下限系数（avg * lower）
	PriceBandUpper float64 `yaml:"price_band_upper"` // 价格带上限系数（avg * upper）
	DefaultCount   int     `yaml:"default_count"`    // 默认推荐条数
	SimilarCount   int     `yaml:"similar_count"`    // 默认相似作品条数
}

// DefaultFetchConfig 返回默认候选获取配置。
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		TopCategories:  3,
		TopArtists:     5,
		ExcludeRecent:  20,
		PriceBandLower: 0.5,
		PriceBandUpper: 1.5,
		DefaultCount:   12,
		SimilarCount:   6,
	}
}
