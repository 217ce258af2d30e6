// Package explain 输出当前推荐算法档位的可读描述。
//
// 纯 UI 向：档位与置信度只是累计行为数的函数，
// 与实际排序相互独立（但档位描述必须与打分权重保持口径一致）。
package explain

// Regime 是算法档位名称。
type Regime string

const (
	RegimePopularity     Regime = "Popularity-Based"
	RegimeContent        Regime = "Content-Based"
	RegimeHybrid         Regime = "Hybrid (Content+Collaborative)"
	RegimeAdvancedHybrid Regime = "Advanced Hybrid"
)

// Report 是一次算法描述。
type Report struct {
	Regime      Regime             `json:"regime"`
	Description string             `json:"description"`
	Confidence  float64            `json:"confidence"`  // 置信度百分比
	SampleSize  int                `json:"sample_size"` // 累计行为数（浏览+点赞）
	Weights     map[string]float64 `json:"weights"`     // 当前打分权重
}

// Describe 根据累计行为数 n（浏览+点赞）返回算法档位与置信度：
//
//	n = 0      Popularity-Based   固定 50
//	n = 1-9    Content-Based      60 + n*2
//	n = 10-29  Hybrid             70 + min(n, 20)
//	n >= 30    Advanced Hybrid    min(90 + (n-30)*0.5, 98)
func Describe(n int, weights map[string]float64) Report {
	r := Report{SampleSize: n, Weights: weights}

	switch {
	case n <= 0:
		r.Regime = RegimePopularity
		r.Confidence = 50
		r.Description = "还没有行为数据，按热度推荐热门作品。"
	case n < 10:
		r.Regime = RegimeContent
		r.Confidence = 60 + float64(n)*2
		r.Description = "根据你浏览过的类目、艺术家和价位匹配相似作品。"
	case n < 30:
		r.Regime = RegimeHybrid
		r.Confidence = 70 + float64(min(n, 20))
		r.Description = "内容匹配叠加你的历史偏好信号，混合加权排序。"
	default:
		confidence := 90 + float64(n-30)*0.5
		if confidence > 98 {
			confidence = 98
		}
		r.Regime = RegimeAdvancedHybrid
		r.Confidence = confidence
		r.Description = "行为数据充足，四路信号（协同/内容/热度/多样性）全量加权。"
	}
	return r
}
