package core

import "time"

// Interaction 是一次用户行为（浏览/点赞）的不可变记录。
// 由 profile.Recorder 在每次合格的 UI 事件上创建；
// 进入有界日志后不再修改，超出容量时最旧的记录被丢弃。
type Interaction struct {
	ItemID     string    `json:"item_id"`
	Title      string    `json:"title"`
	ArtistID   string    `json:"artist_id"`
	CategoryID string    `json:"category_id"`
	Price      float64   `json:"price"`
	Timestamp  time.Time `json:"timestamp"`
}

// SearchInteraction 是一次搜索行为的记录。
// CategoryID / ArtistID 来自搜索过滤条件，可为空。
type SearchInteraction struct {
	Query      string    `json:"query"`
	CategoryID string    `json:"category_id,omitempty"`
	ArtistID   string    `json:"artist_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// LogCapacity 是单个行为日志的默认容量。
// 日志按时间倒序维护：index 0 = 最新；超出容量时丢弃最旧的。
const LogCapacity = 100

// PrependInteraction 将一条记录插入日志头部并截断到容量上限。
func PrependInteraction(log []Interaction, rec Interaction, capacity int) []Interaction {
	if capacity <= 0 {
		capacity = LogCapacity
	}
	out := make([]Interaction, 0, min(len(log)+1, capacity))
	out = append(out, rec)
	for _, r := range log {
		if len(out) >= capacity {
			break
		}
		out = append(out, r)
	}
	return out
}

// PrependSearch 与 PrependInteraction 相同，作用于搜索日志。
func PrependSearch(log []SearchInteraction, rec SearchInteraction, capacity int) []SearchInteraction {
	if capacity <= 0 {
		capacity = LogCapacity
	}
	out := make([]SearchInteraction, 0, min(len(log)+1, capacity))
	out = append(out, rec)
	for _, r := range log {
		if len(out) >= capacity {
			break
		}
		out = append(out, r)
	}
	return out
}
