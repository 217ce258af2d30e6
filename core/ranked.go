package core

import "time"

// RankedEntry 是 RankedList 中的一项。
// Weight 是累计的强化权重（浏览 +1 / 点赞 +2），仅用于观测与调试；
// 排名顺序只由“最近一次强化”决定，与 Weight 无关。
type RankedEntry struct {
	ID         string    `json:"id"`
	Weight     float64   `json:"weight"`
	Reinforced time.Time `json:"reinforced"`
}

// RankedList 是保持插入顺序的有序集合，带明确的“重插”语义：
// 已存在的 ID 被再次强化时移到队首而不是累加计数（recency 决定排名，不是频次）。
// 这是对源设计中松散字典的显式抽象，JSON 序列化为有序数组。
type RankedList struct {
	Entries []RankedEntry `json:"entries"`
}

func NewRankedList() *RankedList {
	return &RankedList{Entries: make([]RankedEntry, 0, 8)}
}

// Reinforce 强化一个 ID：已存在则移除后重插到队首，不存在则追加到队尾。
// 同一 ID 在列表中永远只出现一次。
func (l *RankedList) Reinforce(id string, weight float64, now time.Time) {
	if id == "" {
		return
	}
	for i, e := range l.Entries {
		if e.ID == id {
			e.Weight += weight
			e.Reinforced = now
			l.Entries = append(l.Entries[:i], l.Entries[i+1:]...)
			l.Entries = append([]RankedEntry{e}, l.Entries...)
			return
		}
	}
	l.Entries = append(l.Entries, RankedEntry{ID: id, Weight: weight, Reinforced: now})
}

// Rank 返回 ID 的排名（0 = 最近强化），不存在时返回 -1。
func (l *RankedList) Rank(id string) int {
	for i, e := range l.Entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Contains 检查 ID 是否在列表中。
func (l *RankedList) Contains(id string) bool {
	return l.Rank(id) >= 0
}

// Top 返回前 n 个 ID（按排名顺序）。
func (l *RankedList) Top(n int) []string {
	if n <= 0 || n > len(l.Entries) {
		n = len(l.Entries)
	}
	out := make([]string, 0, n)
	for _, e := range l.Entries[:n] {
		out = append(out, e.ID)
	}
	return out
}

// Len 返回列表长度。
func (l *RankedList) Len() int { return len(l.Entries) }

// Clone 返回深拷贝，用于打分快照。
func (l *RankedList) Clone() *RankedList {
	if l == nil {
		return NewRankedList()
	}
	entries := make([]RankedEntry, len(l.Entries))
	copy(entries, l.Entries)
	return &RankedList{Entries: entries}
}
