package core

import "github.com/rushteam/artrec/pkg/utils"

// Item 是推荐链路中的统一承载结构：作品元信息、热度统计、分数、标签。
// 字段来自目录协作方（catalog）的响应，对本引擎只读；
// Score 是瞬态的排序分（0-100），只在单次请求内有效，不持久化。
// Labels 用于解释与观测（分数拆解、召回来源等）。
type Item struct {
	ID         string
	Title      string
	ArtistID   string
	CategoryID string
	Price      float64

	// 可选的内容特征，缺失时在打分中贡献 0 分，不报错
	Style  string
	Period string

	// 热度统计（popularity 子分的输入）
	Views  int64
	Likes  int64
	Rating float64 // 0-5 分制
	IsNew  bool

	Score  float64
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
