// Package feature 负责打分输入的补全：候选作品的热度统计
// （浏览数/点赞数/评分）可能在目录响应里已经过期，
// EnrichNode 在打分前从特征存储刷新这些计数。
package feature

import "context"

// ItemStats 是单个作品的热度统计。
type ItemStats struct {
	Views  int64
	Likes  int64
	Rating float64
}

// StatsProvider 是热度统计的领域接口。
//
// 实现：
//   - FeastProvider：从 Feast 在线特征库批量获取（生产）
//   - 测试中用内存 map 实现即可
type StatsProvider interface {
	// BatchStats 批量获取作品热度统计；缺失的作品不出现在结果中
	BatchStats(ctx context.Context, itemIDs []string) (map[string]ItemStats, error)

	// Close 释放资源
	Close() error
}
