// Package artrec 是艺术品平台的混合个性化推荐引擎（Art Recommender）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Feature → Rank → ReRank）
// - Labels-first: 分数拆解与召回来源全链路透传，支持 explain / 观测
// - 显式依赖注入: Engine 由目录协作方与偏好存储构造，无全局单例，可独立单测
//
// 引擎消费两个外部协作方：目录查询接口（core.Catalog）与
// 持久化偏好存储（core.Store）；向 UI 暴露打分后的候选列表、
// 相似作品查询与算法档位描述。
package artrec

import "github.com/rushteam/artrec/pipeline"

// 轻量 facade：便于用户直接 import "artrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindFeature     = pipeline.KindFeature
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
