// Package gamerec 是一个基于内容的游戏推荐服务。
//
// 设计要点：
// - 画像：用户评分 r 与已评分游戏的 0/1 属性矩阵 M 得到偏好向量 w = Mᵗr / sum(Mᵗr)
// - Pipeline-first: 推荐流程由 Node 串联（recall.fanout → filter → rank.profile → rerank）
// - Labels-first: 召回来源与打分原因以 labels 全链路透传，用于 explain 与观测
// - 目录可替换: IGDB（带熔断、限流、缓存）或本地静态目录
package gamerec

import "github.com/rushteam/gamerec/pipeline"

// 轻量 facade：便于直接 import "gamerec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
