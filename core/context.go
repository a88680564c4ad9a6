package core

import "github.com/rushteam/gamerec/pkg/utils"

// RecommendContext 承载单次推荐请求的全部状态，贯穿整个 Pipeline 透传。
// 除 Labels 外，Pipeline 节点只读取其中字段。
type RecommendContext struct {
	RequestID string

	// Ratings 是调用方提交的 游戏ID -> 评分。
	Ratings map[uint64]float64

	// Rated 是从目录取回的已评分游戏（按 ID 升序），与 Ratings 对齐。
	Rated []RatedGame

	// Profile 是由 Rated 构建的偏好向量，列与特征词表一致。
	Profile []float64

	// SimilarPool 是已评分游戏的"相似游戏"合集，按 ID 去重。
	SimilarPool []Game

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，例如 top_n 覆盖
	Params map[string]any
}

// RatedIDs 返回已评分游戏的 ID 集合。
func (rctx *RecommendContext) RatedIDs() map[uint64]struct{} {
	out := make(map[uint64]struct{}, len(rctx.Ratings))
	for id := range rctx.Ratings {
		out[id] = struct{}{}
	}
	return out
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
