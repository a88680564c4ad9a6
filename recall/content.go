package recall

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
)

// ContentRecall 是基于内容的召回源：用已评分游戏的属性并集检索目录中的候选。
//
// 核心思想："用户喜欢具有某些属性的游戏，推荐具有相同属性的其他游戏"
//
// 检索条件：
//   - 类型、主题、视角各自取已评分游戏的并集，空的属性族不参与过滤
//   - 排除相似游戏池中的 ID（它们由 SimilarRecall 单独提供）
//   - 目录评分严格大于 MinRating
type ContentRecall struct {
	Catalog core.Catalog

	// MinRating 候选的最低目录评分（不含）
	MinRating float64

	// Limit 最大候选数
	Limit int
}

func (r *ContentRecall) Name() string {
	return "recall.content"
}

func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil || len(rctx.Rated) == 0 {
		return nil, nil
	}

	rated := make([]core.Game, len(rctx.Rated))
	for i, rg := range rctx.Rated {
		rated[i] = rg.Game
	}
	fs := feature.ExtractFeatureSet(rated)
	if fs.Empty() {
		return nil, nil
	}

	games, err := r.Catalog.FetchByAttributeFilter(ctx, fs.Filter(feature.IDs(rctx.SimilarPool), r.MinRating, r.Limit))
	if err != nil {
		return nil, err
	}
	return toItems(games), nil
}
