package recall

import (
	"context"

	"github.com/rushteam/gamerec/core"
)

// SimilarRecall 提供已评分游戏的"相似游戏"池。
// 优先使用请求上下文中预取的 rctx.SimilarPool；未预取且配置了 Catalog 时实时获取。
// Limit 只截断本源输出的候选，属性召回排除的仍是完整相似池。
type SimilarRecall struct {
	Catalog core.Catalog
	Limit   int // <= 0 不限制
}

func (r *SimilarRecall) Name() string {
	return "recall.similar"
}

func (r *SimilarRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	if rctx.SimilarPool != nil || r.Catalog == nil {
		return toItems(r.limit(rctx.SimilarPool)), nil
	}

	ids := make([]uint64, len(rctx.Rated))
	for i, rg := range rctx.Rated {
		ids[i] = rg.Game.ID
	}
	if len(ids) == 0 {
		return nil, nil
	}
	games, err := r.Catalog.FetchSimilarItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toItems(r.limit(games)), nil
}

func (r *SimilarRecall) limit(games []core.Game) []core.Game {
	if r.Limit > 0 && len(games) > r.Limit {
		return games[:r.Limit]
	}
	return games
}
