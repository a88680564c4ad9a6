package recall

import (
	"context"

	"github.com/rushteam/gamerec/core"
)

// Source 表示一个可复用的召回源（属性检索/相似游戏池/...）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

func toItems(games []core.Game) []*core.Item {
	items := make([]*core.Item, 0, len(games))
	for _, g := range games {
		items = append(items, core.NewItem(g))
	}
	return items
}
