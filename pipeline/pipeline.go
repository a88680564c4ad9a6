package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：recall -> filter -> rank -> rerank。
type Pipeline struct {
	Name  string
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: node %s: %w", p.Name, node.Name(), err)
		}
		logging.Ctx(ctx).Debug().
			Str("pipeline", p.Name).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", time.Since(start)).
			Msg("node processed")
		cur = next
	}
	return cur, nil
}
