package rerank

import (
	"context"
	"strconv"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
)

// Diversity 是多样性 ReRank：同一分组最多 MaxPerGroup 个游戏排在前面，
// 超出的游戏按原顺序移到列表末尾，不会被丢弃。
//
// 分组来源优先级：
//   - label[LabelKey].Value（LabelKey 非空时）
//   - 游戏的第一个类型（primary genre）
type Diversity struct {
	LabelKey    string
	MaxPerGroup int // 默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	maxPer := n.MaxPerGroup
	if maxPer <= 0 {
		maxPer = 1
	}

	counts := make(map[string]int, 32)
	head := make([]*core.Item, 0, len(items))
	var tail []*core.Item

	for _, it := range items {
		if it == nil {
			continue
		}
		group := n.groupOf(it)
		if group == "" {
			head = append(head, it)
			continue
		}
		if counts[group] >= maxPer {
			tail = append(tail, it)
			continue
		}
		counts[group]++
		head = append(head, it)
	}
	return append(head, tail...), nil
}

func (n *Diversity) groupOf(it *core.Item) string {
	if n.LabelKey != "" {
		if lbl, ok := it.Labels[n.LabelKey]; ok && lbl.Value != "" {
			return lbl.Value
		}
	}
	if len(it.Game.Genres) > 0 {
		return "genre:" + strconv.FormatUint(it.Game.Genres[0], 10)
	}
	return ""
}
