package recall

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/utils"
)

// 合并策略
const (
	MergeFirst = "first" // 按 ID 去重，先出现者保留（按 Sources 顺序）
	MergeUnion = "union" // 保留所有结果，不去重
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并按 Sources 顺序合并结果。
// 单个召回源超时或出错时视为空结果，不中断其他召回源。
type Fanout struct {
	Sources       []Source
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	MergeStrategy string        // first / union
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	// 每个召回源写入自己的槽位，合并顺序与完成顺序无关
	results := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			start := time.Now()
			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).
					Str("source", src.Name()).
					Dur("took", time.Since(start)).
					Msg("recall source failed, using empty result")
				return nil
			}

			// 记录召回来源 label，方便 explain / 观测
			for _, it := range items {
				if it == nil {
					continue
				}
				it.PutLabel("recall_source", utils.Label{Value: src.Name(), Source: "recall"})
				it.PutLabel("recall_priority", utils.Label{Value: strconv.Itoa(i), Source: "recall"})
			}
			results[i] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	switch n.MergeStrategy {
	case MergeUnion:
		return mergeUnion(results), nil
	default:
		return mergeFirst(results), nil
	}
}

// mergeFirst 按 ID 去重，保留第一个出现的，后出现者的 labels 合并进来。
func mergeFirst(results [][]*core.Item) []*core.Item {
	seen := make(map[uint64]*core.Item)
	var out []*core.Item
	for _, items := range results {
		for _, it := range items {
			if it == nil {
				continue
			}
			if old, ok := seen[it.ID]; ok {
				for k, v := range it.Labels {
					if k == "recall_priority" {
						continue
					}
					old.PutLabel(k, v)
				}
				continue
			}
			seen[it.ID] = it
			out = append(out, it)
		}
	}
	return out
}

// mergeUnion 合并所有结果，不去重。
func mergeUnion(results [][]*core.Item) []*core.Item {
	var out []*core.Item
	for _, items := range results {
		for _, it := range items {
			if it != nil {
				out = append(out, it)
			}
		}
	}
	return out
}
