package rank

import (
	"context"
	"strings"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/model"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/utils"
)

// ProfileNode 使用请求中的偏好向量（rctx.Profile）为候选打分。
// - 写入 labels：rank_model，以及 Explain > 0 时的 rank_reason
// - 更新 item.Score 并按分数降序稳定排序
type ProfileNode struct {
	Encoder *feature.Encoder
	// Explain 为每个候选记录贡献最大的前 N 个属性，0 表示不记录
	Explain int
}

func (n *ProfileNode) Name() string        { return "rank.profile" }
func (n *ProfileNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ProfileNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	if rctx == nil || len(rctx.Profile) == 0 {
		return nil, core.ErrUnderdeterminedProfile
	}

	pref := model.NewPreferenceModel(rctx.Profile, n.Encoder.Vocab)
	if pref.Dim() != n.Encoder.Vocab.Size() {
		return nil, core.NewDimensionMismatch(n.Encoder.Vocab.Size(), pref.Dim())
	}

	m := n.Encoder.Encode(core.Games(items))
	row := 0
	for _, it := range items {
		if it == nil {
			continue
		}
		score, err := pref.Predict(m.Row(row))
		if err != nil {
			return nil, err
		}
		it.Score = score
		it.PutLabel("rank_model", utils.Label{Value: pref.Name(), Source: "rank"})
		if n.Explain > 0 {
			if top := pref.Explain(m.Row(row), n.Explain); len(top) > 0 {
				names := make([]string, len(top))
				for i, c := range top {
					names[i] = c.Name
				}
				it.PutLabel("rank_reason", utils.Label{Value: strings.Join(names, ","), Source: "rank"})
			}
		}
		row++
	}

	SortByScore(items)
	return items, nil
}
