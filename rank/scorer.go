package rank

import (
	"sort"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
)

// Score 计算候选矩阵在偏好向量上的投影：scores = M · profile。
// 列数与偏好向量长度不一致时返回 DimensionMismatch。
func Score(m *feature.Matrix, profile []float64) ([]float64, error) {
	if m.Cols() != len(profile) {
		return nil, core.NewDimensionMismatch(m.Cols(), len(profile))
	}
	return m.MulVec(profile)
}

// Rank 为候选游戏打分并按分数降序稳定排序，同分保持输入顺序。
// m 的第 i 行必须对应 games[i]。不做任何过滤，零个候选返回空列表。
func Rank(games []core.Game, m *feature.Matrix, profile []float64) ([]*core.Item, error) {
	if m.Rows() != len(games) {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInternalError, "rank: matrix rows do not match candidates")
	}
	scores, err := Score(m, profile)
	if err != nil {
		return nil, err
	}
	items := make([]*core.Item, len(games))
	for i, g := range games {
		items[i] = core.NewItem(g)
		items[i].Score = scores[i]
	}
	SortByScore(items)
	return items, nil
}

// SortByScore 按 Score 降序稳定排序，nil 排在最后。
func SortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
}
