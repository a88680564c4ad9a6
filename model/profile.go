package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
)

// RatingPolicy 决定负分的处理方式。
type RatingPolicy string

const (
	// PolicyAversion 接受负分，负分表示厌恶，归一化按带符号的和进行。
	PolicyAversion RatingPolicy = "aversion"
	// PolicyReject 拒绝负分，返回 ErrInvalidRating。
	PolicyReject RatingPolicy = "reject"
)

// ParseRatingPolicy 解析配置中的策略名，空字符串视为 aversion。
func ParseRatingPolicy(s string) (RatingPolicy, error) {
	switch RatingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAversion:
		return PolicyAversion, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("model: unknown rating policy %q", s)
	}
}

// zeroSumEpsilon 以下的加权和视为 0。
const zeroSumEpsilon = 1e-12

// PreferenceModel 是用户偏好向量：每列一个权重，非退化时权重之和为 1。
// 候选游戏的分数为其特征向量与偏好向量的点积。
type PreferenceModel struct {
	weights []float64
	vocab   *feature.Vocabulary
}

var _ RankModel = (*PreferenceModel)(nil)

// NewPreferenceModel 由现成的权重构建偏好模型，vocab 可为空。
func NewPreferenceModel(weights []float64, vocab *feature.Vocabulary) *PreferenceModel {
	return &PreferenceModel{weights: append([]float64(nil), weights...), vocab: vocab}
}

func (m *PreferenceModel) Name() string { return "preference" }

func (m *PreferenceModel) Dim() int { return len(m.weights) }

// Weights 返回偏好向量的副本。
func (m *PreferenceModel) Weights() []float64 {
	return append([]float64(nil), m.weights...)
}

func (m *PreferenceModel) Predict(row []float64) (float64, error) {
	if len(row) != len(m.weights) {
		return 0, core.NewDimensionMismatch(len(row), len(m.weights))
	}
	return feature.Dot(row, m.weights), nil
}

// Contribution 是单列对分数的贡献。
type Contribution struct {
	Column int
	Name   string
	Weight float64
}

// Explain 返回对 row 的分数贡献最大的 k 列，按贡献降序，列号升序打破平局。
func (m *PreferenceModel) Explain(row []float64, k int) []Contribution {
	if len(row) != len(m.weights) || k <= 0 {
		return nil
	}
	var out []Contribution
	for j, v := range row {
		c := v * m.weights[j]
		if c <= 0 {
			continue
		}
		name := fmt.Sprintf("col_%d", j)
		if m.vocab != nil {
			name = m.vocab.ColumnName(j)
		}
		out = append(out, Contribution{Column: j, Name: name, Weight: c})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// ProfileBuilder 由已评分游戏构建偏好向量：
//
//	w = Mᵗ · r
//	profile = w / sum(w)
//
// 其中 M 是已评分游戏的编码矩阵，r 是评分向量。
type ProfileBuilder struct {
	Encoder *feature.Encoder
	Policy  RatingPolicy
}

// NewProfileBuilder 创建画像构建器，默认使用 aversion 策略。
func NewProfileBuilder(enc *feature.Encoder) *ProfileBuilder {
	return &ProfileBuilder{Encoder: enc, Policy: PolicyAversion}
}

// CheckRating 校验单个评分：NaN/Inf 总是无效，负分仅在 reject 策略下无效。
func (b *ProfileBuilder) CheckRating(id uint64, rating float64) error {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return core.NewInvalidRating(id, rating)
	}
	if rating < 0 && b.Policy == PolicyReject {
		return core.NewInvalidRating(id, rating)
	}
	return nil
}

// Build 构建偏好向量。
//
// 输入为空、加权和为 0（包括全部评分为 0，或全部属性都不在词表中）、
// 或权重无法得到有限值时返回 ErrUnderdeterminedProfile；评分为 NaN/Inf，或 reject 策略下出现负分时返回 ErrInvalidRating。
func (b *ProfileBuilder) Build(rated []core.RatedGame) (*PreferenceModel, error) {
	if len(rated) == 0 {
		return nil, core.ErrUnderdeterminedProfile
	}
	games := make([]core.Game, len(rated))
	ratings := make([]float64, len(rated))
	var maxAbs float64
	for i, rg := range rated {
		if err := b.CheckRating(rg.Game.ID, rg.Rating); err != nil {
			return nil, err
		}
		games[i] = rg.Game
		ratings[i] = rg.Rating
		maxAbs = math.Max(maxAbs, math.Abs(rg.Rating))
	}
	if maxAbs == 0 {
		return nil, core.ErrUnderdeterminedProfile
	}
	// 归一化结果与评分的整体缩放无关；先缩放到 [-1, 1]，极大评分不会溢出
	for i := range ratings {
		ratings[i] /= maxAbs
	}

	m := b.Encoder.Encode(games)
	w, err := m.TransposeMulVec(ratings)
	if err != nil {
		return nil, err
	}
	var sum float64
	for _, v := range w {
		sum += v
	}
	if math.Abs(sum) < zeroSumEpsilon {
		return nil, core.ErrUnderdeterminedProfile
	}
	for j := range w {
		w[j] /= sum
		if math.IsNaN(w[j]) || math.IsInf(w[j], 0) {
			return nil, core.ErrUnderdeterminedProfile
		}
	}
	return &PreferenceModel{weights: w, vocab: b.Encoder.Vocab}, nil
}
