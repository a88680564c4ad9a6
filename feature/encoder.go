package feature

import "github.com/rushteam/gamerec/core"

// Matrix 是行优先的稠密矩阵。
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix 创建 rows x cols 的零矩阵。
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Rows 返回行数。
func (m *Matrix) Rows() int { return m.rows }

// Cols 返回列数。
func (m *Matrix) Cols() int { return m.cols }

// At 返回 (i, j) 处的值。
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Set 设置 (i, j) 处的值。
func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

// Row 返回第 i 行，与矩阵共享底层数组。
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// RowSum 返回第 i 行元素之和。
func (m *Matrix) RowSum(i int) float64 {
	var s float64
	for _, v := range m.Row(i) {
		s += v
	}
	return s
}

// Sum 返回全部元素之和。
func (m *Matrix) Sum() float64 {
	var s float64
	for _, v := range m.data {
		s += v
	}
	return s
}

// MulVec 计算 M · x，len(x) 必须等于列数。
func (m *Matrix) MulVec(x []float64) ([]float64, error) {
	if len(x) != m.cols {
		return nil, core.NewDimensionMismatch(m.cols, len(x))
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = Dot(m.Row(i), x)
	}
	return out, nil
}

// TransposeMulVec 计算 Mᵗ · y，len(y) 必须等于行数。
func (m *Matrix) TransposeMulVec(y []float64) ([]float64, error) {
	if len(y) != m.rows {
		return nil, core.NewDimensionMismatch(m.rows, len(y))
	}
	out := make([]float64, m.cols)
	for i := 0; i < m.rows; i++ {
		if y[i] == 0 {
			continue
		}
		for j, v := range m.Row(i) {
			out[j] += v * y[i]
		}
	}
	return out, nil
}

// Dot 计算两个等长向量的点积。
func Dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Encoder 将游戏列表编码为二值特征矩阵：每个游戏一行，每个词表条目一列。
// 不在词表中的属性 ID 被忽略。
type Encoder struct {
	Vocab *Vocabulary
}

// NewEncoder 创建编码器
func NewEncoder(vocab *Vocabulary) *Encoder {
	return &Encoder{Vocab: vocab}
}

// Encode 按输入顺序编码游戏列表。零个游戏返回零行、列数正确的矩阵。
func (e *Encoder) Encode(games []core.Game) *Matrix {
	m := NewMatrix(len(games), e.Vocab.Size())
	for i, g := range games {
		e.encodeRow(m.Row(i), g)
	}
	return m
}

// EncodeOne 编码单个游戏为特征向量。
func (e *Encoder) EncodeOne(g core.Game) []float64 {
	row := make([]float64, e.Vocab.Size())
	e.encodeRow(row, g)
	return row
}

func (e *Encoder) encodeRow(row []float64, g core.Game) {
	for _, f := range Families() {
		for _, id := range AttributeIDs(g, f) {
			if col, ok := e.Vocab.ColumnOf(f, id); ok {
				row[col] = 1.0
			}
		}
	}
}

// AttributeIDs 返回游戏在某个属性族下的 ID 列表。
func AttributeIDs(g core.Game, f Family) []uint64 {
	switch f {
	case FamilyGenre:
		return g.Genres
	case FamilyTheme:
		return g.Themes
	case FamilyPerspective:
		return g.PlayerPerspectives
	default:
		return nil
	}
}
