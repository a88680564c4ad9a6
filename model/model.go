package model

// RankModel 是排序阶段的最小抽象：输入特征向量，输出一个可比较的分数。
// 特征向量的列与特征词表一致。
type RankModel interface {
	Name() string
	// Dim 返回模型期望的特征维度
	Dim() int
	Predict(row []float64) (float64, error)
}
