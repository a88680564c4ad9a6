package core

import "time"

// RecallConfig 是召回相关的配置接口，用于提供默认值。
type RecallConfig interface {
	// DefaultCandidateLimit 返回属性召回的最大候选数
	DefaultCandidateLimit() int

	// DefaultSimilarLimit 返回相似召回输出的最大候选数，<= 0 不限制
	DefaultSimilarLimit() int

	// DefaultMinRating 返回候选游戏的最低评分（不含）
	DefaultMinRating() float64

	// DefaultTimeout 返回默认的超时时间
	DefaultTimeout() time.Duration
}

// DefaultRecallConfig 是默认的召回配置实现。
type DefaultRecallConfig struct{}

func (c *DefaultRecallConfig) DefaultCandidateLimit() int {
	return 500
}

func (c *DefaultRecallConfig) DefaultSimilarLimit() int {
	return 0
}

func (c *DefaultRecallConfig) DefaultMinRating() float64 {
	return 6
}

func (c *DefaultRecallConfig) DefaultTimeout() time.Duration {
	return 10 * time.Second
}
