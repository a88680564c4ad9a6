package config

import (
	"github.com/rushteam/gamerec/pipeline"
)

// DefaultPipelineConfig 由推荐配置生成默认 Pipeline：
//
//	recall.fanout[content, similar] -> filter[rated]（可选）-> rank.profile -> rerank.topn
func DefaultPipelineConfig(rc RecommendConfig) *pipeline.Config {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "games"

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{
		Type: "recall.fanout",
		Config: map[string]any{
			"timeout":        rc.RecallTimeout.String(),
			"merge_strategy": "first",
			"sources": []any{
				map[string]any{
					"type":       "content",
					"min_rating": rc.MinRating,
					"limit":      rc.CandidateLimit,
				},
				map[string]any{"type": "similar", "limit": rc.SimilarLimit},
			},
		},
	})

	if rc.ExcludeRated {
		cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{
			Type: "filter",
			Config: map[string]any{
				"filters": []any{map[string]any{"type": "rated"}},
			},
		})
	}

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes,
		pipeline.NodeConfig{Type: "rank.profile", Config: map[string]any{"explain": rc.Explain}},
		pipeline.NodeConfig{Type: "rerank.topn", Config: map[string]any{"n": rc.TopN}},
	)
	return cfg
}

// LoadPipelineConfig 优先从 rc.PipelinePath 加载 Pipeline 配置，未配置时使用默认 Pipeline。
// 返回前校验所有 Node 类型均已注册。
func LoadPipelineConfig(rc RecommendConfig) (*pipeline.Config, error) {
	cfg := DefaultPipelineConfig(rc)
	if rc.PipelinePath != "" {
		var err error
		if cfg, err = pipeline.LoadFromFile(rc.PipelinePath); err != nil {
			return nil, err
		}
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
