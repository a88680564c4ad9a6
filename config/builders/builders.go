package builders

import (
	"fmt"

	"github.com/rushteam/gamerec/config"
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/filter"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/conv"
	"github.com/rushteam/gamerec/rank"
	"github.com/rushteam/gamerec/recall"
	"github.com/rushteam/gamerec/rerank"
)

func init() {
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.profile", BuildProfileNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

func recallDefaults(env *pipeline.Env) core.RecallConfig {
	if env.Recall != nil {
		return env.Recall
	}
	return &core.DefaultRecallConfig{}
}

func BuildFanoutNode(cfg map[string]any, env *pipeline.Env) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	defaults := recallDefaults(env)
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet(sourceMap, "type", "")
		switch sourceType {
		case "content":
			if env.Catalog == nil {
				return nil, fmt.Errorf("content source requires a catalog")
			}
			sources = append(sources, &recall.ContentRecall{
				Catalog:   env.Catalog,
				MinRating: conv.ConfigGetFloat64(sourceMap, "min_rating", defaults.DefaultMinRating()),
				Limit:     int(conv.ConfigGetInt64(sourceMap, "limit", int64(defaults.DefaultCandidateLimit()))),
			})
		case "similar":
			sources = append(sources, &recall.SimilarRecall{
				Catalog: env.Catalog,
				Limit:   int(conv.ConfigGetInt64(sourceMap, "limit", int64(defaults.DefaultSimilarLimit()))),
			})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}
	fanout := &recall.Fanout{
		Sources:       sources,
		Timeout:       conv.ConfigGetDuration(cfg, "timeout", defaults.DefaultTimeout()),
		MaxConcurrent: int(conv.ConfigGetInt64(cfg, "max_concurrent", 0)),
	}
	switch strategy := conv.ConfigGet(cfg, "merge_strategy", recall.MergeFirst); strategy {
	case recall.MergeFirst, recall.MergeUnion:
		fanout.MergeStrategy = strategy
	default:
		return nil, fmt.Errorf("unknown merge strategy: %s", strategy)
	}
	return fanout, nil
}

func BuildFilterNode(cfg map[string]any, _ *pipeline.Env) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "blacklist":
			filters = append(filters, filter.NewBlacklistFilter(conv.ConfigGetUint64Slice(filterMap, "game_ids")))
		case "rated":
			filters = append(filters, &filter.RatedFilter{})
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, fmt.Errorf("expr filter: %w", err)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildProfileNode(cfg map[string]any, env *pipeline.Env) (pipeline.Node, error) {
	vocab := env.Vocabulary
	if vocab == nil {
		vocab = feature.DefaultGameVocabulary()
	}
	return &rank.ProfileNode{
		Encoder: feature.NewEncoder(vocab),
		Explain: int(conv.ConfigGetInt64(cfg, "explain", 0)),
	}, nil
}

func BuildTopNNode(cfg map[string]any, _ *pipeline.Env) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func BuildDiversityNode(cfg map[string]any, _ *pipeline.Env) (pipeline.Node, error) {
	return &rerank.Diversity{
		LabelKey:    conv.ConfigGet(cfg, "label_key", ""),
		MaxPerGroup: int(conv.ConfigGetInt64(cfg, "max_per_group", 1)),
	}, nil
}
