// Package service 把目录、画像构建与 Pipeline 组合成端到端的推荐服务。
package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/metrics"
	"github.com/rushteam/gamerec/model"
	"github.com/rushteam/gamerec/pipeline"
)

// MinSearchLength 是名称搜索的最短长度。
const MinSearchLength = 2

// Config 是 Recommender 的依赖与参数。
type Config struct {
	Catalog    core.Catalog
	Pipeline   *pipeline.Pipeline
	Vocabulary *feature.Vocabulary // 为空时使用 IGDB 默认词表
	Policy     model.RatingPolicy

	// PrefetchTimeout 预取已评分游戏与相似池的超时，<= 0 不设置
	PrefetchTimeout time.Duration
}

// RecommendOption 调整单次推荐请求，写入 RecommendContext.Params。
type RecommendOption func(params map[string]any)

// WithTopN 覆盖本次请求返回的最大数量；n <= 0 时沿用 Pipeline 配置。
func WithTopN(n int) RecommendOption {
	return func(params map[string]any) {
		if n > 0 {
			params["top_n"] = n
		}
	}
}

// Recommender 是无状态的推荐服务，可被多个请求并发使用。
type Recommender struct {
	catalog         core.Catalog
	pipeline        *pipeline.Pipeline
	encoder         *feature.Encoder
	builder         *model.ProfileBuilder
	prefetchTimeout time.Duration
}

// NewRecommender 创建推荐服务。
func NewRecommender(cfg Config) (*Recommender, error) {
	if cfg.Catalog == nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "service: catalog is required")
	}
	if cfg.Pipeline == nil || len(cfg.Pipeline.Nodes) == 0 {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput, "service: pipeline is required")
	}
	vocab := cfg.Vocabulary
	if vocab == nil {
		vocab = feature.DefaultGameVocabulary()
	}
	enc := feature.NewEncoder(vocab)
	builder := model.NewProfileBuilder(enc)
	if cfg.Policy != "" {
		builder.Policy = cfg.Policy
	}
	return &Recommender{
		catalog:         cfg.Catalog,
		pipeline:        cfg.Pipeline,
		encoder:         enc,
		builder:         builder,
		prefetchTimeout: cfg.PrefetchTimeout,
	}, nil
}

// Vocabulary 返回服务使用的特征词表。
func (r *Recommender) Vocabulary() *feature.Vocabulary {
	return r.encoder.Vocab
}

// Recommend 根据 游戏ID -> 评分 返回按分数降序排列的候选游戏。
//
// 没有可用评分信号时返回 ErrUnderdeterminedProfile；评分非法时返回 ErrInvalidRating；
// 检索不到候选时返回空列表。
func (r *Recommender) Recommend(ctx context.Context, ratingByID map[uint64]float64, opts ...RecommendOption) (items []*core.Item, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecommend(outcomeOf(err), time.Since(start), len(items))
	}()

	if len(ratingByID) == 0 {
		return nil, core.ErrUnderdeterminedProfile
	}
	ids := make([]uint64, 0, len(ratingByID))
	for id, rating := range ratingByID {
		if err := r.builder.CheckRating(id, rating); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	rated, similar := r.prefetch(ctx, ids)
	ratedGames := make([]core.RatedGame, 0, len(rated))
	for _, g := range rated {
		if rating, ok := ratingByID[g.ID]; ok {
			ratedGames = append(ratedGames, core.RatedGame{Game: g, Rating: rating})
		}
	}
	slices.SortFunc(ratedGames, func(a, b core.RatedGame) int {
		switch {
		case a.Game.ID < b.Game.ID:
			return -1
		case a.Game.ID > b.Game.ID:
			return 1
		}
		return 0
	})

	pref, err := r.builder.Build(ratedGames)
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{
		RequestID:   logging.RequestIDFromContext(ctx),
		Ratings:     ratingByID,
		Rated:       ratedGames,
		Profile:     pref.Weights(),
		SimilarPool: similar,
	}
	if len(opts) > 0 {
		rctx.Params = make(map[string]any, len(opts))
		for _, opt := range opts {
			opt(rctx.Params)
		}
	}
	items, err = r.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().
		Int("ratings", len(ratingByID)).
		Int("rated_found", len(ratedGames)).
		Int("similar_pool", len(similar)).
		Int("results", len(items)).
		Dur("took", time.Since(start)).
		Msg("recommendation served")
	return items, nil
}

// prefetch 并发获取已评分游戏详情与相似游戏池。
// 目录失败不中断请求：已评分游戏取不到时返回空（随后画像无法构建），相似池取不到时返回空池。
func (r *Recommender) prefetch(ctx context.Context, ids []uint64) (rated, similar []core.Game) {
	if r.prefetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.prefetchTimeout)
		defer cancel()
	}

	var g errgroup.Group
	g.Go(func() error {
		games, err := r.catalog.FetchItemsByIDs(ctx, ids)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("ids", len(ids)).Msg("fetch rated games failed")
			return nil
		}
		rated = games
		return nil
	})
	g.Go(func() error {
		games, err := r.catalog.FetchSimilarItems(ctx, ids)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("ids", len(ids)).Msg("fetch similar games failed")
			similar = []core.Game{}
			return nil
		}
		if games == nil {
			games = []core.Game{}
		}
		similar = games
		return nil
	})
	_ = g.Wait()
	return rated, similar
}

// BuildPreferenceVector 由已评分游戏构建归一化偏好向量。
func (r *Recommender) BuildPreferenceVector(rated []core.RatedGame) ([]float64, error) {
	pref, err := r.builder.Build(rated)
	if err != nil {
		return nil, err
	}
	return pref.Weights(), nil
}

// EncodeItems 把游戏编码为 0/1 特征矩阵。
func (r *Recommender) EncodeItems(games []core.Game) *feature.Matrix {
	return r.encoder.Encode(games)
}

// SearchGames 按名称搜索游戏，名称去除首尾空白后至少 MinSearchLength 个字符。
func (r *Recommender) SearchGames(ctx context.Context, name string) ([]core.Game, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < MinSearchLength {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "search name must have at least 2 characters")
	}
	return r.catalog.SearchGames(ctx, name)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case core.IsUnderdetermined(err):
		return metrics.OutcomeUnderdetermined
	case core.IsInvalidInput(err):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
