package filter

import (
	"context"

	"github.com/rushteam/gamerec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉配置中列出的游戏。
type BlacklistFilter struct {
	ids map[uint64]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(gameIDs []uint64) *BlacklistFilter {
	ids := make(map[uint64]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		ids[id] = struct{}{}
	}
	return &BlacklistFilter{ids: ids}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := f.ids[item.ID]
	return ok, nil
}

// RatedFilter 过滤掉用户已评分的游戏。
type RatedFilter struct{}

func (f *RatedFilter) Name() string {
	return "filter.rated"
}

func (f *RatedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil {
		return false, nil
	}
	_, rated := rctx.Ratings[item.ID]
	return rated, nil
}
