package core

import "context"

// AttributeFilter 描述按属性检索候选游戏的条件。
// 各属性族之间为"与"关系，族内为"任一匹配"；空的族不参与过滤。
type AttributeFilter struct {
	Genres       []uint64
	Themes       []uint64
	Perspectives []uint64
	ExcludeIDs   []uint64
	MinRating    float64 // 候选评分需严格大于该值
	Limit        int
}

// Empty 返回三个属性族是否都为空。
func (f AttributeFilter) Empty() bool {
	return len(f.Genres) == 0 && len(f.Themes) == 0 && len(f.Perspectives) == 0
}

// Catalog 是游戏目录的领域接口，由 igdb 包实现，store 包提供缓存装饰。
//
// 实现可以返回少于请求数量的游戏；空结果不是错误。
type Catalog interface {
	// FetchItemsByIDs 按 ID 获取游戏详情
	FetchItemsByIDs(ctx context.Context, ids []uint64) ([]Game, error)

	// FetchSimilarItems 获取给定游戏的相似游戏合集，按 ID 去重，先出现者保留
	FetchSimilarItems(ctx context.Context, ids []uint64) ([]Game, error)

	// FetchByAttributeFilter 按属性过滤检索候选游戏
	FetchByAttributeFilter(ctx context.Context, f AttributeFilter) ([]Game, error)

	// SearchGames 按名称搜索游戏
	SearchGames(ctx context.Context, name string) ([]Game, error)
}
