package igdb

import (
	"context"

	"github.com/rushteam/gamerec/core"
)

const gamesEndpoint = "games"

// gameRecord 是 games 端点返回的一条记录。
type gameRecord struct {
	core.Game
	SimilarGames []core.Game `json:"similar_games"`
}

// Catalog 基于 IGDB 实现 core.Catalog。
type Catalog struct {
	client *Client
}

// NewCatalog 用已创建的客户端构建目录。
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

// FetchItemsByIDs 按 ID 获取游戏详情（最多 500 个）。返回顺序由 IGDB 决定。
func (c *Catalog) FetchItemsByIDs(ctx context.Context, ids []uint64) ([]core.Game, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return queryInto[core.Game](ctx, c.client, gamesEndpoint, gamesByIDsQuery(ids))
}

// FetchSimilarItems 展开各游戏的 similar_games，按 ID 去重，先出现者保留。
func (c *Catalog) FetchSimilarItems(ctx context.Context, ids []uint64) ([]core.Game, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	records, err := queryInto[gameRecord](ctx, c.client, gamesEndpoint, similarGamesQuery(ids))
	if err != nil {
		return nil, err
	}
	var out []core.Game
	seen := make(map[uint64]struct{})
	for _, r := range records {
		for _, g := range r.SimilarGames {
			if _, dup := seen[g.ID]; dup {
				continue
			}
			seen[g.ID] = struct{}{}
			out = append(out, g)
		}
	}
	return out, nil
}

// FetchByAttributeFilter 按属性过滤检索候选游戏；三个属性族都为空时不发请求。
func (c *Catalog) FetchByAttributeFilter(ctx context.Context, f core.AttributeFilter) ([]core.Game, error) {
	q := attributeFilterQuery(f)
	if q == "" {
		return nil, nil
	}
	return queryInto[core.Game](ctx, c.client, gamesEndpoint, q)
}

// SearchGames 按名称搜索已发行的主游戏，最多 20 条。
func (c *Catalog) SearchGames(ctx context.Context, name string) ([]core.Game, error) {
	return queryInto[core.Game](ctx, c.client, gamesEndpoint, searchQuery(name))
}

var _ core.Catalog = (*Catalog)(nil)
