package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/metrics"
)

const (
	gameKeyPrefix   = "game:"
	searchKeyPrefix = "search:"
)

// CachedCatalog 为 core.Catalog 提供读穿缓存：
// 游戏详情按 ID 缓存，名称搜索按规范化后的查询缓存。
// 相似游戏与属性检索依赖请求组合，直接透传。
// 缓存读写失败只记录日志，不影响结果。
type CachedCatalog struct {
	next  core.Catalog
	store core.Store
	ttl   int // 秒
}

// NewCachedCatalog 用 store 包装 next；ttl <= 0 表示不过期，不足整秒的部分向上取整。
func NewCachedCatalog(next core.Catalog, store core.Store, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{next: next, store: store, ttl: ttlSeconds(ttl)}
}

func ttlSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	return int((ttl + time.Second - 1) / time.Second)
}

func gameKey(id uint64) string { return gameKeyPrefix + strconv.FormatUint(id, 10) }

func searchKey(name string) string {
	return searchKeyPrefix + strings.ToLower(strings.TrimSpace(name))
}

// FetchItemsByIDs 先批量读缓存，仅对缺失的 ID 回源，结果保持输入顺序。
func (c *CachedCatalog) FetchItemsByIDs(ctx context.Context, ids []uint64) ([]core.Game, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(id)
	}

	found := make(map[uint64]core.Game, len(ids))
	cached, err := c.store.BatchGet(ctx, keys)
	if err != nil {
		metrics.RecordCacheLookup(metrics.CacheError)
		logging.Ctx(ctx).Warn().Err(err).Str("store", c.store.Name()).Msg("catalog cache batch get failed")
		cached = nil
	}
	var missing []uint64
	for i, id := range ids {
		raw, ok := cached[keys[i]]
		if ok {
			var g core.Game
			if err := json.Unmarshal(raw, &g); err == nil {
				found[id] = g
				metrics.RecordCacheLookup(metrics.CacheHit)
				continue
			}
		}
		metrics.RecordCacheLookup(metrics.CacheMiss)
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		fetched, err := c.next.FetchItemsByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		kvs := make(map[string][]byte, len(fetched))
		for _, g := range fetched {
			found[g.ID] = g
			if raw, err := json.Marshal(g); err == nil {
				kvs[gameKey(g.ID)] = raw
			}
		}
		if err := c.store.BatchSet(ctx, kvs, c.ttl); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("store", c.store.Name()).Msg("catalog cache batch set failed")
		}
	}

	out := make([]core.Game, 0, len(found))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if g, ok := found[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (c *CachedCatalog) FetchSimilarItems(ctx context.Context, ids []uint64) ([]core.Game, error) {
	return c.next.FetchSimilarItems(ctx, ids)
}

func (c *CachedCatalog) FetchByAttributeFilter(ctx context.Context, f core.AttributeFilter) ([]core.Game, error) {
	return c.next.FetchByAttributeFilter(ctx, f)
}

// SearchGames 按查询缓存搜索结果；空结果同样缓存。
func (c *CachedCatalog) SearchGames(ctx context.Context, name string) ([]core.Game, error) {
	key := searchKey(name)
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var games []core.Game
		if err := json.Unmarshal(raw, &games); err == nil {
			metrics.RecordCacheLookup(metrics.CacheHit)
			return games, nil
		}
		metrics.RecordCacheLookup(metrics.CacheMiss)
	case core.IsStoreNotFound(err):
		metrics.RecordCacheLookup(metrics.CacheMiss)
	default:
		metrics.RecordCacheLookup(metrics.CacheError)
		logging.Ctx(ctx).Warn().Err(err).Str("store", c.store.Name()).Msg("catalog cache get failed")
	}

	games, err := c.next.SearchGames(ctx, name)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []core.Game{}
	}
	if raw, err := json.Marshal(games); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("store", c.store.Name()).Msg("catalog cache set failed")
		}
	}
	return games, nil
}

var _ core.Catalog = (*CachedCatalog)(nil)
