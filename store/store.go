// Package store 提供 core.Store 的内存与 Redis 实现，以及基于 Store 的游戏目录缓存。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	cat := store.NewCachedCatalog(igdbCatalog, s, 24*time.Hour)
package store
