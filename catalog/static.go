// Package catalog 提供不依赖远程服务的游戏目录实现：从 YAML 文件加载的静态目录。
// 用于离线运行与测试；线上目录见 igdb 包。
package catalog

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/gamerec/core"
)

// Entry 是静态目录中的一条记录。
type Entry struct {
	core.Game `yaml:",inline"`
	Rating    float64  `yaml:"rating"`
	Similar   []uint64 `yaml:"similar"`
}

// Static 是内存中的只读游戏目录，实现 core.Catalog。
type Static struct {
	entries []Entry
	byID    map[uint64]int
}

// NewStatic 由记录列表构建静态目录，ID 重复时返回错误。
func NewStatic(entries []Entry) (*Static, error) {
	s := &Static{
		entries: append([]Entry(nil), entries...),
		byID:    make(map[uint64]int, len(entries)),
	}
	slices.SortStableFunc(s.entries, func(a, b Entry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	for i, e := range s.entries {
		if _, dup := s.byID[e.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate game id %d", e.ID)
		}
		s.byID[e.ID] = i
	}
	return s, nil
}

// LoadStatic 从 YAML 文件加载静态目录，文件内容为 {games: [...]}。
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var f struct {
		Games []Entry `yaml:"games"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return NewStatic(f.Games)
}

func (s *Static) lookup(id uint64) (Entry, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// FetchItemsByIDs 按输入顺序返回存在的游戏，缺失的 ID 被跳过。
func (s *Static) FetchItemsByIDs(_ context.Context, ids []uint64) ([]core.Game, error) {
	out := make([]core.Game, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.lookup(id); ok {
			out = append(out, e.Game)
		}
	}
	return out, nil
}

// FetchSimilarItems 依次展开每个游戏的相似列表，按 ID 去重，先出现者保留。
func (s *Static) FetchSimilarItems(_ context.Context, ids []uint64) ([]core.Game, error) {
	var out []core.Game
	seen := make(map[uint64]struct{})
	for _, id := range ids {
		e, ok := s.lookup(id)
		if !ok {
			continue
		}
		for _, sid := range e.Similar {
			if _, dup := seen[sid]; dup {
				continue
			}
			if sim, ok := s.lookup(sid); ok {
				seen[sid] = struct{}{}
				out = append(out, sim.Game)
			}
		}
	}
	return out, nil
}

// FetchByAttributeFilter 按 ID 升序返回满足条件的游戏。
func (s *Static) FetchByAttributeFilter(_ context.Context, f core.AttributeFilter) ([]core.Game, error) {
	if f.Empty() {
		return nil, nil
	}
	exclude := make(map[uint64]struct{}, len(f.ExcludeIDs))
	for _, id := range f.ExcludeIDs {
		exclude[id] = struct{}{}
	}

	var out []core.Game
	for _, e := range s.entries {
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		if _, skip := exclude[e.ID]; skip {
			continue
		}
		if e.Rating <= f.MinRating {
			continue
		}
		if !anyOf(f.Genres, e.Genres) || !anyOf(f.Themes, e.Themes) || !anyOf(f.Perspectives, e.PlayerPerspectives) {
			continue
		}
		out = append(out, e.Game)
	}
	return out, nil
}

// SearchGames 按名称做大小写不敏感的子串匹配，最多返回 20 条。
func (s *Static) SearchGames(_ context.Context, name string) ([]core.Game, error) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return nil, nil
	}
	var out []core.Game
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, core.Game{ID: e.ID, Name: e.Name, FirstReleaseDate: e.FirstReleaseDate})
			if len(out) == 20 {
				break
			}
		}
	}
	return out, nil
}

// anyOf 在 want 为空时恒为真，否则要求 have 与 want 有交集。
func anyOf(want, have []uint64) bool {
	if len(want) == 0 {
		return true
	}
	for _, h := range have {
		if slices.Contains(want, h) {
			return true
		}
	}
	return false
}
