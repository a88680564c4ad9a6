package feature

import (
	"slices"

	"github.com/rushteam/gamerec/core"
)

// FeatureSet 是一组游戏在三个属性族上的去重并集，
// 用于参数化候选召回。
type FeatureSet struct {
	sets [familyCount]map[uint64]struct{}
}

// ExtractFeatureSet 计算游戏列表在各属性族上的并集。
// 词表之外的 ID 也会保留，它们仍然是有效的检索条件。
func ExtractFeatureSet(games []core.Game) *FeatureSet {
	fs := &FeatureSet{}
	for i := range fs.sets {
		fs.sets[i] = make(map[uint64]struct{})
	}
	for _, g := range games {
		for _, f := range Families() {
			for _, id := range AttributeIDs(g, f) {
				fs.sets[f][id] = struct{}{}
			}
		}
	}
	return fs
}

// IDs 返回某个属性族的 ID，升序。
func (fs *FeatureSet) IDs(f Family) []uint64 {
	if !f.valid() {
		return nil
	}
	out := make([]uint64, 0, len(fs.sets[f]))
	for id := range fs.sets[f] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Genres 返回类型 ID，升序。
func (fs *FeatureSet) Genres() []uint64 { return fs.IDs(FamilyGenre) }

// Themes 返回主题 ID，升序。
func (fs *FeatureSet) Themes() []uint64 { return fs.IDs(FamilyTheme) }

// Perspectives 返回视角 ID，升序。
func (fs *FeatureSet) Perspectives() []uint64 { return fs.IDs(FamilyPerspective) }

// Contains 判断属性 ID 是否在集合中。
func (fs *FeatureSet) Contains(f Family, id uint64) bool {
	if !f.valid() {
		return false
	}
	_, ok := fs.sets[f][id]
	return ok
}

// Empty 返回三个属性族是否都为空。
func (fs *FeatureSet) Empty() bool {
	for _, s := range fs.sets {
		if len(s) > 0 {
			return false
		}
	}
	return true
}

// Filter 将集合转换为属性召回条件。
func (fs *FeatureSet) Filter(exclude []uint64, minRating float64, limit int) core.AttributeFilter {
	return core.AttributeFilter{
		Genres:       fs.Genres(),
		Themes:       fs.Themes(),
		Perspectives: fs.Perspectives(),
		ExcludeIDs:   exclude,
		MinRating:    minRating,
		Limit:        limit,
	}
}

// IDs 返回游戏 ID 列表，保持输入顺序。
func IDs(games []core.Game) []uint64 {
	out := make([]uint64, len(games))
	for i, g := range games {
		out[i] = g.ID
	}
	return out
}

// MergeByID 将 extra 追加到 primary 之后并按 ID 去重，先出现者保留。
// 不修改输入切片。
func MergeByID(primary, extra []core.Game) []core.Game {
	out := make([]core.Game, 0, len(primary)+len(extra))
	seen := make(map[uint64]struct{}, len(primary)+len(extra))
	for _, list := range [][]core.Game{primary, extra} {
		for _, g := range list {
			if _, ok := seen[g.ID]; ok {
				continue
			}
			seen[g.ID] = struct{}{}
			out = append(out, g)
		}
	}
	return out
}
