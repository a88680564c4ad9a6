package core

import "github.com/rushteam/gamerec/pkg/utils"

// Game 是从游戏目录获取的条目，获取后视为只读。
// 三个属性族（类型、主题、视角）以 IGDB 枚举 ID 表示。
type Game struct {
	ID                 uint64   `json:"id" yaml:"id"`
	Name               string   `json:"name,omitempty" yaml:"name"`
	Genres             []uint64 `json:"genres,omitempty" yaml:"genres"`
	Themes             []uint64 `json:"themes,omitempty" yaml:"themes"`
	PlayerPerspectives []uint64 `json:"player_perspectives,omitempty" yaml:"player_perspectives"`
	FirstReleaseDate   int64    `json:"first_release_date,omitempty" yaml:"first_release_date"`
}

// RatedGame 是带评分的游戏，评分刻度由调用方决定。
type RatedGame struct {
	Game   Game    `json:"game"`
	Rating float64 `json:"rating"`
}

// Item 是推荐链路中的统一承载结构：游戏、分数、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID     uint64
	Game   Game
	Score  float64
	Labels map[string]utils.Label
}

func NewItem(g Game) *Item {
	return &Item{
		ID:     g.ID,
		Game:   g,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 获取 Label。
func (it *Item) GetLabel(key string) (utils.Label, bool) {
	lbl, ok := it.Labels[key]
	return lbl, ok
}

// Games 将 Item 列表还原为游戏列表，保持顺序。
func Games(items []*Item) []Game {
	out := make([]Game, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, it.Game)
	}
	return out
}

// Scored 将 Item 列表转为带分数的 RatedGame 列表（rating 字段承载分数）。
func Scored(items []*Item) []RatedGame {
	out := make([]RatedGame, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, RatedGame{Game: it.Game, Rating: it.Score})
	}
	return out
}
