package igdb

import (
	"strconv"
	"strings"

	"github.com/rushteam/gamerec/core"
)

// IGDB 单次查询的返回上限。
const (
	maxGamesLimit   = 500
	maxSimilarLimit = 100
	maxSearchLimit  = 20
)

const gameFields = "name, genres, themes, player_perspectives, first_release_date"

// mainGameCategory 是 IGDB games.category 中"主游戏"的取值。
const mainGameCategory = 0

var searchEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// idList 把 ID 列表格式化为 apicalypse 的 "1, 2, 3"。
func idList(ids []uint64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatUint(id, 10))
	}
	return b.String()
}

func gamesByIDsQuery(ids []uint64) string {
	return "fields " + gameFields + "; where id = (" + idList(ids) + "); limit " + strconv.Itoa(maxGamesLimit) + ";"
}

func similarGamesQuery(ids []uint64) string {
	fields := make([]string, 0, 5)
	for _, f := range strings.Split(gameFields, ", ") {
		fields = append(fields, "similar_games."+f)
	}
	return "fields " + strings.Join(fields, ", ") + "; where id = (" + idList(ids) + "); limit " + strconv.Itoa(maxSimilarLimit) + ";"
}

// attributeFilterQuery 构造属性检索查询；空的属性族与空的排除列表不出现在 where 中。
// 三个属性族都为空时返回 ""。
func attributeFilterQuery(f core.AttributeFilter) string {
	if f.Empty() {
		return ""
	}
	var conds []string
	if len(f.Genres) > 0 {
		conds = append(conds, "genres = ("+idList(f.Genres)+")")
	}
	if len(f.Themes) > 0 {
		conds = append(conds, "themes = ("+idList(f.Themes)+")")
	}
	if len(f.Perspectives) > 0 {
		conds = append(conds, "player_perspectives = ("+idList(f.Perspectives)+")")
	}
	if len(f.ExcludeIDs) > 0 {
		conds = append(conds, "id != ("+idList(f.ExcludeIDs)+")")
	}
	conds = append(conds, "rating > "+strconv.FormatFloat(f.MinRating, 'f', -1, 64))

	limit := f.Limit
	if limit <= 0 || limit > maxGamesLimit {
		limit = maxGamesLimit
	}
	return "fields " + gameFields + "; where " + strings.Join(conds, " & ") + "; limit " + strconv.Itoa(limit) + ";"
}

func searchQuery(name string) string {
	return `fields name, first_release_date; search "` + searchEscaper.Replace(name) + `"; ` +
		"where version_parent = null & category = " + strconv.Itoa(mainGameCategory) + " & first_release_date != null; " +
		"limit " + strconv.Itoa(maxSearchLimit) + ";"
}
