package igdb

import (
	"testing"

	"github.com/rushteam/gamerec/core"
)

func TestQueries(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "by ids",
			got:  gamesByIDsQuery([]uint64{7334, 119133}),
			want: "fields name, genres, themes, player_perspectives, first_release_date; where id = (7334, 119133); limit 500;",
		},
		{
			name: "similar",
			got:  similarGamesQuery([]uint64{7334}),
			want: "fields similar_games.name, similar_games.genres, similar_games.themes, similar_games.player_perspectives, similar_games.first_release_date; where id = (7334); limit 100;",
		},
		{
			name: "attribute filter",
			got: attributeFilterQuery(core.AttributeFilter{
				Genres:       []uint64{12, 31},
				Themes:       []uint64{1},
				Perspectives: []uint64{2},
				ExcludeIDs:   []uint64{5, 6},
				MinRating:    6,
				Limit:        500,
			}),
			want: "fields name, genres, themes, player_perspectives, first_release_date; where genres = (12, 31) & themes = (1) & player_perspectives = (2) & id != (5, 6) & rating > 6; limit 500;",
		},
		{
			name: "attribute filter omits empty families",
			got:  attributeFilterQuery(core.AttributeFilter{Themes: []uint64{19}, MinRating: 7.5, Limit: 50}),
			want: "fields name, genres, themes, player_perspectives, first_release_date; where themes = (19) & rating > 7.5; limit 50;",
		},
		{
			name: "attribute filter clamps limit",
			got:  attributeFilterQuery(core.AttributeFilter{Genres: []uint64{4}, Limit: 10000}),
			want: "fields name, genres, themes, player_perspectives, first_release_date; where genres = (4) & rating > 0; limit 500;",
		},
		{
			name: "attribute filter empty",
			got:  attributeFilterQuery(core.AttributeFilter{ExcludeIDs: []uint64{1}}),
			want: "",
		},
		{
			name: "search",
			got:  searchQuery("zelda"),
			want: `fields name, first_release_date; search "zelda"; where version_parent = null & category = 0 & first_release_date != null; limit 20;`,
		},
		{
			name: "search escapes quotes",
			got:  searchQuery(`a"b\c`),
			want: `fields name, first_release_date; search "a\"b\\c"; where version_parent = null & category = 0 & first_release_date != null; limit 20;`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("query =\n%s\nwant\n%s", tt.got, tt.want)
			}
		})
	}
}
