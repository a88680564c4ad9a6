package catalog

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
)

func loadFixture(t *testing.T) *Static {
	t.Helper()
	s, err := LoadStatic("testdata/games.yaml")
	if err != nil {
		t.Fatalf("LoadStatic() error = %v", err)
	}
	return s
}

func TestStatic_FetchItemsByIDs(t *testing.T) {
	s := loadFixture(t)
	games, err := s.FetchItemsByIDs(context.Background(), []uint64{125764, 999999, 7334})
	if err != nil {
		t.Fatalf("FetchItemsByIDs() error = %v", err)
	}
	if got := feature.IDs(games); !reflect.DeepEqual(got, []uint64{125764, 7334}) {
		t.Errorf("FetchItemsByIDs() ids = %v, want [125764 7334]", got)
	}
	if games[1].Name != "Bloodborne" || !reflect.DeepEqual(games[1].Themes, []uint64{1, 17, 19, 38}) {
		t.Errorf("FetchItemsByIDs()[1] = %+v", games[1])
	}
}

func TestStatic_FetchSimilarItems(t *testing.T) {
	s := loadFixture(t)
	games, err := s.FetchSimilarItems(context.Background(), []uint64{7334, 119133})
	if err != nil {
		t.Fatalf("FetchSimilarItems() error = %v", err)
	}
	// 11133 同时出现在两个相似列表中，只保留一次
	want := []uint64{119133, 1942, 11133, 7334}
	if got := feature.IDs(games); !reflect.DeepEqual(got, want) {
		t.Errorf("FetchSimilarItems() ids = %v, want %v", got, want)
	}
}

func TestStatic_FetchByAttributeFilter(t *testing.T) {
	s := loadFixture(t)
	tests := []struct {
		name   string
		filter core.AttributeFilter
		want   []uint64
	}{
		{
			name:   "fighting side view",
			filter: core.AttributeFilter{Genres: []uint64{4}, Perspectives: []uint64{4}, MinRating: 6},
			want:   []uint64{26758, 125764},
		},
		{
			name:   "exclusion and limit",
			filter: core.AttributeFilter{Genres: []uint64{12}, ExcludeIDs: []uint64{1942}, MinRating: 6, Limit: 2},
			want:   []uint64{7334, 11133},
		},
		{
			name:   "min rating is exclusive",
			filter: core.AttributeFilter{Themes: []uint64{19}, MinRating: 4},
			want:   []uint64{7334},
		},
		{
			name:   "no attribute families",
			filter: core.AttributeFilter{ExcludeIDs: []uint64{1}},
			want:   []uint64{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			games, err := s.FetchByAttributeFilter(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("FetchByAttributeFilter() error = %v", err)
			}
			if got := feature.IDs(games); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FetchByAttributeFilter() ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatic_SearchGames(t *testing.T) {
	s := loadFixture(t)
	games, err := s.SearchGames(context.Background(), "  ELDEN ")
	if err != nil {
		t.Fatalf("SearchGames() error = %v", err)
	}
	if len(games) != 1 || games[0].ID != 119133 {
		t.Fatalf("SearchGames() = %+v", games)
	}
	if len(games[0].Genres) != 0 {
		t.Error("SearchGames() should only return name and release date")
	}
}

func TestNewStatic_DuplicateID(t *testing.T) {
	_, err := NewStatic([]Entry{{Game: core.Game{ID: 1}}, {Game: core.Game{ID: 1}}})
	if err == nil {
		t.Error("NewStatic() expected error for duplicate id")
	}
}
