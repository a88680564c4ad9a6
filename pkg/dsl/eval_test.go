package dsl

import (
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pkg/utils"
)

func TestEvaluate(t *testing.T) {
	it := core.NewItem(core.Game{
		ID:               7334,
		Name:             "Bloodborne",
		Genres:           []uint64{12, 31},
		Themes:           []uint64{1, 17, 19, 38},
		FirstReleaseDate: 1427155200,
	})
	it.Score = 0.42
	it.PutLabel("recall_source", utils.Label{Value: "recall.content", Source: "recall"})
	rctx := &core.RecommendContext{Ratings: map[uint64]float64{1: 2, 2: 3}}

	tests := []struct {
		name    string
		expr    string
		want    bool
		wantErr bool
	}{
		{"empty expression", "", true, false},
		{"id equality", "item.id == 7334", true, false},
		{"score threshold", "item.score > 0.4", true, false},
		{"theme membership", "19 in item.themes", true, false},
		{"theme exclusion", "!(19 in item.themes)", false, false},
		{"release date", "item.first_release_date >= 1420070400", true, false},
		{"label value", `label.recall_source == "recall.content"`, true, false},
		{"label presence", `"rank_model" in label`, false, false},
		{"name contains", `item.name.contains("blood")`, false, false},
		{"rated count", "rctx.rated_count == 2", true, false},
		{"missing label errors", `label.rank_model == "x"`, false, true},
		{"non boolean", "item.score", false, true},
		{"syntax error", "item.score >", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, it, rctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Evaluate(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompile_Reuse(t *testing.T) {
	e, err := Compile("item.score >= 0.5")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	for _, tc := range []struct {
		score float64
		want  bool
	}{{0.1, false}, {0.5, true}, {0.9, true}} {
		it := core.NewItem(core.Game{ID: 1})
		it.Score = tc.score
		got, err := e.Match(it, nil)
		if err != nil || got != tc.want {
			t.Errorf("Match(score=%v) = (%v, %v), want %v", tc.score, got, err, tc.want)
		}
	}
	if e.String() != "item.score >= 0.5" {
		t.Errorf("String() = %q", e.String())
	}
}
