package rank

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/model"
)

const eps = 1e-3

func twoGenreEncoder() *feature.Encoder {
	return feature.NewEncoder(feature.MustVocabulary([]feature.Term{{ID: 100, Name: "A"}, {ID: 101, Name: "B"}}, nil, nil))
}

func TestRank_TwoGenreScenario(t *testing.T) {
	enc := twoGenreEncoder()
	pref, err := model.NewProfileBuilder(enc).Build([]core.RatedGame{
		{Game: core.Game{ID: 1, Genres: []uint64{100}}, Rating: 2},
		{Game: core.Game{ID: 2, Genres: []uint64{101}}, Rating: 1},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	candidates := []core.Game{
		{ID: 10, Name: "A", Genres: []uint64{100}},
		{ID: 11, Name: "B", Genres: []uint64{101}},
		{ID: 12, Name: "AB", Genres: []uint64{100, 101}},
	}
	m := enc.Encode(candidates)

	scores, err := Score(m, pref.Weights())
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	wantScores := []float64{0.667, 0.333, 1.0}
	for i := range wantScores {
		if math.Abs(scores[i]-wantScores[i]) > eps {
			t.Errorf("scores[%d] = %v, want %v", i, scores[i], wantScores[i])
		}
	}

	items, err := Rank(candidates, m, pref.Weights())
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	wantOrder := []string{"AB", "A", "B"}
	for i, name := range wantOrder {
		if items[i].Game.Name != name {
			t.Errorf("items[%d] = %s, want %s", i, items[i].Game.Name, name)
		}
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	enc := twoGenreEncoder()
	candidates := []core.Game{
		{ID: 1, Genres: []uint64{100}},
		{ID: 2, Genres: []uint64{101}},
		{ID: 3, Genres: []uint64{100}},
		{ID: 4},
		{ID: 5, Genres: []uint64{101}},
	}
	items, err := Rank(candidates, enc.Encode(candidates), []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	wantIDs := []uint64{1, 2, 3, 5, 4}
	for i, id := range wantIDs {
		if items[i].ID != id {
			t.Errorf("items[%d].ID = %d, want %d", i, items[i].ID, id)
		}
	}
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Fatalf("scores not non-increasing at %d", i)
		}
	}
}

func TestScore_Monotonic(t *testing.T) {
	enc := feature.NewEncoder(feature.DefaultGameVocabulary())
	profile := make([]float64, enc.Vocab.Size())
	for i := range profile {
		profile[i] = 1.0 / float64(len(profile))
	}

	base := core.Game{ID: 1, Genres: []uint64{12}}
	more := core.Game{ID: 2, Genres: []uint64{12}, Themes: []uint64{17}}
	scores, err := Score(enc.Encode([]core.Game{base, more}), profile)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if scores[1] < scores[0] {
		t.Errorf("extra non-negative feature lowered score: %v < %v", scores[1], scores[0])
	}
}

func TestScore_DimensionMismatch(t *testing.T) {
	enc := twoGenreEncoder()
	m := enc.Encode([]core.Game{{ID: 1, Genres: []uint64{100}}})
	if _, err := Score(m, []float64{1, 0, 0}); !core.IsDimensionMismatch(err) {
		t.Errorf("Score() error = %v, want dimension mismatch", err)
	}
	if _, err := Rank([]core.Game{{ID: 1}}, m, []float64{1}); !core.IsDimensionMismatch(err) {
		t.Errorf("Rank() error = %v, want dimension mismatch", err)
	}
}

func TestRank_NoCandidates(t *testing.T) {
	enc := twoGenreEncoder()
	items, err := Rank(nil, enc.Encode(nil), []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Rank() = %d items, want 0", len(items))
	}
}

func TestProfileNode_Process(t *testing.T) {
	enc := twoGenreEncoder()
	node := &ProfileNode{Encoder: enc, Explain: 1}
	rctx := &core.RecommendContext{Profile: []float64{2.0 / 3.0, 1.0 / 3.0}}
	items := []*core.Item{
		core.NewItem(core.Game{ID: 10, Genres: []uint64{100}}),
		core.NewItem(core.Game{ID: 11, Genres: []uint64{101}}),
		core.NewItem(core.Game{ID: 12, Genres: []uint64{100, 101}}),
	}

	got, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	wantIDs := []uint64{12, 10, 11}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}
	if lbl, ok := got[0].GetLabel("rank_model"); !ok || lbl.Value != "preference" {
		t.Errorf("rank_model label = %+v", lbl)
	}
	if lbl, ok := got[1].GetLabel("rank_reason"); !ok || lbl.Value != "genre:A" {
		t.Errorf("rank_reason label = %+v, want genre:A", lbl)
	}
}

func TestProfileNode_Errors(t *testing.T) {
	enc := twoGenreEncoder()
	node := &ProfileNode{Encoder: enc}
	items := []*core.Item{core.NewItem(core.Game{ID: 1})}

	if _, err := node.Process(context.Background(), &core.RecommendContext{}, items); !core.IsUnderdetermined(err) {
		t.Errorf("Process() without profile error = %v, want underdetermined", err)
	}
	rctx := &core.RecommendContext{Profile: []float64{1, 0, 0}}
	if _, err := node.Process(context.Background(), rctx, items); !core.IsDimensionMismatch(err) {
		t.Errorf("Process() error = %v, want dimension mismatch", err)
	}
	got, err := node.Process(context.Background(), rctx, nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Process(nil) = (%v, %v), want empty", got, err)
	}
}
