package model

import (
	"math"
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
)

const eps = 1e-9

func twoGenreBuilder(policy RatingPolicy) *ProfileBuilder {
	vocab := feature.MustVocabulary([]feature.Term{{ID: 100, Name: "A"}, {ID: 101, Name: "B"}}, nil, nil)
	return &ProfileBuilder{Encoder: feature.NewEncoder(vocab), Policy: policy}
}

func genre(id uint64, genres ...uint64) core.Game {
	return core.Game{ID: id, Genres: genres}
}

func TestProfileBuilder_Build(t *testing.T) {
	b := twoGenreBuilder(PolicyAversion)

	tests := []struct {
		name  string
		rated []core.RatedGame
		want  []float64
	}{
		{
			name:  "weighted by rating",
			rated: []core.RatedGame{{Game: genre(1, 100), Rating: 2}, {Game: genre(2, 101), Rating: 1}},
			want:  []float64{2.0 / 3.0, 1.0 / 3.0},
		},
		{
			name:  "single game",
			rated: []core.RatedGame{{Game: genre(1, 100, 101), Rating: 5}},
			want:  []float64{0.5, 0.5},
		},
		{
			name:  "unknown attributes ignored",
			rated: []core.RatedGame{{Game: genre(1, 100, 999), Rating: 3}},
			want:  []float64{1, 0},
		},
		{
			name:  "huge finite ratings",
			rated: []core.RatedGame{{Game: genre(1, 100), Rating: 1e308}, {Game: genre(2, 100, 101), Rating: 1e308}},
			want:  []float64{2.0 / 3.0, 1.0 / 3.0},
		},
		{
			name:  "scale does not change the profile",
			rated: []core.RatedGame{{Game: genre(1, 100), Rating: 2e-20}, {Game: genre(2, 101), Rating: 1e-20}},
			want:  []float64{2.0 / 3.0, 1.0 / 3.0},
		},
		{
			name:  "negative rating as aversion",
			rated: []core.RatedGame{{Game: genre(1, 100), Rating: 3}, {Game: genre(2, 101), Rating: -1}},
			want:  []float64{1.5, -0.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := b.Build(tt.rated)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			got := m.Weights()
			if len(got) != len(tt.want) {
				t.Fatalf("len(Weights()) = %d, want %d", len(got), len(tt.want))
			}
			var sum float64
			for i := range got {
				sum += got[i]
				if math.Abs(got[i]-tt.want[i]) > eps {
					t.Errorf("Weights()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
			if math.Abs(sum-1) > eps {
				t.Errorf("sum(Weights()) = %v, want 1", sum)
			}
		})
	}
}

func TestProfileBuilder_Underdetermined(t *testing.T) {
	b := twoGenreBuilder(PolicyAversion)

	tests := []struct {
		name  string
		rated []core.RatedGame
	}{
		{"empty input", nil},
		{"all zero ratings", []core.RatedGame{{Game: genre(1, 100), Rating: 0}, {Game: genre(2, 101), Rating: 0}}},
		{"no recognized attributes", []core.RatedGame{{Game: genre(1, 999), Rating: 10}}},
		{"positive and negative cancel", []core.RatedGame{{Game: genre(1, 100), Rating: 2}, {Game: genre(2, 101), Rating: -2}}},
		{"huge ratings cancel", []core.RatedGame{{Game: genre(1, 100), Rating: 1e308}, {Game: genre(2, 101), Rating: -1e308}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.rated)
			if !core.IsUnderdetermined(err) {
				t.Fatalf("Build() error = %v, want underdetermined", err)
			}
		})
	}
}

func TestProfileBuilder_InvalidRating(t *testing.T) {
	tests := []struct {
		name   string
		policy RatingPolicy
		rating float64
	}{
		{"negative under reject", PolicyReject, -1},
		{"NaN", PolicyAversion, math.NaN()},
		{"Inf", PolicyAversion, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := twoGenreBuilder(tt.policy).Build([]core.RatedGame{
				{Game: genre(1, 100), Rating: 5},
				{Game: genre(2, 101), Rating: tt.rating},
			})
			if !core.IsInvalidInput(err) {
				t.Fatalf("Build() error = %v, want invalid input", err)
			}
		})
	}
}

func TestProfileBuilder_SampleLibrary(t *testing.T) {
	b := NewProfileBuilder(feature.NewEncoder(feature.DefaultGameVocabulary()))
	rated := []core.RatedGame{
		{Game: core.Game{ID: 7334, Name: "Bloodborne", Genres: []uint64{12, 31}, Themes: []uint64{1, 17, 19, 38}, PlayerPerspectives: []uint64{2}}, Rating: 2.0},
		{Game: core.Game{ID: 119133, Name: "Elden Ring", Genres: []uint64{12, 31}, Themes: []uint64{1, 17, 38}, PlayerPerspectives: []uint64{2}}, Rating: 1.0},
		{Game: core.Game{ID: 125764, Name: "Guilty Gear -Strive-", Genres: []uint64{4}, Themes: []uint64{1}, PlayerPerspectives: []uint64{4}}, Rating: 1.5},
	}
	m, err := b.Build(rated)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if m.Dim() != 52 {
		t.Fatalf("Dim() = %d, want 52", m.Dim())
	}

	// w = 2*7 + 1*6 + 1.5*3 = 24.5
	vocab := feature.DefaultGameVocabulary()
	action, _ := vocab.ColumnOf(feature.FamilyTheme, 1)
	horror, _ := vocab.ColumnOf(feature.FamilyTheme, 19)
	w := m.Weights()
	if got, want := w[action], 4.5/24.5; math.Abs(got-want) > eps {
		t.Errorf("weight(Action) = %v, want %v", got, want)
	}
	if got, want := w[horror], 2.0/24.5; math.Abs(got-want) > eps {
		t.Errorf("weight(Horror) = %v, want %v", got, want)
	}

	top := m.Explain(feature.NewEncoder(vocab).EncodeOne(rated[0].Game), 2)
	if len(top) != 2 || top[0].Name != "theme:Action" {
		t.Errorf("Explain() = %+v, want theme:Action first", top)
	}
}

func TestPreferenceModel_Predict(t *testing.T) {
	m := NewPreferenceModel([]float64{0.25, 0.75}, nil)
	got, err := m.Predict([]float64{1, 1})
	if err != nil || got != 1 {
		t.Errorf("Predict() = (%v, %v), want (1, nil)", got, err)
	}
	if _, err := m.Predict([]float64{1}); !core.IsDimensionMismatch(err) {
		t.Errorf("Predict() error = %v, want dimension mismatch", err)
	}
}

func TestParseRatingPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    RatingPolicy
		wantErr bool
	}{
		{"", PolicyAversion, false},
		{"aversion", PolicyAversion, false},
		{" Reject ", PolicyReject, false},
		{"clamp", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRatingPolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRatingPolicy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRatingPolicy() = %q, want %q", got, tt.want)
			}
		})
	}
}
