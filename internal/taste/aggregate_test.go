package taste

import (
	"math"
	"reflect"
	"testing"

	"github.com/hacktrack/api/internal/model"
)

func TestAggregate(t *testing.T) {
	readings := []model.FeatureReading{
		{Tempo: 100, Energy: 0.4, Danceability: 0.6, Valence: 0.2},
		{Tempo: 140, Energy: 0.8, Danceability: 0.4, Valence: 0.6},
	}
	got := Aggregate(readings)
	want := model.FeatureSet{Tempo: 120, Energy: 0.6, Danceability: 0.5, Valence: 0.4, SampleCount: 2}
	if got != want {
		t.Errorf("Aggregate = %+v, want %+v", got, want)
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	if got.SampleCount != 0 {
		t.Errorf("SampleCount = %d, want 0", got.SampleCount)
	}
	if math.IsNaN(got.Tempo) || math.IsNaN(got.Energy) {
		t.Error("empty aggregate must not produce NaN")
	}
}

func TestNormalizeGenres(t *testing.T) {
	got := NormalizeGenres([]string{"Indie Rock", "indie rock", " TECHNO ", "", "techno", "dnb"})
	want := []string{"indie rock", "techno", "dnb"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeGenres = %v, want %v", got, want)
	}
}
