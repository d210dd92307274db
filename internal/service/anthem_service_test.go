package service

import (
	"context"
	"testing"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/model"
)

func newCountingTaste(calls *int) *TasteService {
	return NewTasteService(func(string) ListenerSource {
		*calls++
		return &fakeSource{
			topGenres: []string{"indie rock"},
			topTracks: []string{"t1"},
			features: map[string]model.FeatureReading{
				"t1": {Tempo: 120, Energy: 0.6, Danceability: 0.5, Valence: 0.4},
			},
		}
	})
}

func TestSubmitAnthemUsesGivenDirective(t *testing.T) {
	fetches := 0
	gen := &scriptedGenerator{}
	svc := NewAnthemService(newCountingTaste(&fetches), gen, nil, nil, nil)

	users := []model.SpotifyUser{{AccessToken: "a"}, {AccessToken: "b"}}
	directive, err := svc.BuildDirective(context.Background(), users, "lock-in", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.SubmitAnthem(context.Background(), directive, "An anthem for our team")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fetches != len(users) {
		t.Errorf("taste fetched %d times, want once per user (%d)", fetches, len(users))
	}
	if gen.genCalls != 1 {
		t.Errorf("expected one submission, got %d", gen.genCalls)
	}
	if resp.Tags != directive.TagString {
		t.Errorf("response tags %q do not match submitted directive %q", resp.Tags, directive.TagString)
	}
	if resp.Instrumental != directive.Instrumental {
		t.Error("response instrumental flag does not match submitted directive")
	}
}

func TestTeamAnthemFetchesTasteOncePerUser(t *testing.T) {
	fetches := 0
	gen := &scriptedGenerator{}
	svc := NewAnthemService(newCountingTaste(&fetches), gen, nil, nil, nil)

	_, err := svc.TeamAnthem(context.Background(), &model.TeamAnthemRequest{
		Users: []model.SpotifyUser{{AccessToken: "a"}},
		Mood:  "lock-in",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetches != 1 {
		t.Errorf("taste fetched %d times, want 1", fetches)
	}
}

func TestSubmitAnthemMissingClipIDIsFatal(t *testing.T) {
	gen := &scriptedGenerator{genClip: &client.GenerateClipResponse{Status: "submitted"}}
	svc := NewAnthemService(nil, gen, nil, nil, nil)

	_, err := svc.SubmitAnthem(context.Background(), model.GenerationDirective{TagString: "electronic"}, "topic")
	if err == nil {
		t.Fatal("expected error for missing clip id")
	}
}

func TestTeamAnthemNoUsers(t *testing.T) {
	svc := NewAnthemService(nil, &scriptedGenerator{}, nil, nil, nil)

	_, err := svc.TeamAnthem(context.Background(), &model.TeamAnthemRequest{Mood: "lock-in"})
	if err != ErrNoUsers {
		t.Fatalf("expected ErrNoUsers, got %v", err)
	}
}

func TestTopicBaseCapsLength(t *testing.T) {
	jokes := make([]byte, 500)
	for i := range jokes {
		jokes[i] = 'j'
	}
	topic := TopicBase("The Mergers", "lock-in", string(jokes))
	if len(topic) > maxTopicLen {
		t.Errorf("topic length %d exceeds cap %d", len(topic), maxTopicLen)
	}
}
