package service

import (
	"context"
	"fmt"
	"log"

	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/taste"
)

// ListenerSource is the per-listener taste feed. The Spotify client
// implements it; tests substitute fakes.
type ListenerSource interface {
	Profile(ctx context.Context) (*model.SpotifyProfile, error)
	TopGenres(ctx context.Context) ([]string, error)
	TopTrackIDs(ctx context.Context) ([]string, error)
	AudioFeatures(ctx context.Context, trackIDs []string) ([]model.FeatureReading, error)
	RecentlyPlayed(ctx context.Context) (genres []string, trackIDs []string, err error)
	RecommendationTrackIDs(ctx context.Context, seedGenres []string) ([]string, error)
}

// ListenerSourceFactory builds a source for one listener's access token.
type ListenerSourceFactory func(accessToken string) ListenerSource

// TasteService resolves per-listener signal bundles.
type TasteService struct {
	sources ListenerSourceFactory
}

func NewTasteService(factory ListenerSourceFactory) *TasteService {
	return &TasteService{sources: factory}
}

// signalSource produces an optional bundle for one listener. Sources are
// tried in order; resolution stops at the first that yields any genre or a
// usable sample.
type signalSource interface {
	Name() string
	Fetch(ctx context.Context) (model.SignalBundle, error)
}

// topItemsSource is the primary signal: short-term top artists and tracks.
type topItemsSource struct {
	src ListenerSource
}

func (s topItemsSource) Name() string { return "top-items" }

func (s topItemsSource) Fetch(ctx context.Context) (model.SignalBundle, error) {
	genres, err := s.src.TopGenres(ctx)
	if err != nil {
		return model.SignalBundle{}, err
	}
	ids, err := s.src.TopTrackIDs(ctx)
	if err != nil {
		return model.SignalBundle{}, err
	}
	readings, err := s.src.AudioFeatures(ctx, ids)
	if err != nil {
		return model.SignalBundle{}, err
	}
	return model.SignalBundle{Genres: genres, Features: taste.Aggregate(readings)}, nil
}

// recentlyPlayedSource is the secondary signal for fresh accounts with no
// top data yet.
type recentlyPlayedSource struct {
	src ListenerSource
}

func (s recentlyPlayedSource) Name() string { return "recently-played" }

func (s recentlyPlayedSource) Fetch(ctx context.Context) (model.SignalBundle, error) {
	genres, ids, err := s.src.RecentlyPlayed(ctx)
	if err != nil {
		return model.SignalBundle{}, err
	}
	readings, err := s.src.AudioFeatures(ctx, ids)
	if err != nil {
		return model.SignalBundle{}, err
	}
	return model.SignalBundle{Genres: genres, Features: taste.Aggregate(readings)}, nil
}

// FetchTaste resolves one listener's signal bundle. Sources are evaluated
// lazily in order; when genres exist but no features do, a tertiary
// recommendation-seeded estimate fills the centroid; after everything the
// neutral default guarantees a usable bundle.
func (s *TasteService) FetchTaste(ctx context.Context, accessToken string) (model.SignalBundle, error) {
	src := s.sources(accessToken)

	chain := []signalSource{
		topItemsSource{src},
		recentlyPlayedSource{src},
	}

	var bundle model.SignalBundle
	for _, candidate := range chain {
		b, err := candidate.Fetch(ctx)
		if err != nil {
			return model.SignalBundle{}, fmt.Errorf("%s signal: %w", candidate.Name(), err)
		}
		bundle = b
		if len(bundle.Genres) > 0 || bundle.Features.SampleCount > 0 {
			break
		}
	}

	if bundle.Features.SampleCount == 0 && len(bundle.Genres) > 0 {
		if est, ok := s.estimateFromRecommendations(ctx, src, bundle.Genres); ok {
			bundle.Features = est
		}
	}

	if bundle.Features.SampleCount == 0 {
		bundle.Features = model.NeutralFeatures()
	}

	return bundle, nil
}

// estimateFromRecommendations approximates a centroid from genre-seeded
// recommendations. Failures here degrade to "no estimate".
func (s *TasteService) estimateFromRecommendations(ctx context.Context, src ListenerSource, genres []string) (model.FeatureSet, bool) {
	ids, err := src.RecommendationTrackIDs(ctx, genres)
	if err != nil {
		log.Printf("[Taste] recommendation estimate failed: %v", err)
		return model.FeatureSet{}, false
	}
	if len(ids) == 0 {
		return model.FeatureSet{}, false
	}
	readings, err := src.AudioFeatures(ctx, ids)
	if err != nil || len(readings) == 0 {
		return model.FeatureSet{}, false
	}
	return taste.Aggregate(readings), true
}

// FetchAll resolves bundles for a set of listeners, sequentially.
func (s *TasteService) FetchAll(ctx context.Context, users []model.SpotifyUser) ([]model.SignalBundle, error) {
	bundles := make([]model.SignalBundle, 0, len(users))
	for i, u := range users {
		b, err := s.FetchTaste(ctx, u.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", i+1, err)
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

// Summarize builds the spotify/me response: profile, top genres, centroid.
func (s *TasteService) Summarize(ctx context.Context, accessToken string) (*model.TasteSummary, error) {
	src := s.sources(accessToken)
	profile, err := src.Profile(ctx)
	if err != nil {
		return nil, err
	}

	bundle, err := s.FetchTaste(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	top := bundle.Genres
	if len(top) > 5 {
		top = top[:5]
	}

	return &model.TasteSummary{
		Profile:   *profile,
		TopGenres: top,
		Centroid:  bundle.Features,
	}, nil
}

// SummarizeMin builds the spotify/me-min response: profile and up to five
// top genres from the primary signal only. No feature fetches, no fallback
// chain.
func (s *TasteService) SummarizeMin(ctx context.Context, accessToken string) (*model.TasteSummaryMin, error) {
	src := s.sources(accessToken)
	profile, err := src.Profile(ctx)
	if err != nil {
		return nil, err
	}
	genres, err := src.TopGenres(ctx)
	if err != nil {
		return nil, err
	}

	top := taste.NormalizeGenres(genres)
	if len(top) > 5 {
		top = top[:5]
	}

	return &model.TasteSummaryMin{
		Profile:   *profile,
		TopGenres: top,
	}, nil
}

// Recent returns the recently-played bundle alone, without the fallback
// chain, for the spotify/recent endpoint.
func (s *TasteService) Recent(ctx context.Context, accessToken string) (model.SignalBundle, error) {
	return recentlyPlayedSource{s.sources(accessToken)}.Fetch(ctx)
}
