package client

import (
	"context"
	"log"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/taste"
)

const (
	audioFeatureBatchSize = 100
	artistBatchSize       = 50
	recommendationSeedCap = 5
)

// SpotifyClient wraps the Spotify Web API for one listener's access token.
// Construct one per request; it holds no state beyond the token.
type SpotifyClient struct {
	api *spotify.Client
}

// NewSpotifyClient builds a client around a bearer token obtained by the
// caller through the OAuth flow.
func NewSpotifyClient(accessToken string) *SpotifyClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	httpClient := oauth2.NewClient(context.Background(), src)
	return &SpotifyClient{api: spotify.New(httpClient)}
}

// Profile returns the listener's profile subset.
func (c *SpotifyClient) Profile(ctx context.Context) (*model.SpotifyProfile, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return &model.SpotifyProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
	}, nil
}

// TopGenres returns the listener's short-term top-artist genres, normalized.
func (c *SpotifyClient) TopGenres(ctx context.Context) ([]string, error) {
	artists, err := c.api.CurrentUsersTopArtists(ctx, spotify.Limit(20), spotify.Timerange(spotify.ShortTermRange))
	if err != nil {
		return nil, err
	}
	var genres []string
	for _, a := range artists.Artists {
		genres = append(genres, a.Genres...)
	}
	return taste.NormalizeGenres(genres), nil
}

// TopTrackIDs returns the listener's short-term top-track ids.
func (c *SpotifyClient) TopTrackIDs(ctx context.Context) ([]string, error) {
	tracks, err := c.api.CurrentUsersTopTracks(ctx, spotify.Limit(20), spotify.Timerange(spotify.ShortTermRange))
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, t := range tracks.Tracks {
		if t.ID != "" {
			ids = append(ids, string(t.ID))
		}
	}
	return ids, nil
}

// AudioFeatures fetches per-track feature readings in batches. A failed
// batch contributes nothing instead of aborting; null features are skipped,
// not treated as zero.
func (c *SpotifyClient) AudioFeatures(ctx context.Context, trackIDs []string) ([]model.FeatureReading, error) {
	var readings []model.FeatureReading
	for start := 0; start < len(trackIDs); start += audioFeatureBatchSize {
		end := start + audioFeatureBatchSize
		if end > len(trackIDs) {
			end = len(trackIDs)
		}
		batch := make([]spotify.ID, 0, end-start)
		for _, id := range trackIDs[start:end] {
			batch = append(batch, spotify.ID(id))
		}

		features, err := c.api.GetAudioFeatures(ctx, batch...)
		if err != nil {
			log.Printf("[Spotify API] audio-features batch %d-%d failed: %v", start, end, err)
			continue
		}
		for _, f := range features {
			if f == nil {
				continue
			}
			readings = append(readings, model.FeatureReading{
				Tempo:        float64(f.Tempo),
				Energy:       float64(f.Energy),
				Danceability: float64(f.Danceability),
				Valence:      float64(f.Valence),
			})
		}
	}
	return readings, nil
}

// RecentlyPlayed returns genres and track ids inferred from the listener's
// last plays. Genres come from the tracks' artists, fetched in batches; a
// failed artist batch is skipped.
func (c *SpotifyClient) RecentlyPlayed(ctx context.Context) ([]string, []string, error) {
	items, err := c.api.PlayerRecentlyPlayedOpt(ctx, &spotify.RecentlyPlayedOptions{Limit: 50})
	if err != nil {
		return nil, nil, err
	}

	var trackIDs []string
	var artistIDs []spotify.ID
	seenTrack := make(map[string]struct{})
	seenArtist := make(map[spotify.ID]struct{})
	for _, it := range items {
		if id := string(it.Track.ID); id != "" {
			if _, ok := seenTrack[id]; !ok {
				seenTrack[id] = struct{}{}
				trackIDs = append(trackIDs, id)
			}
		}
		for _, ar := range it.Track.Artists {
			if ar.ID == "" {
				continue
			}
			if _, ok := seenArtist[ar.ID]; !ok {
				seenArtist[ar.ID] = struct{}{}
				artistIDs = append(artistIDs, ar.ID)
			}
		}
	}

	var genres []string
	for start := 0; start < len(artistIDs); start += artistBatchSize {
		end := start + artistBatchSize
		if end > len(artistIDs) {
			end = len(artistIDs)
		}
		artists, err := c.api.GetArtists(ctx, artistIDs[start:end]...)
		if err != nil {
			log.Printf("[Spotify API] artists batch %d-%d failed: %v", start, end, err)
			continue
		}
		for _, a := range artists {
			if a != nil {
				genres = append(genres, a.Genres...)
			}
		}
	}

	return taste.NormalizeGenres(genres), trackIDs, nil
}

// RecommendationTrackIDs asks for recommendations seeded by genre names
// (first word of each, max 5 seeds) and returns the recommended track ids.
func (c *SpotifyClient) RecommendationTrackIDs(ctx context.Context, genres []string) ([]string, error) {
	seeds := seedGenres(genres)
	if len(seeds) == 0 {
		return nil, nil
	}

	rec, err := c.api.GetRecommendations(ctx, spotify.Seeds{Genres: seeds}, nil, spotify.Limit(50))
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, t := range rec.Tracks {
		if t.ID != "" {
			ids = append(ids, string(t.ID))
		}
	}
	return ids, nil
}

// seedGenres reduces genre names to unique one-word seeds.
func seedGenres(genres []string) []string {
	seen := make(map[string]struct{}, len(genres))
	var seeds []string
	for _, g := range genres {
		word := firstWord(g)
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		seeds = append(seeds, word)
		if len(seeds) == recommendationSeedCap {
			break
		}
	}
	return seeds
}

func firstWord(s string) string {
	for i, r := range s {
		if r == ' ' {
			return s[:i]
		}
	}
	return s
}
