package model

// FeatureReading is one track's audio-feature sample, as returned by the
// listener-taste source. Readings missing from the upstream response are
// skipped before they reach the aggregator, so every reading here counts.
type FeatureReading struct {
	Tempo        float64 `json:"tempo"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Valence      float64 `json:"valence"`
}

// FeatureSet is an averaged audio-feature centroid. SampleCount == 0 means
// no usable signal; the feature fields are then meaningless, not zero.
type FeatureSet struct {
	Tempo        float64 `json:"tempo"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Valence      float64 `json:"valence"`
	SampleCount  int     `json:"count"`
}

// SignalBundle is one user's summarized musical taste.
type SignalBundle struct {
	Genres   []string   `json:"genres"`
	Features FeatureSet `json:"features"`
}

// NeutralFeatures is the fixed fallback centroid used when every signal
// source came up empty, so downstream averaging never divides by zero.
func NeutralFeatures() FeatureSet {
	return FeatureSet{
		Tempo:        110,
		Energy:       0.55,
		Danceability: 0.55,
		Valence:      0.5,
		SampleCount:  1,
	}
}

// TasteSummary is the response shape for the spotify/me endpoint.
type TasteSummary struct {
	Profile   SpotifyProfile `json:"profile"`
	TopGenres []string       `json:"top_genres"`
	Centroid  FeatureSet     `json:"features_centroid"`
}

// TasteSummaryMin is the response shape for the spotify/me-min endpoint:
// profile and top genres only, no feature centroid and no fallback chain.
type TasteSummaryMin struct {
	Profile   SpotifyProfile `json:"profile"`
	TopGenres []string       `json:"top_genres"`
}

// SpotifyProfile is the subset of the Spotify user profile we expose.
type SpotifyProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
}
