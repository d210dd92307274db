package model

// FeatureDelta is a mood's additive adjustment to the fused centroid.
// No delta is defined for valence; it is reported as-is.
type FeatureDelta struct {
	Tempo        float64 `json:"tempo"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
}

// MoodDirective is one entry of the immutable mood table.
type MoodDirective struct {
	Tags         []string     `json:"tags"`
	Delta        FeatureDelta `json:"delta"`
	Instrumental bool         `json:"instrumental"`
}

// AdjustedFeatures is the mood-adjusted centroid reported in the explanation.
// Tempo is clamped to [60,200] and rounded; energy and danceability are
// clamped to [0,1]. Valence carries the raw average.
type AdjustedFeatures struct {
	Tempo        int     `json:"tempo"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Valence      float64 `json:"valence"`
}

// TasteExplain tells the caller why the directive looks the way it does.
type TasteExplain struct {
	TopGenres []string         `json:"topGenres"`
	Adjusted  AdjustedFeatures `json:"adjusted"`
}

// GenerationDirective is the final instruction payload for the generation
// provider. Immutable once built; never persisted.
type GenerationDirective struct {
	TagString    string       `json:"tagStr"`
	Instrumental bool         `json:"makeInstrumental"`
	Explain      TasteExplain `json:"explain"`
}
