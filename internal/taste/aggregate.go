package taste

import "github.com/hacktrack/api/internal/model"

// Aggregate reduces per-track feature readings to a centroid. Readings are
// already filtered for nulls upstream, so the divisor is the number of
// readings actually summed, never the raw response length.
func Aggregate(readings []model.FeatureReading) model.FeatureSet {
	var fs model.FeatureSet
	for _, r := range readings {
		fs.Tempo += r.Tempo
		fs.Energy += r.Energy
		fs.Danceability += r.Danceability
		fs.Valence += r.Valence
		fs.SampleCount++
	}
	if fs.SampleCount > 0 {
		n := float64(fs.SampleCount)
		fs.Tempo /= n
		fs.Energy /= n
		fs.Danceability /= n
		fs.Valence /= n
	}
	return fs
}

// NormalizeGenres lower-cases, trims and deduplicates a genre list,
// preserving first-occurrence order.
func NormalizeGenres(genres []string) []string {
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		key := normalizeTag(g)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
