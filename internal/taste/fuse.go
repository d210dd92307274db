package taste

import (
	"math"
	"sort"
	"strings"

	"github.com/hacktrack/api/internal/model"
)

const (
	maxTopGenres = 4
	maxTags      = 6
	// The provider rejects tag strings over 100 characters; the tag-count
	// cap alone cannot guarantee that for long genre names, so the byte
	// cap is enforced explicitly.
	maxTagStringLen = 100

	minTempo = 60
	maxTempo = 200
)

// Fuse reduces per-user signal bundles plus a mood into the final generation
// directive. Deterministic for identical inputs: genre ranking breaks ties
// by first-seen order, never map order.
func Fuse(bundles []model.SignalBundle, mood string, instrumental *bool) model.GenerationDirective {
	cfg := ResolveMood(mood)

	topGenres := rankGenres(bundles)

	tags := dedupeTags(append(append([]string{}, topGenres...), cfg.Tags...))
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	tagStr := joinTags(tags)

	makeInstrumental := cfg.Instrumental
	if instrumental != nil {
		makeInstrumental = *instrumental
	}

	return model.GenerationDirective{
		TagString:    tagStr,
		Instrumental: makeInstrumental,
		Explain: model.TasteExplain{
			TopGenres: topGenres,
			Adjusted:  adjustFeatures(bundles, cfg.Delta),
		},
	}
}

// rankGenres tallies genre frequency across users, counting each genre at
// most once per user so one user's repeats cannot dominate, then returns
// the top genres by descending frequency with a stable first-seen
// tie-break.
func rankGenres(bundles []model.SignalBundle) []string {
	freq := make(map[string]int)
	var order []string

	for _, b := range bundles {
		seen := make(map[string]struct{}, len(b.Genres))
		for _, g := range b.Genres {
			key := normalizeTag(g)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if freq[key] == 0 {
				order = append(order, key)
			}
			freq[key]++
		}
	}

	ranked := append([]string{}, order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return freq[ranked[i]] > freq[ranked[j]]
	})

	if len(ranked) > maxTopGenres {
		ranked = ranked[:maxTopGenres]
	}
	return ranked
}

// adjustFeatures averages the centroid across users that actually have
// signal, applies the mood delta and clamps. Users with no samples
// contribute nothing, not zero. With no contributors at all the neutral
// defaults are substituted so the result is never built from an undefined
// average.
func adjustFeatures(bundles []model.SignalBundle, delta model.FeatureDelta) model.AdjustedFeatures {
	var tempo, energy, dance, valence float64
	n := 0
	for _, b := range bundles {
		if b.Features.SampleCount <= 0 {
			continue
		}
		tempo += b.Features.Tempo
		energy += b.Features.Energy
		dance += b.Features.Danceability
		valence += b.Features.Valence
		n++
	}

	if n > 0 {
		fn := float64(n)
		tempo /= fn
		energy /= fn
		dance /= fn
		valence /= fn
	} else {
		tempo, energy, dance, valence = 110, 0.5, 0.5, 0.5
	}

	return model.AdjustedFeatures{
		Tempo:        int(clamp(math.Round(tempo+delta.Tempo), minTempo, maxTempo)),
		Energy:       clamp(energy+delta.Energy, 0, 1),
		Danceability: clamp(dance+delta.Danceability, 0, 1),
		Valence:      valence,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		key := normalizeTag(t)
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

// joinTags joins with ", " and enforces the provider's hard byte limit by
// dropping trailing tags until the string fits. A single oversized tag is
// hard-truncated as a last resort.
func joinTags(tags []string) string {
	for len(tags) > 1 && len(strings.Join(tags, ", ")) > maxTagStringLen {
		tags = tags[:len(tags)-1]
	}
	s := strings.Join(tags, ", ")
	if len(s) > maxTagStringLen {
		s = s[:maxTagStringLen]
	}
	return s
}

// MergeTags combines caller-provided tags with a mood's seed tags, capped
// the same way the fused tag string is. Used by the repo songify path.
func MergeTags(provided string, mood string) string {
	cfg := ResolveMood(mood)
	seeds := cfg.Tags
	if len(seeds) > 3 {
		seeds = seeds[:3]
	}

	var tags []string
	for _, t := range strings.Split(provided, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	tags = dedupeTags(append(tags, seeds...))
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return joinTags(tags)
}
