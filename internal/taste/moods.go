// Package taste turns heterogeneous per-user listening signal into a single
// deterministic generation directive.
package taste

import (
	"strings"

	"github.com/hacktrack/api/internal/model"
)

// DefaultMood is used whenever an unknown or empty mood key is given.
const DefaultMood = "lock-in"

// moodTable is process-wide immutable configuration. Built once, never
// mutated.
var moodTable = map[string]model.MoodDirective{
	"lock-in": {
		Tags:         []string{"electronic", "synthwave", "driving"},
		Delta:        model.FeatureDelta{Tempo: 10, Energy: 0.2, Danceability: 0.1},
		Instrumental: true,
	},
	"debug-spiral": {
		Tags:         []string{"lo-fi", "minimal", "chill"},
		Delta:        model.FeatureDelta{Tempo: -15, Energy: -0.2, Danceability: -0.05},
		Instrumental: true,
	},
	"help-pls": {
		Tags:         []string{"ambient pop", "uplifting", "light pads"},
		Delta:        model.FeatureDelta{Tempo: 0, Energy: 0.05, Danceability: 0},
		Instrumental: false,
	},
	"free-swag-run": {
		Tags:         []string{"house", "pop", "bright", "groove"},
		Delta:        model.FeatureDelta{Tempo: 20, Energy: 0.25, Danceability: 0.2},
		Instrumental: false,
	},
	"food-and-yap": {
		Tags:         []string{"bossa nova", "jazzy", "warm", "acoustic"},
		Delta:        model.FeatureDelta{Tempo: 0, Energy: -0.05, Danceability: 0.05},
		Instrumental: false,
	},
	"monster-energy": {
		Tags:         []string{"dnb", "hard techno", "aggressive"},
		Delta:        model.FeatureDelta{Tempo: 30, Energy: 0.35, Danceability: 0.1},
		Instrumental: false,
	},
}

// ResolveMood looks up the directive for a mood key. Unknown or empty keys
// resolve to the default mood; this never fails.
func ResolveMood(mood string) model.MoodDirective {
	if d, ok := moodTable[strings.TrimSpace(mood)]; ok {
		return d
	}
	return moodTable[DefaultMood]
}

// MoodKeys lists the known mood identifiers, for validation hints.
func MoodKeys() []string {
	keys := make([]string, 0, len(moodTable))
	for k := range moodTable {
		keys = append(keys, k)
	}
	return keys
}
