package timing

import (
	"strings"

	bferrors "github.com/dygy/beatforge/internal/errors"
)

// StyleRules carries the per-genre feel parameters the generators and
// renderer consume. Swing and humanization are ratios of one grid step;
// accent steps are within-bar step indices given emphasis by generators.
type StyleRules struct {
	SwingRatio     float64
	Humanization   float64
	AccentSteps    []int
	Density        float64 // probability scale for secondary hits, 0-1
	GhostProb      float64
	BaseVelocity   float64
	Complexity     string   // default complexity level for the style
	PreferFamilies []string // instrument families the style favors
	AvoidFamilies  []string // instrument families the style penalizes
}

// styleOrder fixes table iteration order; ties in any scoring rule resolve
// to the earliest entry.
var styleOrder = []string{
	"house",
	"techno",
	"hiphop",
	"trap",
	"lofi",
	"jazz",
	"funk",
	"rock",
	"pop",
	"ambient",
}

// styleTable encodes the genre knowledge. New styles are added as rows, not
// as new types.
var styleTable = map[string]StyleRules{
	"house": {
		SwingRatio:     0,
		Humanization:   0.02,
		AccentSteps:    []int{0, 4, 8, 12},
		Density:        0.5,
		GhostProb:      0.1,
		BaseVelocity:   0.8,
		Complexity:     "moderate",
		PreferFamilies: []string{"tr808", "synth"},
		AvoidFamilies:  []string{"guitar"},
	},
	"techno": {
		SwingRatio:     0,
		Humanization:   0.01,
		AccentSteps:    []int{0, 4, 8, 12},
		Density:        0.6,
		GhostProb:      0.05,
		BaseVelocity:   0.85,
		Complexity:     "moderate",
		PreferFamilies: []string{"tr808", "synth"},
		AvoidFamilies:  []string{"guitar", "keyboard"},
	},
	"hiphop": {
		SwingRatio:     0.15,
		Humanization:   0.1,
		AccentSteps:    []int{4, 12},
		Density:        0.5,
		GhostProb:      0.2,
		BaseVelocity:   0.75,
		Complexity:     "moderate",
		PreferFamilies: []string{"tr808", "bass"},
	},
	"trap": {
		SwingRatio:     0.1,
		Humanization:   0.05,
		AccentSteps:    []int{0, 4, 12},
		Density:        0.7,
		GhostProb:      0.25,
		BaseVelocity:   0.8,
		Complexity:     "complex",
		PreferFamilies: []string{"tr808"},
		AvoidFamilies:  []string{"drumkit"},
	},
	"lofi": {
		SwingRatio:     0.12,
		Humanization:   0.3,
		AccentSteps:    []int{4, 12},
		Density:        0.4,
		GhostProb:      0.3,
		BaseVelocity:   0.65,
		Complexity:     "simple",
		PreferFamilies: []string{"keyboard", "bass"},
		AvoidFamilies:  []string{"synth"},
	},
	"jazz": {
		SwingRatio:     0.3,
		Humanization:   0.25,
		AccentSteps:    []int{2, 6, 10, 14},
		Density:        0.45,
		GhostProb:      0.35,
		BaseVelocity:   0.7,
		Complexity:     "complex",
		PreferFamilies: []string{"keyboard", "drumkit", "bass"},
		AvoidFamilies:  []string{"tr808", "synth"},
	},
	"funk": {
		SwingRatio:     0.2,
		Humanization:   0.15,
		AccentSteps:    []int{0, 6, 10},
		Density:        0.65,
		GhostProb:      0.4,
		BaseVelocity:   0.8,
		Complexity:     "complex",
		PreferFamilies: []string{"bass", "guitar", "drumkit"},
	},
	"rock": {
		SwingRatio:     0,
		Humanization:   0.08,
		AccentSteps:    []int{0, 4, 8, 12},
		Density:        0.55,
		GhostProb:      0.1,
		BaseVelocity:   0.85,
		Complexity:     "moderate",
		PreferFamilies: []string{"drumkit", "guitar"},
		AvoidFamilies:  []string{"tr808"},
	},
	"pop": {
		SwingRatio:     0,
		Humanization:   0.05,
		AccentSteps:    []int{0, 8},
		Density:        0.5,
		GhostProb:      0.1,
		BaseVelocity:   0.75,
		Complexity:     "simple",
		PreferFamilies: []string{"drumkit", "keyboard"},
	},
	"ambient": {
		SwingRatio:     0,
		Humanization:   0.4,
		AccentSteps:    []int{0},
		Density:        0.25,
		GhostProb:      0.15,
		BaseVelocity:   0.6,
		Complexity:     "simple",
		PreferFamilies: []string{"synth", "keyboard"},
		AvoidFamilies:  []string{"drumkit", "tr808"},
	},
}

// ParseStyle normalizes a style keyword, defaulting to house for anything
// unrecognized so generation always proceeds.
func ParseStyle(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "house", "deephouse", "deep-house":
		return "house"
	case "techno":
		return "techno"
	case "hiphop", "hip-hop", "hip hop", "boombap", "boom-bap":
		return "hiphop"
	case "trap":
		return "trap"
	case "lofi", "lo-fi", "lo fi", "chillhop":
		return "lofi"
	case "jazz", "swing":
		return "jazz"
	case "funk":
		return "funk"
	case "rock":
		return "rock"
	case "pop":
		return "pop"
	case "ambient", "chill":
		return "ambient"
	default:
		return "house"
	}
}

// StyleRulesFor looks up a style strictly, for callers that want to reject
// unknown names instead of defaulting.
func StyleRulesFor(name string) (StyleRules, error) {
	rules, ok := styleTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return StyleRules{}, bferrors.ErrUnknownStyle
	}
	return rules, nil
}

// AvailableStyles returns the styles in table order.
func AvailableStyles() []string {
	out := make([]string, len(styleOrder))
	copy(out, styleOrder)
	return out
}

// StyleDescription returns a short description for each style.
func StyleDescription(style string) string {
	descriptions := map[string]string{
		"house":   "Four-on-the-floor, straight feel, 808/synth palette",
		"techno":  "Driving straight grid, dense hats, machine palette",
		"hiphop":  "Swung backbeat, ghost-heavy, 808 and bass",
		"trap":    "Rolling hats, sparse kicks, 808-centric",
		"lofi":    "Loose timing, subdued velocities, keys and bass",
		"jazz":    "Heavy swing, ride-led, acoustic palette",
		"funk":    "Syncopated sixteenths, ghost snares, bass-forward",
		"rock":    "Straight backbeat, acoustic kit and guitar",
		"pop":     "Simple straight groove, kit and keys",
		"ambient": "Sparse, heavily humanized, pad-oriented",
	}
	return descriptions[ParseStyle(style)]
}
