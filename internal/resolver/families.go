package resolver

import "strings"

// Family describes one instrument family: the drum roles it is registered
// to serve, or the pitch register it covers for melodic notes.
type Family struct {
	Name    string
	Roles   []string
	Melodic bool
	PitchLo int
	PitchHi int
}

// familyOrder fixes iteration order; scoring ties resolve to the earliest
// entry.
var familyOrder = []string{"drumkit", "tr808", "bass", "guitar", "keyboard", "synth"}

var familyTable = map[string]Family{
	"drumkit": {
		Name:    "drumkit",
		Roles:   []string{"kick", "snare", "clap", "rimshot", "hihat", "openhat", "tom", "ride", "crash"},
		PitchLo: 35,
		PitchHi: 59,
	},
	"tr808": {
		Name:    "tr808",
		Roles:   []string{"kick", "snare", "clap", "hihat", "openhat", "tom", "cowbell", "shaker"},
		PitchLo: 35,
		PitchHi: 75,
	},
	"bass": {
		Name:    "bass",
		Melodic: true,
		PitchLo: 28,
		PitchHi: 55,
	},
	"guitar": {
		Name:    "guitar",
		Melodic: true,
		PitchLo: 40,
		PitchHi: 76,
	},
	"keyboard": {
		Name:    "keyboard",
		Melodic: true,
		PitchLo: 21,
		PitchHi: 108,
	},
	"synth": {
		Name:    "synth",
		Melodic: true,
		PitchLo: 24,
		PitchHi: 108,
	},
}

// deprecatedAliases maps retired instrument names to their current family.
// "piano" shipped in early sample packs and now lives under "keyboard".
var deprecatedAliases = map[string]string{
	"piano": "keyboard",
	"keys":  "keyboard",
	"organ": "keyboard",
	"808":   "tr808",
	"drums": "drumkit",
	"kit":   "drumkit",
}

// NormalizeFamily maps an explicit instrument name onto a registered
// family, following deprecated aliases. Unknown names return "".
func NormalizeFamily(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := deprecatedAliases[n]; ok {
		n = alias
	}
	if _, ok := familyTable[n]; ok {
		return n
	}
	return ""
}

// AvailableFamilies returns the registered families in table order.
func AvailableFamilies() []string {
	out := make([]string, len(familyOrder))
	copy(out, familyOrder)
	return out
}

// FamilyDescription returns a short description for each family.
func FamilyDescription(name string) string {
	descriptions := map[string]string{
		"drumkit":  "Acoustic drum kit samples (GM percussion pitches)",
		"tr808":    "Drum machine samples, 808-style",
		"bass":     "Electric and synth bass, E1-G3",
		"guitar":   "Electric and acoustic guitar, E2-E5",
		"keyboard": "Piano, organ and electric piano, full register",
		"synth":    "Synth leads and pads, full register",
	}
	return descriptions[NormalizeFamily(name)]
}

func (f Family) servesRole(role string) bool {
	for _, r := range f.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (f Family) servesPitch(pitch int) bool {
	return f.Melodic && pitch >= f.PitchLo && pitch <= f.PitchHi
}
