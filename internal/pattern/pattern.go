// Package pattern contains the symbolic generators: they turn a timing grid,
// a style, and a seeded random source into an ordered list of note events on
// the normalized [0,1) scale. Nothing here touches audio.
package pattern

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dygy/beatforge/internal/rng"
	"github.com/dygy/beatforge/internal/timing"
)

// NoteID identifies what an event plays: a symbolic drum role ("kick",
// "snare") or a concrete MIDI pitch for melodic notes. Exactly one of the
// two is set.
type NoteID struct {
	Role  string
	Pitch int
}

// RoleNote returns a drum-role id.
func RoleNote(role string) NoteID {
	return NoteID{Role: role}
}

// PitchNote returns a melodic pitch id.
func PitchNote(pitch int) NoteID {
	return NoteID{Pitch: pitch}
}

// IsMelodic reports whether the id is an integer pitch.
func (n NoteID) IsMelodic() bool {
	return n.Role == ""
}

func (n NoteID) String() string {
	if n.Role != "" {
		return n.Role
	}
	return strconv.Itoa(n.Pitch)
}

// Event is one note occurrence. Position is normalized over the whole
// pattern, velocity over [0,1].
type Event struct {
	Position  float64
	Velocity  float64
	Note      NoteID
	Ghost     bool
	Layer     string
	Technique string
}

// Metadata describes how a pattern was generated.
type Metadata struct {
	Style      string
	Complexity float64
	Layers     []string
}

// Pattern is the complete ordered event list for one request. It is owned
// by the pipeline run that created it and never shared.
type Pattern struct {
	Events []Event
	Meta   Metadata
}

// Sort orders events by position. Ties resolve by note identity so the
// event order, like everything else here, is deterministic per seed.
func (p *Pattern) Sort() {
	sort.SliceStable(p.Events, func(i, j int) bool {
		a, b := p.Events[i], p.Events[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Note.Role != b.Note.Role {
			return a.Note.Role < b.Note.Role
		}
		return a.Note.Pitch < b.Note.Pitch
	})
}

// NoteIDs returns the distinct note ids in first-appearance order.
func (p *Pattern) NoteIDs() []NoteID {
	seen := make(map[NoteID]bool)
	var ids []NoteID
	for _, e := range p.Events {
		if !seen[e.Note] {
			seen[e.Note] = true
			ids = append(ids, e.Note)
		}
	}
	return ids
}

// DropNotes removes every event playing one of the given ids, used when
// resolution reports ids no sample can serve.
func (p *Pattern) DropNotes(ids []NoteID) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[NoteID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := p.Events[:0]
	removed := 0
	for _, e := range p.Events {
		if drop[e.Note] {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	p.Events = kept
	return removed
}

// Generator is the single capability all pattern sources share.
type Generator interface {
	Generate(cfg *timing.Config, src *rng.Source) *Pattern
}

// Kind selects a generator variant explicitly.
type Kind string

const (
	KindSimple  Kind = "simple"
	KindLayered Kind = "layered"
	KindMelodic Kind = "melodic"
)

// Complexity levels map onto the numeric thresholds that gate layers.
var complexityLevels = map[string]float64{
	"simple":   0.3,
	"moderate": 0.6,
	"complex":  0.8,
	"advanced": 1.0,
}

// ParseComplexity maps a complexity keyword to its numeric level. Unknown
// values fall back to the style's default.
func ParseComplexity(s string, rules timing.StyleRules) float64 {
	if v, ok := complexityLevels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	if v, ok := complexityLevels[rules.Complexity]; ok {
		return v
	}
	return complexityLevels["moderate"]
}

// ComplexityLevels returns the known complexity keywords.
func ComplexityLevels() []string {
	return []string{"simple", "moderate", "complex", "advanced"}
}

// ForRequest picks the generator variant for a request: melodic instruments
// get the melodic source, drum requests get the layered source unless the
// complexity asks for the simple one.
func ForRequest(instrument, complexity, playMode string, rules timing.StyleRules) Generator {
	if isMelodicInstrument(instrument) {
		return NewMelodic(instrument, complexity, playMode)
	}
	if ParseComplexity(complexity, rules) <= complexityLevels["simple"] {
		return NewSimple()
	}
	return NewLayered(complexity)
}

// ForKind dispatches on an explicit generator kind.
func ForKind(kind Kind, instrument, complexity, playMode string) (Generator, error) {
	switch kind {
	case KindSimple:
		return NewSimple(), nil
	case KindLayered:
		return NewLayered(complexity), nil
	case KindMelodic:
		return NewMelodic(instrument, complexity, playMode), nil
	default:
		return nil, fmt.Errorf("unknown generator kind %q", kind)
	}
}

func isMelodicInstrument(instrument string) bool {
	switch strings.ToLower(strings.TrimSpace(instrument)) {
	case "bass", "guitar", "keyboard", "piano", "synth":
		return true
	}
	return false
}

// clampPosition keeps a jittered position on the [0,1) scale.
func clampPosition(pos float64) float64 {
	if pos < 0 {
		return 0
	}
	if pos >= 1 {
		return nextBelowOne
	}
	return pos
}

// nextBelowOne is the largest representable position on the pattern scale.
const nextBelowOne = 1 - 1e-9

// clampVelocity keeps a jittered velocity in [0,1].
func clampVelocity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
