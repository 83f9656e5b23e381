package pattern

import (
	"strings"

	"github.com/dygy/beatforge/internal/rng"
	"github.com/dygy/beatforge/internal/timing"
)

// Play modes for melodic patterns.
const (
	PlayModeChord  = "chord"
	PlayModeStrum  = "strum"
	PlayModeRhythm = "rhythm"
	PlayModeMix    = "mix"
	PlayModeAuto   = "auto"
)

// PlayModes lists the selectable modes.
func PlayModes() []string {
	return []string{PlayModeChord, PlayModeStrum, PlayModeRhythm, PlayModeMix, PlayModeAuto}
}

// register is an instrument's playable pitch range and root octave.
type register struct {
	lo, hi int
	root   int // base pitch for chord roots
}

var registers = map[string]register{
	"bass":     {lo: 28, hi: 55, root: 36}, // E1..G3
	"guitar":   {lo: 40, hi: 76, root: 52}, // E2..E5
	"keyboard": {lo: 36, hi: 84, root: 48}, // C2..C6
	"synth":    {lo: 36, hi: 96, root: 48}, // C2..C7
}

// chordDegree is one chord of a progression: a scale degree plus a shape.
type chordDegree struct {
	degree int
	shape  string
}

type progression []chordDegree

// progressionTable holds seed-indexed progressions per style; the first
// entry is the canonical one and wins any tie.
var progressionTable = map[string][]progression{
	"house": {
		{{0, "min7"}, {5, "maj"}, {2, "min"}, {6, "maj"}},
		{{0, "min"}, {3, "maj"}, {4, "min7"}, {5, "maj"}},
	},
	"techno": {
		{{0, "min"}, {0, "min"}, {5, "maj"}, {4, "min"}},
	},
	"hiphop": {
		{{0, "min7"}, {3, "maj7"}, {4, "min7"}, {0, "min7"}},
		{{0, "min"}, {5, "maj"}, {3, "maj"}, {4, "min"}},
	},
	"trap": {
		{{0, "min"}, {2, "min"}, {5, "maj"}, {0, "min"}},
	},
	"lofi": {
		{{0, "min7"}, {3, "maj7"}, {5, "maj7"}, {4, "min7"}},
		{{0, "min9"}, {2, "min7"}, {3, "maj7"}, {4, "dom7"}},
	},
	"jazz": {
		{{1, "min7"}, {4, "dom7"}, {0, "maj7"}, {0, "maj7"}},
		{{0, "maj7"}, {5, "min7"}, {1, "min7"}, {4, "dom7"}},
	},
	"funk": {
		{{0, "dom7"}, {0, "dom7"}, {3, "dom7"}, {0, "dom7"}},
		{{0, "min7"}, {3, "dom7"}, {0, "min7"}, {4, "dom7"}},
	},
	"rock": {
		{{0, "maj"}, {4, "maj"}, {5, "min"}, {3, "maj"}},
		{{0, "maj"}, {3, "maj"}, {4, "maj"}, {3, "maj"}},
	},
	"pop": {
		{{0, "maj"}, {4, "maj"}, {5, "min"}, {3, "maj"}},
	},
	"ambient": {
		{{0, "sus2"}, {3, "maj7"}, {5, "sus2"}, {4, "min7"}},
	},
}

// modeTable holds the modal scales each style draws from.
var modeTable = map[string][]string{
	"house":   {"aeolian", "dorian"},
	"techno":  {"phrygian", "aeolian"},
	"hiphop":  {"dorian", "aeolian"},
	"trap":    {"phrygian", "aeolian"},
	"lofi":    {"dorian", "mixolydian"},
	"jazz":    {"ionian", "dorian", "mixolydian"},
	"funk":    {"mixolydian", "dorian"},
	"rock":    {"ionian", "mixolydian"},
	"pop":     {"ionian"},
	"ambient": {"lydian", "aeolian"},
}

// linePattern is a hand-written single-line micro-pattern: within-bar steps
// and, per step, a semitone interval above the chord root.
type linePattern struct {
	steps     []int
	intervals []int
}

// lineTable keys micro-patterns by "style/instrument" with style-only and
// bare-instrument fallbacks.
var lineTable = map[string]linePattern{
	"funk/bass":   {steps: []int{0, 3, 6, 10, 12, 14}, intervals: []int{0, 0, 7, 10, 12, 7}},
	"funk/guitar": {steps: []int{2, 4, 6, 10, 12, 14}, intervals: []int{12, 10, 7, 12, 10, 7}},
	"house/bass":  {steps: []int{0, 4, 8, 12}, intervals: []int{0, 0, 0, 12}},
	"hiphop/bass": {steps: []int{0, 7, 10}, intervals: []int{0, 7, 5}},
	"lofi/bass":   {steps: []int{0, 10}, intervals: []int{0, 7}},
	"jazz/bass":   {steps: []int{0, 4, 8, 12}, intervals: []int{0, 4, 7, 10}},
	"rock/guitar": {steps: []int{0, 4, 8, 12}, intervals: []int{0, 0, 7, 0}},
	"bass":        {steps: []int{0, 8}, intervals: []int{0, 7}},
	"guitar":      {steps: []int{0, 8}, intervals: []int{0, 12}},
	"default":     {steps: []int{0, 4, 8, 12}, intervals: []int{0, 7, 12, 7}},
}

// Melodic generates chord-based patterns with integer-pitch note ids.
type Melodic struct {
	instrument string
	complexity string
	playMode   string
}

// NewMelodic creates the melodic generator. Instrument names are normalized
// here; "piano" plays through the keyboard register.
func NewMelodic(instrument, complexity, playMode string) *Melodic {
	inst := strings.ToLower(strings.TrimSpace(instrument))
	if inst == "piano" {
		inst = "keyboard"
	}
	if _, ok := registers[inst]; !ok {
		inst = "keyboard"
	}
	if playMode == "" {
		playMode = PlayModeAuto
	}
	return &Melodic{instrument: inst, complexity: complexity, playMode: playMode}
}

// Generate renders the progression. Deterministic for a given seed.
func (g *Melodic) Generate(cfg *timing.Config, src *rng.Source) *Pattern {
	level := ParseComplexity(g.complexity, cfg.Rules)
	reg := registers[g.instrument]

	prog := pickProgression(cfg.Style, src)
	mode := pickMode(cfg.Style, src)
	rootPitch := reg.root + src.IntN(12)

	playMode := g.playMode
	if playMode == PlayModeAuto {
		modes := []string{PlayModeChord, PlayModeStrum, PlayModeRhythm, PlayModeMix}
		playMode = modes[src.IntN(len(modes))]
	}

	p := &Pattern{
		Meta: Metadata{
			Style:      cfg.Style,
			Complexity: level,
			Layers:     []string{playMode},
		},
	}

	for bar := 0; bar < cfg.BarCount; bar++ {
		chord := prog[bar%len(prog)]
		chordRoot := ScaleDegreePitch(rootPitch, mode, chord.degree)
		voicing := g.voice(chordRoot, chord.shape, reg, level)

		barMode := playMode
		if playMode == PlayModeMix {
			barMode = []string{PlayModeChord, PlayModeStrum, PlayModeRhythm}[bar%3]
		}

		switch barMode {
		case PlayModeChord:
			g.emitChord(p, cfg, src, bar, voicing, 0)
		case PlayModeStrum:
			g.emitStrum(p, cfg, src, bar, voicing)
		default:
			g.emitLine(p, cfg, src, bar, chordRoot, reg, level)
		}
	}

	p.Sort()
	return p
}

// voice builds the register-adjusted chord voicing. Sevenths only appear at
// complex and above.
func (g *Melodic) voice(chordRoot int, shape string, reg register, level float64) []int {
	if level < 0.8 {
		switch shape {
		case "maj7", "dom7":
			shape = "maj"
		case "min7", "min9":
			shape = "min"
		}
	}
	pitches := ChordPitches(chordRoot, shape)
	voiced := make([]int, len(pitches))
	for i, pitch := range pitches {
		voiced[i] = FitToRegister(pitch, reg.lo, reg.hi)
	}
	return voiced
}

// emitChord places every chord tone at the same onset with the same
// velocity.
func (g *Melodic) emitChord(p *Pattern, cfg *timing.Config, src *rng.Source, bar int, voicing []int, offset float64) {
	pos := clampPosition(cfg.StepPosition(bar*cfg.StepsPerBar) + offset)
	vel := clampVelocity(cfg.Rules.BaseVelocity + src.Jitter(velocityJitter))
	for _, pitch := range voicing {
		p.Events = append(p.Events, Event{
			Position:  pos,
			Velocity:  vel,
			Note:      PitchNote(pitch),
			Layer:     "melodic",
			Technique: "chord",
		})
	}
}

// emitStrum plays the same voicing with a 5-30 ms stagger per string.
func (g *Melodic) emitStrum(p *Pattern, cfg *timing.Config, src *rng.Source, bar int, voicing []int) {
	staggerSec := src.Range(0.005, 0.030)
	staggerNorm := staggerSec / cfg.ExpectedSeconds()
	base := cfg.StepPosition(bar * cfg.StepsPerBar)
	vel := clampVelocity(cfg.Rules.BaseVelocity + src.Jitter(velocityJitter))
	for i, pitch := range voicing {
		p.Events = append(p.Events, Event{
			Position:  clampPosition(base + float64(i)*staggerNorm),
			Velocity:  vel,
			Note:      PitchNote(pitch),
			Layer:     "melodic",
			Technique: "strum",
		})
	}
}

// emitLine plays the instrument's micro-pattern over the chord root, shaped
// by the per-bar dynamic arc: intensity and fill density rise toward the
// climax bar and fall off afterward.
func (g *Melodic) emitLine(p *Pattern, cfg *timing.Config, src *rng.Source, bar, chordRoot int, reg register, level float64) {
	line := lookupLine(cfg.Style, g.instrument)
	intensity := barIntensity(bar, cfg.BarCount)

	for i, step := range line.steps {
		if step >= cfg.StepsPerBar {
			continue
		}
		pitch := FitToRegister(chordRoot+line.intervals[i], reg.lo, reg.hi)
		vel := clampVelocity(cfg.Rules.BaseVelocity*(0.75+0.25*intensity) + src.Jitter(velocityJitter))
		ghost := src.Chance(cfg.Rules.GhostProb * 0.5)
		p.Events = append(p.Events, Event{
			Position:  cfg.StepPosition(bar*cfg.StepsPerBar + step),
			Velocity:  vel,
			Note:      PitchNote(pitch),
			Ghost:     ghost,
			Layer:     "melodic",
			Technique: "line",
		})
	}

	// passing notes fill in around the climax
	fillProb := intensity * 0.5 * level
	for step := 0; step < cfg.StepsPerBar; step++ {
		if !cfg.IsOffbeatSixteenth(step) || !src.Chance(fillProb) {
			continue
		}
		pitch := FitToRegister(chordRoot+7, reg.lo, reg.hi)
		p.Events = append(p.Events, Event{
			Position:  cfg.StepPosition(bar*cfg.StepsPerBar + step),
			Velocity:  clampVelocity(cfg.Rules.BaseVelocity * 0.6),
			Note:      PitchNote(pitch),
			Ghost:     true,
			Layer:     "melodic",
			Technique: "fill",
		})
	}
}

// barIntensity is the dynamic arc: rises to a climax around 70% of the way
// through, then falls off.
func barIntensity(bar, barCount int) float64 {
	if barCount <= 1 {
		return 1
	}
	climax := float64(barCount-1) * 0.7
	span := climax
	if float64(barCount-1)-climax > span {
		span = float64(barCount-1) - climax
	}
	if span == 0 {
		return 1
	}
	d := float64(bar) - climax
	if d < 0 {
		d = -d
	}
	return 1 - d/span
}

func pickProgression(style string, src *rng.Source) progression {
	progs, ok := progressionTable[style]
	if !ok {
		progs = progressionTable["house"]
	}
	return progs[src.IntN(len(progs))]
}

func pickMode(style string, src *rng.Source) string {
	names, ok := modeTable[style]
	if !ok {
		names = modeTable["house"]
	}
	return names[src.IntN(len(names))]
}

func lookupLine(style, instrument string) linePattern {
	if line, ok := lineTable[style+"/"+instrument]; ok {
		return line
	}
	if line, ok := lineTable[instrument]; ok {
		return line
	}
	return lineTable["default"]
}
