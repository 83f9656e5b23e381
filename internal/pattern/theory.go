package pattern

import "strconv"

// Shared music-theory tables: the chromatic scale, modal interval sets,
// chord shapes, and the General MIDI pitches behind each drum role.

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// RoleGMPitch maps drum roles to their General MIDI percussion pitches.
var RoleGMPitch = map[string]int{
	"kick":    36,
	"snare":   38,
	"clap":    39,
	"rimshot": 37,
	"hihat":   42,
	"openhat": 46,
	"tom":     45,
	"ride":    51,
	"crash":   49,
	"shaker":  70,
	"cowbell": 56,
}

// DrumRoles lists the roles in a fixed order for deterministic iteration.
var DrumRoles = []string{
	"kick", "snare", "clap", "rimshot", "hihat", "openhat",
	"tom", "ride", "crash", "shaker", "cowbell",
}

// modal scales as semitone offsets from the root
var modes = map[string][]int{
	"ionian":     {0, 2, 4, 5, 7, 9, 11},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"phrygian":   {0, 1, 3, 5, 7, 8, 10},
	"lydian":     {0, 2, 4, 6, 7, 9, 11},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"aeolian":    {0, 2, 3, 5, 7, 8, 10},
	"locrian":    {0, 1, 3, 5, 6, 8, 10},
}

// chordShape is a set of semitone offsets stacked on a chord root.
type chordShape []int

var chordShapes = map[string]chordShape{
	"maj":  {0, 4, 7},
	"min":  {0, 3, 7},
	"dim":  {0, 3, 6},
	"sus2": {0, 2, 7},
	"sus4": {0, 5, 7},
	"maj7": {0, 4, 7, 11},
	"min7": {0, 3, 7, 10},
	"dom7": {0, 4, 7, 10},
	"min9": {0, 3, 7, 10, 14},
}

// ScaleDegreePitch returns the pitch of a scale degree (0-based, octave
// wrapping upward) in the given mode rooted at root.
func ScaleDegreePitch(root int, mode string, degree int) int {
	intervals, ok := modes[mode]
	if !ok {
		intervals = modes["aeolian"]
	}
	octave := degree / len(intervals)
	idx := degree % len(intervals)
	if idx < 0 {
		idx += len(intervals)
		octave--
	}
	return root + octave*12 + intervals[idx]
}

// ChordPitches builds a chord from a root pitch and a shape name. Unknown
// shapes get a minor triad, the most forgiving default over modal roots.
func ChordPitches(root int, shape string) []int {
	offsets, ok := chordShapes[shape]
	if !ok {
		offsets = chordShapes["min"]
	}
	pitches := make([]int, len(offsets))
	for i, o := range offsets {
		pitches[i] = root + o
	}
	return pitches
}

// ClampPitch moves an out-of-range pitch to the nearest register bound.
// Out-of-range notes clamp rather than wrap so the contour survives.
func ClampPitch(pitch, lo, hi int) int {
	if pitch < lo {
		return lo
	}
	if pitch > hi {
		return hi
	}
	return pitch
}

// FitToRegister octave-shifts a pitch into [lo, hi], clamping only when no
// octave of the pitch class fits.
func FitToRegister(pitch, lo, hi int) int {
	for pitch < lo {
		pitch += 12
	}
	for pitch > hi {
		pitch -= 12
	}
	return ClampPitch(pitch, lo, hi)
}

// PitchName formats a MIDI pitch as a note name with octave, for metadata
// and diagnostics.
func PitchName(pitch int) string {
	if pitch < 0 {
		pitch = 0
	}
	octave := pitch/12 - 1
	name := noteNames[pitch%12]
	return name + strconv.Itoa(octave)
}
