// Package timing turns a tempo/meter/length request into the sample-accurate
// grid every later stage works against. A Config is computed once per request
// and never mutated afterwards.
package timing

import (
	"fmt"
	"math"
	"time"

	bferrors "github.com/dygy/beatforge/internal/errors"
)

const (
	// SampleRate is the fixed output rate for every render.
	SampleRate = 44100

	// StepsPerBeat fixes the grid resolution to sixteenth notes.
	StepsPerBeat = 4

	// SwingShift is the fraction of a step an off-beat sixteenth moves
	// forward per unit of swing ratio. Generators and the renderer both
	// read it, so the swing feel cannot drift between the two.
	SwingShift = 0.5

	MinTempo = 60
	MaxTempo = 200
)

// allowedBars is the set of valid bar counts, smallest first.
var allowedBars = []int{1, 2, 4, 8}

// Config is the immutable grid descriptor for one generation request.
type Config struct {
	TempoBPM      float64
	TimeSignature string // "4/4" or "3/4"
	BeatsPerBar   int
	StepsPerBar   int
	BarCount      int
	TotalSteps    int
	SampleRate    int
	TotalSamples  int
	Style         string
	Rules         StyleRules
}

// New validates the request parameters and derives the grid. It is pure and
// total for valid inputs; the only failure modes are out-of-range values.
func New(tempoBPM float64, timeSignature string, barCount int, style string) (*Config, error) {
	if tempoBPM < MinTempo || tempoBPM > MaxTempo {
		return nil, bferrors.NewConfigError("bpm", fmt.Sprintf("%g", tempoBPM),
			fmt.Sprintf("must be between %d and %d", MinTempo, MaxTempo), bferrors.ErrInvalidTempo)
	}

	var beatsPerBar int
	switch timeSignature {
	case "4/4":
		beatsPerBar = 4
	case "3/4":
		beatsPerBar = 3
	default:
		return nil, bferrors.NewConfigError("time_signature", timeSignature,
			"must be 4/4 or 3/4", bferrors.ErrInvalidTimeSignature)
	}

	if !validBarCount(barCount) {
		return nil, bferrors.NewConfigError("bar_count", fmt.Sprintf("%d", barCount),
			"must be 1, 2, 4 or 8", bferrors.ErrInvalidBarCount)
	}

	styleName := ParseStyle(style)
	rules := styleTable[styleName]

	stepsPerBar := beatsPerBar * StepsPerBeat
	totalSteps := stepsPerBar * barCount
	stepMs := (60000.0 / tempoBPM) / StepsPerBeat
	totalMs := stepMs * float64(totalSteps)
	totalSamples := int(math.Round(SampleRate * totalMs / 1000.0))

	return &Config{
		TempoBPM:      tempoBPM,
		TimeSignature: timeSignature,
		BeatsPerBar:   beatsPerBar,
		StepsPerBar:   stepsPerBar,
		BarCount:      barCount,
		TotalSteps:    totalSteps,
		SampleRate:    SampleRate,
		TotalSamples:  totalSamples,
		Style:         styleName,
		Rules:         rules,
	}, nil
}

func validBarCount(n int) bool {
	for _, b := range allowedBars {
		if n == b {
			return true
		}
	}
	return false
}

// AllowedBarCounts returns the valid bar counts in ascending order.
func AllowedBarCounts() []int {
	out := make([]int, len(allowedBars))
	copy(out, allowedBars)
	return out
}

// StepDuration returns the length of one sixteenth-note step in seconds.
func (c *Config) StepDuration() float64 {
	return (60.0 / c.TempoBPM) / StepsPerBeat
}

// StepLen returns the width of one step on the normalized [0,1) scale.
func (c *Config) StepLen() float64 {
	return 1.0 / float64(c.TotalSteps)
}

// StepPosition returns the normalized position of a grid step.
func (c *Config) StepPosition(step int) float64 {
	return float64(step) / float64(c.TotalSteps)
}

// ExpectedDuration returns the target render length.
func (c *Config) ExpectedDuration() time.Duration {
	seconds := float64(c.TotalSamples) / float64(c.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// ExpectedSeconds returns the target render length in seconds.
func (c *Config) ExpectedSeconds() float64 {
	return float64(c.TotalSamples) / float64(c.SampleRate)
}

// IsOffbeatSixteenth reports whether a step is the 2nd or 4th sixteenth of
// its beat, the subdivisions swing pushes forward.
func (c *Config) IsOffbeatSixteenth(step int) bool {
	within := step % StepsPerBeat
	return within == 1 || within == 3
}
