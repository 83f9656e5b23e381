// Package render mixes a resolved pattern into a single mono float buffer
// and masters it. Mixing is strictly additive: no event ever overwrites
// another's contribution.
package render

import (
	"math"

	"github.com/dygy/beatforge/internal/pattern"
	"github.com/dygy/beatforge/internal/resolver"
	"github.com/dygy/beatforge/internal/samples"
	"github.com/dygy/beatforge/internal/timing"
)

// Settings groups the mixing and mastering constants. The defaults come
// from listening, not derivation, so they stay tunable instead of baked in.
type Settings struct {
	VelocityExponent float64 // gain = velocity^(1/exponent)
	GhostGain        float64 // extra attenuation for ghost notes
	FadeSamples      int     // linear fade-in/out length per event
	SwingShift       float64 // fraction of a step per unit of swing ratio, timing.SwingShift unless retuned
	KneeThreshold    float64 // limiter engages above this level
	KneeHardness     float64 // k in the soft-knee curve
	TargetHeadroom   float64 // post-normalize peak level
	SilenceRMS       float64 // below this the render is reported near-silent
}

// DefaultSettings returns the standard mix constants.
func DefaultSettings() Settings {
	return Settings{
		VelocityExponent: 2.0,
		GhostGain:        0.3,
		FadeSamples:      64,
		SwingShift:       timing.SwingShift,
		KneeThreshold:    0.95,
		KneeHardness:     4.0,
		TargetHeadroom:   0.8,
		SilenceRMS:       1e-4,
	}
}

// onGridEpsilon decides whether an event position still sits exactly on a
// grid step. Generators that pre-apply swing or humanization move events
// past this tolerance, so the renderer's swing pass leaves them alone.
const onGridEpsilon = 1e-6

// Renderer converts resolved patterns into audio buffers. It shares the
// decode cache with the resolver, so samples the resolver already verified
// are served without touching disk again.
type Renderer struct {
	cache    *samples.Cache
	settings Settings
}

// New creates a renderer over the shared decode cache.
func New(cache *samples.Cache, settings Settings) *Renderer {
	return &Renderer{cache: cache, settings: settings}
}

// Render mixes every resolvable event into a buffer of cfg.TotalSamples
// frames. Events whose note id has no mapping are dropped, never fatal.
func (r *Renderer) Render(p *pattern.Pattern, cfg *timing.Config, res *resolver.Resolution) ([]float64, error) {
	buf := make([]float64, cfg.TotalSamples)

	sorted := pattern.Pattern{Events: make([]pattern.Event, len(p.Events))}
	copy(sorted.Events, p.Events)
	sorted.Sort()

	for _, e := range sorted.Events {
		mapped, ok := res.Notes[e.Note]
		if !ok {
			continue
		}
		asset, err := r.cache.Get(mapped.Sample.Path)
		if err != nil {
			// the resolver verified this decodes; a failure here means the
			// file changed underneath us, so skip the event
			continue
		}

		pos := r.swungPosition(e.Position, cfg)
		start := int(math.Round(pos * float64(cfg.TotalSamples)))
		if start < 0 {
			start = 0
		}
		if start > cfg.TotalSamples-1 {
			start = cfg.TotalSamples - 1
		}

		gain := math.Pow(e.Velocity, 1.0/r.settings.VelocityExponent)
		if e.Ghost {
			gain *= r.settings.GhostGain
		}

		r.mix(buf, asset.Data, start, gain)
	}
	return buf, nil
}

// swungPosition applies the style's swing offset to events that still sit
// exactly on an off-beat sixteenth. Off-grid events already carry their
// feel and pass through unchanged.
func (r *Renderer) swungPosition(pos float64, cfg *timing.Config) float64 {
	if cfg.Rules.SwingRatio <= 0 {
		return pos
	}
	exact := pos * float64(cfg.TotalSteps)
	step := int(math.Round(exact))
	if math.Abs(exact-float64(step)) > onGridEpsilon {
		return pos
	}
	if !cfg.IsOffbeatSixteenth(step % cfg.StepsPerBar) {
		return pos
	}
	out := pos + cfg.Rules.SwingRatio*r.settings.SwingShift*cfg.StepLen()
	if out >= 1 {
		out = math.Nextafter(1, 0)
	}
	return out
}

// mix additively accumulates one gained sample into the buffer starting at
// start, fading the first and last FadeSamples frames of the written region
// to avoid clicks and truncating at the buffer end.
func (r *Renderer) mix(buf, data []float64, start int, gain float64) {
	n := len(data)
	if start+n > len(buf) {
		n = len(buf) - start
	}
	if n <= 0 {
		return
	}

	fade := r.settings.FadeSamples
	if fade > n/2 {
		fade = n / 2
	}

	for i := 0; i < n; i++ {
		v := data[i] * gain
		if i < fade {
			v *= float64(i) / float64(fade)
		}
		if i >= n-fade {
			v *= float64(n-i) / float64(fade)
		}
		buf[start+i] += v
	}
}
