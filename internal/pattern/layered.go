package pattern

import (
	"github.com/dygy/beatforge/internal/rng"
	"github.com/dygy/beatforge/internal/timing"
)

// Layer inclusion thresholds. A layer is built only when the request's
// complexity level reaches its threshold; the core skeleton is always
// present.
const (
	grooveThreshold     = 0.5
	polyrhythmThreshold = 0.75
	fillProbability     = 0.6 // per phrase-boundary opportunity
	phraseBars          = 2
)

// Layered builds a pattern as ordered layers: core skeleton, groove
// syncopation, polyrhythm, periodic variation fills, then an FX pass that
// applies swing and humanization to the merged events.
type Layered struct {
	complexity string
}

// NewLayered creates the layered rhythmic generator.
func NewLayered(complexity string) *Layered {
	return &Layered{complexity: complexity}
}

// Generate runs the layer stack. Deterministic for a given seed.
func (g *Layered) Generate(cfg *timing.Config, src *rng.Source) *Pattern {
	level := ParseComplexity(g.complexity, cfg.Rules)

	p := &Pattern{
		Meta: Metadata{
			Style:      cfg.Style,
			Complexity: level,
			Layers:     []string{"core"},
		},
	}

	g.coreLayer(p, cfg, src)

	if level >= grooveThreshold {
		g.grooveLayer(p, cfg, src)
		p.Meta.Layers = append(p.Meta.Layers, "groove")
	}
	if level >= polyrhythmThreshold {
		g.polyrhythmLayer(p, cfg, src)
		p.Meta.Layers = append(p.Meta.Layers, "polyrhythm")
	}
	g.variationLayer(p, cfg, src, level)
	g.fxPass(p, cfg, src)

	p.Sort()
	return p
}

// coreLayer lays down the primary kick/snare skeleton from the style's
// rhythm table.
func (g *Layered) coreLayer(p *Pattern, cfg *timing.Config, src *rng.Source) {
	rows, ok := simpleTable[cfg.Style]
	if !ok {
		rows = simpleTable["house"]
	}

	for bar := 0; bar < cfg.BarCount; bar++ {
		for _, row := range rows {
			if row.role != "kick" && row.role != "snare" && row.role != "clap" && row.role != "ride" {
				continue
			}
			for _, step := range row.steps {
				if step >= cfg.StepsPerBar {
					continue
				}
				vel := clampVelocity(cfg.Rules.BaseVelocity*row.velScale + src.Jitter(velocityJitter))
				p.Events = append(p.Events, Event{
					Position: cfg.StepPosition(bar*cfg.StepsPerBar + step),
					Velocity: vel,
					Note:     RoleNote(row.role),
					Layer:    "core",
				})
			}
		}
	}
}

// grooveLayer adds off-beat and syncopated secondary hits, density-gated.
func (g *Layered) grooveLayer(p *Pattern, cfg *timing.Config, src *rng.Source) {
	rules := cfg.Rules
	for bar := 0; bar < cfg.BarCount; bar++ {
		for step := 0; step < cfg.StepsPerBar; step++ {
			if !cfg.IsOffbeatSixteenth(step) && step%timing.StepsPerBeat != 2 {
				continue
			}
			prob := rules.Density
			if onAccent(step, rules.AccentSteps) {
				prob *= 1.3
			}
			if !src.Chance(prob) {
				continue
			}
			role := "hihat"
			if cfg.IsOffbeatSixteenth(step) && src.Chance(0.2) {
				role = "openhat"
			}
			ghost := src.Chance(rules.GhostProb)
			p.Events = append(p.Events, Event{
				Position: cfg.StepPosition(bar*cfg.StepsPerBar + step),
				Velocity: clampVelocity(rules.BaseVelocity*0.7 + src.Jitter(velocityJitter)),
				Note:     RoleNote(role),
				Ghost:    ghost,
				Layer:    "groove",
			})
		}
	}
}

// polyrhythmLayer lays a contrasting dotted-eighth subdivision over the
// sixteenth grid.
func (g *Layered) polyrhythmLayer(p *Pattern, cfg *timing.Config, src *rng.Source) {
	for step := 0; step < cfg.TotalSteps; step += 3 {
		if !src.Chance(0.8) {
			continue
		}
		role := "shaker"
		if src.Chance(0.25) {
			role = "tom"
		}
		p.Events = append(p.Events, Event{
			Position: cfg.StepPosition(step),
			Velocity: clampVelocity(cfg.Rules.BaseVelocity*0.55 + src.Jitter(velocityJitter)),
			Note:     RoleNote(role),
			Ghost:    true,
			Layer:    "polyrhythm",
		})
	}
}

// variationLayer inserts snare fills over the last beat of every second bar.
// Each phrase boundary is an independent fixed-probability opportunity.
func (g *Layered) variationLayer(p *Pattern, cfg *timing.Config, src *rng.Source, level float64) {
	if cfg.BarCount < phraseBars {
		return
	}
	added := false
	for bar := phraseBars - 1; bar < cfg.BarCount; bar += phraseBars {
		if !src.Chance(fillProbability) {
			continue
		}
		added = true
		fillStart := cfg.StepsPerBar - timing.StepsPerBeat
		for step := fillStart; step < cfg.StepsPerBar; step++ {
			// denser fills at higher complexity
			if step%2 == 1 && level < 0.8 {
				continue
			}
			ramp := float64(step-fillStart) / float64(timing.StepsPerBeat)
			p.Events = append(p.Events, Event{
				Position: cfg.StepPosition(bar*cfg.StepsPerBar + step),
				Velocity: clampVelocity(cfg.Rules.BaseVelocity*(0.6+0.4*ramp) + src.Jitter(velocityJitter)),
				Note:     RoleNote("snare"),
				Layer:    "variation",
			})
		}
	}
	if added {
		p.Meta.Layers = append(p.Meta.Layers, "variation")
	}
}

// fxPass applies the style's swing offset and humanization jitter uniformly
// to the merged events, then clamps everything back onto [0,1). Because
// this moves events off the exact grid, the renderer's own swing resolution
// leaves them alone.
func (g *Layered) fxPass(p *Pattern, cfg *timing.Config, src *rng.Source) {
	rules := cfg.Rules
	stepLen := cfg.StepLen()

	for i := range p.Events {
		e := &p.Events[i]
		step := int(e.Position*float64(cfg.TotalSteps) + 0.5)
		if rules.SwingRatio > 0 && cfg.IsOffbeatSixteenth(step%cfg.StepsPerBar) {
			e.Position += rules.SwingRatio * timing.SwingShift * stepLen
		}
		if rules.Humanization > 0 {
			e.Position += src.Jitter(rules.Humanization * stepLen * 0.5)
			e.Velocity = clampVelocity(e.Velocity + src.Jitter(rules.Humanization*0.1))
		}
		e.Position = clampPosition(e.Position)
	}
	p.Meta.Layers = append(p.Meta.Layers, "fx")
}
