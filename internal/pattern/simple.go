package pattern

import (
	"github.com/dygy/beatforge/internal/rng"
	"github.com/dygy/beatforge/internal/timing"
)

// rolePattern is one row of a style's rhythm table: the steps a role always
// plays within a bar, plus the secondary steps the seeded RNG may add.
type rolePattern struct {
	role      string
	steps     []int
	secondary []int
	velScale  float64
}

// simpleTable encodes 2-4 canonical roles per style on the sixteenth grid.
// Step indices are within-bar; steps beyond a 3/4 bar are skipped.
var simpleTable = map[string][]rolePattern{
	"house": {
		{role: "kick", steps: []int{0, 4, 8, 12}, velScale: 1.0},
		{role: "clap", steps: []int{4, 12}, velScale: 0.9},
		{role: "hihat", steps: []int{2, 6, 10, 14}, secondary: []int{1, 3, 5, 7, 9, 11, 13, 15}, velScale: 0.7},
	},
	"techno": {
		{role: "kick", steps: []int{0, 4, 8, 12}, velScale: 1.0},
		{role: "snare", steps: []int{4, 12}, velScale: 0.85},
		{role: "hihat", steps: []int{2, 6, 10, 14}, secondary: []int{0, 4, 8, 12}, velScale: 0.75},
		{role: "openhat", steps: []int{2, 10}, velScale: 0.6},
	},
	"hiphop": {
		{role: "kick", steps: []int{0, 7, 10}, secondary: []int{3, 13}, velScale: 1.0},
		{role: "snare", steps: []int{4, 12}, secondary: []int{15}, velScale: 0.9},
		{role: "hihat", steps: []int{0, 2, 4, 6, 8, 10, 12, 14}, secondary: []int{3, 7, 11, 15}, velScale: 0.65},
	},
	"trap": {
		{role: "kick", steps: []int{0, 6, 10}, secondary: []int{3, 12}, velScale: 1.0},
		{role: "snare", steps: []int{8}, secondary: []int{14}, velScale: 0.9},
		{role: "hihat", steps: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, velScale: 0.55},
	},
	"lofi": {
		{role: "kick", steps: []int{0, 10}, secondary: []int{6}, velScale: 1.0},
		{role: "snare", steps: []int{4, 12}, velScale: 0.8},
		{role: "hihat", steps: []int{0, 4, 8, 12}, secondary: []int{2, 6, 10, 14}, velScale: 0.6},
	},
	"jazz": {
		{role: "ride", steps: []int{0, 4, 6, 8, 12, 14}, velScale: 0.85},
		{role: "kick", steps: []int{0}, secondary: []int{8, 11}, velScale: 0.75},
		{role: "snare", steps: []int{}, secondary: []int{3, 6, 9, 13}, velScale: 0.7},
		{role: "hihat", steps: []int{4, 12}, velScale: 0.65},
	},
	"funk": {
		{role: "kick", steps: []int{0, 6, 10}, secondary: []int{3, 14}, velScale: 1.0},
		{role: "snare", steps: []int{4, 12}, secondary: []int{7, 9, 15}, velScale: 0.9},
		{role: "hihat", steps: []int{0, 2, 4, 6, 8, 10, 12, 14}, secondary: []int{1, 5, 9, 13}, velScale: 0.7},
	},
	"rock": {
		{role: "kick", steps: []int{0, 8}, secondary: []int{10}, velScale: 1.0},
		{role: "snare", steps: []int{4, 12}, velScale: 0.95},
		{role: "hihat", steps: []int{0, 2, 4, 6, 8, 10, 12, 14}, velScale: 0.75},
	},
	"pop": {
		{role: "kick", steps: []int{0, 8}, secondary: []int{6}, velScale: 1.0},
		{role: "clap", steps: []int{4, 12}, velScale: 0.85},
		{role: "hihat", steps: []int{0, 4, 8, 12}, secondary: []int{2, 6, 10, 14}, velScale: 0.7},
	},
	"ambient": {
		{role: "kick", steps: []int{0}, secondary: []int{8}, velScale: 0.9},
		{role: "shaker", steps: []int{4, 12}, secondary: []int{2, 6, 10, 14}, velScale: 0.5},
	},
}

// velocityJitter is the small random spread applied to every hit.
const velocityJitter = 0.05

// Simple is the table-driven rhythmic source: fixed primary steps per role,
// density-gated secondary steps, velocity jitter. Positions stay exactly on
// the grid; the renderer owns swing.
type Simple struct{}

// NewSimple creates the simple rhythmic generator.
func NewSimple() *Simple {
	return &Simple{}
}

// Generate produces the pattern for the full bar count. Deterministic for a
// given seed.
func (g *Simple) Generate(cfg *timing.Config, src *rng.Source) *Pattern {
	rows, ok := simpleTable[cfg.Style]
	if !ok {
		rows = simpleTable["house"]
	}

	p := &Pattern{
		Meta: Metadata{
			Style:      cfg.Style,
			Complexity: complexityLevels["simple"],
			Layers:     []string{"core"},
		},
	}

	rules := cfg.Rules
	for bar := 0; bar < cfg.BarCount; bar++ {
		for _, row := range rows {
			for _, step := range row.steps {
				if step >= cfg.StepsPerBar {
					continue
				}
				p.Events = append(p.Events, g.hit(cfg, src, bar, step, row, false))
			}
			for _, step := range row.secondary {
				if step >= cfg.StepsPerBar {
					continue
				}
				prob := rules.Density
				if onAccent(step, rules.AccentSteps) {
					prob *= 1.5
				}
				if !src.Chance(prob) {
					continue
				}
				ghost := src.Chance(rules.GhostProb)
				p.Events = append(p.Events, g.hit(cfg, src, bar, step, row, ghost))
			}
		}
	}

	p.Sort()
	return p
}

func (g *Simple) hit(cfg *timing.Config, src *rng.Source, bar, step int, row rolePattern, ghost bool) Event {
	vel := clampVelocity(cfg.Rules.BaseVelocity*row.velScale + src.Jitter(velocityJitter))
	return Event{
		Position: cfg.StepPosition(bar*cfg.StepsPerBar + step),
		Velocity: vel,
		Note:     RoleNote(row.role),
		Ghost:    ghost,
		Layer:    "core",
	}
}

func onAccent(step int, accents []int) bool {
	for _, a := range accents {
		if step == a {
			return true
		}
	}
	return false
}
