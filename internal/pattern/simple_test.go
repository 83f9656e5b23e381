package pattern

import (
	"math"
	"testing"

	"github.com/dygy/beatforge/internal/rng"
	"github.com/dygy/beatforge/internal/timing"
)

func mustConfig(t *testing.T, bpm float64, sig string, bars int, style string) *timing.Config {
	t.Helper()
	cfg, err := timing.New(bpm, sig, bars, style)
	if err != nil {
		t.Fatalf("timing.New: %v", err)
	}
	return cfg
}

func TestSimpleHouseKickPlacement(t *testing.T) {
	// bpm=120, 4/4, 1 bar, house, seed=42: four kicks on the quarter grid,
	// velocity 0.8 with at most 0.05 of jitter.
	cfg := mustConfig(t, 120, "4/4", 1, "house")
	p := NewSimple().Generate(cfg, rng.New("42"))

	var kicks []Event
	for _, e := range p.Events {
		if e.Note.Role == "kick" {
			kicks = append(kicks, e)
		}
	}

	wantPositions := []float64{0, 0.25, 0.5, 0.75}
	if len(kicks) != len(wantPositions) {
		t.Fatalf("got %d kicks, want %d", len(kicks), len(wantPositions))
	}
	for i, k := range kicks {
		if k.Position != wantPositions[i] {
			t.Errorf("kick %d at %v, want %v", i, k.Position, wantPositions[i])
		}
		if math.Abs(k.Velocity-0.8) > 0.05+1e-9 {
			t.Errorf("kick %d velocity %v, want 0.8±0.05", i, k.Velocity)
		}
	}
}

func TestSimpleDeterminism(t *testing.T) {
	cfg := mustConfig(t, 120, "4/4", 4, "funk")

	a := NewSimple().Generate(cfg, rng.New("LateNight"))
	b := NewSimple().Generate(cfg, rng.New("LateNight"))

	assertSamePattern(t, a, b)
}

func TestSimpleEventsSortedAndInRange(t *testing.T) {
	for _, style := range timing.AvailableStyles() {
		t.Run(style, func(t *testing.T) {
			cfg := mustConfig(t, 120, "4/4", 2, style)
			p := NewSimple().Generate(cfg, rng.New("7"))

			assertWellFormed(t, p)
			if len(p.Events) == 0 {
				t.Error("pattern has no events")
			}
		})
	}
}

func TestSimpleThreeFourSkipsOutOfBarSteps(t *testing.T) {
	cfg := mustConfig(t, 120, "3/4", 1, "rock")
	p := NewSimple().Generate(cfg, rng.New("1"))

	for _, e := range p.Events {
		step := int(math.Round(e.Position * float64(cfg.TotalSteps)))
		if step >= cfg.TotalSteps {
			t.Errorf("event at step %d beyond grid of %d", step, cfg.TotalSteps)
		}
	}
	// The 16-step snare backbeat at step 12 does not exist in a 12-step bar.
	for _, e := range p.Events {
		if e.Note.Role == "snare" && e.Position >= 1 {
			t.Errorf("snare placed outside the bar at %v", e.Position)
		}
	}
}

func assertSamePattern(t *testing.T, a, b *Pattern) {
	t.Helper()
	if len(a.Events) != len(b.Events) {
		t.Fatalf("event counts differ: %d vs %d", len(a.Events), len(b.Events))
	}
	for i := range a.Events {
		if a.Events[i] != b.Events[i] {
			t.Fatalf("event %d differs: %+v vs %+v", i, a.Events[i], b.Events[i])
		}
	}
}

func assertWellFormed(t *testing.T, p *Pattern) {
	t.Helper()
	prev := -1.0
	for i, e := range p.Events {
		if e.Position < 0 || e.Position >= 1 {
			t.Errorf("event %d position %v outside [0,1)", i, e.Position)
		}
		if e.Velocity < 0 || e.Velocity > 1 {
			t.Errorf("event %d velocity %v outside [0,1]", i, e.Velocity)
		}
		if e.Position < prev {
			t.Errorf("event %d out of order: %v after %v", i, e.Position, prev)
		}
		prev = e.Position
	}
}
