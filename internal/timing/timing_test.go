package timing

import (
	"errors"
	"math"
	"testing"
	"time"

	bferrors "github.com/dygy/beatforge/internal/errors"
)

func TestNewGridMath(t *testing.T) {
	cases := []struct {
		name          string
		bpm           float64
		sig           string
		bars          int
		wantSteps     int
		wantStepsBar  int
		wantBeatsBar  int
		wantSeconds   float64
	}{
		{"house 4/4 1 bar", 120, "4/4", 1, 16, 16, 4, 2.0},
		{"lofi 4/4 2 bars", 75, "4/4", 2, 32, 16, 4, 3.2},
		{"waltz 3/4 4 bars", 90, "3/4", 4, 48, 12, 3, 8.0},
		{"fast 4/4 8 bars", 200, "4/4", 8, 128, 16, 4, 9.6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := New(tc.bpm, tc.sig, tc.bars, "house")
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if cfg.TotalSteps != tc.wantSteps {
				t.Errorf("TotalSteps = %d, want %d", cfg.TotalSteps, tc.wantSteps)
			}
			if cfg.StepsPerBar != tc.wantStepsBar {
				t.Errorf("StepsPerBar = %d, want %d", cfg.StepsPerBar, tc.wantStepsBar)
			}
			if cfg.BeatsPerBar != tc.wantBeatsBar {
				t.Errorf("BeatsPerBar = %d, want %d", cfg.BeatsPerBar, tc.wantBeatsBar)
			}
			if cfg.StepsPerBar != cfg.BeatsPerBar*StepsPerBeat {
				t.Error("StepsPerBar invariant violated")
			}

			// Duration must land within 1 ms of the musical duration.
			gotSeconds := cfg.ExpectedSeconds()
			if math.Abs(gotSeconds-tc.wantSeconds) > 0.001 {
				t.Errorf("duration = %.4fs, want %.4fs within 1ms", gotSeconds, tc.wantSeconds)
			}

			// TotalSamples must match the rounding rule exactly.
			stepMs := (60000.0 / tc.bpm) / StepsPerBeat
			want := int(math.Round(SampleRate * stepMs * float64(tc.wantSteps) / 1000.0))
			if cfg.TotalSamples != want {
				t.Errorf("TotalSamples = %d, want %d", cfg.TotalSamples, want)
			}
		})
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		bpm  float64
		sig  string
		bars int
		want error
	}{
		{"bpm too low", 40, "4/4", 1, bferrors.ErrInvalidTempo},
		{"bpm too high", 250, "4/4", 1, bferrors.ErrInvalidTempo},
		{"bad signature", 120, "7/8", 1, bferrors.ErrInvalidTimeSignature},
		{"bad bars", 120, "4/4", 3, bferrors.ErrInvalidBarCount},
		{"zero bars", 120, "4/4", 0, bferrors.ErrInvalidBarCount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.bpm, tc.sig, tc.bars, "house")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
			var cfgErr *bferrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Error("expected a ConfigError identifying the field")
			}
		})
	}
}

func TestStepHelpers(t *testing.T) {
	cfg, err := New(120, "4/4", 1, "house")
	if err != nil {
		t.Fatal(err)
	}

	if got := cfg.StepPosition(4); got != 0.25 {
		t.Errorf("StepPosition(4) = %v, want 0.25", got)
	}
	if got := cfg.StepDuration(); math.Abs(got-0.125) > 1e-9 {
		t.Errorf("StepDuration = %v, want 0.125", got)
	}
	if got := cfg.ExpectedDuration(); got != 2*time.Second {
		t.Errorf("ExpectedDuration = %v, want 2s", got)
	}

	offbeats := []int{1, 3, 5, 7, 9, 11, 13, 15}
	for _, s := range offbeats {
		if !cfg.IsOffbeatSixteenth(s) {
			t.Errorf("step %d should be an offbeat sixteenth", s)
		}
	}
	for _, s := range []int{0, 2, 4, 8, 12} {
		if cfg.IsOffbeatSixteenth(s) {
			t.Errorf("step %d should not be an offbeat sixteenth", s)
		}
	}
}

func TestParseStyle(t *testing.T) {
	cases := map[string]string{
		"house":    "house",
		"Lo-Fi":    "lofi",
		"lo-fi":    "lofi",
		"HIP-HOP":  "hiphop",
		"swing":    "jazz",
		"unknown":  "house",
		"":         "house",
	}
	for in, want := range cases {
		if got := ParseStyle(in); got != want {
			t.Errorf("ParseStyle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStyleTableComplete(t *testing.T) {
	for _, name := range AvailableStyles() {
		rules, err := StyleRulesFor(name)
		if err != nil {
			t.Fatalf("style %q missing from table", name)
		}
		if rules.SwingRatio < 0 || rules.SwingRatio > 0.3 {
			t.Errorf("%s: swing %v outside [0, 0.3]", name, rules.SwingRatio)
		}
		if rules.Humanization < 0.01 || rules.Humanization > 0.4 {
			t.Errorf("%s: humanization %v outside [0.01, 0.4]", name, rules.Humanization)
		}
		if rules.BaseVelocity <= 0 || rules.BaseVelocity > 1 {
			t.Errorf("%s: base velocity %v outside (0, 1]", name, rules.BaseVelocity)
		}
		if len(rules.AccentSteps) == 0 {
			t.Errorf("%s: no accent steps", name)
		}
		if StyleDescription(name) == "" {
			t.Errorf("%s: missing description", name)
		}
	}

	if _, err := StyleRulesFor("polka"); !errors.Is(err, bferrors.ErrUnknownStyle) {
		t.Error("strict lookup should reject unknown styles")
	}
}
