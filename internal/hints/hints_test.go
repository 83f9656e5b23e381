package hints

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dygy/beatforge/internal/pipeline"
)

func writeHints(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hints.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileProviderLookup(t *testing.T) {
	path := writeHints(t, `{
		"Late Night": {"tempo": 75, "key": "Am", "energy": 0.2, "valence": 0.3}
	}`)

	p, err := NewFileProvider(path)
	if err != nil {
		t.Fatal(err)
	}

	h, err := p.Lookup("late night")
	if err != nil {
		t.Fatal(err)
	}
	if h == nil {
		t.Fatal("lookup missed a recorded track")
	}
	if h.Tempo != 75 || h.Key != "Am" {
		t.Errorf("hints = %+v", h)
	}

	missing, err := p.Lookup("unknown track")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown track, got %+v", missing)
	}
}

func TestFileProviderBadInput(t *testing.T) {
	if _, err := NewFileProvider(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
	path := writeHints(t, "not json")
	if _, err := NewFileProvider(path); err == nil {
		t.Error("expected an error for malformed json")
	}
}

func TestApplyFillsUnsetFields(t *testing.T) {
	cfg := pipeline.Config{}
	Apply(&cfg, &Hints{Tempo: 92, Energy: 0.8, Valence: 0.7})

	if cfg.TempoBPM != 92 {
		t.Errorf("tempo = %g, want 92", cfg.TempoBPM)
	}
	if cfg.Style != "house" {
		t.Errorf("style = %q, want house", cfg.Style)
	}
}

func TestApplyNeverOverridesExplicitValues(t *testing.T) {
	cfg := pipeline.Config{TempoBPM: 140, Style: "jazz"}
	Apply(&cfg, &Hints{Tempo: 92, Energy: 0.9})

	if cfg.TempoBPM != 140 || cfg.Style != "jazz" {
		t.Errorf("hints overrode explicit values: %+v", cfg)
	}
}

func TestApplyClampsTempo(t *testing.T) {
	cfg := pipeline.Config{}
	Apply(&cfg, &Hints{Tempo: 300})
	if cfg.TempoBPM != 200 {
		t.Errorf("tempo = %g, want clamped to 200", cfg.TempoBPM)
	}

	cfg = pipeline.Config{}
	Apply(&cfg, &Hints{Tempo: 20})
	if cfg.TempoBPM != 60 {
		t.Errorf("tempo = %g, want clamped to 60", cfg.TempoBPM)
	}
}

func TestApplyNilHints(t *testing.T) {
	cfg := pipeline.Config{TempoBPM: 120}
	Apply(&cfg, nil)
	if cfg.TempoBPM != 120 {
		t.Errorf("nil hints mutated config: %+v", cfg)
	}
}

func TestStyleForBands(t *testing.T) {
	cases := []struct {
		hints Hints
		want  string
	}{
		{Hints{Energy: 0.9, Valence: 0.8}, "house"},
		{Hints{Energy: 0.9, Valence: 0.2}, "techno"},
		{Hints{Energy: 0.6, Valence: 0.7}, "funk"},
		{Hints{Energy: 0.6, Valence: 0.2}, "hiphop"},
		{Hints{Energy: 0.3, Valence: 0.2, Key: "Am"}, "lofi"},
		{Hints{Energy: 0.1, Valence: 0.6}, "ambient"},
		{Hints{Energy: 0.4, Valence: 0.6}, "pop"},
	}
	for _, tc := range cases {
		if got := styleFor(&tc.hints); got != tc.want {
			t.Errorf("styleFor(%+v) = %q, want %q", tc.hints, got, tc.want)
		}
	}
}
