// Package hints consumes optional track metadata (tempo, key, energy,
// valence) from an external feature provider and biases unset request
// fields before the pipeline runs. The pipeline never depends on hints
// being present.
package hints

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dygy/beatforge/internal/pipeline"
	"github.com/dygy/beatforge/internal/timing"
)

// Hints carries the feature set a provider may supply. Zero values mean
// the provider had no opinion.
type Hints struct {
	Tempo   float64 `json:"tempo"`
	Key     string  `json:"key"`
	Energy  float64 `json:"energy"`  // 0-1
	Valence float64 `json:"valence"` // 0-1, low is dark
}

// Provider supplies hints for a named track.
type Provider interface {
	Lookup(track string) (*Hints, error)
}

// FileProvider reads hints from a JSON file mapping track names to hint
// sets. Lookups are case-insensitive on the track name.
type FileProvider struct {
	entries map[string]Hints
}

// NewFileProvider loads a hints file.
func NewFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hints file: %w", err)
	}

	var raw map[string]Hints
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hints file: %w", err)
	}

	entries := make(map[string]Hints, len(raw))
	for name, h := range raw {
		entries[strings.ToLower(name)] = h
	}
	return &FileProvider{entries: entries}, nil
}

// Lookup returns the hints for a track, or nil when none are recorded.
func (p *FileProvider) Lookup(track string) (*Hints, error) {
	h, ok := p.entries[strings.ToLower(track)]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

// Apply biases unset fields of a request with the provided hints. Explicit
// caller values always win; hints only fill gaps, clamped to valid ranges.
func Apply(cfg *pipeline.Config, h *Hints) {
	if h == nil {
		return
	}

	if cfg.TempoBPM == 0 && h.Tempo > 0 {
		tempo := h.Tempo
		if tempo < timing.MinTempo {
			tempo = timing.MinTempo
		}
		if tempo > timing.MaxTempo {
			tempo = timing.MaxTempo
		}
		cfg.TempoBPM = tempo
	}

	if cfg.Style == "" {
		cfg.Style = styleFor(h)
	}
}

// styleFor maps energy and valence onto a style keyword. The bands are
// coarse on purpose; hints steer, they do not decide.
func styleFor(h *Hints) string {
	switch {
	case h.Energy >= 0.75 && h.Valence >= 0.5:
		return "house"
	case h.Energy >= 0.75:
		return "techno"
	case h.Energy >= 0.5 && h.Valence >= 0.5:
		return "funk"
	case h.Energy >= 0.5:
		return "hiphop"
	case h.Valence < 0.35 && minorKey(h.Key):
		return "lofi"
	case h.Energy < 0.25:
		return "ambient"
	default:
		return "pop"
	}
}

// minorKey reports whether a key string names a minor key.
func minorKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	return strings.Contains(k, "minor") || strings.HasSuffix(k, "m")
}
