package encode

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"

	"github.com/dygy/beatforge/internal/timing"
)

// driftToleranceMs is how far the written duration may sit from the grid's
// expected duration before validation flags it. Drift past this is reported
// as a warning on the result, never a failure.
const driftToleranceMs = 1.0

// ExportResult records a validated artifact.
type ExportResult struct {
	FilePath        string  `json:"file_path"`
	SampleRate      int     `json:"sample_rate"`
	BitDepth        int     `json:"bit_depth"`
	Channels        int     `json:"channels"`
	DurationSeconds float64 `json:"duration_seconds"`
	DurationErrorMs float64 `json:"duration_error_ms"`
	FileSizeBytes   int64   `json:"file_size_bytes"`
	DriftExceeded   bool    `json:"drift_exceeded,omitempty"`
}

// Validate re-opens a written file, derives its actual duration from the
// container, and compares it against the grid's expected duration.
func Validate(path string, cfg *timing.Config) (*ExportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reopen output: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("written file is not a valid wav: %s", path)
	}
	// duration comes from the pcm payload, not the riff chunk size, so
	// metadata chunks do not inflate it
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm payload: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat output: %w", err)
	}

	frames := len(pcm.Data) / int(d.NumChans)
	actual := float64(frames) / float64(d.SampleRate)
	errMs := math.Abs(actual-cfg.ExpectedSeconds()) * 1000

	return &ExportResult{
		FilePath:        path,
		SampleRate:      int(d.SampleRate),
		BitDepth:        int(d.BitDepth),
		Channels:        int(d.NumChans),
		DurationSeconds: actual,
		DurationErrorMs: errMs,
		FileSizeBytes:   info.Size(),
		DriftExceeded:   errMs > driftToleranceMs,
	}, nil
}
