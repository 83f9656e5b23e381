// Package pipeline wires the generation stages into one sequential run per
// request: timing grid, pattern, sample resolution, render, master, encode,
// validate. Each run owns its pattern and buffer; the only shared state is
// the decode cache.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/dygy/beatforge/internal/encode"
	"github.com/dygy/beatforge/internal/pattern"
	"github.com/dygy/beatforge/internal/progress"
	"github.com/dygy/beatforge/internal/render"
	"github.com/dygy/beatforge/internal/resolver"
	"github.com/dygy/beatforge/internal/rng"
	"github.com/dygy/beatforge/internal/samples"
	"github.com/dygy/beatforge/internal/timing"
)

// Config holds one generation request.
type Config struct {
	SongName      string
	TempoBPM      float64
	TimeSignature string
	BarCount      int
	Style         string
	Instrument    string // family name or "auto"
	Complexity    string // simple, moderate, complex, advanced
	PlayMode      string // chord, strum, rhythm, mix or auto (melodic only)
	Seed          string
	OutputPath    string
	Version       string // stamped into the WAV metadata
}

// DefaultConfig returns default generation parameters.
func DefaultConfig() Config {
	return Config{
		SongName:      "untitled",
		TempoBPM:      120,
		TimeSignature: "4/4",
		BarCount:      2,
		Style:         "house",
		Instrument:    "auto",
		PlayMode:      "auto",
		Seed:          "0",
		OutputPath:    "output.wav",
		Version:       "dev",
	}
}

// Result contains the outputs of one pipeline run.
type Result struct {
	Export        *encode.ExportResult
	Style         string
	Family        string
	AutoSelected  bool
	EventCount    int
	DroppedEvents int
	Layers        []string
	Peak          float64
	Warnings      []string
}

// Orchestrator coordinates the full render pipeline. One orchestrator may
// serve many concurrent requests; per-request state lives in Execute.
type Orchestrator struct {
	store    samples.Store
	resolver *resolver.Resolver
	renderer *render.Renderer
	progress *progress.Reporter
}

// NewOrchestrator builds a pipeline over a primary sample directory and an
// optional alternate provider directory.
func NewOrchestrator(sampleDir, alternateDir string, out io.Writer, verbose bool) *Orchestrator {
	store := samples.NewDirStore(sampleDir)
	cache := samples.NewCache(store, timing.SampleRate)

	res := resolver.New(store, cache)
	if alternateDir != "" {
		res = res.WithAlternate(samples.NewDirStore(alternateDir))
	}

	return &Orchestrator{
		store:    store,
		resolver: res,
		renderer: render.New(cache, render.DefaultSettings()),
		progress: progress.NewReporter(out, verbose),
	}
}

// Execute runs the full pipeline for one request. Validation failures on
// tempo, time signature or bar count fail fast; everything after that is
// best effort and always produces a file.
func (o *Orchestrator) Execute(ctx context.Context, cfg Config) (*Result, error) {
	// Stage 1: timing grid
	o.progress.StartStage(progress.StageTiming)
	tcfg, err := timing.New(cfg.TempoBPM, cfg.TimeSignature, cfg.BarCount, cfg.Style)
	if err != nil {
		return nil, o.fail(err)
	}
	o.progress.Update("step %.1f ms, %d steps per bar", tcfg.StepDuration()*1000, tcfg.StepsPerBar)
	o.progress.StageComplete("%d steps over %d bar(s), %s at %.0f BPM",
		tcfg.TotalSteps, tcfg.BarCount, tcfg.ExpectedDuration(), tcfg.TempoBPM)

	result := &Result{Style: tcfg.Style}

	// Stage 2: pattern generation with a request-scoped random source
	o.progress.StartStage(progress.StagePattern)
	src := rng.New(cfg.Seed)
	gen := pattern.ForRequest(cfg.Instrument, cfg.Complexity, cfg.PlayMode, tcfg.Rules)
	pat := gen.Generate(tcfg, src)
	result.EventCount = len(pat.Events)
	result.Layers = pat.Meta.Layers
	o.progress.StageComplete("%d events, complexity %.1f", len(pat.Events), pat.Meta.Complexity)

	if err := ctx.Err(); err != nil {
		return nil, o.fail(err)
	}

	// Stage 3: instrument and sample resolution
	o.progress.StartStage(progress.StageResolve)
	resolution := o.resolver.Resolve(pat, cfg.Instrument, tcfg.Rules)
	result.Family = resolution.Family
	result.AutoSelected = resolution.AutoSelected
	if len(resolution.Unresolved) > 0 {
		dropped := pat.DropNotes(resolution.UnresolvedIDs())
		result.DroppedEvents = dropped
		warn := fmt.Sprintf("no sample for %d note id(s), dropped %d event(s)",
			len(resolution.Unresolved), dropped)
		result.Warnings = append(result.Warnings, warn)
		o.progress.Warning("%s", warn)
	}
	o.progress.StageComplete("family %q (%d note ids mapped)", resolution.Family, len(resolution.Notes))

	if err := ctx.Err(); err != nil {
		return nil, o.fail(err)
	}

	// Stage 4: render
	o.progress.StartStage(progress.StageRender)
	buf, err := o.renderer.Render(pat, tcfg, resolution)
	if err != nil {
		return nil, o.fail(fmt.Errorf("render: %w", err))
	}
	o.progress.StageComplete("%d samples mixed", len(buf))

	// Stage 5: master
	o.progress.StartStage(progress.StageMaster)
	result.Peak = o.renderer.Master(buf)
	if rms := render.RMS(buf); rms < render.DefaultSettings().SilenceRMS {
		warn := fmt.Sprintf("render is near-silent (rms %.2g)", rms)
		result.Warnings = append(result.Warnings, warn)
		o.progress.Warning("%s", warn)
	}
	o.progress.StageComplete("peak %.2f after limiting", result.Peak)

	if err := ctx.Err(); err != nil {
		return nil, o.fail(err)
	}

	// Stage 6: encode to a staged file, then promote atomically
	o.progress.StartStage(progress.StageEncode)
	ws, err := CreateWorkspace()
	if err != nil {
		return nil, o.fail(err)
	}
	defer ws.Cleanup()

	tags := encode.DefaultTags(cfg.SongName, cfg.Version, tcfg.Style)
	if err := encode.WriteWAV(ws.StagedWAV(), buf, tcfg.SampleRate, tags); err != nil {
		return nil, o.fail(fmt.Errorf("encode: %w", err))
	}
	if err := ws.Promote(ws.StagedWAV(), cfg.OutputPath); err != nil {
		return nil, o.fail(fmt.Errorf("finalize output: %w", err))
	}
	o.progress.StageComplete("wrote %s", cfg.OutputPath)

	// Stage 7: validate the artifact
	o.progress.StartStage(progress.StageValidate)
	export, err := encode.Validate(cfg.OutputPath, tcfg)
	if err != nil {
		return nil, o.fail(fmt.Errorf("validate: %w", err))
	}
	result.Export = export
	if export.DriftExceeded {
		warn := fmt.Sprintf("duration drift %.3fms exceeds tolerance", export.DurationErrorMs)
		result.Warnings = append(result.Warnings, warn)
		o.progress.Warning("%s", warn)
	}
	o.progress.StageComplete("%.3fs, drift %.3fms", export.DurationSeconds, export.DurationErrorMs)

	o.progress.Done(cfg.OutputPath)
	return result, nil
}

// fail reports an error through the progress reporter before handing it to
// the caller, so CLI runs show where the pipeline stopped.
func (o *Orchestrator) fail(err error) error {
	o.progress.Error(err)
	return err
}
