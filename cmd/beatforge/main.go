package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dygy/beatforge/internal/hints"
	"github.com/dygy/beatforge/internal/pattern"
	"github.com/dygy/beatforge/internal/pipeline"
	"github.com/dygy/beatforge/internal/resolver"
	"github.com/dygy/beatforge/internal/server"
	"github.com/dygy/beatforge/internal/timing"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beatforge",
	Short: "Generate seeded drum and melody loops as WAV files",
	Long: `Beatforge turns a musical description (tempo, meter, style, seed)
into a reproducible 16-bit mono WAV loop.

Pipeline: timing grid → pattern generation → sample resolution → render → WAV`,
	Version: version,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render a loop to a WAV file",
	Long: `Generate a pattern for the given style and seed and render it.

Examples:
  beatforge generate --style house --seed 42 -o house.wav
  beatforge generate --style funk --instrument guitar --play-mode chord
  beatforge generate --bpm 75 --bars 2 --style lo-fi --seed LateNight`,
	RunE: runGenerate,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON API for submitting render jobs.

Example:
  beatforge serve --port 8080 --samples ./samples`,
	RunE: runServe,
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the available styles",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range timing.AvailableStyles() {
			fmt.Printf("  %-10s %s\n", name, timing.StyleDescription(name))
		}
	},
}

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List the instrument families and complexity levels",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Families:")
		for _, name := range resolver.AvailableFamilies() {
			fmt.Printf("  %-10s %s\n", name, resolver.FamilyDescription(name))
		}
		fmt.Printf("\nDrum roles: %s\n", strings.Join(pattern.DrumRoles, ", "))
		fmt.Printf("Complexity levels: %s\n", strings.Join(pattern.ComplexityLevels(), ", "))
	},
}

var (
	songName      string
	tempoBPM      float64
	timeSignature string
	barCount      int
	styleName     string
	instrument    string
	complexity    string
	playMode      string
	seed          string
	outputPath    string
	sampleDir     string
	alternateDir  string
	hintsFile     string
	verbose       bool

	port int
)

func init() {
	generateCmd.Flags().StringVarP(&songName, "name", "n", "untitled", "track name for WAV metadata")
	generateCmd.Flags().Float64Var(&tempoBPM, "bpm", 0, "tempo in BPM (60-200, default 120)")
	generateCmd.Flags().StringVar(&timeSignature, "time-signature", "4/4", "time signature (4/4 or 3/4)")
	generateCmd.Flags().IntVar(&barCount, "bars", 2, "bar count (1, 2, 4 or 8)")
	generateCmd.Flags().StringVarP(&styleName, "style", "s", "", "style keyword (default house)")
	generateCmd.Flags().StringVarP(&instrument, "instrument", "i", "auto", "instrument family or auto")
	generateCmd.Flags().StringVar(&complexity, "complexity", "", "simple, moderate, complex or advanced")
	generateCmd.Flags().StringVar(&playMode, "play-mode", "auto", "chord, strum, rhythm, mix or auto")
	generateCmd.Flags().StringVar(&seed, "seed", "0", "random seed (number or text)")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "output.wav", "output WAV path")
	generateCmd.Flags().StringVar(&sampleDir, "samples", "samples", "sample library root")
	generateCmd.Flags().StringVar(&alternateDir, "alternate-samples", "", "fallback sample library root")
	generateCmd.Flags().StringVar(&hintsFile, "hints", "", "JSON hints file from a track feature provider")
	generateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose progress output")

	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port")
	serveCmd.Flags().StringVar(&sampleDir, "samples", "samples", "sample library root")
	serveCmd.Flags().StringVar(&alternateDir, "alternate-samples", "", "fallback sample library root")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stylesCmd)
	rootCmd.AddCommand(instrumentsCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()

	cfg := pipeline.Config{
		SongName:      songName,
		TempoBPM:      tempoBPM,
		TimeSignature: timeSignature,
		BarCount:      barCount,
		Style:         styleName,
		Instrument:    instrument,
		Complexity:    complexity,
		PlayMode:      playMode,
		Seed:          seed,
		OutputPath:    outputPath,
		Version:       version,
	}

	if hintsFile != "" {
		provider, err := hints.NewFileProvider(hintsFile)
		if err != nil {
			return err
		}
		h, err := provider.Lookup(songName)
		if err != nil {
			return err
		}
		hints.Apply(&cfg, h)
	}
	if cfg.TempoBPM == 0 {
		cfg.TempoBPM = 120
	}
	if cfg.Style == "" {
		cfg.Style = "house"
	}

	o := pipeline.NewOrchestrator(sampleDir, alternateDir, os.Stdout, verbose)
	result, err := o.Execute(ctx, cfg)
	if err != nil {
		return err
	}

	if result.AutoSelected {
		fmt.Printf("Instrument: %s (auto-selected)\n", result.Family)
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	srv := server.New(server.Config{
		Port:         port,
		SampleDir:    sampleDir,
		AlternateDir: alternateDir,
		Version:      version,
	})
	return srv.Run()
}
