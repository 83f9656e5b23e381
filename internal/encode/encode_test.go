package encode

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/dygy/beatforge/internal/timing"
)

func silentBuffer(cfg *timing.Config) []float64 {
	return make([]float64, cfg.TotalSamples)
}

func TestWriteAndValidate(t *testing.T) {
	cfg, err := timing.New(75, "4/4", 2, "lofi")
	if err != nil {
		t.Fatal(err)
	}

	buf := silentBuffer(cfg)
	for i := 0; i < 441; i++ {
		buf[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(cfg.SampleRate))
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	tags := DefaultTags("LateNight", "1.0.0", "lofi")
	if err := WriteWAV(path, buf, cfg.SampleRate, tags); err != nil {
		t.Fatal(err)
	}

	res, err := Validate(path, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if res.SampleRate != 44100 || res.BitDepth != 16 || res.Channels != 1 {
		t.Errorf("container format = %d Hz / %d bit / %d ch", res.SampleRate, res.BitDepth, res.Channels)
	}
	// 2 bars of 4/4 at 75 bpm is 3.2 seconds
	if math.Abs(res.DurationSeconds-3.2) > 0.001 {
		t.Errorf("duration = %gs, want 3.2s within 1ms", res.DurationSeconds)
	}
	if res.DriftExceeded {
		t.Errorf("duration drift %.3fms flagged over tolerance", res.DurationErrorMs)
	}
	if res.FileSizeBytes <= int64(cfg.TotalSamples*2) {
		t.Errorf("file size %d smaller than raw pcm payload", res.FileSizeBytes)
	}
}

func TestWriteClampsOutOfRange(t *testing.T) {
	cfg, err := timing.New(120, "4/4", 1, "house")
	if err != nil {
		t.Fatal(err)
	}
	buf := silentBuffer(cfg)
	buf[0] = 2.5
	buf[1] = -3.0

	path := filepath.Join(t.TempDir(), "hot.wav")
	if err := WriteWAV(path, buf, cfg.SampleRate, Tags{Title: "hot"}); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if pcm.Data[0] != 32767 {
		t.Errorf("over-range sample wrote %d, want 32767", pcm.Data[0])
	}
	if pcm.Data[1] != -32767 {
		t.Errorf("under-range sample wrote %d, want -32767", pcm.Data[1])
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	cfg, err := timing.New(120, "4/4", 1, "house")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "tagged.wav")
	tags := DefaultTags("My Track", "1.0.0", "house")
	if err := WriteWAV(path, silentBuffer(cfg), cfg.SampleRate, tags); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadMetadata()
	if d.Metadata == nil {
		t.Fatal("no metadata chunk in written file")
	}
	if d.Metadata.Title != "My Track" {
		t.Errorf("title = %q", d.Metadata.Title)
	}
	if d.Metadata.Software != "beatforge 1.0.0" {
		t.Errorf("software = %q", d.Metadata.Software)
	}
	if d.Metadata.Genre != "house" {
		t.Errorf("genre = %q", d.Metadata.Genre)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	cfg, err := timing.New(120, "4/4", 1, "house")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("not audio"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Validate(path, cfg); err == nil {
		t.Error("expected an error for a non-wav file")
	}
}

func TestValidateMissingFile(t *testing.T) {
	cfg, err := timing.New(120, "4/4", 1, "house")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Validate(filepath.Join(t.TempDir(), "absent.wav"), cfg); err == nil {
		t.Error("expected an error for a missing file")
	}
}
