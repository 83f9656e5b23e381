// Package encode writes the mastered buffer to a 16-bit mono WAV container
// and validates the artifact it produced.
package encode

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dygy/beatforge/internal/timing"
)

const (
	bitDepth = 16
	channels = 1
)

// Tags is the free-text metadata embedded in the container.
type Tags struct {
	Title    string
	Software string
	Comment  string
	Genre    string
}

// WriteWAV quantizes buf to 16-bit PCM and writes a mono WAV at path.
// Values are clamped to [-1, 1] first; after mastering nothing should be
// out of range, but the disk format must never wrap.
func WriteWAV(path string, buf []float64, rate int, tags Tags) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	ints := make([]int, len(buf))
	for i, v := range buf {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		ints[i] = int(math.Round(v * 32767))
	}

	enc := wav.NewEncoder(f, rate, bitDepth, channels, 1)
	enc.Metadata = &wav.Metadata{
		Title:    tags.Title,
		Software: tags.Software,
		Comments: tags.Comment,
		Genre:    tags.Genre,
	}

	ab := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           ints,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(ab); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return f.Close()
}

// DefaultTags builds the standard tag set for a render.
func DefaultTags(title, version, style string) Tags {
	return Tags{
		Title:    title,
		Software: "beatforge " + version,
		Comment:  fmt.Sprintf("generated %s pattern at %d Hz", style, timing.SampleRate),
		Genre:    style,
	}
}
