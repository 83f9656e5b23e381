package samples

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-audio/wav"

	bferrors "github.com/dygy/beatforge/internal/errors"
)

// Asset is a decoded sample: normalized mono float PCM plus the rate it is
// stored at. Assets are immutable once built.
type Asset struct {
	Data       []float64
	SampleRate int
}

// Duration returns the asset length in seconds.
func (a *Asset) Duration() float64 {
	if a.SampleRate == 0 {
		return 0
	}
	return float64(len(a.Data)) / float64(a.SampleRate)
}

// Decode parses a WAV payload into a normalized mono asset. Multi-channel
// sources are averaged down to mono.
func Decode(raw []byte) (*Asset, error) {
	d := wav.NewDecoder(bytes.NewReader(raw))
	if !d.IsValidFile() {
		return nil, bferrors.ErrCorruptedSample
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bferrors.ErrCorruptedSample, err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || len(buf.Data) == 0 {
		return nil, bferrors.ErrCorruptedSample
	}

	channels := buf.Format.NumChannels
	bitDepth := int(d.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		mono[i] = sum / float64(channels)
	}

	return &Asset{Data: mono, SampleRate: buf.Format.SampleRate}, nil
}

// Resample converts a buffer between rates with linear interpolation. Equal
// rates return the input unchanged.
func Resample(data []float64, srcRate, dstRate int) []float64 {
	if srcRate == dstRate || len(data) == 0 {
		return data
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(math.Floor(float64(len(data)) / ratio))
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for i := range out {
		srcPos := float64(i) * ratio
		i0 := int(srcPos)
		if i0 >= len(data)-1 {
			out[i] = data[len(data)-1]
			continue
		}
		frac := srcPos - float64(i0)
		out[i] = data[i0]*(1-frac) + data[i0+1]*frac
	}
	return out
}
