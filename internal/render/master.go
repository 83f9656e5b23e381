package render

import "math"

// Master applies the limiter and normalization in place and returns the
// final peak level. Clipping is corrected here, never reported as an error.
func (r *Renderer) Master(buf []float64) float64 {
	peak := Peak(buf)
	if peak == 0 {
		return 0
	}

	if peak > 1.0 {
		r.limit(buf)
		peak = Peak(buf)
	}

	scale := r.settings.TargetHeadroom / peak
	for i := range buf {
		buf[i] *= scale
	}
	return Peak(buf)
}

// limit compresses every sample above the knee threshold with a sign-
// preserving soft-knee curve. Samples below the knee pass through, so quiet
// material is untouched.
func (r *Renderer) limit(buf []float64) {
	t := r.settings.KneeThreshold
	k := r.settings.KneeHardness
	for i, v := range buf {
		a := math.Abs(v)
		if a <= t {
			continue
		}
		limited := t + (a-t)/(1+(a-t)*k)
		buf[i] = math.Copysign(limited, v)
	}
}

// Peak returns the largest absolute sample value.
func Peak(buf []float64) float64 {
	peak := 0.0
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root-mean-square level of the buffer. The pipeline uses
// it to warn about near-silent renders.
func RMS(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range buf {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(buf)))
}
