// Package rng provides the request-scoped random source used by every
// pattern generator. One Source is created per generation request so that a
// given seed always produces the same pattern regardless of what other
// requests are running.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"strconv"
)

// Source is a deterministic random stream derived from a seed. It is not
// safe for concurrent use; create one per pipeline run.
type Source struct {
	seed string
	rand *rand.Rand
}

// New creates a Source from a free-form seed string. Decimal strings use
// their integer value directly, anything else is hashed, so both
// --seed 42 and --seed "LateNight" are stable across runs.
func New(seed string) *Source {
	return &Source{
		seed: seed,
		rand: rand.New(rand.NewSource(SeedValue(seed))),
	}
}

// SeedValue maps a seed string to the int64 fed into the generator.
func SeedValue(seed string) int64 {
	if n, err := strconv.ParseInt(seed, 10, 64); err == nil {
		return n
	}
	sum := sha256.Sum256([]byte(seed))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Seed returns the original seed string.
func (s *Source) Seed() string {
	return s.seed
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	return s.rand.Float64()
}

// IntN returns a value in [0, n). n must be positive.
func (s *Source) IntN(n int) int {
	return s.rand.Intn(n)
}

// Range returns a value in [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rand.Float64()
}

// Chance reports true with probability p. Always draws exactly one value
// so that branch outcomes never shift later draws.
func (s *Source) Chance(p float64) bool {
	return s.rand.Float64() < p
}

// Jitter returns a value in [-amount, amount].
func (s *Source) Jitter(amount float64) float64 {
	return (s.rand.Float64()*2 - 1) * amount
}
