// Package rng provides a seed-based random number generator used wherever
// the synthesis pipeline needs reproducible randomness (mode sampling,
// impact-power perturbation).
package rng

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
)

// RNG wraps a seeded random source.
type RNG struct {
	r *mathrand.Rand
}

// NewRNG creates a new RNG with the given seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: mathrand.New(mathrand.NewSource(seed))}
}

// NewEntropyRNG creates an RNG seeded from the operating system's entropy
// source, for callers that do not need reproducibility (e.g. a production
// engine instance that isn't replaying a recorded run).
func NewEntropyRNG() *RNG {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return NewRNG(1)
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]))
	return NewRNG(seed)
}

// Intn returns a non-negative random int in [0, n).
func (g *RNG) Intn(n int) int {
	return g.r.Intn(n)
}

// Float64 returns a random float64 in [0.0, 1.0).
func (g *RNG) Float64() float64 {
	return g.r.Float64()
}

// Normal draws a sample from a Normal(mean, stddev) distribution.
func (g *RNG) Normal(mean, stddev float64) float64 {
	return mean + g.r.NormFloat64()*stddev
}

// NormalAbove draws repeatedly from Normal(mean, stddev) until the result is
// >= min, matching the rejection-sampling behavior used for mode center
// frequencies and ring-down times.
func (g *RNG) NormalAbove(mean, stddev, min float64) float64 {
	for {
		v := g.Normal(mean, stddev)
		if v >= min {
			return v
		}
	}
}

// Uint24 returns a random unsigned value in [0, 2^24), used for unique
// command identifiers.
func (g *RNG) Uint24() uint32 {
	return uint32(g.r.Int31n(1 << 24))
}

// Seed resets the RNG with a new seed.
func (g *RNG) Seed(seed int64) {
	g.r = mathrand.New(mathrand.NewSource(seed))
}
