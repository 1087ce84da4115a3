// Package rng defines the pseudo-random source injected into every
// component that needs reproducible randomness: fuzz, display-order
// shuffles, Monte Carlo sampling, bonus-card designation, and
// micro-feedback sampling (§9: "Determinism for replay").
package rng

import "math/rand"

// Rng is the minimal interface the scheduling core draws randomness
// from. No component calls math/rand's global functions directly.
type Rng interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
	// Intn returns a pseudo-random number in [0, n).
	Intn(n int) int
}

// Source wraps a seeded *rand.Rand, the production implementation of
// Rng. Tests typically construct their own Source with a fixed seed
// so sessions are reproducible.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded deterministically from seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

func (s *Source) Float64() float64 { return s.r.Float64() }
func (s *Source) Intn(n int) int   { return s.r.Intn(n) }
