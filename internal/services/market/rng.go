package market

import "math/rand"

// RNG wraps a seeded source so simulation components share one stream and
// tests can pin a seed.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a generator from the given seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform sample in [0,1).
func (g *RNG) Float64() float64 { return g.r.Float64() }

// Intn returns a uniform int in [0,n).
func (g *RNG) Intn(n int) int { return g.r.Intn(n) }

// Gaussian returns an approximately normal sample with mean 0 and unit-ish
// variance using a 3-uniform sum. Cheap and bounded to [-1.5, 1.5], which is
// what the tick engine wants: no extreme tails.
func (g *RNG) Gaussian() float64 {
	return g.r.Float64() + g.r.Float64() + g.r.Float64() - 1.5
}
