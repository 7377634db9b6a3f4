// Package engine supplies the uniform random numbers used to lay out boards.
package engine

import (
	"math/rand/v2"
	"sync"
)

// Source supplies uniform random integers.
type Source interface {
	// Intn returns a uniformly distributed integer in [0, n). n must be > 0.
	Intn(n int) int
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(n int) int

// Intn calls f(n).
func (f SourceFunc) Intn(n int) int {
	return f(n)
}

type randSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a PCG-backed Source that is safe for concurrent use.
// A zero seed draws a random seed from the runtime generator.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &randSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *randSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}
