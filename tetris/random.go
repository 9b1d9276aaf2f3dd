package tetris

import (
	"math/rand/v2"
	"time"
)

// Rand picks the shape and the color of every new piece.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a PCG source seeded with seed. A zero seed uses the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec
	}
	return rand.New(rand.NewPCG(seed, 0))
}
