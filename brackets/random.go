package brackets

import (
	"math/rand/v2"
)

// Randomizer is the source of every random decision taken while building a bracket.
// *rand.Rand satisfies it.
type Randomizer interface {
	Shuffle(n int, swap func(i, j int))
	IntN(n int) int
}

// NewRandomizer returns a deterministic source for seed.
func NewRandomizer(seed uint64) Randomizer {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalRandomizer struct{}

func (globalRandomizer) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }
func (globalRandomizer) IntN(n int) int                     { return rand.IntN(n) }

// DefaultRandomizer uses the process-wide random source.
var DefaultRandomizer Randomizer = globalRandomizer{}

// noShuffle keeps input order; used where a caller wants reproducible layouts without a seed.
type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}
func (noShuffle) IntN(int) int                { return 0 }

// Ordered is a Randomizer that never reorders anything.
var Ordered Randomizer = noShuffle{}
