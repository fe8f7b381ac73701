// Package dice rolls dice for the /roll20 command.
package dice

import (
	"errors"
	"math/rand/v2"
)

// ErrInvalidSides indicates a die with fewer than one side.
var ErrInvalidSides = errors.New("dice must have at least one side")

// D20 is the number of sides on the die /roll20 rolls.
const D20 = 20

// Roller returns a uniformly random integer in [1, sides].
type Roller interface {
	Roll(sides int) (int, error)
}

// RandRoller rolls with a math/rand/v2 source.
type RandRoller struct {
	rng *rand.Rand
}

// NewRandRoller seeds a roller from the runtime's random source.
func NewRandRoller() *RandRoller {
	return &RandRoller{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRoller is deterministic for a given seed.
func NewSeededRoller(seed uint64) *RandRoller {
	return &RandRoller{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (r *RandRoller) Roll(sides int) (int, error) {
	if sides < 1 {
		return 0, ErrInvalidSides
	}
	return r.rng.IntN(sides) + 1, nil
}

// Fixed always rolls the same value. Used by tests.
type Fixed int

func (f Fixed) Roll(sides int) (int, error) {
	if sides < 1 {
		return 0, ErrInvalidSides
	}
	return int(f), nil
}
