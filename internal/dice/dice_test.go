package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollStaysInRange(t *testing.T) {
	r := NewSeededRoller(42)
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		n, err := r.Roll(D20)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, D20)
		seen[n] = true
	}
	assert.Len(t, seen, D20, "every face shows up")
}

func TestSeededRollerIsDeterministic(t *testing.T) {
	a, b := NewSeededRoller(7), NewSeededRoller(7)
	for i := 0; i < 10; i++ {
		x, _ := a.Roll(D20)
		y, _ := b.Roll(D20)
		assert.Equal(t, x, y)
	}
}

func TestInvalidSides(t *testing.T) {
	_, err := NewRandRoller().Roll(0)
	assert.ErrorIs(t, err, ErrInvalidSides)
	_, err = Fixed(3).Roll(-1)
	assert.ErrorIs(t, err, ErrInvalidSides)
}
