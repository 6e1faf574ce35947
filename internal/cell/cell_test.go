package cell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/binlambda/blc/internal/cell"
)

func TestPairRoundTrip(t *testing.T) {
	c := cell.MakePair(42)
	assert.True(t, cell.IsPair(c))
	assert.False(t, cell.IsInt(c))
	assert.Equal(t, 42, cell.PairIndex(c))
}

func TestIntRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 255, -255, 1 << 20} {
		c := cell.MakeInt(n)
		assert.True(t, cell.IsInt(c))
		assert.Equal(t, n, cell.IntValue(c))
	}
}

func TestCharRoundTrip(t *testing.T) {
	c := cell.MakeChar(65)
	assert.True(t, cell.IsChar(c))
	assert.Equal(t, 65, cell.CharValue(c))
}

func TestImmediatesAreDistinct(t *testing.T) {
	imms := []cell.Cell{cell.Nil, cell.Copied, cell.UnusedMarker, cell.Lambda}
	for _, c := range imms {
		assert.True(t, cell.IsImmediate(c))
		assert.False(t, cell.IsPair(c))
		assert.False(t, cell.IsInt(c))
		assert.False(t, cell.IsComb(c))
		assert.False(t, cell.IsChar(c))
	}
	seen := map[cell.Cell]bool{}
	for _, c := range imms {
		assert.False(t, seen[c], "immediate %v collided", c)
		seen[c] = true
	}
}

func TestCombinatorRoundTrip(t *testing.T) {
	for id := cell.CombS; id <= cell.CombReturn; id++ {
		c := cell.MakeComb(id)
		assert.True(t, cell.IsComb(c))
		assert.Equal(t, id, cell.CombValue(c))
	}
}

func TestCombinatorStringNames(t *testing.T) {
	assert.Equal(t, "S", cell.CombS.String())
	assert.Equal(t, "S'", cell.CombSPrime.String())
	assert.Equal(t, "B*", cell.CombBStar.String())
	assert.Equal(t, "KI", cell.CombKI.String())
}
