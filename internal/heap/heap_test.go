package heap_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binlambda/blc/internal/cell"
	"github.com/binlambda/blc/internal/heap"
	"github.com/binlambda/blc/internal/rstack"
)

func TestAllocatePairAndAccessors(t *testing.T) {
	h := heap.New(16, nil)
	s := rstack.New(4)
	p := h.AllocatePair(s, cell.MakeInt(1), cell.MakeInt(2))
	require.True(t, cell.IsPair(p))
	require.Equal(t, cell.MakeInt(1), h.Car(p))
	require.Equal(t, cell.MakeInt(2), h.Cdr(p))

	h.SetCar(p, cell.MakeInt(9))
	h.SetCdr(p, cell.MakeInt(10))
	require.Equal(t, cell.MakeInt(9), h.Car(p))
	require.Equal(t, cell.MakeInt(10), h.Cdr(p))
}

func TestAllocateBlockInitializesEachSlot(t *testing.T) {
	h := heap.New(16, nil)
	s := rstack.New(4)
	first := h.AllocateBlock(s, 3)
	for i := 0; i < 3; i++ {
		h.SetPairAt(first, i, cell.MakeInt(int64(i)), cell.Nil)
	}
	for i := 0; i < 3; i++ {
		c := h.OffsetCell(first, i)
		require.Equal(t, cell.MakeInt(int64(i)), h.Car(c))
	}
}

func TestGCPreservesRootedPairsAndGrowsHeap(t *testing.T) {
	h := heap.New(4, nil)
	s := rstack.New(8)

	root := h.AllocatePair(s, cell.MakeInt(100), cell.Nil)
	require.NoError(t, s.Push(root))

	// Force several collections by over-allocating past the tiny initial size.
	var last cell.Cell
	for i := 0; i < 64; i++ {
		last = h.AllocatePair(s, cell.MakeInt(int64(i)), last)
	}

	rooted := s.Top()
	require.True(t, cell.IsPair(rooted))
	require.Equal(t, cell.MakeInt(100), h.Car(rooted))
	require.Greater(t, h.Size(), 4)
}

func TestGCShortensIChains(t *testing.T) {
	h := heap.New(4, nil)
	s := rstack.New(8)

	tail := h.AllocatePair(s, cell.MakeInt(7), cell.Nil)
	require.NoError(t, s.Push(tail))

	chain := tail
	for i := 0; i < 5; i++ {
		chain = h.AllocatePair(s, cell.I, chain)
	}
	require.NoError(t, s.Push(chain))

	// Drive enough allocation to force a collection cycle.
	for i := 0; i < 32; i++ {
		h.AllocatePair(s, cell.MakeInt(int64(i)), cell.Nil)
	}

	shortened := s.Top()
	require.Equal(t, cell.I, h.Car(shortened))
	collapsed := h.Cdr(shortened)
	require.Equal(t, cell.MakeInt(7), h.Car(collapsed))
}

func TestAllocateBlockRetainsRootsAcrossCollection(t *testing.T) {
	h := heap.New(2, nil)
	s := rstack.New(8)

	rooted := h.AllocatePair(s, cell.MakeInt(42), cell.Nil)
	require.NoError(t, s.Push(rooted))

	for i := 0; i < 16; i++ {
		first := h.AllocateBlock(s, 2)
		h.SetPairAt(first, 0, cell.MakeInt(int64(i)), cell.Nil)
		h.SetPairAt(first, 1, cell.MakeInt(int64(i)), cell.Nil)
	}

	require.Equal(t, cell.MakeInt(42), h.Car(s.Top()))
}

func TestNotifyWriterReceivesGCLines(t *testing.T) {
	var buf bytes.Buffer
	h := heap.New(2, &buf)
	s := rstack.New(8)
	for i := 0; i < 16; i++ {
		h.AllocatePair(s, cell.MakeInt(int64(i)), cell.Nil)
	}
	require.Contains(t, buf.String(), "GC:")
}

func TestGCTimeAccumulates(t *testing.T) {
	h := heap.New(2, nil)
	s := rstack.New(8)
	require.Zero(t, h.GCTime())
	for i := 0; i < 16; i++ {
		h.AllocatePair(s, cell.MakeInt(int64(i)), cell.Nil)
	}
	require.Positive(t, h.GCTime())
}
