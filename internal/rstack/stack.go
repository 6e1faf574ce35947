// Package rstack implements the reducer's explicit spine stack: a
// fixed-capacity stack of cell.Cell values that grows downward from the
// top of its buffer, exactly as the reference interpreter's RdStack does.
// It doubles as a GC root set (internal/heap evacuates every live slot
// through EvacuateRoots) and as the bookkeeping the -s statistics flag
// needs (MaxDepth).
package rstack

import (
	"github.com/binlambda/blc/internal/blcerr"
	"github.com/binlambda/blc/internal/cell"
)

// Stack is a fixed-capacity reduction stack. The zero value is not usable;
// construct one with New.
type Stack struct {
	cells []cell.Cell
	sp    int // index of the current top; grows downward toward 0
}

// New allocates a Stack with room for capacity Cells, matching the
// reference interpreter's default of 100,000 slots. Every slot is
// initialized to cell.UnusedMarker so MaxDepth can recover the high-water
// mark by scanning.
func New(capacity int) *Stack {
	cells := make([]cell.Cell, capacity)
	for i := range cells {
		cells[i] = cell.UnusedMarker
	}
	return &Stack{cells: cells, sp: capacity}
}

// Push fails fatally ("stack overflow") when the stack is already full,
// matching spec's resource-exhaustion category: the caller should
// propagate this as a *blcerr.FatalError rather than recover from it.
func (s *Stack) Push(c cell.Cell) error {
	if s.sp <= 0 {
		return blcerr.New(blcerr.ResourceExhaustion, "runtime error: stack overflow")
	}
	s.sp--
	s.cells[s.sp] = c
	return nil
}

// Pop removes and returns the top Cell.
func (s *Stack) Pop() cell.Cell {
	c := s.cells[s.sp]
	s.sp++
	return c
}

// Top returns the top Cell without removing it.
func (s *Stack) Top() cell.Cell { return s.cells[s.sp] }

// SetTop overwrites the top slot's value without touching heap storage.
func (s *Stack) SetTop(c cell.Cell) { s.cells[s.sp] = c }

// Pushed returns the Cell n slots below the top; Pushed(0) is Top().
func (s *Stack) Pushed(n int) cell.Cell { return s.cells[s.sp+n] }

// SetPushed overwrites the slot n below the top.
func (s *Stack) SetPushed(n int, c cell.Cell) { s.cells[s.sp+n] = c }

// Drop discards the top n slots.
func (s *Stack) Drop(n int) { s.sp += n }

// Mark returns the current stack pointer, for use as an eval invocation's
// "bottom": APPLICABLE(n) tests how many frames have been pushed since a
// Mark was taken.
func (s *Stack) Mark() int { return s.sp }

// Applicable reports whether more than n frames have been pushed above the
// given mark, i.e. whether the atom at the top of those frames has enough
// arguments to satisfy the rule with the given arity.
func (s *Stack) Applicable(mark, n int) bool { return mark-s.sp > n }

// MaxDepth scans for the lowest-indexed (deepest) slot that is no longer
// cell.UnusedMarker and returns the stack depth that implies: the
// high-water mark of slots ever in use. This is observational bookkeeping
// for the -s flag, not part of the reduction algorithm itself.
func (s *Stack) MaxDepth() int {
	for i, c := range s.cells {
		if c != cell.UnusedMarker {
			return len(s.cells) - i
		}
	}
	return 0
}

// EvacuateRoots applies evac to every live slot (from the current top of
// stack to the top of the buffer) in place. internal/heap calls this as
// the first step of every collection cycle; evac is expected to leave
// non-Pair cells unchanged and return the forwarded address for Pairs.
func (s *Stack) EvacuateRoots(evac func(cell.Cell) cell.Cell) {
	for i := s.sp; i < len(s.cells); i++ {
		s.cells[i] = evac(s.cells[i])
	}
}
