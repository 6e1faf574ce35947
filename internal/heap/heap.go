// Package heap implements the two-space copying collector the reducer,
// parser and compiler allocate Pair cells from. Storage is addressed by
// slot index rather than host pointer (see internal/cell), so evacuation
// during a GC cycle is just rewriting the index a Cell carries.
package heap

import (
	"fmt"
	"io"
	"time"

	"github.com/binlambda/blc/internal/cell"
)

// pair is the two-field heap record a Pair Cell addresses.
type pair struct {
	car, cdr cell.Cell
}

// RootSet is anything whose live Cell slots must be evacuated as GC roots.
// internal/rstack.Stack implements this.
type RootSet interface {
	EvacuateRoots(evac func(cell.Cell) cell.Cell)
}

// Heap is a two-space copying collector over a slice of pair records. The
// zero value is not usable; construct one with New.
type Heap struct {
	cells    []pair
	free     int
	size     int
	nextSize int
	spare    []pair // a same-sized to-space buffer retained across cycles when feasible

	notify io.Writer // non-nil enables "-g" per-cycle progress lines

	gcTime       time.Duration
	gcCycles     int
	liveAtLastGC int
}

// New allocates a Heap with an initial capacity of initialSize Pairs,
// matching the reference interpreter's INITIAL_HEAP_SIZE default of
// 128*1024. notify, if non-nil, receives one "GC: <live> / <size>" line per
// collection cycle (the -g flag).
func New(initialSize int, notify io.Writer) *Heap {
	return &Heap{
		cells:    make([]pair, initialSize),
		size:     initialSize,
		nextSize: initialSize * 3 / 2,
		notify:   notify,
	}
}

// GCTime returns the cumulative wall-clock time spent inside collection
// cycles, for the -s statistics flag. Per spec §5 this is observational,
// not semantic, so wall-clock is an acceptable stand-in for CPU time.
func (h *Heap) GCTime() time.Duration { return h.gcTime }

// AllocatePair returns a fresh Pair holding (car, cdr). It may trigger a GC
// cycle; car and cdr are protected as explicit extra roots across that
// cycle the same way the reference interpreter's pair() protects its two
// direct arguments via save-pointers, so the values used to build the
// result always reflect the post-collection addresses.
func (h *Heap) AllocatePair(roots RootSet, car, cdr cell.Cell) cell.Cell {
	if h.free >= h.size {
		car, cdr = h.collect(roots, 1, car, cdr)
	}
	idx := h.free
	h.cells[idx] = pair{car, cdr}
	h.free++
	return cell.MakePair(idx)
}

// AllocateBlock reserves n consecutive uninitialized Pairs and returns the
// Cell addressing the first. The caller must initialize every reserved
// slot (via SetPairAt) before any further allocation; a GC cycle is
// triggered, if needed, only by this call, never between the reservation
// and the caller's writes. Unlike AllocatePair, a block allocation has no
// extra roots of its own: callers that need values computed before the
// call to survive a possible collection must re-read them from the
// reduction stack afterward, exactly as the reference interpreter's
// alloc(n) callers read ARG(n) only after the alloc() statement.
func (h *Heap) AllocateBlock(roots RootSet, n int) cell.Cell {
	if h.free+n > h.size {
		h.collect(roots, n, cell.Nil, cell.Nil)
	}
	idx := h.free
	h.free += n
	return cell.MakePair(idx)
}

// OffsetCell returns the Cell addressing the i-th pair of a block returned
// by AllocateBlock.
func (h *Heap) OffsetCell(first cell.Cell, i int) cell.Cell {
	return cell.MakePair(cell.PairIndex(first) + i)
}

// SetPairAt initializes the i-th pair of a block returned by AllocateBlock.
func (h *Heap) SetPairAt(first cell.Cell, i int, car, cdr cell.Cell) {
	h.cells[cell.PairIndex(first)+i] = pair{car, cdr}
}

// SetPair overwrites an already-allocated Pair's car and cdr in place.
// Used both by the reducer (rewriting a spine node to its reduct) and by
// the bracket-abstraction compiler (the peephole optimizations reuse the
// storage of Pairs it has itself just produced, which are not yet shared).
func (h *Heap) SetPair(c cell.Cell, car, cdr cell.Cell) {
	h.cells[cell.PairIndex(c)] = pair{car, cdr}
}

// Car returns the car field of a Pair Cell. Undefined if !cell.IsPair(c).
func (h *Heap) Car(c cell.Cell) cell.Cell { return h.cells[cell.PairIndex(c)].car }

// Cdr returns the cdr field of a Pair Cell. Undefined if !cell.IsPair(c).
func (h *Heap) Cdr(c cell.Cell) cell.Cell { return h.cells[cell.PairIndex(c)].cdr }

// SetCar overwrites the car field of an already-allocated Pair in place.
func (h *Heap) SetCar(c cell.Cell, v cell.Cell) { h.cells[cell.PairIndex(c)].car = v }

// SetCdr overwrites the cdr field of an already-allocated Pair in place.
func (h *Heap) SetCdr(c cell.Cell, v cell.Cell) { h.cells[cell.PairIndex(c)].cdr = v }

// Size returns the current active half's capacity, for diagnostics.
func (h *Heap) Size() int { return h.size }

// LiveAtLastGC returns the number of live Pairs found by the most recent
// collection cycle, or 0 if none has run yet.
func (h *Heap) LiveAtLastGC() int { return h.liveAtLastGC }

// collect runs one Cheney-style copying cycle, evacuating every Pair
// reachable from roots (plus the explicit car/cdr extra roots, which a
// caller may pass as cell.Nil pairs to opt out of), and recurses if the
// cycle still leaves fewer than `need` free slots — mirroring spec §4.2
// step 8 ("if, after collection, the request still does not fit,
// recurse"), but against the actual request size rather than a single
// slot, which the reference interpreter's alloc(n) path does not check.
func (h *Heap) collect(roots RootSet, need int, extraCar, extraCdr cell.Cell) (cell.Cell, cell.Cell) {
	start := time.Now()

	oldCells := h.cells
	newCells := h.spare
	if len(newCells) != h.nextSize {
		newCells = make([]pair, h.nextSize)
	}
	free := 0

	var evac func(cell.Cell) cell.Cell
	evac = func(c cell.Cell) cell.Cell {
		if !cell.IsPair(c) {
			return c
		}
		idx := cell.PairIndex(c)
		old := oldCells[idx]
		if old.car == cell.Copied {
			return old.cdr
		}

		newCar := old.car
		newCdr := old.cdr
		if old.car == cell.I {
			// I-chain shortening: I x reduces to x, so forwarding
			// straight to the first non-I tail is semantics
			// preserving and avoids rebuilding a chain of
			// indirections every cycle.
			tmp := old.cdr
			for cell.IsPair(tmp) {
				next := oldCells[cell.PairIndex(tmp)]
				if next.car != cell.I {
					break
				}
				tmp = next.cdr
			}
			newCdr = tmp
		}

		newIdx := free
		free++
		newCells[newIdx] = pair{newCar, newCdr}
		oldCells[idx] = pair{cell.Copied, cell.MakePair(newIdx)}
		return cell.MakePair(newIdx)
	}

	roots.EvacuateRoots(evac)
	extraCar = evac(extraCar)
	extraCdr = evac(extraCdr)

	for scan := 0; scan < free; scan++ {
		newCells[scan].car = evac(newCells[scan].car)
		newCells[scan].cdr = evac(newCells[scan].cdr)
	}

	live := free
	h.liveAtLastGC = live
	if h.notify != nil {
		fmt.Fprintf(h.notify, "GC: %d / %d\n", live, h.size)
	}

	grew := h.size != h.nextSize || live*8 > h.nextSize
	if grew {
		h.size = h.nextSize
		if live*8 > h.nextSize {
			h.nextSize = live * 8
		}
		h.spare = nil
	} else {
		h.spare = oldCells
	}

	h.cells = newCells
	h.free = free
	h.gcCycles++
	h.gcTime += time.Since(start)

	if h.free+need > h.size {
		return h.collect(roots, need, extraCar, extraCdr)
	}
	return extraCar, extraCdr
}
