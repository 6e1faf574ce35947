// Package compiler performs bracket abstraction, turning the De
// Bruijn-indexed term tree internal/parser produces into a combinator
// graph internal/interpreter can reduce directly, applying the B/C/S'/B*/
// C' peephole optimizations the reference interpreter's unabstract()
// recognizes.
package compiler

import (
	"fmt"
	"io"

	"github.com/binlambda/blc/internal/cell"
	"github.com/binlambda/blc/internal/heap"
	"github.com/binlambda/blc/internal/rstack"
)

// Compiler turns parsed term trees into combinator graphs.
type Compiler struct {
	heap  *heap.Heap
	stack *rstack.Stack
}

// New builds a Compiler allocating onto h and rooting intermediate results
// on s.
func New(h *heap.Heap, s *rstack.Stack) *Compiler {
	return &Compiler{heap: h, stack: s}
}

// Translate walks a parsed term, replacing every (cell.Lambda . body) node
// with its bracket-abstracted combinator equivalent. Application nodes and
// leaf values pass through unchanged apart from their subterms being
// translated first, bottom-up, so an outer lambda's body is already pure
// combinators by the time it is itself abstracted. The only failure mode
// is reduction-stack exhaustion from a pathologically deep term, reported
// as a *blcerr.FatalError rather than recovered from.
func (c *Compiler) Translate(t cell.Cell) (cell.Cell, error) {
	if !cell.IsPair(t) {
		return t, nil
	}
	if c.heap.Car(t) == cell.Lambda {
		body, err := c.Translate(c.heap.Cdr(t))
		if err != nil {
			return 0, err
		}
		return c.unabstract(body)
	}

	if err := c.stack.Push(c.heap.Cdr(t)); err != nil {
		return 0, err
	}
	fn, err := c.Translate(c.heap.Car(t))
	if err != nil {
		return 0, err
	}
	if err := c.stack.Push(fn); err != nil {
		return 0, err
	}
	arg, err := c.Translate(c.stack.Pushed(1))
	if err != nil {
		return 0, err
	}
	result := c.heap.AllocatePair(c.stack, c.stack.Top(), arg)
	c.stack.Drop(2)
	return result, nil
}

func isK1(h *heap.Heap, x cell.Cell) bool {
	return cell.IsPair(x) && h.Car(x) == cell.K
}

func isB2(h *heap.Heap, x cell.Cell) bool {
	return cell.IsPair(x) && cell.IsPair(h.Car(x)) && h.Car(h.Car(x)) == cell.B
}

// unabstract implements bracket abstraction over a single binder: t is the
// (already-translated) body of a lambda, with references to the bound
// variable represented as the De Bruijn-index-turned-int cell.MakeInt(0)
// and references to outer binders as cell.MakeInt(n), n>0. It rewrites
// freshly produced (unshared) Pair cells in place while threading the
// peephole table, exactly as the reference interpreter does.
func (c *Compiler) unabstract(t cell.Cell) (cell.Cell, error) {
	if cell.IsInt(t) {
		n := cell.IntValue(t)
		if n == 0 {
			return cell.I, nil
		}
		return c.heap.AllocatePair(c.stack, cell.K, cell.MakeInt(n-1)), nil
	}
	if !cell.IsPair(t) {
		return c.heap.AllocatePair(c.stack, cell.K, t), nil
	}

	if err := c.stack.Push(c.heap.Cdr(t)); err != nil {
		return 0, err
	}
	uCar, err := c.unabstract(c.heap.Car(t))
	if err != nil {
		return 0, err
	}
	if err := c.stack.Push(uCar); err != nil {
		return 0, err
	}
	g, err := c.unabstract(c.stack.Pushed(1))
	if err != nil {
		return 0, err
	}
	c.stack.SetPushed(1, g)
	f := c.stack.Top()

	h := c.heap
	switch {
	case isK1(h, f):
		switch {
		case g == cell.I:
			// S (K x) I => x
			f = h.Cdr(f)
		case isK1(h, g):
			// S (K x) (K y) => K (x y)
			x := h.Cdr(f)
			h.SetCar(g, x)
			h.SetCdr(f, g)
		case isB2(h, g):
			// S (K x) (B y z) => B* x y z
			h.SetCar(f, cell.BStar)
			inner := h.Car(g)
			h.SetCar(inner, f)
			f = g
		default:
			// S (K x) y => B x y
			h.SetCar(f, cell.B)
			f = h.AllocatePair(c.stack, f, g)
		}
	case isK1(h, g):
		if isB2(h, f) {
			// S (B x y) (K z) => C' x y z
			inner := h.Car(f)
			h.SetCar(inner, cell.CPrime)
			h.SetCar(g, f)
			f = g
		} else {
			// S x (K y) => C x y
			y := h.Cdr(g)
			h.SetCar(g, cell.C)
			h.SetCdr(g, f)
			f = h.AllocatePair(c.stack, g, y)
		}
	case isB2(h, f):
		// S (B x y) z => S' x y z
		inner := h.Car(f)
		h.SetCar(inner, cell.SPrime)
		f = h.AllocatePair(c.stack, f, g)
	default:
		// S x y
		f = h.AllocatePair(c.stack, cell.S, f)
		f = h.AllocatePair(c.stack, f, c.stack.Pushed(1))
	}

	c.stack.Drop(2)
	return f, nil
}

// Unparse writes e's combinator graph in the reference interpreter's
// textual notation (the -p flag), for diagnostic dumps.
func Unparse(w io.Writer, h *heap.Heap, e cell.Cell) {
	switch {
	case cell.IsPair(e):
		fmt.Fprint(w, "`")
		Unparse(w, h, h.Car(e))
		Unparse(w, h, h.Cdr(e))
	case e == cell.S:
		fmt.Fprint(w, "S")
	case e == cell.K:
		fmt.Fprint(w, "K")
	case e == cell.I:
		fmt.Fprint(w, "I")
	case e == cell.B:
		fmt.Fprint(w, "B")
	case e == cell.C:
		fmt.Fprint(w, "C")
	case e == cell.SPrime:
		fmt.Fprint(w, "S'")
	case e == cell.BStar:
		fmt.Fprint(w, "B*")
	case e == cell.CPrime:
		fmt.Fprint(w, "C'")
	case e == cell.KI:
		fmt.Fprint(w, "`ki")
	case cell.IsInt(e):
		fmt.Fprintf(w, "%d", cell.IntValue(e))
	default:
		fmt.Fprint(w, "?")
	}
}
