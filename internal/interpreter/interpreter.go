// Package interpreter implements the graph reducer: the fixed rewrite
// rules for the combinator set, driven by an explicit spine stack rather
// than the host call stack, so a stuck reduction reports a resource-
// exhaustion error instead of overflowing a real call stack.
package interpreter

import (
	"io"

	"github.com/binlambda/blc/internal/bitio"
	"github.com/binlambda/blc/internal/blcerr"
	"github.com/binlambda/blc/internal/cell"
	"github.com/binlambda/blc/internal/heap"
	"github.com/binlambda/blc/internal/rstack"
)

// Interpreter reduces a combinator graph to weak head normal form,
// driving I/O through the READ/WRITE/PUTC/INC combinators as it goes.
type Interpreter struct {
	heap  *heap.Heap
	stack *rstack.Stack
	input *bitio.Reader
	out   io.Writer

	reductions int
}

// New builds an Interpreter allocating onto h, rooting its spine on s,
// consuming further input bytes (for the READ combinator) from in, and
// writing output bytes (for PUTC) to out.
func New(h *heap.Heap, s *rstack.Stack, in *bitio.Reader, out io.Writer) *Interpreter {
	return &Interpreter{heap: h, stack: s, input: in, out: out}
}

// Reductions returns the cumulative count of rewrite steps applied across
// every Eval call on this Interpreter, for the -s statistics flag.
func (ip *Interpreter) Reductions() int { return ip.reductions }

// Eval reduces root to weak head normal form and returns the resulting
// Cell. Unlike the reference interpreter, which leaves the reduced value
// sitting at the top of the shared reduction stack for a (possibly
// nested, re-entrant) caller to inspect via TOP, Eval pops it before
// returning and hands it back as an ordinary Go value; callers that used
// to read the stack top after a nested eval() read the returned value
// instead. The two are behaviorally equivalent: both leave the stack
// exactly as deep as it was on entry once the call returns.
func (ip *Interpreter) Eval(root cell.Cell) (cell.Cell, error) {
	mark := ip.stack.Mark()
	if err := ip.stack.Push(root); err != nil {
		return 0, err
	}

	h := ip.heap
	s := ip.stack

	arg := func(n int) cell.Cell { return h.Cdr(s.Pushed(n)) }

	for {
		for cell.IsPair(s.Top()) {
			if err := s.Push(h.Car(s.Top())); err != nil {
				return 0, err
			}
		}

		top := s.Top()
		switch {
		case top == cell.I && s.Applicable(mark, 1):
			// I x -> x
			s.Pop()
			s.SetTop(h.Cdr(s.Top()))

		case top == cell.S && s.Applicable(mark, 3):
			// S f g x -> f x (g x)
			a := h.AllocateBlock(s, 2)
			h.SetPairAt(a, 0, arg(1), arg(3))
			h.SetPairAt(a, 1, arg(2), arg(3))
			s.Drop(3)
			h.SetPair(s.Top(), h.OffsetCell(a, 0), h.OffsetCell(a, 1))

		case top == cell.K && s.Applicable(mark, 2):
			// K x y -> I x, shortcut-reduced immediately
			x := arg(1)
			s.Drop(2)
			h.SetPair(s.Top(), cell.I, x)
			s.SetTop(x)

		case top == cell.B && s.Applicable(mark, 3):
			// B f g x -> f (g x)
			gx := h.AllocatePair(s, arg(2), arg(3))
			f := arg(1)
			s.Drop(3)
			h.SetPair(s.Top(), f, gx)

		case top == cell.C && s.Applicable(mark, 3):
			// C f g x -> f x g
			fx := h.AllocatePair(s, arg(1), arg(3))
			g := arg(2)
			s.Drop(3)
			h.SetPair(s.Top(), fx, g)

		case top == cell.SPrime && s.Applicable(mark, 4):
			// S' c f g x -> c (f x) (g x)
			a := h.AllocateBlock(s, 3)
			h.SetPairAt(a, 0, arg(2), arg(4)) // f x
			h.SetPairAt(a, 1, arg(3), arg(4)) // g x
			h.SetPairAt(a, 2, arg(1), h.OffsetCell(a, 0))
			s.Drop(4)
			h.SetPair(s.Top(), h.OffsetCell(a, 2), h.OffsetCell(a, 1))

		case top == cell.BStar && s.Applicable(mark, 4):
			// B* c f g x -> c (f (g x))
			a := h.AllocateBlock(s, 2)
			h.SetPairAt(a, 0, arg(3), arg(4)) // g x
			h.SetPairAt(a, 1, arg(2), h.OffsetCell(a, 0))
			c := arg(1)
			s.Drop(4)
			h.SetPair(s.Top(), c, h.OffsetCell(a, 1))

		case top == cell.CPrime && s.Applicable(mark, 4):
			// C' c f g x -> c (f x) g
			a := h.AllocateBlock(s, 2)
			h.SetPairAt(a, 0, arg(2), arg(4)) // f x
			h.SetPairAt(a, 1, arg(1), h.OffsetCell(a, 0))
			g := arg(3)
			s.Drop(4)
			h.SetPair(s.Top(), h.OffsetCell(a, 1), g)

		case top == cell.Iota && s.Applicable(mark, 1):
			// IOTA x -> x S K
			xs := h.AllocatePair(s, arg(1), cell.S)
			s.Pop()
			h.SetPair(s.Top(), xs, cell.K)

		case top == cell.KI && s.Applicable(mark, 2):
			// KI x y -> I y
			s.Drop(2)
			h.SetCar(s.Top(), cell.I)

		case top == cell.Cons && s.Applicable(mark, 3):
			// CONS x y f -> f x y
			fx := h.AllocatePair(s, arg(3), arg(1))
			y := arg(2)
			s.Drop(3)
			h.SetPair(s.Top(), fx, y)

		case top == cell.Read && s.Applicable(mark, 2):
			// READ NIL f -> CONS CHAR(c) (READ NIL) f, or I KI f at EOF
			b, err := ip.input.ReadByte()
			if err != nil && err != io.EOF {
				return 0, blcerr.New(blcerr.Environment, "read error: %v", err)
			}
			if err == io.EOF {
				s.Pop()
				h.SetPair(s.Top(), cell.I, cell.KI)
			} else {
				a := h.AllocateBlock(s, 2)
				h.SetPairAt(a, 0, cell.Cons, cell.MakeChar(int(b)))
				h.SetPairAt(a, 1, cell.Read, cell.Nil)
				s.Pop()
				h.SetPair(s.Top(), h.OffsetCell(a, 0), h.OffsetCell(a, 1))
			}

		case top == cell.Write && s.Applicable(mark, 1):
			// WRITE x -> x PUTC RETURN
			s.Pop()
			a := h.AllocatePair(s, h.Cdr(s.Top()), cell.Putc)
			h.SetPair(s.Top(), a, cell.Return)

		case top == cell.Putc && s.Applicable(mark, 3):
			// PUTC x y i -> write(byte(eval(x INC 0))); WRITE y
			a := h.AllocateBlock(s, 2)
			h.SetPairAt(a, 0, arg(1), cell.Inc)
			h.SetPairAt(a, 1, h.OffsetCell(a, 0), cell.MakeInt(0))
			s.Drop(2)

			result, err := ip.Eval(h.OffsetCell(a, 1))
			if err != nil {
				return 0, err
			}
			if !cell.IsInt(result) {
				return 0, blcerr.New(blcerr.OutputFormat, "invalid output format (result was not a number)")
			}
			n := cell.IntValue(result)
			if n < 0 || n >= 256 {
				return 0, blcerr.New(blcerr.OutputFormat, "invalid character %d", n)
			}
			if _, err := ip.out.Write([]byte{byte(n)}); err != nil {
				return 0, blcerr.New(blcerr.Environment, "write error: %v", err)
			}

			y := h.Cdr(s.Top())
			h.SetCdr(s.Pushed(1), y)
			s.Pop()
			h.SetCar(s.Top(), cell.Write)

		case top == cell.Return:
			s.Drop(mark - s.Mark())
			return cell.Return, nil

		case top == cell.Inc && s.Applicable(mark, 1):
			// INC x -> eval(x)+1
			c := arg(1)
			s.Pop()
			result, err := ip.Eval(c)
			if err != nil {
				return 0, err
			}
			if !cell.IsInt(result) {
				return 0, blcerr.New(blcerr.OutputFormat, "invalid output format (attempted to apply inc to a non-number)")
			}
			h.SetPair(s.Top(), cell.I, cell.MakeInt(cell.IntValue(result)+1))

		case cell.IsChar(top) && s.Applicable(mark, 2):
			n := cell.CharValue(top)
			if n <= 0 {
				// CHAR(0) f z -> z
				z := arg(2)
				s.Drop(2)
				h.SetPair(s.Top(), cell.I, z)
			} else {
				// CHAR(n+1) f z -> f (CHAR(n) f z)
				a := h.AllocateBlock(s, 2)
				f := arg(1)
				h.SetPairAt(a, 0, cell.MakeChar(n-1), f)
				h.SetPairAt(a, 1, h.OffsetCell(a, 0), arg(2))
				s.Drop(2)
				h.SetPair(s.Top(), f, h.OffsetCell(a, 1))
			}

		case cell.IsInt(top) && s.Applicable(mark, 1):
			return 0, blcerr.New(blcerr.OutputFormat, "invalid output format (attempted to apply a number)")

		default:
			// The root slot holds the weak head normal form, rewritten in
			// place above; drop the spine frames pushed on top of it.
			depth := mark - s.Mark()
			whnf := s.Pushed(depth - 1)
			s.Drop(depth)
			return whnf, nil
		}

		ip.reductions++
	}
}
