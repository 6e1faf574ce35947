// Package parser decodes a binary lambda calculus program from a bit
// stream into the De Bruijn-indexed term tree internal/compiler expects:
// variables as cell.Int cells carrying the De Bruijn index, lambdas as
// (cell.Lambda . body) pairs, and applications as plain (fn . arg) pairs.
package parser

import (
	"github.com/binlambda/blc/internal/bitio"
	"github.com/binlambda/blc/internal/blcerr"
	"github.com/binlambda/blc/internal/cell"
	"github.com/binlambda/blc/internal/heap"
	"github.com/binlambda/blc/internal/rstack"
)

// Parser decodes one term per call to Parse, threading allocation through
// a Heap and using a Stack both to root in-progress subterms across
// allocations and to detect runaway recursion via stack exhaustion.
type Parser struct {
	bits  *bitio.Reader
	heap  *heap.Heap
	stack *rstack.Stack
}

// New builds a Parser reading bits from bits, allocating Pairs on h and
// rooting intermediate terms on s.
func New(bits *bitio.Reader, h *heap.Heap, s *rstack.Stack) *Parser {
	return &Parser{bits: bits, heap: h, stack: s}
}

// Parse decodes exactly one term. Three productions are distinguished by
// up to two leading bits: a variable is "1" followed by a unary count of
// further "1" bits and a terminating "0" (the De Bruijn index is the
// count of extra ones); an application is "01" followed by two terms; a
// lambda is "00" followed by one term. This bit assignment — application
// before lambda under a shared "0" prefix — is the one the reference
// interpreter's parse() actually implements; a superficial reading of the
// production names suggests the opposite pairing, but the call sequence
// of read_bit() settles it.
func (p *Parser) Parse() (cell.Cell, error) {
	first, err := p.readBit()
	if err != nil {
		return 0, err
	}
	if first == 1 {
		n := 0
		for {
			bit, err := p.readBit()
			if err != nil {
				return 0, err
			}
			if bit == 0 {
				break
			}
			n++
		}
		return cell.MakeInt(int64(n)), nil
	}

	second, err := p.readBit()
	if err != nil {
		return 0, err
	}
	if second == 1 {
		fn, err := p.Parse()
		if err != nil {
			return 0, err
		}
		if err := p.stack.Push(fn); err != nil {
			return 0, err
		}
		arg, err := p.Parse()
		if err != nil {
			return 0, err
		}
		result := p.heap.AllocatePair(p.stack, p.stack.Top(), arg)
		p.stack.Pop()
		return result, nil
	}

	body, err := p.Parse()
	if err != nil {
		return 0, err
	}
	return p.heap.AllocatePair(p.stack, cell.Lambda, body), nil
}

func (p *Parser) readBit() (int, error) {
	bit, err := p.bits.ReadBit()
	if err != nil {
		return 0, blcerr.New(blcerr.MalformedProgram, "unexpected EOF while parsing program")
	}
	return bit, nil
}
