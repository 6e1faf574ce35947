// Package bitio implements the MSB-first bit-stream reader the parser
// decodes binary lambda calculus programs from, reading across a sequence
// of io.Readers concatenated end to end (spec §6's multi-file semantics).
package bitio

import (
	"io"

	"github.com/binlambda/blc/internal/blcerr"
)

// Reader reads individual bits, most significant bit first, out of a
// sequence of sources. Once a source is exhausted reading moves on to the
// next source in the list, matching the reference interpreter's
// input_init()/read_char() chaining across argv file arguments. Sources
// are never closed here; whoever opened them closes them.
type Reader struct {
	sources []io.Reader
	idx     int

	cur  byte
	mask byte // 0 means "no bits buffered, read a fresh byte"
}

// New wraps an ordered list of sources as a single bit stream. Reading
// continues into sources[i+1] once sources[i] returns io.EOF.
func New(sources ...io.Reader) *Reader {
	return &Reader{sources: sources}
}

// ReadBit returns the next bit (0 or 1) across the source chain, or io.EOF
// once every source is exhausted.
func (r *Reader) ReadBit() (int, error) {
	if r.mask == 0 {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		r.cur = b
		r.mask = 0x80
	}
	bit := 0
	if r.cur&r.mask != 0 {
		bit = 1
	}
	r.mask >>= 1
	return bit, nil
}

// ReadByte reads one full byte from the stream, discarding any bits of the
// current byte left unconsumed by a prior ReadBit. This mirrors the
// reference interpreter's direct use of read_char() by the READ
// combinator: once the program's bit-stream has been parsed, the
// remaining input data is consumed byte-at-a-time starting at the next
// byte boundary, even if the parser stopped mid-byte. Returns io.EOF once
// every source is exhausted.
func (r *Reader) ReadByte() (byte, error) {
	r.mask = 0
	return r.readByte()
}

// readByte pulls the next raw byte, advancing to subsequent sources on EOF.
func (r *Reader) readByte() (byte, error) {
	var buf [1]byte
	for r.idx < len(r.sources) {
		n, err := r.sources[r.idx].Read(buf[:])
		if n == 1 {
			return buf[0], nil
		}
		if err != nil && err != io.EOF {
			return 0, blcerr.New(blcerr.Environment, "read error: %v", err)
		}
		r.idx++
	}
	return 0, io.EOF
}
