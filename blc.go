// Package blc is the top-level facade over the binary lambda calculus
// interpreter: it wires internal/bitio, internal/parser, internal/compiler,
// internal/heap, internal/rstack and internal/interpreter into the driver
// described by spec §4.8, the way wazero's top-level package wires
// internal/wasm and an internal/engine into a single Runtime.
package blc

import (
	"io"
	"time"

	"github.com/binlambda/blc/internal/bitio"
	"github.com/binlambda/blc/internal/cell"
	"github.com/binlambda/blc/internal/compiler"
	"github.com/binlambda/blc/internal/heap"
	"github.com/binlambda/blc/internal/interpreter"
	"github.com/binlambda/blc/internal/parser"
	"github.com/binlambda/blc/internal/rstack"
)

// Defaults matching the reference interpreter's INITIAL_HEAP_SIZE and
// STACK_SIZE constants (spec §4.2, §4.3).
const (
	DefaultHeapSize      = 128 * 1024
	DefaultStackCapacity = 100_000
)

// Config controls the resource limits and diagnostics of an Interpreter.
// The zero value is not usable; build one with NewConfig and the With*
// methods, mirroring wazero's RuntimeConfig.
type Config struct {
	heapSize      int
	stackCapacity int
	gcLog         io.Writer
}

// NewConfig returns a Config with the reference interpreter's defaults.
func NewConfig() *Config {
	return &Config{heapSize: DefaultHeapSize, stackCapacity: DefaultStackCapacity}
}

// clone ensures all fields are copied even if a future field is a pointer,
// the same defensive copy wazero's RuntimeConfig.clone does.
func (c *Config) clone() *Config {
	ret := *c
	return &ret
}

// WithHeapSize sets the initial number of Pair cells in each heap half.
func (c *Config) WithHeapSize(n int) *Config {
	ret := c.clone()
	ret.heapSize = n
	return ret
}

// WithStackCapacity sets the reduction stack's fixed capacity.
func (c *Config) WithStackCapacity(n int) *Config {
	ret := c.clone()
	ret.stackCapacity = n
	return ret
}

// WithGCLog enables per-cycle "GC: <live> / <size>" notifications (the -g
// flag), written to w. A nil w (the default) disables them.
func (c *Config) WithGCLog(w io.Writer) *Config {
	ret := c.clone()
	ret.gcLog = w
	return ret
}

// Stats is the statistics block the -s flag prints at termination.
type Stats struct {
	Reductions int
	// ReduceTime is wall-clock time spent reducing, excluding GCTime.
	ReduceTime    time.Duration
	GCTime        time.Duration
	MaxStackDepth int
}

// Interpreter bundles a heap, a reduction stack, an input bit stream, and
// the parser/compiler/reducer that operate over them. Construct one with
// New; it is not safe for concurrent use (the system is single-threaded by
// design, spec §5).
type Interpreter struct {
	heap  *heap.Heap
	stack *rstack.Stack
	bits  *bitio.Reader
	eval  *interpreter.Interpreter

	reduceTime time.Duration
}

// New builds an Interpreter reading its program and, after parsing, its
// program's own input stream from sources in order, and from nothing else:
// New does not add standard input itself. cmd/blc implements spec §6's
// fallback by passing os.Stdin as the last source after the named files.
func New(cfg *Config, sources ...io.Reader) *Interpreter {
	if cfg == nil {
		cfg = NewConfig()
	}
	h := heap.New(cfg.heapSize, cfg.gcLog)
	s := rstack.New(cfg.stackCapacity)
	bits := bitio.New(sources...)
	return &Interpreter{heap: h, stack: s, bits: bits}
}

// Parse decodes exactly one program term from the front of the bit stream,
// per the grammar in spec §4.5. Trailing bits are left for the running
// program to consume later via READ.
func (ip *Interpreter) Parse() (cell.Cell, error) {
	return parser.New(ip.bits, ip.heap, ip.stack).Parse()
}

// Translate performs bracket abstraction over a parsed term (spec §4.6),
// producing the combinator graph Run expects as its root.
func (ip *Interpreter) Translate(term cell.Cell) (cell.Cell, error) {
	return compiler.New(ip.heap, ip.stack).Translate(term)
}

// Unparse writes a combinator graph in the reference interpreter's prefix
// notation (the -p flag), without reducing it.
func (ip *Interpreter) Unparse(w io.Writer, graph cell.Cell) {
	compiler.Unparse(w, ip.heap, graph)
}

// Run wraps a compiled program root in the I/O driver harness (spec §4.8:
// WRITE (root (READ NIL))) and reduces it to completion, writing output
// bytes to out as they are produced. The same Interpreter's bit stream
// continues to serve as the program's input once parsing is done, per
// spec §6.
func (ip *Interpreter) Run(out io.Writer, root cell.Cell) error {
	ip.eval = interpreter.New(ip.heap, ip.stack, ip.bits, out)

	readNil := ip.heap.AllocatePair(ip.stack, cell.Read, cell.Nil)
	applied := ip.heap.AllocatePair(ip.stack, root, readNil)
	driver := ip.heap.AllocatePair(ip.stack, cell.Write, applied)

	start := time.Now()
	_, err := ip.eval.Eval(driver)
	ip.reduceTime += time.Since(start)
	return err
}

// Stats reports the accumulated reduction count, reduction wall-clock
// time, GC wall-clock time and maximum reduction-stack depth observed so
// far, for the -s statistics flag. Per spec §5 these are observational,
// not semantic.
func (ip *Interpreter) Stats() Stats {
	reductions := 0
	if ip.eval != nil {
		reductions = ip.eval.Reductions()
	}
	gcTime := ip.heap.GCTime()
	reduceTime := ip.reduceTime - gcTime
	if reduceTime < 0 {
		reduceTime = 0
	}
	return Stats{
		Reductions:    reductions,
		ReduceTime:    reduceTime,
		GCTime:        gcTime,
		MaxStackDepth: ip.stack.MaxDepth(),
	}
}
