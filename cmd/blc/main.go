// Command blc is the binary lambda calculus interpreter's CLI: it parses
// the flags of spec §6 (-g, -s, -p, -u), opens the positional source files
// (or falls back to standard input), and drives package blc to completion.
//
// This mirrors cmd/wazero/wazero.go's shape: a thin main that delegates to
// an unexported doMain that tests call directly, built from flag.FlagSet rather than
// a third-party CLI library.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/binlambda/blc"
	"github.com/binlambda/blc/internal/blcerr"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr, os.Args[1:]))
}

// doMain is separated from main for unit testing, the same split
// cmd/wazero/wazero.go uses for doMain/doCompile/doRun.
func doMain(stdout io.Writer, stderr io.Writer, args []string) int {
	flags := flag.NewFlagSet("blc", flag.ContinueOnError)
	flags.SetOutput(stderr)

	gcLog := flags.Bool("g", false, "print a \"GC: <live> / <size>\" line to stderr after every collection cycle")
	stats := flags.Bool("s", false, "print a reduction/GC statistics block to stderr at termination")
	parseOnly := flags.Bool("p", false, "parse and translate only; print the combinator expression in prefix form and exit")
	unbuffered := flags.Bool("u", false, "disable output buffering on standard output")

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		// flag.Parse already printed its own diagnostic; spec §6 names the
		// canonical message for this Environment error.
		fmt.Fprintln(stderr, "Error: unknown option")
		return 1
	}

	sources, closeSources, err := openSources(flags.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeSources()

	cfg := blc.NewConfig()
	if *gcLog {
		cfg = cfg.WithGCLog(stderr)
	}

	ip := blc.New(cfg, sources...)

	term, err := ip.Parse()
	if err != nil {
		return reportError(stderr, err)
	}
	graph, err := ip.Translate(term)
	if err != nil {
		return reportError(stderr, err)
	}

	if *parseOnly {
		ip.Unparse(stdout, graph)
		fmt.Fprintln(stdout)
		return 0
	}

	out := stdout
	var flush func() error
	if !*unbuffered {
		bw := bufio.NewWriter(stdout)
		out = bw
		flush = bw.Flush
	}

	runErr := ip.Run(out, graph)

	if flush != nil {
		if ferr := flush(); ferr != nil && runErr == nil {
			runErr = ferr
		}
	}

	if *stats {
		st := ip.Stats()
		fmt.Fprintf(stderr, "reductions: %d\n", st.Reductions)
		fmt.Fprintf(stderr, "reduce time: %s\n", st.ReduceTime)
		fmt.Fprintf(stderr, "gc time: %s\n", st.GCTime)
		fmt.Fprintf(stderr, "max stack depth: %d\n", st.MaxStackDepth)
	}

	if runErr != nil {
		return reportError(stderr, runErr)
	}
	return 0
}

// openSources opens the positional file arguments in order, per spec §6:
// zero or more named files, read through to standard input once the last
// one is exhausted (or immediately, if none were named). Files are opened
// eagerly here so a bad path fails fast with an Environment error rather
// than mid-parse.
func openSources(paths []string) ([]io.Reader, func(), error) {
	var files []*os.File
	sources := make([]io.Reader, 0, len(paths)+1)
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, nil, blcerr.New(blcerr.Environment, "cannot open %q: %v", p, err)
		}
		files = append(files, f)
		sources = append(sources, f)
	}
	sources = append(sources, os.Stdin)
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	return sources, closeAll, nil
}

func reportError(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
