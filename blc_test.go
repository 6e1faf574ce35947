package blc_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binlambda/blc"
)

// 0b00100000 parses as \s.s (a lambda over a single variable reference to
// itself), which bracket-abstracts to the bare I combinator. Driven through
// WRITE (I (READ NIL)), the program becomes a byte-for-byte cat: scenario 3
// of spec §8.
func TestRunCatEchoesInputVerbatim(t *testing.T) {
	program := []byte{0b00100000}
	input := []byte("Hi\x00there")
	ip := blc.New(blc.NewConfig(), bytes.NewReader(append(append([]byte{}, program...), input...)))

	term, err := ip.Parse()
	require.NoError(t, err)
	graph, err := ip.Translate(term)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, ip.Run(&out, graph))
	require.Equal(t, input, out.Bytes())
}

// An empty source has no bits at all, so the very first read inside Parse
// fails: spec §8's "Empty program bits -> fatal unexpected EOF".
func TestParseEmptyProgramIsFatal(t *testing.T) {
	ip := blc.New(blc.NewConfig(), bytes.NewReader(nil))
	_, err := ip.Parse()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected EOF")
}

// Stats accumulate across Parse/Translate/Run and report a positive
// reduction count and stack high-water mark once Run has driven the
// program to completion.
func TestStatsReportReductionsAndStackDepth(t *testing.T) {
	program := []byte{0b00100000}
	ip := blc.New(blc.NewConfig(), bytes.NewReader(program))

	term, err := ip.Parse()
	require.NoError(t, err)
	graph, err := ip.Translate(term)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, ip.Run(&out, graph))

	st := ip.Stats()
	require.Greater(t, st.Reductions, 0)
	require.Greater(t, st.MaxStackDepth, 0)
}

// Unparse renders a translated graph in the reference interpreter's
// prefix notation without reducing it, backing the -p flag.
func TestUnparseRendersIdentityAsI(t *testing.T) {
	program := []byte{0b00100000}
	ip := blc.New(blc.NewConfig(), bytes.NewReader(program))

	term, err := ip.Parse()
	require.NoError(t, err)
	graph, err := ip.Translate(term)
	require.NoError(t, err)

	var sb bytes.Buffer
	ip.Unparse(&sb, graph)
	require.Equal(t, "I", sb.String())
}
