package bitio_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binlambda/blc/internal/bitio"
)

func TestReadBitMSBFirst(t *testing.T) {
	r := bitio.New(bytes.NewReader([]byte{0b10110000}))
	want := []int{1, 0, 1, 1, 0, 0, 0, 0}
	for i, w := range want {
		bit, err := r.ReadBit()
		require.NoError(t, err, "bit %d", i)
		require.Equal(t, w, bit, "bit %d", i)
	}
	_, err := r.ReadBit()
	require.ErrorIs(t, err, io.EOF)
}

func TestReadBitChainsAcrossSources(t *testing.T) {
	r := bitio.New(
		bytes.NewReader([]byte{0b10000000}),
		bytes.NewReader([]byte{0b01000000}),
	)
	first, err := r.ReadBit()
	require.NoError(t, err)
	require.Equal(t, 1, first)

	for i := 0; i < 7; i++ {
		_, err := r.ReadBit()
		require.NoError(t, err)
	}

	eighth, err := r.ReadBit()
	require.NoError(t, err)
	require.Equal(t, 0, eighth)

	ninth, err := r.ReadBit()
	require.NoError(t, err)
	require.Equal(t, 1, ninth)
}

func TestReadBitEmptySourceListIsImmediateEOF(t *testing.T) {
	r := bitio.New()
	_, err := r.ReadBit()
	require.ErrorIs(t, err, io.EOF)
}

func TestReadByteDiscardsPartiallyConsumedByte(t *testing.T) {
	r := bitio.New(bytes.NewReader([]byte{0b10100000, 0x42}))
	bit, err := r.ReadBit()
	require.NoError(t, err)
	require.Equal(t, 1, bit)

	b, err := r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x42), b)
}
