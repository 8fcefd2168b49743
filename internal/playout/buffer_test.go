package playout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferWriteAndReadExact(t *testing.T) {
	b := NewBuffer(4)
	b.WriteFrame([]byte{1, 2, 3, 4})
	require.Equal(t, 1, b.LenFrames())

	dst := make([]byte, 4)
	ok := b.ReadInto(dst)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, dst)
	require.Equal(t, 0, b.LenFrames())
}

func TestBufferReadIntoUnderflowZeroesDst(t *testing.T) {
	b := NewBuffer(4)
	dst := []byte{9, 9, 9, 9}
	ok := b.ReadInto(dst)
	require.False(t, ok)
	require.Equal(t, []byte{0, 0, 0, 0}, dst)
}

func TestBufferWriteFrameIgnoresSizeMismatch(t *testing.T) {
	b := NewBuffer(4)
	b.WriteFrame([]byte{1, 2, 3})
	require.Equal(t, 0, b.LenFrames())
}

func TestBufferDropFramesBoundedByAvailable(t *testing.T) {
	b := NewBuffer(2)
	b.WriteFrame([]byte{1, 2})
	b.WriteFrame([]byte{3, 4})
	dropped := b.DropFrames(10)
	require.Equal(t, 2, dropped)
	require.Equal(t, 0, b.LenFrames())
}

func TestBufferReadIntoAdjustPositiveConsumesExtraSample(t *testing.T) {
	b := NewBuffer(8)
	// Two frames worth of silence, so the frameSize+2 bytes a +1
	// adjustment consumes are available.
	b.WriteFrame(make([]byte, 8))
	b.WriteFrame(make([]byte, 8))
	dst := make([]byte, 8)
	ok := b.ReadIntoAdjust(dst, 1)
	require.True(t, ok)
	// Consumed frameSize+2=10 bytes from a 16-byte buffer, leaving 6.
	require.Equal(t, 6, len(b.buf))
}

func TestBufferReadIntoAdjustNegativeConsumesFewerBytes(t *testing.T) {
	b := NewBuffer(8)
	b.WriteFrame(make([]byte, 8))
	dst := make([]byte, 8)
	ok := b.ReadIntoAdjust(dst, -1)
	require.True(t, ok)
	// Consumed frameSize-2=6 bytes from an 8-byte buffer, leaving 2.
	require.Equal(t, 2, len(b.buf))
}
