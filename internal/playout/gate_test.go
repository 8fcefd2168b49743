package playout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blitss/streamclock/internal/clock"
)

func TestGateNextFrameUnderflowReturnsFalse(t *testing.T) {
	clk := clock.New(nil, nil)
	buf := NewBuffer(4)
	g := NewGate(clk, buf, 10_000, nil)

	dst := make([]byte, 4)
	ok := g.NextFrame(dst)
	require.False(t, ok)
}

func TestGateNextFrameDrainsBacklogAboveTarget(t *testing.T) {
	clk := clock.New(nil, nil)
	clk.Update(0, 0, true, true)
	buf := NewBuffer(4)
	g := NewGate(clk, buf, 10_000, nil)

	for i := 0; i < 20; i++ {
		buf.WriteFrame([]byte{1, 2, 3, 4})
	}

	dst := make([]byte, 4)
	for i := 0; i < 10; i++ {
		g.NextFrame(dst)
	}
	require.Less(t, buf.LenFrames(), 20)
}

func TestGatePresentationTimeNoReferenceReturnsError(t *testing.T) {
	clk := clock.New(nil, nil)
	buf := NewBuffer(4)
	g := NewGate(clk, buf, 10_000, nil)

	_, err := g.PresentationTime(1000, false)
	require.ErrorIs(t, err, clock.ErrNoReference)
}

func TestGateWakeupZeroWithoutReference(t *testing.T) {
	clk := clock.New(nil, nil)
	buf := NewBuffer(4)
	g := NewGate(clk, buf, 10_000, nil)
	require.Equal(t, int64(0), g.Wakeup())
}
