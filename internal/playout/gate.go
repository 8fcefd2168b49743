package playout

import (
	"math"

	"github.com/blitss/streamclock/internal/clock"
)

// Gate paces Buffer consumption against a clock.Clock. It nudges consumption
// toward the clock's own BufferingDuration, converted from stream-domain
// microseconds into frames, with a small integrating hysteresis so a single
// noisy sample doesn't cause a +/-1 sample correction by itself. Wakeup and
// PresentationTime are read straight from the clock instead of a bare
// ticker, so pacing tracks the clock's own drift/jitter estimate.
type Gate struct {
	clk *clock.Clock
	buf *Buffer
	log clock.Logger

	frameDurUs int64
	driftAcc   int
}

// NewGate creates a Gate pacing buf against clk. frameDurUs is the duration
// of one Buffer frame in stream-domain microseconds (e.g. 10_000 for 10ms).
func NewGate(clk *clock.Clock, buf *Buffer, frameDurUs int64, log clock.Logger) *Gate {
	if frameDurUs < 1 {
		frameDurUs = 1
	}
	return &Gate{clk: clk, buf: buf, frameDurUs: frameDurUs, log: log}
}

// NextFrame writes the next frame to present into dst, applying a +/-1
// sample drift nudge toward the clock's current buffering target. ok is
// false on underflow (dst is zeroed in that case, per Buffer.ReadIntoAdjust).
func (g *Gate) NextFrame(dst []byte) (ok bool) {
	backlogFrames := g.buf.LenFrames()
	targetFrames := int(g.clk.BufferingDuration() / g.frameDurUs)
	if targetFrames < 1 {
		targetFrames = 1
	}

	errFrames := backlogFrames - targetFrames
	switch {
	case errFrames >= 2:
		g.driftAcc += errFrames / 2
	case errFrames <= -2:
		g.driftAcc += errFrames / 2
	}

	adjust := 0
	switch {
	case g.driftAcc > 0:
		adjust = 1
		g.driftAcc--
	case g.driftAcc < 0:
		adjust = -1
		g.driftAcc++
	}

	return g.buf.ReadIntoAdjust(dst, adjust)
}

// PresentationTime converts a decoded frame's stream timestamp into a
// system-domain presentation time via the underlying clock, per
// clock.Clock.ConvertTS. isVideo feeds the decoder-latency estimator.
func (g *Gate) PresentationTime(ts0 int64, isVideo bool) (int64, error) {
	_, out0, _, err := g.clk.ConvertTS(ts0, clock.InvalidTS, math.MaxInt64, isVideo)
	return out0, err
}

// Wakeup reports the system time the caller should next pull a frame at,
// per clock.Clock.GetWakeup.
func (g *Gate) Wakeup() int64 {
	return g.clk.GetWakeup()
}

// PushFrame feeds one decoded frame into the backing Buffer.
func (g *Gate) PushFrame(frame []byte) {
	g.buf.WriteFrame(frame)
}

// DropFrames drops up to n oldest buffered frames, for an emergency backlog
// cap above the clock's own buffering target.
func (g *Gate) DropFrames(n int) int {
	return g.buf.DropFrames(n)
}
