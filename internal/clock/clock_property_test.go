package clock

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyStreamToSystemMonotonic checks P1: for a fixed reference and
// rate, stream_to_system is non-decreasing in its input.
func TestPropertyStreamToSystemMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := New(nil, nil)
		ref := rapid.Int64Range(-1_000_000_000, 1_000_000_000).Draw(rt, "ref")
		sys := rapid.Int64Range(-1_000_000_000, 1_000_000_000).Draw(rt, "sys")
		c.Update(ref, sys, true, false)

		a := rapid.Int64Range(-1_000_000, 1_000_000).Draw(rt, "a")
		b := rapid.Int64Range(-1_000_000, 1_000_000).Draw(rt, "b")
		if a > b {
			a, b = b, a
		}

		sa := c.StreamToSystem(a)
		sb := c.StreamToSystem(b)
		if sb < sa {
			rt.Fatalf("stream_to_system not monotonic: f(%d)=%d > f(%d)=%d", a, sa, b, sb)
		}
	})
}

// TestPropertySystemToStreamInvertsStreamToSystem checks P4: system_to_stream
// is the exact inverse of stream_to_system for rate == RateDefault, where
// every division in the affine map is exact (divisor 1).
func TestPropertySystemToStreamInvertsStreamToSystem(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := New(nil, nil)
		ref := rapid.Int64Range(-1_000_000_000, 1_000_000_000).Draw(rt, "ref")
		sys := rapid.Int64Range(-1_000_000_000, 1_000_000_000).Draw(rt, "sys")
		c.Update(ref, sys, true, false)

		stream := rapid.Int64Range(-1_000_000_000, 1_000_000_000).Draw(rt, "stream")
		roundTripped := c.SystemToStream(c.StreamToSystem(stream))
		if roundTripped != stream {
			rt.Fatalf("round trip mismatch: stream=%d got=%d", stream, roundTripped)
		}
	})
}

// TestPropertyRescalePreservesNumerator checks P8: Rescale leaves
// value*divider+residue unchanged.
func TestPropertyRescalePreservesNumerator(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		divider := rapid.Int64Range(1, 200).Draw(rt, "divider")
		a := NewAverage(DriftWindow, divider)

		n := rapid.IntRange(0, 50).Draw(rt, "n")
		for i := 0; i < n; i++ {
			sample := rapid.Int64Range(-1_000_000, 1_000_000).Draw(rt, "sample")
			a.Update(sample)
		}

		before := a.value*a.divider + a.residue
		newDivider := rapid.Int64Range(1, 200).Draw(rt, "newDivider")
		a.Rescale(newDivider)
		after := a.value*a.divider + a.residue

		if before != after {
			rt.Fatalf("rescale changed numerator: before=%d after=%d", before, after)
		}
		if a.Divider() != newDivider {
			rt.Fatalf("divider not updated: want %d got %d", newDivider, a.Divider())
		}
	})
}

// TestPropertyBufferingDurationNeverExceedsTarget checks the buffering
// controller's saturation bound: bufferingDuration never exceeds
// BufferingTarget regardless of how large the stream gaps are.
func TestPropertyBufferingDurationNeverExceedsTarget(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := New(nil, nil)
		stream := int64(0)
		system := int64(0)
		c.Update(stream, system, true, true)

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			gap := rapid.Int64Range(0, 10_000_000).Draw(rt, "gap")
			stream += gap
			system += gap
			c.Update(stream, system, true, true)

			if got := c.BufferingDuration(); got > BufferingTarget || got < 0 {
				rt.Fatalf("buffering duration out of range: %d", got)
			}
		}
	})
}

// TestPropertyGetJitterIsPtsDelayPlusBoundedMedian checks that GetJitter never
// returns less than pts_delay (the median of non-negative lateness samples is
// always >= 0).
func TestPropertyGetJitterIsPtsDelayPlusBoundedMedian(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := New(nil, nil)
		ptsDelay := rapid.Int64Range(0, 500_000).Draw(rt, "ptsDelay")
		c.ptsDelay = ptsDelay

		for i := range c.lateRing {
			c.lateRing[i] = rapid.Int64Range(0, 1_000_000).Draw(rt, "late")
		}

		if got := c.GetJitter(); got < ptsDelay {
			rt.Fatalf("jitter below pts_delay floor: %d < %d", got, ptsDelay)
		}
	})
}
