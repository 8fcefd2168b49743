// Package rtpsource adapts RTP packet arrival (github.com/pion/rtp) into
// clock.Clock updates: it unwraps the 32-bit RTP timestamp into a monotonic
// tick counter and rescales it from the codec's clock rate into the
// normalized microsecond stream domain clock.Clock expects.
package rtpsource

import (
	"github.com/pion/rtp"

	"github.com/blitss/streamclock/internal/clock"
)

const uint32Overflow = int64(1) << 32

// Source tracks one RTP stream's sequence and feeds (stream_us,
// arrival_system_us) pairs into a clock.Clock as packets arrive.
type Source struct {
	clockRate int64
	clk       *clock.Clock
	sys       clock.SystemClock
	log       clock.Logger

	haveFirst bool
	lastTS    int64
}

// NewSource creates a Source for a stream encoded at clockRate Hz (e.g. 8000
// for G.711, 48000 for Opus), feeding clk. sys and log default to a real
// monotonic clock and a no-op logger when nil.
func NewSource(clockRate int, clk *clock.Clock, sys clock.SystemClock, log clock.Logger) *Source {
	if clockRate < 1 {
		clockRate = 1
	}
	if sys == nil {
		sys = clock.RealSystemClock{}
	}
	return &Source{clockRate: int64(clockRate), clk: clk, sys: sys, log: log}
}

// HandleRTP unwraps pkt's RTP timestamp and reports it, alongside the
// arrival system time, to the underlying clock. canPace and bufferingAllowed
// are forwarded to clock.Clock.Update unchanged. It returns the
// stream-domain microsecond timestamp it derived, so callers can hand the
// same value to a playout.Gate.
func (s *Source) HandleRTP(pkt *rtp.Packet, canPace, bufferingAllowed bool) int64 {
	ts := s.unwrap(int64(pkt.Timestamp))
	streamUs := ts * clock.Freq / s.clockRate

	systemUs := s.sys.Now()
	s.clk.Update(streamUs, systemUs, canPace, bufferingAllowed)

	if s.log != nil {
		s.log.Infow("rtpsource: packet", "seq", pkt.SequenceNumber, "ts", ts, "stream_us", streamUs)
	}
	return streamUs
}

func (s *Source) unwrap(ts int64) int64 {
	if !s.haveFirst {
		s.haveFirst = true
		s.lastTS = ts
		return ts
	}
	for ts < s.lastTS {
		ts += uint32Overflow
	}
	s.lastTS = ts
	return ts
}

// Reset clears the unwrap state, for use after a stream restart (new SSRC or
// a renegotiated call leg) so a lower raw timestamp isn't mistaken for a
// 32-bit wrap of the old stream.
func (s *Source) Reset() {
	s.haveFirst = false
	s.lastTS = 0
}
