// Package audio holds PCM16 framing and codec-registration helpers shared by
// cmd/clockdemo: turning arbitrary-sized decoder output into the fixed-size
// frames a playout.Buffer expects, and converting between sample and channel
// counts along the way.
package audio

import "time"

// Format describes PCM16 framing: sample rate, channel count, and the
// duration one frame represents.
type Format struct {
	SampleRate int
	Channels   int
	FrameDur   time.Duration
}

func (f Format) FrameSamples() int {
	sr := f.SampleRate
	if sr < 1 {
		sr = 1
	}
	ch := f.Channels
	if ch < 1 {
		ch = 1
	}
	return int(float64(sr) * f.FrameDur.Seconds() * float64(ch))
}

func (f Format) FrameBytes() int {
	return f.FrameSamples() * 2
}
