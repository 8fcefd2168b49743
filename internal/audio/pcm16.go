package audio

import (
	"encoding/binary"

	msdk "github.com/livekit/media-sdk"
)

// PCM16SampleToBytes serializes src into little-endian PCM16 bytes, reusing
// dst's backing array when it's already large enough.
func PCM16SampleToBytes(dst []byte, src msdk.PCM16Sample) []byte {
	need := len(src) * 2
	if cap(dst) < need {
		dst = make([]byte, need)
	} else {
		dst = dst[:need]
	}
	for i, s := range src {
		binary.LittleEndian.PutUint16(dst[i*2:i*2+2], uint16(s))
	}
	return dst
}

// PCM16ConvertChannels remaps src from inCh channels to outCh, interleaved.
// Stereo-to-mono averages the pair; mono-to-stereo duplicates the sample;
// any other combination truncates to whole input frames and repeats the
// first channel across the output frame.
func PCM16ConvertChannels(dst msdk.PCM16Sample, src msdk.PCM16Sample, inCh int, outCh int) msdk.PCM16Sample {
	if inCh <= 0 {
		inCh = 1
	}
	if outCh <= 0 {
		outCh = 1
	}
	if inCh == outCh {
		if cap(dst) < len(src) {
			dst = make(msdk.PCM16Sample, len(src))
		} else {
			dst = dst[:len(src)]
		}
		copy(dst, src)
		return dst
	}
	if inCh == 2 && outCh == 1 {
		n := len(src) / 2
		if cap(dst) < n {
			dst = make(msdk.PCM16Sample, n)
		} else {
			dst = dst[:n]
		}
		for i := 0; i < n; i++ {
			l := int32(src[i*2])
			r := int32(src[i*2+1])
			dst[i] = int16((l + r) / 2)
		}
		return dst
	}
	if inCh == 1 && outCh == 2 {
		n := len(src) * 2
		if cap(dst) < n {
			dst = make(msdk.PCM16Sample, n)
		} else {
			dst = dst[:n]
		}
		for i := 0; i < len(src); i++ {
			v := src[i]
			dst[i*2] = v
			dst[i*2+1] = v
		}
		return dst
	}
	// Fallback: best effort (truncate to whole frames, copy first channel).
	frames := len(src) / inCh
	n := frames * outCh
	if cap(dst) < n {
		dst = make(msdk.PCM16Sample, n)
	} else {
		dst = dst[:n]
	}
	for f := 0; f < frames; f++ {
		v := src[f*inCh]
		for c := 0; c < outCh; c++ {
			dst[f*outCh+c] = v
		}
	}
	return dst
}

// Assembler accumulates PCM16 samples and slices them into fixed-size
// frames as enough data arrives. It does not assume any relationship
// between the size of a Push call and frameSamples: a single push can
// emit zero, one, or several frames, and a frame can straddle two pushes.
type Assembler struct {
	frameSamples int
	buf          msdk.PCM16Sample
}

func NewAssembler(frameSamples int) *Assembler {
	if frameSamples < 1 {
		frameSamples = 1
	}
	return &Assembler{frameSamples: frameSamples}
}

// Push appends in to the assembler's backing buffer and returns every
// complete frameSamples-sized frame it can now slice off. Leftover samples
// short of a full frame are carried over to the next Push.
func (a *Assembler) Push(in msdk.PCM16Sample) []msdk.PCM16Sample {
	if len(in) == 0 {
		return nil
	}
	a.buf = append(a.buf, in...)
	var out []msdk.PCM16Sample
	for len(a.buf) >= a.frameSamples {
		frame := make(msdk.PCM16Sample, a.frameSamples)
		copy(frame, a.buf[:a.frameSamples])
		out = append(out, frame)
		a.buf = a.buf[a.frameSamples:]
	}
	return out
}
