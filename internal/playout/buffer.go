// Package playout paces decoded PCM audio against a clock.Clock: it absorbs
// bursty arrival from the decoder in a byte FIFO and lets a Gate nudge
// consumption by one sample per frame so playback tracks the clock's drift
// estimate instead of free-running or dropping whole frames.
package playout

import "sync"

// Buffer is a byte FIFO for fixed-size PCM16 frames. It does not time-stretch
// on its own; ReadIntoAdjust does, by +/-1 sample per frame. Underflow
// returns a zeroed frame; overflow is bounded by the caller via DropFrames.
type Buffer struct {
	frameSize int

	mu  sync.Mutex
	buf []byte
}

// NewBuffer creates a Buffer for frames of exactly frameSize bytes.
func NewBuffer(frameSize int) *Buffer {
	if frameSize < 1 {
		frameSize = 1
	}
	return &Buffer{
		frameSize: frameSize,
		buf:       make([]byte, 0, frameSize*50),
	}
}

func (b *Buffer) FrameSize() int { return b.frameSize }

func (b *Buffer) LenFrames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf) / b.frameSize
}

// WriteFrame appends exactly one frame. A size mismatch is ignored.
func (b *Buffer) WriteFrame(frame []byte) {
	if len(frame) != b.frameSize {
		return
	}
	b.mu.Lock()
	b.buf = append(b.buf, frame...)
	b.mu.Unlock()
}

// DropFrames drops up to n oldest frames and returns how many were dropped.
func (b *Buffer) DropFrames(n int) int {
	if n <= 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	available := len(b.buf) / b.frameSize
	if available <= 0 {
		return 0
	}
	if n > available {
		n = available
	}
	b.buf = b.buf[n*b.frameSize:]
	return n
}

// ReadInto writes one frame into dst with no drift adjustment.
func (b *Buffer) ReadInto(dst []byte) (ok bool) {
	return b.ReadIntoAdjust(dst, 0)
}

// ReadIntoAdjust outputs exactly one frame into dst, consuming frameSize+/-2
// bytes (one PCM16 sample) from the backing buffer to slightly time-compress
// (+1) or time-expand (-1) playback. Returns ok=false if there wasn't enough
// data; dst is then zeroed.
func (b *Buffer) ReadIntoAdjust(dst []byte, adjustSamples int) (ok bool) {
	if len(dst) != b.frameSize {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if adjustSamples > 1 {
		adjustSamples = 1
	} else if adjustSamples < -1 {
		adjustSamples = -1
	}

	if b.frameSize%2 != 0 {
		if len(b.buf) < b.frameSize {
			clear(dst)
			return false
		}
		copy(dst, b.buf[:b.frameSize])
		b.buf = b.buf[b.frameSize:]
		return true
	}

	inBytes := b.frameSize + adjustSamples*2
	if inBytes < 0 {
		inBytes = 0
	}
	if len(b.buf) < inBytes || inBytes == 0 {
		clear(dst)
		return false
	}

	in := b.buf[:inBytes]
	b.buf = b.buf[inBytes:]

	switch adjustSamples {
	case 0:
		copy(dst, in[:b.frameSize])
		return true
	case 1:
		dropAt := b.spliceOffsetLocked(in)
		if dropAt > b.frameSize {
			dropAt = b.frameSize
		}
		copy(dst[:dropAt], in[:dropAt])
		copy(dst[dropAt:], in[dropAt+2:])
		return true
	case -1:
		dupAt := b.spliceOffsetLocked(in)
		if dupAt < 2 {
			dupAt = 2
		}
		if dupAt > b.frameSize-2 {
			dupAt = b.frameSize - 2
		}
		leftOff := dupAt - 2
		rightOff := dupAt
		if rightOff > len(in)-2 {
			rightOff = len(in) - 2
		}
		l := readS16(in, leftOff)
		rv := readS16(in, rightOff)
		ins := int16((int32(l) + int32(rv)) / 2)
		copy(dst[:dupAt], in[:dupAt])
		dst[dupAt] = byte(uint16(ins))
		dst[dupAt+1] = byte(uint16(ins) >> 8)
		copy(dst[dupAt+2:], in[dupAt:])
		return true
	default:
		copy(dst, in[:b.frameSize])
		return true
	}
}

// spliceOffsetLocked picks where in in to insert or remove one PCM16 sample
// so the edit falls on the quietest part of the signal it can find, which is
// the part least likely to produce an audible click. The search window
// scales with the frame size rather than using a fixed byte count, so it
// behaves consistently for both small and large frames.
func (b *Buffer) spliceOffsetLocked(in []byte) int {
	win := b.frameSize / 8
	if win < 8 {
		win = 8
	}
	if win > 256 {
		win = 256
	}
	mid := b.frameSize / 2
	return quietestCrossing(in, mid-win, mid+win)
}

func readS16(p []byte, off int) int16 {
	return int16(uint16(p[off]) | uint16(p[off+1])<<8)
}

func abs16(v int16) int32 {
	if v < 0 {
		return int32(-v)
	}
	return int32(v)
}

// quietestCrossing scans the sample-aligned byte offsets in [minOff, maxOff]
// and returns a sign-changing offset with the lowest amplitude, if the
// window contains one; otherwise it falls back to the single quietest
// sample in the window. Either way the returned offset is a reasonable place
// to insert or drop one sample without an audible discontinuity.
func quietestCrossing(p []byte, minOff, maxOff int) int {
	if minOff < 2 {
		minOff = 2
	}
	if maxOff > len(p)-4 {
		maxOff = len(p) - 4
	}
	minOff = (minOff / 2) * 2
	maxOff = (maxOff / 2) * 2
	if maxOff < minOff {
		return (len(p) / 2) * 2
	}

	quietOff, quietEnergy := minOff, int32(1<<31-1)
	crossingOff, crossingEnergy := -1, int32(1<<31-1)

	prev := readS16(p, minOff-2)
	for off := minOff; off <= maxOff; off += 2 {
		cur := readS16(p, off)
		energy := abs16(cur)

		if energy < quietEnergy {
			quietEnergy, quietOff = energy, off
		}
		if (prev^cur) < 0 && energy < crossingEnergy {
			crossingEnergy, crossingOff = energy, off
		}
		prev = cur
	}

	if crossingOff >= 0 {
		return crossingOff
	}
	return quietOff
}
