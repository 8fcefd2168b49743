package clock

import "time"

// SystemClock supplies the host's monotonic time in microseconds. It is the
// only external shared resource Clock reads, and it is read-only: at most
// one call per public operation.
type SystemClock interface {
	Now() int64
}

// RealSystemClock reads time.Now()'s monotonic reading.
type RealSystemClock struct{}

// realClockStart anchors RealSystemClock: readings are its Unix time plus
// the monotonic time elapsed since it, so they never step backward.
var realClockStart = time.Now()

func (RealSystemClock) Now() int64 {
	return realClockStart.UnixMicro() + time.Since(realClockStart).Microseconds()
}

var _ SystemClock = RealSystemClock{}
