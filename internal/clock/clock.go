package clock

import (
	"math"
	"sync"
)

// Clock reconciles a stream-domain timeline with the host's monotonic
// system clock. All mutation happens under a single non-recursive mutex:
// one per instance, with every operation O(1) except the
// BufferedPointCount-bounded ring search in updateDecoderLatencyLocked.
type Clock struct {
	mu sync.Mutex

	sysClock SystemClock
	log      Logger

	ref          Point
	last         Point
	hasReference bool
	tsMax        int64

	bufferingDuration int64

	nextDriftUpdate int64
	drift           *Average

	lateRing            [LateRingSize]int64
	lateIdx             int
	continuousLateCount int64

	externalClock    int64
	hasExternalClock bool

	paused    bool
	pauseDate int64

	rate     int64
	ptsDelay int64

	points pointRing
	stat   *LatencyStats
}

// New creates a Clock. sysClock and log may be nil, in which case a real
// monotonic clock and a no-op logger are used respectively.
func New(sysClock SystemClock, log Logger) *Clock {
	if sysClock == nil {
		sysClock = RealSystemClock{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Clock{
		sysClock:        sysClock,
		log:             log,
		tsMax:           InvalidTS,
		nextDriftUpdate: InvalidTS,
		drift:           NewAverage(DriftWindow, driftDefaultDivider),
		rate:            RateDefault,
		stat:            NewLatencyStats(LatencyWindow),
	}
}

// Update feeds one observed (stream, system) point from the demuxer. It
// returns whether the delivery is late, but always reports false: lateness
// detection is deferred entirely to ConvertTS, which has the presentation
// deadline Update doesn't.
func (c *Clock) Update(stream, system int64, canPace, bufferingAllowed bool) bool {
	if !IsValidTS(stream) || !IsValidTS(system) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	reset := false
	if !c.hasReference || (c.last.IsValid() && abs64(c.last.Stream-stream) > MaxGap) {
		c.resetReferenceLocked(stream, system)
		reset = true
	}

	if !canPace && c.nextDriftUpdate < system {
		sample := c.systemToStreamLocked(system) - stream
		c.drift.Update(sample)
		c.nextDriftUpdate = system
	}

	switch {
	case !canPace || reset:
		c.bufferingDuration = 0
	case bufferingAllowed:
		delta := stream - c.last.Stream
		if !c.last.IsValid() || delta < 0 {
			delta = 0
		}
		c.bufferingDuration += (delta*BufferingRateNum + BufferingRateDen - 1) / BufferingRateDen
		if c.bufferingDuration > BufferingTarget {
			c.bufferingDuration = BufferingTarget
		}
	}

	c.last = Point{Stream: stream, System: system}
	c.points.push(c.last)

	return false
}

func (c *Clock) resetReferenceLocked(stream, system int64) {
	discontinuity := c.hasReference
	c.nextDriftUpdate = InvalidTS
	c.drift.Reset()
	c.stat.Init()
	c.hasReference = true

	sysRef := system
	if c.tsMax != InvalidTS {
		if candidate := c.tsMax + MeanPTSGap; candidate > sysRef {
			sysRef = candidate
		}
	}
	c.ref = Point{Stream: stream, System: sysRef}
	c.hasExternalClock = false

	if discontinuity {
		c.log.Warnw("clock: stream discontinuity, reference reset", nil, "stream", stream, "system", system)
	} else {
		c.log.Infow("clock: reference reset", "stream", stream, "system", system)
	}
}

func (c *Clock) streamToSystemLocked(stream int64) int64 {
	return (stream-c.ref.Stream)*c.rate/RateDefault + c.ref.System
}

func (c *Clock) systemToStreamLocked(system int64) int64 {
	return (system-c.ref.System)*RateDefault/c.rate + c.ref.Stream
}

// StreamToSystem exposes the raw affine reference mapping directly, without
// drift or delay compensation. It is mainly useful for tests exercising the
// stream<->system round-trip in isolation from ConvertTS's delay budget.
func (c *Clock) StreamToSystem(stream int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamToSystemLocked(stream)
}

// SystemToStream is the inverse of StreamToSystem.
func (c *Clock) SystemToStream(system int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.systemToStreamLocked(system)
}

func (c *Clock) tsOffsetLocked() int64 {
	return c.ptsDelay * (c.rate - RateDefault) / RateDefault
}

func (c *Clock) updateDecoderLatencyLocked(ts0, now int64) {
	arrival, ok := c.points.arrivalSystem(ts0)
	if !ok {
		return
	}
	sample := now + decoderLatencyBias - arrival
	c.stat.Update(sample)
}

// ConvertTS converts a stream-domain pair (ts0 mandatory, ts1 optional; pass
// InvalidTS for ts1 to omit it) into system-domain presentation times,
// applying drift correction and the jitter/latency delay budget. tsBound of
// math.MaxInt64 disables the bound check.
func (c *Clock) ConvertTS(ts0, ts1 int64, tsBound int64, isVideo bool) (rate int64, out0 int64, out1 int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasReference {
		return c.rate, InvalidTS, InvalidTS, ErrNoReference
	}

	now := c.sysClock.Now()
	if isVideo && IsValidTS(ts0) {
		c.updateDecoderLatencyLocked(ts0, now)
	}

	tsBuffering := c.bufferingDuration * c.rate / RateDefault
	tsDelay := c.tsOffsetLocked() + c.drift.MaxOffset() + c.stat.Max()

	out0, out1 = InvalidTS, InvalidTS

	if IsValidTS(ts0) {
		out0 = c.streamToSystemLocked(ts0 + c.drift.Get())
		if out0 > c.tsMax {
			c.tsMax = out0
		}
		out0 += tsDelay
	}
	if IsValidTS(ts1) {
		out1 = c.streamToSystemLocked(ts1+c.drift.Get()) + tsDelay
	}

	if IsValidTS(out0) {
		if late := now - out0; late >= lateThreshold {
			c.pushLateLocked(late)
			c.continuousLateCount++
			if c.continuousLateCount > ContinuousLateLimit {
				c.resetLocked()
				c.continuousLateCount = 0
				c.log.Warnw("clock: continuous-late watchdog forced reset", nil)
			}
		} else {
			c.continuousLateCount = 0
		}
	}

	if tsBound != math.MaxInt64 && IsValidTS(out0) {
		if out0 >= now+tsDelay+tsBuffering+tsBound {
			return c.rate, out0, out1, ErrOutOfBound
		}
	}

	return c.rate, out0, out1, nil
}

func (c *Clock) pushLateLocked(value int64) {
	c.lateRing[c.lateIdx] = value
	c.lateIdx = (c.lateIdx + 1) % len(c.lateRing)
}

// ChangeRate rotates the reference mapping around last.System so playback
// speed changes without a jump in the current presentation time.
func (c *Clock) ChangeRate(newRate int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if newRate < 1 {
		newRate = 1
	}
	if c.hasReference {
		oldRate := c.rate
		c.ref.System = c.last.System - (c.last.System-c.ref.System)*newRate/oldRate
	}
	c.rate = newRate
}

// ChangePause toggles pause state. On resume it shifts the reference and
// last point forward by the elapsed pause duration so presentation times
// do not jump backward.
func (c *Clock) ChangePause(pausing bool, now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !pausing && c.paused && c.hasReference {
		if delta := now - c.pauseDate; delta > 0 {
			c.ref.System += delta
			c.last.System += delta
		}
	}
	c.pauseDate = now
	c.paused = pausing
}

// ChangeSystemOrigin shifts the reference by an externally supplied system
// time, either as an absolute target or relative to the first call's
// baseline. Requires a reference to already exist.
func (c *Clock) ChangeSystemOrigin(absolute bool, system int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasReference {
		return ErrNoReference
	}

	var offset int64
	if absolute {
		offset = system - c.ref.System - c.tsOffsetLocked()
	} else {
		if !c.hasExternalClock {
			c.externalClock = system
			c.hasExternalClock = true
		}
		offset = system - c.externalClock
	}

	c.ref.System += offset
	c.last.System += offset
	return nil
}

// SetJitter rebases the late-sample ring against a new pts_delay, raises
// pts_delay monotonically, and rescales the drift estimator's IIR divider
// if cr_average changed. cr_average is clamped to at least 10.
func (c *Clock) SetJitter(newPtsDelay int64, crAverage int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	diff := newPtsDelay - c.ptsDelay
	for i := range c.lateRing {
		v := c.lateRing[i] - diff
		if v < 0 {
			v = 0
		}
		c.lateRing[i] = v
	}
	c.compactLateRingLocked()

	if newPtsDelay > c.ptsDelay {
		c.ptsDelay = newPtsDelay
	}

	if crAverage < 10 {
		crAverage = 10
	}
	if crAverage != c.drift.Divider() {
		c.drift.Rescale(crAverage)
	}
}

func (c *Clock) compactLateRingLocked() {
	var compacted [LateRingSize]int64
	j := 0
	for _, v := range c.lateRing {
		if v != 0 {
			compacted[j] = v
			j++
		}
	}
	c.lateRing = compacted
	c.lateIdx = 0
}

// GetJitter returns pts_delay plus the median of the 3 most recent
// lateness samples (sum minus min minus max across exactly 3 slots).
func (c *Clock) GetJitter() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ptsDelay + median3(c.lateRing)
}

func median3(v [LateRingSize]int64) int64 {
	mn, mx, sum := v[0], v[0], int64(0)
	for _, x := range v {
		sum += x
		if x < mn {
			mn = x
		}
		if x > mx {
			mx = x
		}
	}
	return sum - mn - mx
}

// GetWakeup returns an advisory system time at which the caller should next
// wake up to keep pacing with the stream; it never blocks. Returns 0 if
// there is no reference yet.
func (c *Clock) GetWakeup() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasReference {
		return 0
	}
	return c.streamToSystemLocked(c.last.Stream + c.drift.Get() - c.bufferingDuration)
}

// State is the snapshot returned by GetState.
type State struct {
	RefStream    int64
	RefSystem    int64
	OffsetStream int64
	OffsetSystem int64
}

// GetState reports the current reference point and last observed offsets
// from it. Returns ErrNoReference if no reference has been established.
func (c *Clock) GetState() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasReference {
		return State{}, ErrNoReference
	}
	return State{
		RefStream:    c.ref.Stream,
		RefSystem:    c.ref.System,
		OffsetStream: c.last.Stream - c.ref.Stream,
		OffsetSystem: c.last.System - c.ref.System,
	}, nil
}

// ChangeDriftStartPoint suspends the next drift sample until 33ms after
// system, absorbing a known transient.
func (c *Clock) ChangeDriftStartPoint(system int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasReference {
		return ErrNoReference
	}
	c.nextDriftUpdate = system + driftStartSuspend
	return nil
}

// Reset clears the reference, forcing the next Update to re-anchor the
// clock as a discontinuity. Rate, pause state, and pts_delay survive.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Clock) resetLocked() {
	c.hasReference = false
	c.hasExternalClock = false
	c.tsMax = InvalidTS
}

// GetDecoderLatency returns the current decoder-latency bound fed into
// ConvertTS's delay budget.
func (c *Clock) GetDecoderLatency() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stat.Max()
}

// GetNetworkJitter returns the drift estimator's current jitter bound.
func (c *Clock) GetNetworkJitter() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drift.MaxOffset()
}

// BufferingDuration reports the clock's current extra-buffering target, in
// stream-domain microseconds.
func (c *Clock) BufferingDuration() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bufferingDuration
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
