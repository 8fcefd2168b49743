// Package clock reconciles a stream-domain timeline (PCR/PTS style ticks,
// microsecond-normalized) with the host's monotonic system clock so decoded
// frames can be scheduled for presentation at the correct wall time.
package clock

const (
	// Freq is the tick domain shared by stream and system timestamps.
	Freq = 1_000_000

	// RateDefault represents 1.0x playback speed.
	RateDefault = 1000

	// MaxGap is the stream-domain discontinuity threshold: a jump larger
	// than this between consecutive updates forces a reference reset.
	MaxGap = 60 * Freq

	// MeanPTSGap seeds the new reference's system coordinate after a reset,
	// so ts_max monotonicity has headroom to recover.
	MeanPTSGap = 300_000

	// BufferingRateNum/BufferingRateDen express the buffering accrual rate
	// (48/256ths of the observed stream gap per update).
	BufferingRateNum = 48
	BufferingRateDen = 256

	// BufferingTarget caps the extra buffering duration, in microseconds.
	BufferingTarget = 100_000

	// InitDecoderLatency seeds LatencyStats before any sample has been seen.
	InitDecoderLatency = 1_000_000

	// LateRingSize is the number of recent lateness samples kept for the
	// median-based jitter report.
	LateRingSize = 3

	// BufferedPointCount is the capacity of the stream-point ring used to
	// back-solve arrival system time for a past stream timestamp.
	BufferedPointCount = 100

	// ContinuousLateLimit is the number of consecutive late convert_ts
	// results (roughly two seconds at 66 Hz) tolerated before a reset: the
	// next late result after this many forces it.
	ContinuousLateLimit = 132

	// DriftWindow is the Average window size used by the drift estimator.
	DriftWindow = 300

	// LatencyWindow is the window size used by the decoder-latency estimator.
	LatencyWindow = 180

	// driftDefaultDivider is the IIR divider the drift Average starts with,
	// overridable later through SetJitter's cr_average parameter.
	driftDefaultDivider = 40

	// lateThreshold is how far in the past (microseconds) a returned ts0
	// must be before it counts toward the continuous-late watchdog.
	lateThreshold = 16_000

	// driftStartSuspend is how long ChangeDriftStartPoint suspends the next
	// drift sample for, relative to the system time it is given.
	driftStartSuspend = 33_000

	// decoderLatencyBias guards against a zero sample on millisecond-
	// resolution host clocks (see DESIGN.md Open Questions).
	decoderLatencyBias = 500
)

// InvalidTS is the sentinel for "no timestamp".
const InvalidTS int64 = -1
