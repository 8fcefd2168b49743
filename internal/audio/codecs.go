package audio

// Ensure media-sdk's built-in codecs are registered; they self-register via
// init() when imported. Opus is intentionally not wired here: it requires
// cgo + libopus, which would make clockdemo's build depend on a system
// library for a demo whose point is clock reconciliation, not codec
// coverage.
import (
	_ "github.com/livekit/media-sdk/g711"
	_ "github.com/livekit/media-sdk/g722"
)

// ClockRateFor8kHzCodecs is the RTP clock rate of the codecs this package
// registers. Both G.711 and G.722 run their RTP clock at 8kHz (G.722's
// sample rate is 16kHz, but RFC 3551 fixes its RTP clock at 8kHz for
// historical reasons).
const ClockRateFor8kHzCodecs = 8000
