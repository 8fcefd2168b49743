package rtpsource

import (
	"math/rand"

	"github.com/pion/rtp"
)

// Generator produces a synthetic RTP stream at a fixed frame cadence, for
// exercising clock.Clock and a playout.Gate without a live network source.
// It is the producer-side counterpart to Source, built around the same
// rtp.Packet/rtp.Header shape a real RTP receiver would hand to Source.
type Generator struct {
	clockRate       int
	samplesPerFrame int
	seq             uint16
	ts              uint32
	ssrc            uint32
	payloadType     uint8
	rng             *rand.Rand
}

// NewGenerator creates a Generator for a codec running at clockRate Hz,
// producing samplesPerFrame ticks of audio per packet. seed makes jitter
// reproducible across runs.
func NewGenerator(clockRate, samplesPerFrame int, ssrc uint32, payloadType uint8, seed int64) *Generator {
	if clockRate < 1 {
		clockRate = 1
	}
	if samplesPerFrame < 1 {
		samplesPerFrame = 1
	}
	return &Generator{
		clockRate:       clockRate,
		samplesPerFrame: samplesPerFrame,
		ssrc:            ssrc,
		payloadType:     payloadType,
		rng:             rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next synthetic packet with payloadSize bytes of payload.
// jitterSamples, if positive, perturbs the timestamp step by up to +/- that
// many samples to simulate network-induced clock skew; the sequence number
// always advances by exactly one.
func (g *Generator) Next(payloadSize int, jitterSamples int) *rtp.Packet {
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    g.payloadType,
			SequenceNumber: g.seq,
			Timestamp:      g.ts,
			SSRC:           g.ssrc,
		},
		Payload: make([]byte, payloadSize),
	}

	g.seq++
	step := g.samplesPerFrame
	if jitterSamples > 0 {
		step += g.rng.Intn(2*jitterSamples+1) - jitterSamples
		if step < 1 {
			step = 1
		}
	}
	g.ts += uint32(step)

	return pkt
}
