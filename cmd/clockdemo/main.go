// Command clockdemo drives internal/clock, internal/rtpsource and
// internal/playout against a synthetic RTP stream: a generator stands in for
// the network, a Source feeds arrivals into a Clock, and a Gate paces
// playout frames against it. Run with `go run ./cmd/clockdemo` and
// optionally a config.yaml path as the first argument.
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/Laky-64/gologging"
	msdk "github.com/livekit/media-sdk"
	"github.com/livekit/protocol/logger"

	"github.com/blitss/streamclock/internal/audio"
	"github.com/blitss/streamclock/internal/clock"
	"github.com/blitss/streamclock/internal/playout"
	"github.com/blitss/streamclock/internal/rtpsource"
)

// payloadTypePCMU is RFC 3551's static payload type for G.711 mu-law, the
// codec clockdemo's synthetic stream pretends to carry.
const payloadTypePCMU = 0

func main() {
	gologging.SetLevel(gologging.WarnLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		logger.GetLogger().Warnw("config error", err)
		os.Exit(1)
	}

	log := logger.GetLogger()
	log.Infow("clockdemo starting",
		"clockRate", cfg.ClockRate,
		"frameDur", cfg.FrameDur,
		"ptsDelayUs", cfg.PtsDelayUs,
		"jitterTicks", cfg.JitterTicks,
	)

	clk := clock.New(clock.RealSystemClock{}, log)
	clk.SetJitter(cfg.PtsDelayUs, cfg.DriftCRAvg)

	rtpTicksPerFrame := cfg.FrameDur.Microseconds() * int64(cfg.ClockRate) / clock.Freq
	if rtpTicksPerFrame < 1 {
		rtpTicksPerFrame = 1
	}
	afmt := audio.Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels, FrameDur: cfg.FrameDur}
	frameBytes := afmt.FrameBytes()

	monoSamplesPerFrame := afmt.FrameSamples() / cfg.Channels
	if monoSamplesPerFrame < 2 {
		monoSamplesPerFrame = 2
	}
	asm := audio.NewAssembler(monoSamplesPerFrame)

	gen := rtpsource.NewGenerator(cfg.ClockRate, int(rtpTicksPerFrame), rand.Uint32(), payloadTypePCMU, 42)
	src := rtpsource.NewSource(cfg.ClockRate, clk, clock.RealSystemClock{}, log)

	buf := playout.NewBuffer(frameBytes)
	gate := playout.NewGate(clk, buf, cfg.FrameDur.Microseconds(), log)

	ticker := time.NewTicker(cfg.FrameDur)
	defer ticker.Stop()

	deadline := time.NewTimer(cfg.RunDuration)
	defer deadline.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	dst := make([]byte, frameBytes)
	var framesPulled, framesUnderflowed int64

	for {
		select {
		case <-ctx.Done():
			log.Infow("clockdemo: interrupted, shutting down")
			return
		case <-deadline.C:
			log.Infow("clockdemo: run complete", "framesPulled", framesPulled, "framesUnderflowed", framesUnderflowed)
			return
		case <-statsTicker.C:
			jitter := clk.GetJitter()
			decoderLatency := clk.GetDecoderLatency()
			networkJitter := clk.GetNetworkJitter()
			wakeup := gate.Wakeup()
			log.Infow("clockdemo: stats",
				"framesPulled", framesPulled,
				"framesUnderflowed", framesUnderflowed,
				"bufferedFrames", buf.LenFrames(),
				"jitter", jitter,
				"decoderLatency", decoderLatency,
				"networkJitter", networkJitter,
				"wakeup", wakeup,
			)
		case <-ticker.C:
			pkt := gen.Next(frameBytes, cfg.JitterTicks)
			streamUs := src.HandleRTP(pkt, true, true)

			// Split one tick's worth of mono samples across two uneven pushes,
			// so the assembler's carry-over path runs even though each tick
			// happens to produce exactly one frame end to end.
			mono := syntheticMonoSamples(monoSamplesPerFrame, streamUs)
			split := monoSamplesPerFrame - 5
			if split < 1 {
				split = monoSamplesPerFrame
			}
			var frames []msdk.PCM16Sample
			frames = append(frames, asm.Push(mono[:split])...)
			frames = append(frames, asm.Push(mono[split:])...)

			for _, frame := range frames {
				out := frame
				if cfg.Channels == 2 {
					out = audio.PCM16ConvertChannels(nil, frame, 1, 2)
				}
				gate.PushFrame(audio.PCM16SampleToBytes(nil, out))
			}

			if _, err := gate.PresentationTime(streamUs, false); err != nil {
				log.Warnw("clockdemo: presentation time unavailable", err, "stream_us", streamUs)
			}

			if ok := gate.NextFrame(dst); !ok {
				framesUnderflowed++
			} else {
				framesPulled++
			}
		}
	}
}

// syntheticMonoSamples stands in for a decoder's output: n deterministic
// mono PCM16 samples derived from phase, giving the assembler/gate path
// real audio-shaped data to push and pull without a live source.
func syntheticMonoSamples(n int, phase int64) msdk.PCM16Sample {
	out := make(msdk.PCM16Sample, n)
	for i := range out {
		out[i] = int16(phase + int64(i))
	}
	return out
}
