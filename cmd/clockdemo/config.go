package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blitss/streamclock/internal/audio"
)

const (
	defaultChannels = 1
	defaultFrameMs  = 20
)

// Config drives the synthetic clockdemo run: a generator produces RTP
// packets at ClockRate ticks/sec, rtpsource.Source feeds them into a
// clock.Clock, and a playout.Gate paces their release.
type Config struct {
	ClockRate  int
	SampleRate int
	Channels   int
	FrameDur   time.Duration

	PtsDelayUs   int64
	DriftCRAvg   int64
	JitterTicks  int
	RunDuration  time.Duration
	LogLevel     string
}

type yamlConfig struct {
	Audio struct {
		ClockRate  int `yaml:"clock_rate"`
		SampleRate int `yaml:"sample_rate"`
		Channels   int `yaml:"channels"`
		FrameMs    int `yaml:"frame_ms"`
	} `yaml:"audio"`
	Clock struct {
		PtsDelayMs int64 `yaml:"pts_delay_ms"`
		DriftCRAvg int64 `yaml:"drift_cr_average"`
	} `yaml:"clock"`
	Simulation struct {
		JitterTicks int    `yaml:"jitter_ticks"`
		DurationSec int    `yaml:"duration_seconds"`
		LogLevel    string `yaml:"log_level"`
	} `yaml:"simulation"`
}

// LoadConfig reads path if it exists and overlays it onto sensible
// defaults; a missing file is not an error, so clockdemo runs out of the
// box with `go run ./cmd/clockdemo`.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ClockRate:   audio.ClockRateFor8kHzCodecs,
		SampleRate:  audio.ClockRateFor8kHzCodecs,
		Channels:    defaultChannels,
		FrameDur:    defaultFrameMs * time.Millisecond,
		PtsDelayUs:  300_000,
		DriftCRAvg:  40,
		JitterTicks: 0,
		RunDuration: 30 * time.Second,
		LogLevel:    "info",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yc.Audio.ClockRate > 0 {
		cfg.ClockRate = yc.Audio.ClockRate
	}
	if yc.Audio.SampleRate > 0 {
		cfg.SampleRate = yc.Audio.SampleRate
	}
	if yc.Audio.Channels > 0 {
		cfg.Channels = yc.Audio.Channels
	}
	if yc.Audio.FrameMs > 0 {
		cfg.FrameDur = time.Duration(yc.Audio.FrameMs) * time.Millisecond
	}

	if yc.Clock.PtsDelayMs > 0 {
		cfg.PtsDelayUs = yc.Clock.PtsDelayMs * 1000
	}
	if yc.Clock.DriftCRAvg > 0 {
		cfg.DriftCRAvg = yc.Clock.DriftCRAvg
	}

	if yc.Simulation.JitterTicks > 0 {
		cfg.JitterTicks = yc.Simulation.JitterTicks
	}
	if yc.Simulation.DurationSec > 0 {
		cfg.RunDuration = time.Duration(yc.Simulation.DurationSec) * time.Second
	}
	if yc.Simulation.LogLevel != "" {
		cfg.LogLevel = yc.Simulation.LogLevel
	}

	return cfg, nil
}
