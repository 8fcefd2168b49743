package clock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAverageZeroDriftMeansZero(t *testing.T) {
	a := NewAverage(DriftWindow, driftDefaultDivider)
	for i := 0; i < 10; i++ {
		a.Update(0)
	}
	require.Equal(t, int64(0), a.Get())
}

func TestAverageRescalePreservesNumerator(t *testing.T) {
	a := NewAverage(DriftWindow, 40)
	for i := int64(1); i <= 25; i++ {
		a.Update(i * 7)
	}
	before := a.value*a.divider + a.residue

	a.Rescale(10)
	after := a.value*a.divider + a.residue

	require.Equal(t, before, after)
	require.Equal(t, int64(10), a.Divider())
}

func TestAverageMaxOffsetTracksOutliers(t *testing.T) {
	a := NewAverage(DriftWindow, driftDefaultDivider)
	for i := 0; i < 50; i++ {
		a.Update(0)
	}
	require.Equal(t, int64(0), a.MaxOffset())

	a.Update(10_000)
	require.Greater(t, a.MaxOffset(), int64(0))
}

func TestAverageWindowBoundaryReseedsVariance(t *testing.T) {
	a := NewAverage(5, driftDefaultDivider)
	for i := 0; i < 5; i++ {
		a.Update(100)
	}
	// index wraps to 0 on the 6th sample; lastVariance should have been
	// seeded from the prior window's variance/2 rather than discarded.
	a.Update(100)
	require.Equal(t, int64(0), a.means)
	// The first window's variance settles at 936, so the reseed is 936/2.
	require.Equal(t, int64(468), a.lastVariance)
}

func TestLatencyStatsSeededBeforeFirstSample(t *testing.T) {
	s := NewLatencyStats(LatencyWindow)
	require.Equal(t, int64(InitDecoderLatency), s.Max())
}

func TestLatencyStatsDecaysTowardMeanAfterTwoSamples(t *testing.T) {
	s := NewLatencyStats(LatencyWindow)
	s.Update(5_000)
	s.Update(5_000)
	s.Update(5_000)
	require.Less(t, s.Max(), int64(InitDecoderLatency))
}

func TestMedian3SumMinusMinMinusMax(t *testing.T) {
	require.Equal(t, int64(5000), median3([LateRingSize]int64{4000, 7000, 5000}))
	require.Equal(t, int64(0), median3([LateRingSize]int64{0, 0, 0}))
}
