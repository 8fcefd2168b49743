package clock

import "math"

// Average is a fixed-capacity running statistic over (stream_time minus
// predicted_stream_time) residuals. It keeps two independent views of the
// same sample stream: a first-order IIR filter (value/residue/divider) that
// exists for legacy callers, and a windowed mean/variance/maxOffset triple
// that is what Get and the jitter bound actually return. Both views use
// truncating integer division with a carried residue instead of floats, so
// repeated updates never accumulate rounding drift.
type Average struct {
	window int

	// IIR accumulator. Preserved across Rescale but not consumed by
	// Get.
	value   int64
	residue int64
	divider int64

	count      uint64
	startCount uint64

	// Windowed mean/variance over `window` samples.
	means           int64
	residueMeans    int64
	variance        int64
	residueVariance int64
	lastVariance    int64

	maxOffset int64
}

// NewAverage creates an Average with the given window size and initial IIR
// divider (clamped to at least 1).
func NewAverage(window int, divider int64) *Average {
	if window < 1 {
		window = 1
	}
	if divider < 1 {
		divider = 1
	}
	return &Average{window: window, divider: divider}
}

// Reset clears all accumulated state, including the IIR divider back to its
// construction-time value is NOT done here (the divider survives resets the
// same way rate/pause survive a Clock reset); only the accumulated samples
// are cleared.
func (a *Average) Reset() {
	a.value = 0
	a.residue = 0
	a.count = 0
	a.startCount = 0
	a.means = 0
	a.residueMeans = 0
	a.variance = 0
	a.residueVariance = 0
	a.lastVariance = 0
	a.maxOffset = 0
}

// Update folds one new sample into the estimator.
func (a *Average) Update(sample int64) {
	a.updateIIR(sample)
	a.updateWindow(sample)
	a.updateMaxOffset(sample)
	a.count++
}

func (a *Average) updateIIR(sample int64) {
	f0 := a.count
	if f0 > uint64(a.divider-1) {
		f0 = uint64(a.divider - 1)
	}
	f1 := a.divider - int64(f0)
	numerator := int64(f0)*a.value + f1*sample + a.residue
	a.value = numerator / a.divider
	a.residue = numerator % a.divider
}

func (a *Average) updateWindow(sample int64) {
	index := int64(a.count % uint64(a.window))
	if index == 0 {
		a.lastVariance = a.variance / 2
		a.means = 0
		a.residueMeans = 0
		a.variance = 0
		a.residueVariance = 0
		return
	}

	meansNumerator := a.means*index + sample + a.residueMeans
	a.means = meansNumerator / (index + 1)
	a.residueMeans = meansNumerator % (index + 1)

	diff := sample - a.means
	varianceNumerator := a.variance*index + diff*diff + a.residueVariance + a.lastVariance
	a.variance = varianceNumerator / (index + 1)
	a.residueVariance = varianceNumerator % (index + 1)
}

func (a *Average) updateMaxOffset(sample int64) {
	off := sample - a.means
	if off < 0 {
		off = -off
	}
	if off > a.maxOffset {
		a.maxOffset = (3*off + a.maxOffset) / 4
		a.startCount = a.count
		return
	}
	if a.count-a.startCount >= 2 {
		a.maxOffset = (a.maxOffset + isqrt(a.variance)) / 2
		a.startCount = a.count
	}
}

// Get returns the windowed mean, the value that feeds ConvertTS. The IIR
// `value` field is preserved for Rescale but never used for conversion.
func (a *Average) Get() int64 {
	return a.means
}

// MaxOffset returns the weighted peak deviation used as the network-jitter
// bound.
func (a *Average) MaxOffset() int64 {
	return a.maxOffset
}

// Rescale changes the IIR divider while preserving value*divider+residue,
// i.e. the accumulator's numerator is invariant across the call.
func (a *Average) Rescale(newDivider int64) {
	if newDivider < 1 {
		newDivider = 1
	}
	numerator := a.value*a.divider + a.residue
	a.divider = newDivider
	a.value = numerator / newDivider
	a.residue = numerator % newDivider
}

// Divider reports the current IIR divider (exposed so SetJitter can decide
// whether a Rescale is needed).
func (a *Average) Divider() int64 {
	return a.divider
}

func isqrt(v int64) int64 {
	if v <= 0 {
		return 0
	}
	return int64(math.Sqrt(float64(v)))
}
