package clock

// LatencyStats is a windowed mean/max estimator over decoder-latency
// samples (now - arrival_system_time for a recently queried stream
// timestamp). It uses the same windowed-mean recipe as Average but tracks a
// weighted peak instead of a variance-bounded jitter.
type LatencyStats struct {
	window int

	count    uint64
	maxCount uint64

	means        int64
	residueMeans int64

	max int64
}

// NewLatencyStats creates a LatencyStats with the given window size, seeded
// to InitDecoderLatency so the first few samples don't read as a latency
// spike before the window has real data in it.
func NewLatencyStats(window int) *LatencyStats {
	if window < 1 {
		window = 1
	}
	return &LatencyStats{
		window: window,
		means:  InitDecoderLatency,
		max:    InitDecoderLatency,
	}
}

// Init resets the estimator back to its construction-time seeded state.
func (s *LatencyStats) Init() {
	s.count = 0
	s.maxCount = 0
	s.means = InitDecoderLatency
	s.residueMeans = 0
	s.max = InitDecoderLatency
}

// Update folds one new decoder-latency sample into the estimator.
func (s *LatencyStats) Update(sample int64) {
	index := int64(s.count % uint64(s.window))
	if index == 0 {
		s.means = 0
		s.residueMeans = 0
	} else {
		numerator := s.means*index + sample + s.residueMeans
		s.means = numerator / (index + 1)
		s.residueMeans = numerator % (index + 1)
	}

	if sample > s.max {
		s.max = (3*sample + s.max) / 4
		s.maxCount = s.count
	} else if s.count-s.maxCount >= 2 {
		s.max = (s.means + sample) / 2
		s.maxCount = s.count
	}

	s.count++
}

// Max returns the current decoder-latency bound.
func (s *LatencyStats) Max() int64 {
	return s.max
}
