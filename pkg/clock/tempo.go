package clock

// TempoEstimator low-pass filters the period between successive clock
// pulses with an exponential moving average (α≈0.1, spec.md §4.1) before
// the control thread feeds the result to
// timebase.TimeBase.SyncToMusicalClock. Grounded on the exponential-
// smoothing one-pole filter shape used for parameter smoothing in the
// teacher's framework (y += (1-rate)*(x-y)), here applied to the tick
// period instead of a plugin parameter.
type TempoEstimator struct {
	alpha      float64
	haveLast   bool
	lastMicros uint32
	periodEMA  float64
}

// NewTempoEstimator creates an estimator with the given smoothing factor.
// A smaller alpha smooths more aggressively against clock jitter; 0.1 is
// the spec.md default.
func NewTempoEstimator(alpha float64) *TempoEstimator {
	return &TempoEstimator{alpha: alpha}
}

// Observe feeds in a new pulse timestamp (microseconds, wrapping
// uint32 arithmetic) and returns the current filtered tick period in
// microseconds along with whether enough data exists yet (false on the
// very first pulse, when no period can be computed).
func (e *TempoEstimator) Observe(timestampMicros uint32) (periodMicros float64, ok bool) {
	if !e.haveLast {
		e.lastMicros = timestampMicros
		e.haveLast = true
		return 0, false
	}

	period := float64(timestampMicros - e.lastMicros) // wraps correctly (unsigned)
	e.lastMicros = timestampMicros

	if e.periodEMA == 0 {
		e.periodEMA = period
	} else {
		e.periodEMA += e.alpha * (period - e.periodEMA)
	}
	return e.periodEMA, true
}

// Reset clears accumulated state, used on transport Start so a stale
// period doesn't leak across a clock discontinuity.
func (e *TempoEstimator) Reset() {
	e.haveLast = false
	e.periodEMA = 0
}
