package timeline

import (
	"math"
	"time"
)

// Momentum filter tunables.
const (
	// WheelBurstGap ends a burst when exceeded between two wheel events.
	WheelBurstGap = 140 * time.Millisecond

	// Within a burst, an event is a momentum tail when the burst peaked at
	// or above momentumMinPeak and the event is at most momentumSmallDelta,
	// smaller than the previous event, and at most momentumRatio of the peak.
	momentumMinPeak    = 24.0
	momentumSmallDelta = 12.0
	momentumRatio      = 0.35
)

// WheelFilter tracks the current wheel burst on one axis. The zero value
// is a filter that has never seen an event.
type WheelFilter struct {
	LastAt        time.Time
	LastDirection int
	PeakAbsDelta  float64
	LastAbsDelta  float64
}

// Accept decides whether a wheel delta received at `at` should be applied,
// and returns the filter state to use for the next event. Zero and
// non-finite deltas are never applied and leave the state untouched.
func (f WheelFilter) Accept(delta float64, at time.Time) (bool, WheelFilter) {
	if delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return false, f
	}

	direction := 1
	if delta < 0 {
		direction = -1
	}
	abs := math.Abs(delta)

	newBurst := f.LastAt.IsZero() ||
		at.Sub(f.LastAt) > WheelBurstGap ||
		direction != f.LastDirection
	if newBurst {
		return true, WheelFilter{
			LastAt:        at,
			LastDirection: direction,
			PeakAbsDelta:  abs,
			LastAbsDelta:  abs,
		}
	}

	tail := f.PeakAbsDelta >= momentumMinPeak &&
		abs <= momentumSmallDelta &&
		abs < f.LastAbsDelta &&
		abs <= f.PeakAbsDelta*momentumRatio

	return !tail, WheelFilter{
		LastAt:        at,
		LastDirection: direction,
		PeakAbsDelta:  math.Max(f.PeakAbsDelta, abs),
		LastAbsDelta:  abs,
	}
}
