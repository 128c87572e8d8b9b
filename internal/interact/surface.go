// Package interact turns pointer and wheel input on the timeline surface into
// viewport transitions and annotation patches.
package interact

import (
	"math"
	"time"

	"github.com/runnerr0/timescape/internal/timeline"
)

// Surface pairs the current viewport with the vertical wheel filter. Like
// Viewport it is a value; every input returns the next Surface.
type Surface struct {
	Viewport timeline.Viewport
	Filter   timeline.WheelFilter
}

// NewSurface starts a surface on v with a fresh wheel filter.
func NewSurface(v timeline.Viewport) Surface {
	return Surface{Viewport: v}
}

// AxisY is the y coordinate of the time axis for a surface of the given
// height.
func AxisY(surfaceHeight float64) float64 {
	return surfaceHeight * 0.5
}

// Pan applies a horizontal pointer drag.
func (s Surface) Pan(deltaPx float64) Surface {
	s.Viewport = s.Viewport.Pan(deltaPx)
	return s
}

// Resize follows a change of the surface width.
func (s Surface) Resize(widthPx int) Surface {
	s.Viewport = s.Viewport.WithWidth(widthPx)
	return s
}

// Wheel dispatches one wheel event. The dominant axis supplies the zoom
// delta: horizontal deltas zoom directly, vertical ones go through the
// momentum filter first. The returned bool reports whether the viewport
// changed. The filter state is carried forward even when it rejects.
// Non-finite deltas or anchors are dropped before reaching the filter.
func (s Surface) Wheel(dx, dy, anchorX float64, at time.Time) (Surface, bool) {
	horizontal := math.Abs(dx) > math.Abs(dy)
	delta := dy
	if horizontal {
		delta = dx
	}
	if delta == 0 || !finite(delta) || !finite(anchorX) {
		return s, false
	}

	if !horizontal {
		apply, next := s.Filter.Accept(delta, at)
		s.Filter = next
		if !apply {
			return s, false
		}
	}

	if s.Viewport.ZoomBlocked(delta) {
		return s, false
	}
	s.Viewport = s.Viewport.Zoom(delta, anchorX)
	return s, true
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
