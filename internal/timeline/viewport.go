package timeline

import (
	"math"
	"time"
)

// Zoom step factors applied per accepted wheel event.
const (
	ZoomInFactor  = 0.94
	ZoomOutFactor = 1.06
)

// Limits bounds the visible duration of a Viewport.
type Limits struct {
	MinDurationMs int64
	MaxDurationMs int64
}

// DefaultLimits keeps the view between 6 hours and 50 years wide.
var DefaultLimits = Limits{
	MinDurationMs: 6 * HourMs,
	MaxDurationMs: 50 * YearMs,
}

func (l Limits) clamp(durationMs int64) int64 {
	if durationMs < l.MinDurationMs {
		return l.MinDurationMs
	}
	if durationMs > l.MaxDurationMs {
		return l.MaxDurationMs
	}
	return durationMs
}

func (l Limits) clampFloat(durationMs float64) float64 {
	return math.Min(float64(l.MaxDurationMs), math.Max(float64(l.MinDurationMs), durationMs))
}

// Viewport is the visible window [StartMs, EndMs] mapped onto [0, WidthPx].
// It is an immutable value: every transition returns a new Viewport and
// Resolution is always derived from the duration.
type Viewport struct {
	StartMs    int64
	EndMs      int64
	WidthPx    int
	Resolution Resolution
	Limits     Limits
}

// NewViewport builds a viewport with DefaultLimits.
func NewViewport(startMs, endMs int64, widthPx int) Viewport {
	return NewViewportWithLimits(startMs, endMs, widthPx, DefaultLimits)
}

// NewViewportWithLimits builds a viewport, reordering inverted bounds and
// clamping the duration into limits around the midpoint.
func NewViewportWithLimits(startMs, endMs int64, widthPx int, limits Limits) Viewport {
	if endMs < startMs {
		startMs, endMs = endMs, startMs
	}
	duration := endMs - startMs
	if clamped := limits.clamp(duration); clamped != duration {
		center := startMs + duration/2
		startMs = center - clamped/2
		endMs = startMs + clamped
	}
	return Viewport{
		StartMs:    startMs,
		EndMs:      endMs,
		WidthPx:    max(widthPx, 1),
		Resolution: ResolutionFor(endMs - startMs),
		Limits:     limits,
	}
}

// Centered builds a viewport of the given span centered on centerMs.
func Centered(centerMs, spanMs int64, widthPx int) Viewport {
	start := centerMs - spanMs/2
	return NewViewport(start, start+spanMs, widthPx)
}

// Initial is the session's opening view: one year either side of now.
func Initial(now time.Time, widthPx int) Viewport {
	ms := now.UnixMilli()
	return NewViewport(ms-365*DayMs, ms+365*DayMs, widthPx)
}

// Duration returns EndMs - StartMs.
func (v Viewport) Duration() int64 {
	return v.EndMs - v.StartMs
}

// VisibleRange returns the visible bounds.
func (v Viewport) VisibleRange() (startMs, endMs int64) {
	return v.StartMs, v.EndMs
}

// XAt projects an instant onto the viewport.
func (v Viewport) XAt(ms int64) float64 {
	return TimeToX(float64(ms), float64(v.StartMs), float64(v.EndMs), float64(v.WidthPx))
}

// TimeAt returns the instant under x, unrounded.
func (v Viewport) TimeAt(x float64) float64 {
	return XToTime(x, float64(v.StartMs), float64(v.EndMs), float64(v.WidthPx))
}

// WithWidth returns the viewport resized to widthPx, bounds unchanged.
func (v Viewport) WithWidth(widthPx int) Viewport {
	v.WidthPx = max(widthPx, 1)
	return v
}

// Pan shifts the window by a pointer delta. Dragging right (positive delta)
// moves the visible window towards earlier times. Pan is unbounded and
// preserves the duration exactly. Non-finite deltas are ignored.
func (v Viewport) Pan(deltaPx float64) Viewport {
	if !finite(deltaPx) {
		return v
	}
	duration := v.Duration()
	deltaMs := int64(math.Round(-deltaPx / float64(max(v.WidthPx, 1)) * float64(duration)))
	v.StartMs += deltaMs
	v.EndMs = v.StartMs + duration
	v.Resolution = ResolutionFor(duration)
	return v
}

// ZoomBlocked reports whether a wheel delta would push past a duration
// limit. A zero delta is always blocked.
func (v Viewport) ZoomBlocked(wheelDelta float64) bool {
	duration := v.Duration()
	switch {
	case wheelDelta < 0:
		return duration <= v.Limits.MinDurationMs
	case wheelDelta > 0:
		return duration >= v.Limits.MaxDurationMs
	default:
		return true
	}
}

// Zoom scales the duration by one wheel step, keeping the instant under
// anchorX at anchorX. Negative deltas zoom in. Results are clamped to the
// viewport limits, so zooming at a bound leaves the bounds unchanged.
// A non-finite delta or anchor leaves the viewport as it is.
func (v Viewport) Zoom(wheelDelta, anchorX float64) Viewport {
	if !finite(wheelDelta) || !finite(anchorX) {
		return v
	}
	duration := float64(v.Duration())
	factor := ZoomOutFactor
	if wheelDelta < 0 {
		factor = ZoomInFactor
	}
	newDuration := int64(math.Round(v.Limits.clampFloat(duration * factor)))

	width := float64(max(v.WidthPx, 1))
	anchorTime := XToTime(anchorX, float64(v.StartMs), float64(v.EndMs), width)
	anchorRatio := anchorX / width

	v.StartMs = int64(math.Round(anchorTime - anchorRatio*float64(newDuration)))
	v.EndMs = v.StartMs + newDuration
	v.Resolution = ResolutionFor(newDuration)
	return v
}

// Ticks generates the label ticks for this viewport.
func (v Viewport) Ticks(cfg TickConfig) []Tick {
	return GenerateTicks(cfg, v.StartMs, v.EndMs, float64(v.WidthPx), v.Resolution)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
