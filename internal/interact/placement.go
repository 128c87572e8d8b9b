package interact

import (
	"math"

	"github.com/runnerr0/timescape/internal/memory"
	"github.com/runnerr0/timescape/internal/theme"
	"github.com/runnerr0/timescape/internal/timeline"
)

const minDraftWidthPx = 4.0

// Draft is the rectangle shown while a theme is being drawn.
type Draft struct {
	StartX float64
	EndX   float64
	theme.Bounds
}

// LeftPx is the left edge of the draft.
func (d Draft) LeftPx() float64 { return math.Min(d.StartX, d.EndX) }

// WidthPx is the draft width, never less than minDraftWidthPx.
func (d Draft) WidthPx() float64 { return math.Max(minDraftWidthPx, math.Abs(d.EndX-d.StartX)) }

// Placement drafts a new theme by dragging a rectangle above the axis.
type Placement struct {
	phase   Phase
	originX float64
	originY float64
	axisY   float64
}

// Phase reports whether a draft is in progress.
func (p *Placement) Phase() Phase { return p.phase }

// Arm starts a draft at (x, y). Points on or below the axis are refused.
func (p *Placement) Arm(x, y, axisY float64) (Draft, error) {
	if p.phase == Armed {
		return Draft{}, ErrSessionActive
	}
	if y >= axisY {
		return Draft{}, ErrBelowAxis
	}
	*p = Placement{phase: Armed, originX: x, originY: y, axisY: axisY}
	return Draft{StartX: x, EndX: x, Bounds: theme.NormalizeVerticalBounds(y, y, axisY)}, nil
}

// Move updates the draft for a pointer at (x, y), clamped to the surface.
func (p *Placement) Move(x, y float64, widthPx int) (Draft, bool) {
	if p.phase != Armed {
		return Draft{}, false
	}
	x, y = p.clamp(x, y, widthPx)
	return Draft{StartX: p.originX, EndX: x, Bounds: theme.NormalizeVerticalBounds(p.originY, y, p.axisY)}, true
}

// Release finishes the draft and returns the geometry of the new theme:
// a range of at least theme.MinDurationMs and a snapped band above the
// axis.
func (p *Placement) Release(x, y float64, v timeline.Viewport) (theme.Geometry, bool) {
	if p.phase != Armed {
		return theme.Geometry{}, false
	}
	defer p.Cancel()

	x, y = p.clamp(x, y, v.WidthPx)
	lo, hi := math.Min(p.originX, x), math.Max(p.originX, x)
	r := theme.NormalizeRange(int64(math.Round(v.TimeAt(lo))), int64(math.Round(v.TimeAt(hi))))
	b := theme.NormalizeVerticalBounds(p.originY, y, p.axisY)
	return theme.Geometry{StartMs: r.StartMs, EndMs: r.EndMs, TopPx: b.TopPx, BottomPx: b.BottomPx}, true
}

// Cancel drops the draft.
func (p *Placement) Cancel() {
	*p = Placement{}
}

func (p *Placement) clamp(x, y float64, widthPx int) (float64, float64) {
	return math.Max(0, math.Min(float64(widthPx), x)), math.Max(0, math.Min(p.axisY, y))
}

// MemoryPlacement returns the anchor instant and vertical ratio for a memory
// placed by clicking at (x, y).
func MemoryPlacement(x, y float64, v timeline.Viewport, surfaceHeight float64) (int64, float64) {
	at := int64(math.Round(v.TimeAt(x)))
	if surfaceHeight <= 0 {
		return at, memory.DefaultVerticalRatio
	}
	return at, memory.ClampVerticalRatio(y / surfaceHeight)
}
