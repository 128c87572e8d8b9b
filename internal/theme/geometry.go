package theme

import (
	"fmt"
	"math"
)

// Geometry constants. Vertical bounds live on a 4px grid above the axis.
const (
	SnapUnitPx      = 4.0
	MinHeightPx     = 24.0
	MaxHeightPx     = 600.0
	DefaultHeightPx = 96.0

	MinDurationMs int64 = 30 * 60 * 1000
)

// Geometry is the draggable shape of a theme: a time range and a vertical
// pixel band.
type Geometry struct {
	StartMs  int64
	EndMs    int64
	TopPx    float64
	BottomPx float64
}

// Bounds is a vertical pixel band.
type Bounds struct {
	TopPx    float64
	BottomPx float64
}

// Range is a normalized time range.
type Range struct {
	StartMs int64
	EndMs   int64
}

// Snap rounds v to the nearest grid line, halves rounding up.
func Snap(v float64) float64 {
	return math.Floor(v/SnapUnitPx+0.5) * SnapUnitPx
}

func snapFloor(v float64) float64 {
	return math.Floor(v/SnapUnitPx) * SnapUnitPx
}

func snapCeil(v float64) float64 {
	return math.Ceil(v/SnapUnitPx) * SnapUnitPx
}

func clampPx(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// bandLimit is the lowest y a band may reach. It follows the axis but never
// drops below MinHeightPx, so a minimum-height band always fits.
func bandLimit(axisY float64) float64 {
	return math.Max(MinHeightPx, snapFloor(axisY))
}

// ClampHeight confines a block height to [MinHeightPx, MaxHeightPx].
func ClampHeight(h float64) float64 {
	return clampPx(h, MinHeightPx, MaxHeightPx)
}

// ClampOpacity confines opacity to [MinOpacity, MaxOpacity].
func ClampOpacity(o float64) float64 {
	return clampPx(o, MinOpacity, MaxOpacity)
}

// NormalizeVerticalBounds derives the band of a block being drawn from the
// pointer-down y to the current y. The pointer-down edge is always the
// anchor: dragging down fixes the top, dragging up fixes the bottom. The
// band is snapped, at least MinHeightPx tall where the space allows, and
// confined to [0, axisY]. Only when the anchor is within MinHeightPx of a
// limit does the anchored edge give way. On a surface whose axis sits less
// than MinHeightPx from the top the band runs past the axis to MinHeightPx.
func NormalizeVerticalBounds(downY, currentY, axisY float64) Bounds {
	limit := bandLimit(axisY)
	anchor := clampPx(Snap(downY), 0, limit)
	current := clampPx(Snap(currentY), 0, limit)

	if currentY >= downY {
		top := anchor
		bottom := math.Min(math.Max(current, top+MinHeightPx), limit)
		if bottom-top < MinHeightPx {
			top = math.Max(0, bottom-MinHeightPx)
		}
		return Bounds{TopPx: top, BottomPx: bottom}
	}

	bottom := anchor
	top := math.Max(math.Min(current, bottom-MinHeightPx), 0)
	if bottom-top < MinHeightPx {
		bottom = math.Min(limit, top+MinHeightPx)
	}
	return Bounds{TopPx: top, BottomPx: bottom}
}

// NormalizeRange orders two instants and, when they span less than
// MinDurationMs, re-centers them on their midpoint at exactly that span.
func NormalizeRange(t1, t2 int64) Range {
	s, e := min(t1, t2), max(t1, t2)
	if e-s < MinDurationMs {
		mid := s + (e-s)/2
		s = mid - MinDurationMs/2
		e = s + MinDurationMs
	}
	return Range{StartMs: s, EndMs: e}
}

// DragKind identifies which part of a selected block is being dragged.
type DragKind int

const (
	Move DragKind = iota
	ResizeStart
	ResizeEnd
	ResizeTop
	ResizeBottom
	CornerTopLeft
	CornerTopRight
	CornerBottomLeft
	CornerBottomRight
)

var dragKindNames = [...]string{
	Move:              "move",
	ResizeStart:       "start",
	ResizeEnd:         "end",
	ResizeTop:         "top",
	ResizeBottom:      "bottom",
	CornerTopLeft:     "top-left",
	CornerTopRight:    "top-right",
	CornerBottomLeft:  "bottom-left",
	CornerBottomRight: "bottom-right",
}

func (k DragKind) String() string {
	if k >= 0 && int(k) < len(dragKindNames) {
		return dragKindNames[k]
	}
	return fmt.Sprintf("DragKind(%d)", int(k))
}

// ParseDragKind is the inverse of DragKind.String.
func ParseDragKind(s string) (DragKind, error) {
	for i, name := range dragKindNames {
		if name == s {
			return DragKind(i), nil
		}
	}
	return Move, fmt.Errorf("unknown drag kind %q", s)
}

// DragKinds lists every kind in declaration order.
func DragKinds() []DragKind {
	out := make([]DragKind, len(dragKindNames))
	for i := range dragKindNames {
		out[i] = DragKind(i)
	}
	return out
}

// Apply computes the geometry produced by dragging g by (deltaMs, deltaYPx)
// with the given kind. Pixel outputs are always on the snap grid and within
// [0, axisY], or [0, MinHeightPx] above a shallow axis; time outputs are
// always a range of at least MinDurationMs.
// A non-finite vertical delta is treated as no vertical travel.
func Apply(kind DragKind, g Geometry, deltaMs int64, deltaYPx, axisY float64) Geometry {
	if math.IsNaN(deltaYPx) || math.IsInf(deltaYPx, 0) {
		deltaYPx = 0
	}
	switch kind {
	case Move:
		return Translate(g, deltaMs, deltaYPx, axisY)
	case ResizeStart, ResizeEnd, ResizeTop, ResizeBottom:
		return ResizeEdge(kind, g, deltaMs, deltaYPx, axisY)
	case CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight:
		return ResizeCorner(kind, g, deltaMs, deltaYPx, axisY)
	default:
		return g
	}
}

// Translate moves the whole block. Duration and height are preserved and
// the band stays within [0, axisY]. Heights outside [MinHeightPx,
// MaxHeightPx] are brought back into range.
func Translate(g Geometry, deltaMs int64, deltaYPx, axisY float64) Geometry {
	height := ClampHeight(Snap(g.BottomPx - g.TopPx))
	limit := bandLimit(axisY)
	top := clampPx(Snap(g.TopPx+deltaYPx), 0, math.Max(0, limit-height))
	return Geometry{
		StartMs:  g.StartMs + deltaMs,
		EndMs:    g.EndMs + deltaMs,
		TopPx:    top,
		BottomPx: top + height,
	}
}

// ResizeEdge moves one edge. Time edges go through NormalizeRange, so a drag
// that would shrink the block below MinDurationMs re-centers it and may move
// the other time edge as well.
func ResizeEdge(kind DragKind, g Geometry, deltaMs int64, deltaYPx, axisY float64) Geometry {
	switch kind {
	case ResizeStart:
		r := NormalizeRange(g.StartMs+deltaMs, g.EndMs)
		g.StartMs, g.EndMs = r.StartMs, r.EndMs
	case ResizeEnd:
		r := NormalizeRange(g.StartMs, g.EndMs+deltaMs)
		g.StartMs, g.EndMs = r.StartMs, r.EndMs
	case ResizeTop:
		g.TopPx = resizeTop(g, deltaYPx)
	case ResizeBottom:
		g.BottomPx = resizeBottom(g, deltaYPx, axisY)
	}
	return g
}

// ResizeCorner moves one corner while the opposite corner stays put: one
// time bound and one pixel bound vary, the other two are left untouched.
// The moving time bound stops MinDurationMs short of the fixed one.
func ResizeCorner(kind DragKind, g Geometry, deltaMs int64, deltaYPx, axisY float64) Geometry {
	switch kind {
	case CornerTopLeft:
		g.StartMs = min(g.StartMs+deltaMs, g.EndMs-MinDurationMs)
		g.TopPx = resizeTop(g, deltaYPx)
	case CornerTopRight:
		g.EndMs = max(g.EndMs+deltaMs, g.StartMs+MinDurationMs)
		g.TopPx = resizeTop(g, deltaYPx)
	case CornerBottomLeft:
		g.StartMs = min(g.StartMs+deltaMs, g.EndMs-MinDurationMs)
		g.BottomPx = resizeBottom(g, deltaYPx, axisY)
	case CornerBottomRight:
		g.EndMs = max(g.EndMs+deltaMs, g.StartMs+MinDurationMs)
		g.BottomPx = resizeBottom(g, deltaYPx, axisY)
	}
	return g
}

func resizeTop(g Geometry, deltaYPx float64) float64 {
	return math.Max(0, math.Min(snapFloor(g.BottomPx-MinHeightPx), Snap(g.TopPx+deltaYPx)))
}

func resizeBottom(g Geometry, deltaYPx, axisY float64) float64 {
	return math.Max(snapCeil(g.TopPx+MinHeightPx), math.Min(bandLimit(axisY), Snap(g.BottomPx+deltaYPx)))
}
