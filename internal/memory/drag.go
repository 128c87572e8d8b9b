package memory

import (
	"errors"
	"fmt"
	"math"
)

// ErrModeMismatch is returned when a drag mode does not fit the anchor kind.
var ErrModeMismatch = errors.New("drag mode does not match anchor")

// DragMode is the kind of marker drag in progress.
type DragMode int

const (
	// DragPoint moves a point marker in time and vertically.
	DragPoint DragMode = iota
	// DragRangeBody translates a whole range and moves it vertically.
	DragRangeBody
	// DragRangeStart moves only the start handle of a range.
	DragRangeStart
	// DragRangeEnd moves only the end handle of a range.
	DragRangeEnd
)

func (m DragMode) String() string {
	switch m {
	case DragPoint:
		return "point"
	case DragRangeBody:
		return "body"
	case DragRangeStart:
		return "start"
	case DragRangeEnd:
		return "end"
	default:
		return fmt.Sprintf("DragMode(%d)", int(m))
	}
}

// ParseDragMode is the inverse of DragMode.String.
func ParseDragMode(s string) (DragMode, error) {
	switch s {
	case "point":
		return DragPoint, nil
	case "body":
		return DragRangeBody, nil
	case "start":
		return DragRangeStart, nil
	case "end":
		return DragRangeEnd, nil
	default:
		return DragPoint, fmt.Errorf("unknown drag mode %q", s)
	}
}

// DragDeltaToTime scales a horizontal pointer delta back into a time delta
// for a viewport of widthPx showing [startMs, endMs]. Degenerate input
// yields 0.
func DragDeltaToTime(deltaXPx, widthPx float64, startMs, endMs int64) int64 {
	if widthPx <= 0 || math.IsNaN(deltaXPx) || math.IsInf(deltaXPx, 0) {
		return 0
	}
	return int64(math.Round(deltaXPx / widthPx * float64(endMs-startMs)))
}

// ClampVerticalRatio confines a ratio to [0, 1].
func ClampVerticalRatio(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ResizeRangeStart moves a range start handle; it stops at the end.
func ResizeRangeStart(startMs, endMs, proposedStartMs int64) int64 {
	return min(proposedStartMs, endMs)
}

// ResizeRangeEnd moves a range end handle; it stops at the start.
func ResizeRangeEnd(startMs, endMs, proposedEndMs int64) int64 {
	return max(proposedEndMs, startMs)
}

// ApplyDrag computes the patch for dragging snapshot by deltaMs in time and
// deltaRatio in vertical position. Handle drags leave the vertical ratio
// alone.
func ApplyDrag(mode DragMode, snapshot Memory, deltaMs int64, deltaRatio float64) (Patch, error) {
	a := snapshot.Anchor
	if math.IsNaN(deltaRatio) || math.IsInf(deltaRatio, 0) {
		deltaRatio = 0
	}
	ratio := ClampVerticalRatio(snapshot.VerticalRatio + deltaRatio)

	switch mode {
	case DragPoint:
		if a.Kind != PointAnchor {
			return Patch{}, fmt.Errorf("%w: %s on %s", ErrModeMismatch, mode, a.Kind)
		}
		next := Point(a.AtMs + deltaMs)
		return Patch{Anchor: &next, VerticalRatio: &ratio}, nil

	case DragRangeBody:
		if a.Kind != RangeAnchor {
			return Patch{}, fmt.Errorf("%w: %s on %s", ErrModeMismatch, mode, a.Kind)
		}
		next := Range(a.StartMs+deltaMs, a.EndMs+deltaMs)
		return Patch{Anchor: &next, VerticalRatio: &ratio}, nil

	case DragRangeStart:
		if a.Kind != RangeAnchor {
			return Patch{}, fmt.Errorf("%w: %s on %s", ErrModeMismatch, mode, a.Kind)
		}
		next := Anchor{Kind: RangeAnchor, StartMs: ResizeRangeStart(a.StartMs, a.EndMs, a.StartMs+deltaMs), EndMs: a.EndMs}
		return Patch{Anchor: &next}, nil

	case DragRangeEnd:
		if a.Kind != RangeAnchor {
			return Patch{}, fmt.Errorf("%w: %s on %s", ErrModeMismatch, mode, a.Kind)
		}
		next := Anchor{Kind: RangeAnchor, StartMs: a.StartMs, EndMs: ResizeRangeEnd(a.StartMs, a.EndMs, a.EndMs+deltaMs)}
		return Patch{Anchor: &next}, nil

	default:
		return Patch{}, fmt.Errorf("unknown drag mode %d", int(mode))
	}
}
