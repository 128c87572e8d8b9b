package memory

import (
	"math"
	"strings"

	"github.com/runnerr0/timescape/internal/timeline"
)

const (
	hoverSnippetWords = 4
	markerSizePx      = 34
	rangeMinWidthPx   = 10
)

// HoverSnippet returns the first few words of a description for the hover
// preview, or "" when there is nothing to show.
func HoverSnippet(description string) string {
	words := strings.Fields(description)
	if len(words) > hoverSnippetWords {
		words = words[:hoverSnippetWords]
	}
	return strings.Join(words, " ")
}

// Branch describes the connector drawn between a marker and the axis.
type Branch struct {
	// Below is true when the connector hangs under the marker (the marker
	// sits above the axis) and false when it rises from the marker's top.
	Below    bool
	LengthPx float64
}

// BranchFor computes the connector for a marker at verticalRatio on a
// surface of surfaceHeight pixels with the axis at half height. A marker
// overlapping the axis gets a zero-length connector.
func BranchFor(verticalRatio, surfaceHeight float64) Branch {
	axisY := surfaceHeight * 0.5
	centerY := ClampVerticalRatio(verticalRatio) * surfaceHeight
	top := centerY - markerSizePx/2
	bottom := centerY + markerSizePx/2

	switch {
	case bottom <= axisY:
		return Branch{Below: true, LengthPx: math.Max(0, axisY-bottom)}
	case top >= axisY:
		return Branch{Below: false, LengthPx: math.Max(0, top-axisY)}
	default:
		return Branch{}
	}
}

// Projected is a memory placed in viewport pixels.
type Projected struct {
	Memory Memory
	X      float64
	// XStart and WidthPx are only meaningful for range anchors.
	XStart  float64
	WidthPx float64
	Y       float64
}

// Project thins memories by their own count and maps the survivors onto
// the viewport and a surface of surfaceHeight pixels.
func Project(memories []Memory, selectedID string, v timeline.Viewport, surfaceHeight float64) []Projected {
	thinned := Thin(memories, selectedID, len(memories))
	out := make([]Projected, 0, len(thinned))
	for _, m := range thinned {
		p := Projected{
			Memory: m,
			X:      v.XAt(m.Anchor.TimeMs()),
			Y:      ClampVerticalRatio(m.VerticalRatio) * surfaceHeight,
		}
		if m.Anchor.Kind == RangeAnchor {
			xs, xe := v.XAt(m.Anchor.StartMs), v.XAt(m.Anchor.EndMs)
			p.XStart = math.Min(xs, xe)
			p.WidthPx = math.Max(rangeMinWidthPx, math.Abs(xe-xs))
		}
		out = append(out, p)
	}
	return out
}
