package memory

import (
	"errors"
	"fmt"
	"time"
)

// DefaultSessionID is the timeline session used when none is configured.
const DefaultSessionID = "timeline-main"

// DefaultVerticalRatio places a new memory just above the axis band.
const DefaultVerticalRatio = 0.3

// ErrInvalidAnchor is returned for anchors that cannot be normalized.
var ErrInvalidAnchor = errors.New("invalid anchor")

// AnchorKind discriminates the Anchor union.
type AnchorKind int

const (
	PointAnchor AnchorKind = iota
	RangeAnchor
)

func (k AnchorKind) String() string {
	if k == RangeAnchor {
		return "range"
	}
	return "point"
}

// ParseAnchorKind is the inverse of AnchorKind.String.
func ParseAnchorKind(s string) (AnchorKind, error) {
	switch s {
	case "point":
		return PointAnchor, nil
	case "range":
		return RangeAnchor, nil
	default:
		return PointAnchor, fmt.Errorf("%w: unknown anchor type %q", ErrInvalidAnchor, s)
	}
}

// Anchor is the temporal reference of a memory: a single instant (AtMs)
// for point anchors or [StartMs, EndMs] for range anchors. Times are epoch
// milliseconds.
type Anchor struct {
	Kind    AnchorKind
	AtMs    int64
	StartMs int64
	EndMs   int64
}

// Point builds a point anchor.
func Point(atMs int64) Anchor {
	return Anchor{Kind: PointAnchor, AtMs: atMs}
}

// Range builds a range anchor. Inverted bounds are reordered.
func Range(startMs, endMs int64) Anchor {
	return Anchor{Kind: RangeAnchor, StartMs: startMs, EndMs: endMs}.Normalize()
}

// Normalize reorders inverted range bounds and clears fields that do not
// belong to the anchor kind.
func (a Anchor) Normalize() Anchor {
	if a.Kind == PointAnchor {
		return Anchor{Kind: PointAnchor, AtMs: a.AtMs}
	}
	if a.EndMs < a.StartMs {
		a.StartMs, a.EndMs = a.EndMs, a.StartMs
	}
	a.AtMs = 0
	return a
}

// Validate reports whether the anchor can be stored as is.
func (a Anchor) Validate() error {
	switch a.Kind {
	case PointAnchor:
		return nil
	case RangeAnchor:
		if a.EndMs < a.StartMs {
			return fmt.Errorf("%w: range end before start", ErrInvalidAnchor)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidAnchor, int(a.Kind))
	}
}

// TimeMs is the instant used to order and place the anchor: the point
// itself, or the start of a range.
func (a Anchor) TimeMs() int64 {
	if a.Kind == RangeAnchor {
		return a.StartMs
	}
	return a.AtMs
}

// Memory is a point- or range-anchored annotation. VerticalRatio positions
// the marker within the surface band independent of zoom.
type Memory struct {
	ID            string
	SessionID     string
	Anchor        Anchor
	Title         string
	Description   string
	Tags          []string
	VerticalRatio float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Patch is the update produced by a finished interaction. Nil fields are
// left unchanged by the persistence layer.
type Patch struct {
	Anchor        *Anchor
	VerticalRatio *float64
	Title         *string
	Description   *string
	Tags          []string
}

// Apply returns m with the patch applied.
func (p Patch) Apply(m Memory) Memory {
	if p.Anchor != nil {
		m.Anchor = p.Anchor.Normalize()
	}
	if p.VerticalRatio != nil {
		m.VerticalRatio = ClampVerticalRatio(*p.VerticalRatio)
	}
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Tags != nil {
		m.Tags = p.Tags
	}
	return m
}
