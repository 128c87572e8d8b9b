package theme

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidTheme wraps every validation failure.
var ErrInvalidTheme = errors.New("invalid theme")

// Defaults applied to new themes.
const (
	DefaultColor    = "#3b82f6"
	DefaultOpacity  = 0.25
	DefaultPriority = 100
	DefaultTopPx    = 120.0
	DefaultBottomPx = 216.0

	MinPriority = 0
	MaxPriority = 1000
	MinOpacity  = 0.05
	MaxOpacity  = 1.0
)

// Theme is an interval-anchored block. Its vertical bounds are screen-space
// pixels above the axis; Priority drives stacking order.
type Theme struct {
	ID               string
	SessionID        string
	StartMs          int64
	EndMs            int64
	Title            string
	AbbreviatedTitle string
	Description      string
	Tags             []string
	Color            string
	Opacity          float64
	Priority         int
	TopPx            float64
	BottomPx         float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New returns a theme over [startMs, endMs] with stock styling and bounds.
func New(title string, startMs, endMs int64) Theme {
	return Theme{
		StartMs:  startMs,
		EndMs:    endMs,
		Title:    title,
		Color:    DefaultColor,
		Opacity:  DefaultOpacity,
		Priority: DefaultPriority,
		TopPx:    DefaultTopPx,
		BottomPx: DefaultBottomPx,
	}
}

// HeightPx is BottomPx - TopPx.
func (t Theme) HeightPx() float64 {
	return t.BottomPx - t.TopPx
}

// Geometry extracts the draggable part of the theme.
func (t Theme) Geometry() Geometry {
	return Geometry{StartMs: t.StartMs, EndMs: t.EndMs, TopPx: t.TopPx, BottomPx: t.BottomPx}
}

// WithGeometry returns t with g applied.
func (t Theme) WithGeometry(g Geometry) Theme {
	t.StartMs, t.EndMs = g.StartMs, g.EndMs
	t.TopPx, t.BottomPx = g.TopPx, g.BottomPx
	return t
}

// Validate checks the stored-record rules.
func (t Theme) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidTheme)
	}
	if t.EndMs <= t.StartMs {
		return fmt.Errorf("%w: end must be after start", ErrInvalidTheme)
	}
	if t.EndMs-t.StartMs < MinDurationMs {
		return fmt.Errorf("%w: duration shorter than %s", ErrInvalidTheme, time.Duration(MinDurationMs)*time.Millisecond)
	}
	if t.Priority < MinPriority || t.Priority > MaxPriority {
		return fmt.Errorf("%w: priority %d outside [%d, %d]", ErrInvalidTheme, t.Priority, MinPriority, MaxPriority)
	}
	if t.Opacity < MinOpacity || t.Opacity > MaxOpacity || math.IsNaN(t.Opacity) {
		return fmt.Errorf("%w: opacity %v outside [%v, %v]", ErrInvalidTheme, t.Opacity, MinOpacity, MaxOpacity)
	}
	if t.TopPx < 0 {
		return fmt.Errorf("%w: top must be >= 0", ErrInvalidTheme)
	}
	if t.BottomPx <= t.TopPx {
		return fmt.Errorf("%w: bottom must be below top", ErrInvalidTheme)
	}
	if h := t.HeightPx(); h < MinHeightPx || h > MaxHeightPx {
		return fmt.Errorf("%w: height %v outside [%v, %v]", ErrInvalidTheme, h, MinHeightPx, MaxHeightPx)
	}
	return nil
}
