package interact

import (
	"errors"
	"fmt"
	"math"

	"github.com/runnerr0/timescape/internal/memory"
	"github.com/runnerr0/timescape/internal/theme"
	"github.com/runnerr0/timescape/internal/timeline"
)

var (
	// ErrSessionActive is returned when a session is begun while another is
	// still armed.
	ErrSessionActive = errors.New("interaction already in progress")

	// ErrBelowAxis is returned when theme placement starts on or below the
	// time axis.
	ErrBelowAxis = errors.New("placement must start above the axis")
)

// Phase is the state of a drag or placement session.
type Phase int

const (
	Idle Phase = iota
	Armed
)

func (p Phase) String() string {
	if p == Armed {
		return "armed"
	}
	return "idle"
}

// ActivationDistancePx is how far the pointer must travel before a memory
// drag starts producing patches. Shorter gestures are clicks.
const ActivationDistancePx = 4.0

// MemorySession tracks one memory drag from pointer-down to pointer-up.
// Patches are always computed against the snapshot taken at Begin, so
// intermediate updates never compound.
type MemorySession struct {
	phase    Phase
	mode     memory.DragMode
	snapshot memory.Memory
	originX  float64
	originY  float64
	moved    bool
}

// Phase reports whether a drag is in progress.
func (s *MemorySession) Phase() Phase { return s.phase }

// Moved reports whether the pointer has passed the activation distance.
func (s *MemorySession) Moved() bool { return s.moved }

// Begin arms the session. The mode must suit the snapshot's anchor kind.
func (s *MemorySession) Begin(mode memory.DragMode, snapshot memory.Memory, x, y float64) error {
	if s.phase == Armed {
		return ErrSessionActive
	}
	if _, err := memory.ApplyDrag(mode, snapshot, 0, 0); err != nil {
		return fmt.Errorf("begin memory drag: %w", err)
	}
	*s = MemorySession{
		phase:    Armed,
		mode:     mode,
		snapshot: snapshot,
		originX:  x,
		originY:  y,
	}
	return nil
}

// Move reports the patch for the pointer at (x, y). The bool is false while
// idle or before the activation distance has been reached.
func (s *MemorySession) Move(x, y float64, v timeline.Viewport, surfaceHeight float64) (memory.Patch, bool, error) {
	if s.phase != Armed {
		return memory.Patch{}, false, nil
	}
	dx, dy := x-s.originX, y-s.originY
	if !s.moved && math.Hypot(dx, dy) >= ActivationDistancePx {
		s.moved = true
	}
	if !s.moved {
		return memory.Patch{}, false, nil
	}

	deltaMs := memory.DragDeltaToTime(dx, float64(v.WidthPx), v.StartMs, v.EndMs)
	deltaRatio := 0.0
	if surfaceHeight > 0 {
		deltaRatio = dy / surfaceHeight
	}
	patch, err := memory.ApplyDrag(s.mode, s.snapshot, deltaMs, deltaRatio)
	if err != nil {
		return memory.Patch{}, false, err
	}
	return patch, true, nil
}

// End applies the final pointer position and returns the session to Idle.
// A false result means the gesture was a click.
func (s *MemorySession) End(x, y float64, v timeline.Viewport, surfaceHeight float64) (memory.Patch, bool, error) {
	patch, ok, err := s.Move(x, y, v, surfaceHeight)
	s.Cancel()
	return patch, ok, err
}

// Cancel abandons the drag without a patch.
func (s *MemorySession) Cancel() {
	*s = MemorySession{}
}

// ThemeSession tracks one theme move or resize.
type ThemeSession struct {
	phase    Phase
	kind     theme.DragKind
	snapshot theme.Theme
	originX  float64
	originY  float64
}

// Phase reports whether a drag is in progress.
func (s *ThemeSession) Phase() Phase { return s.phase }

// Kind is the drag kind of the armed session.
func (s *ThemeSession) Kind() theme.DragKind { return s.kind }

// Begin arms the session on snapshot.
func (s *ThemeSession) Begin(kind theme.DragKind, snapshot theme.Theme, x, y float64) error {
	if s.phase == Armed {
		return ErrSessionActive
	}
	*s = ThemeSession{
		phase:    Armed,
		kind:     kind,
		snapshot: snapshot,
		originX:  x,
		originY:  y,
	}
	return nil
}

// Move returns the geometry for the pointer at (x, y).
func (s *ThemeSession) Move(x, y float64, v timeline.Viewport, surfaceHeight float64) (theme.Geometry, bool) {
	if s.phase != Armed {
		return theme.Geometry{}, false
	}
	axisY := AxisY(surfaceHeight)
	g := s.snapshot.Geometry()
	if g.TopPx <= 0 && g.BottomPx <= 0 {
		g.TopPx, g.BottomPx = axisY-theme.DefaultHeightPx, axisY
	}
	deltaMs := memory.DragDeltaToTime(x-s.originX, float64(v.WidthPx), v.StartMs, v.EndMs)
	return theme.Apply(s.kind, g, deltaMs, y-s.originY, axisY), true
}

// End applies the final pointer position and returns the session to Idle.
func (s *ThemeSession) End(x, y float64, v timeline.Viewport, surfaceHeight float64) (theme.Geometry, bool) {
	g, ok := s.Move(x, y, v, surfaceHeight)
	s.Cancel()
	return g, ok
}

// Cancel abandons the drag.
func (s *ThemeSession) Cancel() {
	*s = ThemeSession{}
}
