package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)

// --- Construction ---

func TestInitial_OneYearEachSide(t *testing.T) {
	v := Initial(testNow, 1000)

	assert.Equal(t, 730*DayMs, v.Duration())
	assert.Equal(t, testNow.UnixMilli()-365*DayMs, v.StartMs)
	assert.Equal(t, 1000, v.WidthPx)
	assert.Equal(t, Month, v.Resolution)
}

func TestNewViewport_ClampsDurationAndWidth(t *testing.T) {
	v := NewViewport(0, 1000, 0)
	assert.Equal(t, DefaultLimits.MinDurationMs, v.Duration())
	assert.Equal(t, 1, v.WidthPx)

	v = NewViewport(0, 80*YearMs, 800)
	assert.Equal(t, DefaultLimits.MaxDurationMs, v.Duration())
	assert.Equal(t, Year, v.Resolution)
}

func TestNewViewport_ReordersInvertedBounds(t *testing.T) {
	v := NewViewport(10*DayMs, 0, 800)
	assert.Equal(t, int64(0), v.StartMs)
	assert.Equal(t, 10*DayMs, v.EndMs)
}

func TestWithWidth_KeepsBounds(t *testing.T) {
	v := Initial(testNow, 1000)
	resized := v.WithWidth(-3)

	assert.Equal(t, 1, resized.WidthPx)
	assert.Equal(t, v.StartMs, resized.StartMs)
	assert.Equal(t, v.EndMs, resized.EndMs)
}

// --- Pan ---

func TestPan_PreservesDuration(t *testing.T) {
	v := Initial(testNow, 1000)

	for _, d := range []float64{-1000, -33.3, -0.7, 0, 0.25, 1, 17.9, 640, 1e6} {
		p := v.Pan(d)
		assert.Equal(t, v.Duration(), p.EndMs-p.StartMs, "delta %v", d)
		assert.Equal(t, v.Resolution, p.Resolution)
	}
}

func TestPan_DragRightMovesWindowEarlier(t *testing.T) {
	v := NewViewport(0, 10*DayMs, 1000)

	p := v.Pan(100)
	assert.Equal(t, -DayMs, p.StartMs)
	assert.Equal(t, 9*DayMs, p.EndMs)

	p = v.Pan(-250)
	assert.Equal(t, 25*DayMs/10, p.StartMs)
}

func TestPan_IsUnbounded(t *testing.T) {
	v := Initial(testNow, 1000)
	for i := 0; i < 200; i++ {
		v = v.Pan(5000)
	}
	assert.Less(t, v.StartMs, testNow.UnixMilli()-700*YearMs)
	assert.Equal(t, 730*DayMs, v.Duration())
}

func TestPan_IgnoresNonFiniteDelta(t *testing.T) {
	v := NewViewport(0, 10*DayMs, 1000)
	for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, v, v.Pan(d), "delta %v", d)
	}
}

// --- Zoom ---

func TestZoomBlocked(t *testing.T) {
	atMin := NewViewport(0, DefaultLimits.MinDurationMs, 1000)
	atMax := NewViewport(0, DefaultLimits.MaxDurationMs, 1000)
	middle := Initial(testNow, 1000)

	assert.True(t, atMin.ZoomBlocked(-1))
	assert.False(t, atMin.ZoomBlocked(1))
	assert.True(t, atMax.ZoomBlocked(1))
	assert.False(t, atMax.ZoomBlocked(-1))
	assert.False(t, middle.ZoomBlocked(-1))
	assert.False(t, middle.ZoomBlocked(1))
	assert.True(t, middle.ZoomBlocked(0))
}

func TestZoom_SixPercentStepAroundAnchor(t *testing.T) {
	v := NewViewportWithLimits(0, 10_000, 1000, Limits{MinDurationMs: 1_000, MaxDurationMs: 1_000_000})

	in := v.Zoom(-1, 500)
	assert.Equal(t, int64(9_400), in.Duration())
	assert.InDelta(t, v.TimeAt(500), in.TimeAt(500), 1)

	out := v.Zoom(1, 500)
	assert.Equal(t, int64(10_600), out.Duration())
	assert.InDelta(t, v.TimeAt(500), out.TimeAt(500), 1)
}

func TestZoom_AnchorInvariance(t *testing.T) {
	base := Initial(testNow, 1280)

	for _, anchor := range []float64{0, 1, 200.5, 640, 1000, 1279, 1280} {
		for _, delta := range []float64{-120, -3, 4, 100} {
			z := base.Zoom(delta, anchor)
			assert.InDelta(t, base.TimeAt(anchor), z.TimeAt(anchor), 1, "anchor %v delta %v", anchor, delta)
		}
	}
}

func TestZoom_RepeatedStepsKeepAnchor(t *testing.T) {
	v := Initial(testNow, 1000)
	anchorTime := v.TimeAt(730)

	for i := 0; i < 40; i++ {
		v = v.Zoom(-1, 730)
		assert.InDelta(t, anchorTime, v.TimeAt(730), float64(i+1), "step %d", i)
	}
}

func TestZoom_IdempotentAtBounds(t *testing.T) {
	atMin := Centered(testNow.UnixMilli(), DefaultLimits.MinDurationMs, 1000)
	z := atMin.Zoom(-1, 321)
	assert.Equal(t, atMin.StartMs, z.StartMs)
	assert.Equal(t, atMin.EndMs, z.EndMs)

	atMax := Centered(testNow.UnixMilli(), DefaultLimits.MaxDurationMs, 1000)
	z = atMax.Zoom(1, 777)
	assert.Equal(t, atMax.StartMs, z.StartMs)
	assert.Equal(t, atMax.EndMs, z.EndMs)
}

func TestZoom_ClampsWhenGuardIgnored(t *testing.T) {
	v := Centered(testNow.UnixMilli(), DefaultLimits.MinDurationMs+HourMs/10, 1000)
	anchor := v.TimeAt(250)

	for i := 0; i < 10; i++ {
		v = v.Zoom(-1, 250)
	}
	assert.Equal(t, DefaultLimits.MinDurationMs, v.Duration())
	assert.InDelta(t, anchor, v.TimeAt(250), 10)
	assert.Equal(t, Hour, v.Resolution)
}

func TestZoom_IgnoresNonFiniteInput(t *testing.T) {
	v := NewViewport(0, 10*DayMs, 1000)
	assert.Equal(t, v, v.Zoom(-1, math.NaN()))
	assert.Equal(t, v, v.Zoom(1, math.Inf(1)))
	assert.Equal(t, v, v.Zoom(math.NaN(), 500))
	assert.Equal(t, v, v.Zoom(math.Inf(-1), 500))
}

func TestZoom_RecomputesResolution(t *testing.T) {
	v := Centered(testNow.UnixMilli(), 3*DayMs, 1000)
	assert.Equal(t, Hour, v.Resolution)

	out := v.Zoom(1, 500)
	assert.Equal(t, Day, out.Resolution)
	assert.Equal(t, ResolutionFor(out.Duration()), out.Resolution)
}
