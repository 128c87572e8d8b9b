package memory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hourMs = int64(3_600_000)

func TestDragDeltaToTime(t *testing.T) {
	assert.Equal(t, int64(1_000), DragDeltaToTime(100, 1000, 0, 10_000))
	assert.Equal(t, int64(-2_500), DragDeltaToTime(-250, 1000, 0, 10_000))
	assert.Equal(t, int64(0), DragDeltaToTime(100, 0, 0, 10_000))
	assert.Equal(t, int64(0), DragDeltaToTime(100, -1, 0, 10_000))
	assert.Equal(t, int64(0), DragDeltaToTime(math.NaN(), 1000, 0, 10_000))
	assert.Equal(t, int64(0), DragDeltaToTime(math.Inf(1), 1000, 0, 10_000))
	assert.Equal(t, int64(0), DragDeltaToTime(math.Inf(-1), 1000, 0, 10_000))
}

func TestClampVerticalRatio(t *testing.T) {
	assert.Equal(t, 0.0, ClampVerticalRatio(-0.2))
	assert.Equal(t, 1.0, ClampVerticalRatio(1.7))
	assert.Equal(t, 0.42, ClampVerticalRatio(0.42))
}

func TestResizeRange_HandlesClampInsteadOfSwapping(t *testing.T) {
	assert.Equal(t, int64(50), ResizeRangeStart(10, 50, 90))
	assert.Equal(t, int64(5), ResizeRangeStart(10, 50, 5))
	assert.Equal(t, int64(10), ResizeRangeEnd(10, 50, 0))
	assert.Equal(t, int64(70), ResizeRangeEnd(10, 50, 70))
}

// --- ApplyDrag ---

func TestApplyDrag_PointMovesTimeAndRatio(t *testing.T) {
	m := Memory{ID: "p", Anchor: Point(10 * hourMs), VerticalRatio: 0.3}

	patch, err := ApplyDrag(DragPoint, m, hourMs, 0.25)
	require.NoError(t, err)
	require.NotNil(t, patch.Anchor)
	require.NotNil(t, patch.VerticalRatio)
	assert.Equal(t, Point(11*hourMs), *patch.Anchor)
	assert.InDelta(t, 0.55, *patch.VerticalRatio, 1e-12)

	patch, err = ApplyDrag(DragPoint, m, 0, -3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *patch.VerticalRatio)
}

func TestApplyDrag_NonFiniteRatioKeepsSnapshot(t *testing.T) {
	m := Memory{ID: "p", Anchor: Point(10 * hourMs), VerticalRatio: 0.3}

	patch, err := ApplyDrag(DragPoint, m, 0, math.NaN())
	require.NoError(t, err)
	assert.Equal(t, 0.3, *patch.VerticalRatio)
}

func TestApplyDrag_RangeBodyTranslatesBothBounds(t *testing.T) {
	m := Memory{ID: "r", Anchor: Range(hourMs, 5*hourMs), VerticalRatio: 0.6}

	patch, err := ApplyDrag(DragRangeBody, m, -2*hourMs, 0.1)
	require.NoError(t, err)
	assert.Equal(t, Range(-hourMs, 3*hourMs), *patch.Anchor)
	assert.InDelta(t, 0.7, *patch.VerticalRatio, 1e-12)
}

func TestApplyDrag_StartHandleStopsAtEnd(t *testing.T) {
	m := Memory{ID: "r", Anchor: Range(hourMs, 5*hourMs)}

	patch, err := ApplyDrag(DragRangeStart, m, 10*hourMs, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 5*hourMs, patch.Anchor.StartMs)
	assert.Equal(t, 5*hourMs, patch.Anchor.EndMs)
	assert.Nil(t, patch.VerticalRatio)
}

func TestApplyDrag_EndHandleStopsAtStart(t *testing.T) {
	m := Memory{ID: "r", Anchor: Range(hourMs, 5*hourMs)}

	patch, err := ApplyDrag(DragRangeEnd, m, -10*hourMs, 0)
	require.NoError(t, err)
	assert.Equal(t, hourMs, patch.Anchor.StartMs)
	assert.Equal(t, hourMs, patch.Anchor.EndMs)
	assert.NoError(t, patch.Anchor.Validate())
}

func TestApplyDrag_ModeMismatch(t *testing.T) {
	point := Memory{ID: "p", Anchor: Point(0)}
	rng := Memory{ID: "r", Anchor: Range(0, hourMs)}

	_, err := ApplyDrag(DragRangeBody, point, 1, 0)
	assert.ErrorIs(t, err, ErrModeMismatch)
	_, err = ApplyDrag(DragRangeStart, point, 1, 0)
	assert.ErrorIs(t, err, ErrModeMismatch)
	_, err = ApplyDrag(DragPoint, rng, 1, 0)
	assert.ErrorIs(t, err, ErrModeMismatch)
}

func TestParseDragMode_Roundtrip(t *testing.T) {
	for _, m := range []DragMode{DragPoint, DragRangeBody, DragRangeStart, DragRangeEnd} {
		got, err := ParseDragMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseDragMode("corner")
	assert.Error(t, err)
}

// --- Anchor and Patch ---

func TestAnchor_NormalizeReordersRange(t *testing.T) {
	a := Anchor{Kind: RangeAnchor, StartMs: 9, EndMs: 3}
	assert.Error(t, a.Validate())

	n := a.Normalize()
	assert.Equal(t, int64(3), n.StartMs)
	assert.Equal(t, int64(9), n.EndMs)
	assert.NoError(t, n.Validate())
	assert.Equal(t, int64(3), n.TimeMs())
}

func TestAnchor_PointDropsRangeFields(t *testing.T) {
	a := Anchor{Kind: PointAnchor, AtMs: 7, StartMs: 1, EndMs: 2}.Normalize()
	assert.Equal(t, Point(7), a)
	assert.Equal(t, int64(7), a.TimeMs())
}

func TestPatch_Apply(t *testing.T) {
	m := Memory{ID: "m", Anchor: Point(1), Title: "old", VerticalRatio: 0.3}
	ratio := 1.5
	title := "new"
	anchor := Anchor{Kind: RangeAnchor, StartMs: 10, EndMs: 2}

	got := Patch{Anchor: &anchor, VerticalRatio: &ratio, Title: &title}.Apply(m)
	assert.Equal(t, Range(2, 10), got.Anchor)
	assert.Equal(t, 1.0, got.VerticalRatio)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "m", got.ID)
}

func TestParseAnchorKind(t *testing.T) {
	k, err := ParseAnchorKind("range")
	require.NoError(t, err)
	assert.Equal(t, RangeAnchor, k)

	_, err = ParseAnchorKind("span")
	assert.ErrorIs(t, err, ErrInvalidAnchor)
}
