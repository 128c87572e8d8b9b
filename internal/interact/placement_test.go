package interact

import (
	"testing"

	"github.com/runnerr0/timescape/internal/memory"
	"github.com/runnerr0/timescape/internal/theme"
	"github.com/runnerr0/timescape/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacement_RefusesBelowAxis(t *testing.T) {
	var p Placement
	_, err := p.Arm(10, 200, 200)
	assert.ErrorIs(t, err, ErrBelowAxis)
	_, err = p.Arm(10, 350, 200)
	assert.ErrorIs(t, err, ErrBelowAxis)
	assert.Equal(t, Idle, p.Phase())
}

func TestPlacement_DraftFollowsPointer(t *testing.T) {
	var p Placement
	d, err := p.Arm(100, 100, 200)
	require.NoError(t, err)
	assert.Equal(t, Draft{StartX: 100, EndX: 100, Bounds: theme.Bounds{TopPx: 100, BottomPx: 124}}, d)
	assert.Equal(t, 4.0, d.WidthPx())

	_, err = p.Arm(0, 0, 200)
	assert.ErrorIs(t, err, ErrSessionActive)

	d, ok := p.Move(300, 160, 1000)
	require.True(t, ok)
	assert.Equal(t, theme.Bounds{TopPx: 100, BottomPx: 160}, d.Bounds)
	assert.Equal(t, 100.0, d.LeftPx())
	assert.Equal(t, 200.0, d.WidthPx())

	d, ok = p.Move(50, 500, 1000)
	require.True(t, ok)
	assert.Equal(t, theme.Bounds{TopPx: 100, BottomPx: 200}, d.Bounds)
	assert.Equal(t, 50.0, d.LeftPx())
	assert.Equal(t, 50.0, d.WidthPx())
}

func TestPlacement_Release(t *testing.T) {
	var p Placement
	_, err := p.Arm(300, 160, 200)
	require.NoError(t, err)

	g, ok := p.Release(100, 100, tenHours())
	require.True(t, ok)
	assert.Equal(t, theme.Geometry{
		StartMs:  timeline.HourMs,
		EndMs:    3 * timeline.HourMs,
		TopPx:    100,
		BottomPx: 160,
	}, g)
	assert.Equal(t, Idle, p.Phase())

	_, ok = p.Release(100, 100, tenHours())
	assert.False(t, ok)
}

func TestPlacement_ShortReleaseExpands(t *testing.T) {
	var p Placement
	_, err := p.Arm(500, 50, 200)
	require.NoError(t, err)

	g, ok := p.Release(500, 52, tenHours())
	require.True(t, ok)
	assert.Equal(t, theme.MinDurationMs, g.EndMs-g.StartMs)
	assert.Equal(t, 5*timeline.HourMs, g.StartMs+theme.MinDurationMs/2)
	assert.GreaterOrEqual(t, g.BottomPx-g.TopPx, theme.MinHeightPx)
}

func TestPlacement_Cancel(t *testing.T) {
	var p Placement
	_, err := p.Arm(1, 1, 200)
	require.NoError(t, err)
	p.Cancel()
	_, ok := p.Move(5, 5, 1000)
	assert.False(t, ok)
}

func TestMemoryPlacement(t *testing.T) {
	at, ratio := MemoryPlacement(500, 150, tenHours(), 500)
	assert.Equal(t, 5*timeline.HourMs, at)
	assert.InDelta(t, 0.3, ratio, 1e-9)

	_, ratio = MemoryPlacement(0, 900, tenHours(), 500)
	assert.Equal(t, 1.0, ratio)

	_, ratio = MemoryPlacement(0, 10, tenHours(), 0)
	assert.Equal(t, memory.DefaultVerticalRatio, ratio)
}
