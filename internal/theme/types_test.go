package theme

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	th := New("Deep work", 0, MinDurationMs)
	assert.Equal(t, DefaultColor, th.Color)
	assert.Equal(t, DefaultOpacity, th.Opacity)
	assert.Equal(t, DefaultPriority, th.Priority)
	assert.Equal(t, 96.0, th.HeightPx())
	require.NoError(t, th.Validate())
}

func TestGeometryRoundtrip(t *testing.T) {
	th := New("x", 10, 20)
	g := Geometry{StartMs: 5, EndMs: 50, TopPx: 8, BottomPx: 40}
	assert.Equal(t, g, th.WithGeometry(g).Geometry())
	assert.Equal(t, "x", th.WithGeometry(g).Title)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Theme)
	}{
		{"empty title", func(th *Theme) { th.Title = "" }},
		{"inverted range", func(th *Theme) { th.EndMs = th.StartMs }},
		{"shorter than minimum duration", func(th *Theme) { th.EndMs = th.StartMs + MinDurationMs - 1 }},
		{"priority low", func(th *Theme) { th.Priority = -1 }},
		{"priority high", func(th *Theme) { th.Priority = MaxPriority + 1 }},
		{"opacity low", func(th *Theme) { th.Opacity = 0.01 }},
		{"opacity nan", func(th *Theme) { th.Opacity = math.NaN() }},
		{"negative top", func(th *Theme) { th.TopPx = -4 }},
		{"bottom above top", func(th *Theme) { th.BottomPx = th.TopPx }},
		{"too short", func(th *Theme) { th.BottomPx = th.TopPx + 20 }},
		{"too tall", func(th *Theme) { th.TopPx, th.BottomPx = 0, 700 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := New("Valid", 0, 2*MinDurationMs)
			require.NoError(t, th.Validate())
			tt.mutate(&th)
			assert.ErrorIs(t, th.Validate(), ErrInvalidTheme)
		})
	}
}
