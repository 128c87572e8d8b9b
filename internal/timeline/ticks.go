package timeline

import "math"

// TickConfig holds the pixel tunables of label generation.
type TickConfig struct {
	// MinTickGapPx is the closest two visible labels may render.
	MinTickGapPx float64
	// EdgeFadeZonePx is the width of the opacity ramp at each viewport edge.
	EdgeFadeZonePx float64
	// EdgeRenderPaddingPx extends the renderable band off-screen on both
	// sides so labels fade in and out instead of popping.
	EdgeRenderPaddingPx float64
}

// DefaultTickConfig is the stock label layout.
var DefaultTickConfig = TickConfig{
	MinTickGapPx:        160,
	EdgeFadeZonePx:      110,
	EdgeRenderPaddingPx: 40,
}

// Tick is a single label position on the time axis.
type Tick struct {
	TimestampMs int64
	X           float64
	Text        string
	Visible     bool
	EdgeOpacity float64
}

func (cfg TickConfig) edgeOpacity(x, width float64) float64 {
	if width <= 0 || cfg.EdgeFadeZonePx <= 0 {
		return 0
	}
	left := clampUnit(x / cfg.EdgeFadeZonePx)
	right := clampUnit((width - x) / cfg.EdgeFadeZonePx)
	return clampUnit(math.Min(left, right))
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// GenerateTicks lays out step-aligned label ticks for the visible range
// [startMs, endMs] at the given resolution. Ticks run from one step before
// the first aligned tick to two steps past endMs, ascending by timestamp.
//
// Only every stride-th tick (by global tick index, so the choice survives
// panning) inside the render band is Visible; stride keeps visible labels at
// least MinTickGapPx apart.
func GenerateTicks(cfg TickConfig, startMs, endMs int64, widthPx float64, res Resolution) []Tick {
	step := res.Step()
	first := floorDiv(startMs, step) * step

	start, end := float64(startMs), float64(endMs)
	pxPerStep := math.Abs(TimeToX(start+float64(step), start, end, widthPx) - TimeToX(start, start, end, widthPx))
	stride := int64(math.Max(1, math.Ceil(cfg.MinTickGapPx/math.Max(pxPerStep, 1))))

	var ticks []Tick
	seen := make(map[int64]struct{})
	for t := first - step; t <= endMs+2*step; t += step {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}

		x := TimeToX(float64(t), start, end, widthPx)
		inBand := x >= -cfg.EdgeRenderPaddingPx && x <= widthPx+cfg.EdgeRenderPaddingPx
		aligned := floorMod(floorDiv(t, step), stride) == 0
		ticks = append(ticks, Tick{
			TimestampMs: t,
			X:           x,
			Text:        res.Format(t),
			Visible:     aligned && inBand,
			EdgeOpacity: cfg.edgeOpacity(math.Max(0, math.Min(widthPx, x)), widthPx),
		})
	}
	return ticks
}

// VisibleTicks returns the ticks a renderer should draw.
func VisibleTicks(ticks []Tick) []Tick {
	var out []Tick
	for _, t := range ticks {
		if t.Visible {
			out = append(out, t)
		}
	}
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return ((a % b) + b) % b
}
