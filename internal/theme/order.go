package theme

import (
	"math"
	"sort"
	"strings"

	"github.com/runnerr0/timescape/internal/timeline"
)

// SortForRender returns a copy of themes in paint order: ascending
// priority, then creation time, then id. The last element paints on top.
func SortForRender(themes []Theme) []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return strings.Compare(a.ID, b.ID) < 0
	})
	return out
}

// Topmost returns the theme painted last, if any.
func Topmost(themes []Theme) (Theme, bool) {
	if len(themes) == 0 {
		return Theme{}, false
	}
	sorted := SortForRender(themes)
	return sorted[len(sorted)-1], true
}

const minBlockWidthPx = 8.0

// Block is a theme projected into surface pixels.
type Block struct {
	Theme    Theme
	LeftPx   float64
	WidthPx  float64
	TopPx    float64
	HeightPx float64
	// ZIndex is 1-based paint order.
	ZIndex int
}

// Contains reports whether (x, y) falls on the block, edges included.
func (b Block) Contains(x, y float64) bool {
	return x >= b.LeftPx && x <= b.LeftPx+b.WidthPx && y >= b.TopPx && y <= b.TopPx+b.HeightPx
}

// Project places themes on the viewport in paint order. Blocks are at
// least minBlockWidthPx wide and MinHeightPx tall; themes stored without a
// band sit on the axis at DefaultHeightPx.
func Project(themes []Theme, v timeline.Viewport, surfaceHeight float64) []Block {
	axisY := surfaceHeight * 0.5
	ordered := SortForRender(themes)
	out := make([]Block, 0, len(ordered))
	for i, t := range ordered {
		xs, xe := v.XAt(t.StartMs), v.XAt(t.EndMs)

		top, bottom := t.TopPx, t.BottomPx
		if bottom <= 0 && top <= 0 {
			top, bottom = axisY-DefaultHeightPx, axisY
		}
		top, bottom = Snap(top), Snap(bottom)

		out = append(out, Block{
			Theme:    t,
			LeftPx:   math.Min(xs, xe),
			WidthPx:  math.Max(minBlockWidthPx, math.Abs(xe-xs)),
			TopPx:    top,
			HeightPx: math.Max(MinHeightPx, bottom-top),
			ZIndex:   i + 1,
		})
	}
	return out
}

// HitTest returns the topmost block containing (x, y).
func HitTest(blocks []Block, x, y float64) (Block, bool) {
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i].Contains(x, y) {
			return blocks[i], true
		}
	}
	return Block{}, false
}

// Inline title fitting. Text width is estimated at a fixed advance per
// character.
const (
	fullTitleMinHeightPx = 16
	titlePaddingPx       = 14
	charAdvancePx        = 7
)

func fitsHorizontally(text string, widthPx float64) bool {
	return float64(len([]rune(text))*charAdvancePx+titlePaddingPx) <= widthPx
}

// InlineTitle picks the label drawn inside a block: the full title when the
// block is tall and wide enough, else the abbreviation when it fits, else
// nothing.
func InlineTitle(title, abbreviated string, widthPx, heightPx float64) (string, bool) {
	if heightPx >= fullTitleMinHeightPx && fitsHorizontally(title, widthPx) {
		return title, true
	}
	if abbreviated != "" && fitsHorizontally(abbreviated, widthPx) {
		return abbreviated, true
	}
	return "", false
}
