package cli

import (
	"fmt"
	"time"

	"github.com/runnerr0/timescape/internal/config"
	"github.com/runnerr0/timescape/internal/interact"
	"github.com/runnerr0/timescape/internal/timeline"
)

type viewJSON struct {
	Start      string     `json:"start"`
	End        string     `json:"end"`
	StartMs    int64      `json:"start_ms"`
	EndMs      int64      `json:"end_ms"`
	WidthPx    int        `json:"width_px"`
	Resolution string     `json:"resolution"`
	Applied    int        `json:"zoom_applied"`
	Ignored    int        `json:"zoom_ignored"`
	Ticks      []tickJSON `json:"ticks"`
}

type tickJSON struct {
	TimestampMs int64   `json:"ts_ms"`
	X           float64 `json:"x"`
	Text        string  `json:"text"`
	Visible     bool    `json:"visible"`
	EdgeOpacity float64 `json:"edge_opacity"`
}

// Execute implements the go-flags Commander interface for ViewCommand.
// View needs config only; the database is never opened.
func (c *ViewCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.executeWith(cfg, time.Now())
}

// replay runs the pan and zoom steps through a Surface. Wheel events are
// spaced past the burst gap so every step reaches the viewport unless the
// zoom limits block it.
func (c *ViewCommand) replay(v timeline.Viewport, now time.Time) (interact.Surface, int, int) {
	s := interact.NewSurface(v)
	for _, dx := range c.Pan {
		s = s.Pan(dx)
	}

	anchor := c.Anchor
	if anchor < 0 {
		anchor = float64(s.Viewport.WidthPx) / 2
	}

	applied, ignored := 0, 0
	at := now
	for _, dy := range c.Zoom {
		at = at.Add(2 * timeline.WheelBurstGap)
		var changed bool
		s, changed = s.Wheel(0, dy, anchor, at)
		if changed {
			applied++
		} else {
			ignored++
		}
	}
	return s, applied, ignored
}

func (c *ViewCommand) executeWith(cfg *config.Config, now time.Time) error {
	v, _, err := c.ViewportFlags.build(cfg, now)
	if err != nil {
		return err
	}

	s, applied, ignored := c.replay(v, now)
	v = s.Viewport

	ticks := v.Ticks(cfg.TickConfig())
	if !c.AllTicks {
		ticks = timeline.VisibleTicks(ticks)
	}

	if c.globals != nil && c.globals.JSON {
		out := viewJSON{
			Start:      rfc3339Ms(v.StartMs),
			End:        rfc3339Ms(v.EndMs),
			StartMs:    v.StartMs,
			EndMs:      v.EndMs,
			WidthPx:    v.WidthPx,
			Resolution: v.Resolution.String(),
			Applied:    applied,
			Ignored:    ignored,
			Ticks:      make([]tickJSON, len(ticks)),
		}
		for i, t := range ticks {
			out.Ticks[i] = tickJSON{
				TimestampMs: t.TimestampMs,
				X:           t.X,
				Text:        t.Text,
				Visible:     t.Visible,
				EdgeOpacity: t.EdgeOpacity,
			}
		}
		return writeJSON(out)
	}

	fmt.Printf("Window:        %s .. %s UTC\n", formatMs(v.StartMs), formatMs(v.EndMs))
	fmt.Printf("Duration:      %s\n", formatDurationHuman(time.Duration(v.Duration())*time.Millisecond))
	fmt.Printf("Resolution:    %s\n", v.Resolution)
	fmt.Printf("Width:         %d px\n", v.WidthPx)
	if len(c.Zoom) > 0 {
		fmt.Printf("Zoom steps:    %d applied, %d ignored\n", applied, ignored)
	}
	fmt.Println()
	for _, t := range ticks {
		marker := " "
		if !t.Visible {
			marker = "-"
		}
		fmt.Printf("%s %8.1f  %-12s  %.2f\n", marker, t.X, t.Text, t.EdgeOpacity)
	}
	return nil
}
