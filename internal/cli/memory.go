package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/timescape/internal/interact"
	"github.com/runnerr0/timescape/internal/memory"
	"github.com/runnerr0/timescape/internal/storage"
)

// memoryJSON is the JSON shape of a memory, optionally with its projection.
type memoryJSON struct {
	ID            string   `json:"id"`
	Session       string   `json:"session"`
	Anchor        string   `json:"anchor"`
	At            string   `json:"at,omitempty"`
	Start         string   `json:"start,omitempty"`
	End           string   `json:"end,omitempty"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags"`
	VerticalRatio float64  `json:"vertical_ratio"`
	X             *float64 `json:"x,omitempty"`
	Y             *float64 `json:"y,omitempty"`
	WidthPx       *float64 `json:"width_px,omitempty"`
	Snippet       string   `json:"snippet,omitempty"`
	Branch        *branch  `json:"branch,omitempty"`
}

// branch is the connector between a projected marker and the axis.
type branch struct {
	Below    bool    `json:"below"`
	LengthPx float64 `json:"length_px"`
}

func toMemoryJSON(m memory.Memory) memoryJSON {
	out := memoryJSON{
		ID:            m.ID,
		Session:       m.SessionID,
		Anchor:        m.Anchor.Kind.String(),
		Title:         m.Title,
		Description:   m.Description,
		Tags:          m.Tags,
		VerticalRatio: m.VerticalRatio,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if m.Anchor.Kind == memory.RangeAnchor {
		out.Start = rfc3339Ms(m.Anchor.StartMs)
		out.End = rfc3339Ms(m.Anchor.EndMs)
	} else {
		out.At = rfc3339Ms(m.Anchor.AtMs)
	}
	return out
}

// describeAnchor renders the anchor for human output.
func describeAnchor(a memory.Anchor) string {
	if a.Kind == memory.RangeAnchor {
		return fmt.Sprintf("%s .. %s", formatMs(a.StartMs), formatMs(a.EndMs))
	}
	return formatMs(a.AtMs)
}

func printMemory(verb string, m memory.Memory) {
	fmt.Printf("%s memory %s\n", verb, m.ID)
	fmt.Printf("  Anchor: %s %s\n", m.Anchor.Kind, describeAnchor(m.Anchor))
	if m.Title != "" {
		fmt.Printf("  Title:  %s\n", m.Title)
	}
	if len(m.Tags) > 0 {
		fmt.Printf("  Tags:   %s\n", strings.Join(m.Tags, ", "))
	}
	fmt.Printf("  Ratio:  %.3f\n", m.VerticalRatio)
}

// --- memory-add ---

// Execute implements the go-flags Commander interface for MemoryAddCommand.
func (c *MemoryAddCommand) Execute(args []string) error {
	ws, err := openWorkspace(c.globals)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.executeWith(ws)
}

// anchor resolves the anchor and ratio from flags. The explicit --ratio
// overrides the ratio derived from a click.
func (c *MemoryAddCommand) anchor(ws *workspace) (memory.Anchor, float64, error) {
	now := ws.now()
	ratio := memory.DefaultVerticalRatio
	var a memory.Anchor

	switch {
	case c.Start != "" || c.End != "":
		if c.Start == "" || c.End == "" {
			return a, 0, fmt.Errorf("--start and --end must be given together")
		}
		start, err := parseTime(c.Start, now)
		if err != nil {
			return a, 0, fmt.Errorf("--start: %w", err)
		}
		end, err := parseTime(c.End, now)
		if err != nil {
			return a, 0, fmt.Errorf("--end: %w", err)
		}
		a = memory.Range(start, end)
	case c.At != "":
		at, err := parseTime(c.At, now)
		if err != nil {
			return a, 0, fmt.Errorf("--at: %w", err)
		}
		a = memory.Point(at)
	case c.X >= 0:
		v, height, err := c.ViewportFlags.build(ws.cfg, now)
		if err != nil {
			return a, 0, err
		}
		y := c.Y
		if y < 0 {
			y = memory.DefaultVerticalRatio * height
		}
		var at int64
		at, ratio = interact.MemoryPlacement(c.X, y, v, height)
		a = memory.Point(at)
	default:
		return a, 0, fmt.Errorf("one of --at, --start/--end or --x is required")
	}

	if c.Ratio >= 0 {
		ratio = memory.ClampVerticalRatio(c.Ratio)
	}
	return a, ratio, nil
}

func (c *MemoryAddCommand) executeWith(ws *workspace) error {
	a, ratio, err := c.anchor(ws)
	if err != nil {
		return err
	}

	m := &memory.Memory{
		SessionID:     ws.sessionID(),
		Anchor:        a,
		Title:         c.Title,
		Description:   c.Description,
		Tags:          c.Tags,
		VerticalRatio: ratio,
	}
	if err := ws.store.AddMemory(context.Background(), m); err != nil {
		return fmt.Errorf("storing memory: %w", err)
	}
	ws.logger.Info("memory added", "id", m.ID, "anchor", m.Anchor.Kind)

	if c.globals != nil && c.globals.JSON {
		return writeJSON(toMemoryJSON(*m))
	}
	printMemory("Added", *m)
	return nil
}

// --- memory-list ---

// Execute implements the go-flags Commander interface for MemoryListCommand.
func (c *MemoryListCommand) Execute(args []string) error {
	ws, err := openWorkspace(c.globals)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.executeWith(ws)
}

func (c *MemoryListCommand) executeWith(ws *workspace) error {
	v, height, err := c.ViewportFlags.build(ws.cfg, ws.now())
	if err != nil {
		return err
	}

	q := storage.MemoryQuery{SessionID: ws.sessionID(), Tag: c.Tag, Limit: c.Limit, Offset: c.Offset}
	if !c.All {
		q.FromMs, q.ToMs = v.VisibleRange()
	}
	list, err := ws.store.ListMemories(context.Background(), q)
	if err != nil {
		return fmt.Errorf("list memories: %w", err)
	}

	projected := memory.Project(list, c.Selected, v, height)
	ws.logger.Debug("memories projected", "loaded", len(list), "shown", len(projected),
		"stride", memory.DensityStride(len(list)))

	if c.globals != nil && c.globals.JSON {
		out := make([]memoryJSON, len(projected))
		for i, p := range projected {
			out[i] = toMemoryJSON(p.Memory)
			x, y := p.X, p.Y
			out[i].X, out[i].Y = &x, &y
			out[i].Snippet = memory.HoverSnippet(p.Memory.Description)
			b := memory.BranchFor(p.Memory.VerticalRatio, height)
			out[i].Branch = &branch{Below: b.Below, LengthPx: b.LengthPx}
			if p.Memory.Anchor.Kind == memory.RangeAnchor {
				w := p.WidthPx
				out[i].WidthPx = &w
			}
		}
		return writeJSON(out)
	}

	if len(projected) == 0 {
		fmt.Println("No memories in view.")
		return nil
	}
	fmt.Printf("Showing %d of %d memories (%s .. %s UTC)\n\n",
		len(projected), len(list), formatMs(v.StartMs), formatMs(v.EndMs))
	for _, p := range projected {
		m := p.Memory
		marker := " "
		if m.ID == c.Selected {
			marker = "*"
		}
		fmt.Printf("%s %s  %-5s  %-35s  x=%7.1f y=%6.1f  %s\n",
			marker, shortID(m.ID), m.Anchor.Kind, describeAnchor(m.Anchor), p.X, p.Y, m.Title)
		if snippet := memory.HoverSnippet(m.Description); snippet != "" {
			fmt.Printf("    %s...\n", snippet)
		}
	}
	return nil
}

// --- memory-drag ---

// Execute implements the go-flags Commander interface for MemoryDragCommand.
func (c *MemoryDragCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for memory-drag command")
	}
	ws, err := openWorkspace(c.globals)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.executeWith(ws)
}

func (c *MemoryDragCommand) executeWith(ws *workspace) error {
	ctx := context.Background()

	m, err := ws.store.GetMemory(ctx, c.ID)
	if err != nil {
		return notFound(err, "memory", c.ID)
	}

	mode := memory.DragPoint
	if m.Anchor.Kind == memory.RangeAnchor {
		mode = memory.DragRangeBody
	}
	if c.Mode != "" {
		if mode, err = memory.ParseDragMode(c.Mode); err != nil {
			return err
		}
	}

	v, height, err := c.ViewportFlags.build(ws.cfg, ws.now())
	if err != nil {
		return err
	}

	// The pointer goes down on the marker itself.
	x0 := v.XAt(m.Anchor.TimeMs())
	y0 := memory.ClampVerticalRatio(m.VerticalRatio) * height

	var session interact.MemorySession
	if err := session.Begin(mode, *m, x0, y0); err != nil {
		return err
	}
	patch, moved, err := session.End(x0+c.DX, y0+c.DY, v, height)
	if err != nil {
		return err
	}
	if !moved {
		ws.logger.Debug("drag below activation distance", "id", m.ID, "dx", c.DX, "dy", c.DY)
		fmt.Println("Pointer travel below activation distance; memory unchanged.")
		return nil
	}

	updated, err := ws.store.UpdateMemory(ctx, m.ID, patch)
	if err != nil {
		return notFound(err, "memory", c.ID)
	}
	ws.logger.Info("memory dragged", "id", updated.ID, "mode", mode)

	if c.globals != nil && c.globals.JSON {
		return writeJSON(toMemoryJSON(*updated))
	}
	printMemory("Moved", *updated)
	return nil
}

// --- memory-delete ---

// Execute implements the go-flags Commander interface for MemoryDeleteCommand.
func (c *MemoryDeleteCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for memory-delete command")
	}
	ws, err := openWorkspace(c.globals)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.executeWith(ws)
}

func (c *MemoryDeleteCommand) executeWith(ws *workspace) error {
	if err := ws.store.DeleteMemory(context.Background(), c.ID); err != nil {
		return notFound(err, "memory", c.ID)
	}
	ws.logger.Info("memory deleted", "id", c.ID)

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]interface{}{"id": c.ID, "deleted": true})
	}
	fmt.Printf("Deleted memory %s\n", c.ID)
	return nil
}
