package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/timescape/internal/interact"
	"github.com/runnerr0/timescape/internal/storage"
	"github.com/runnerr0/timescape/internal/theme"
)

type themeJSON struct {
	ID          string     `json:"id"`
	Session     string     `json:"session"`
	Title       string     `json:"title"`
	Abbreviated string     `json:"abbreviated_title,omitempty"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Color       string     `json:"color"`
	Opacity     float64    `json:"opacity"`
	Priority    int        `json:"priority"`
	TopPx       float64    `json:"top_px"`
	BottomPx    float64    `json:"bottom_px"`
	Block       *blockJSON `json:"block,omitempty"`
}

type blockJSON struct {
	LeftPx   float64 `json:"left_px"`
	WidthPx  float64 `json:"width_px"`
	TopPx    float64 `json:"top_px"`
	HeightPx float64 `json:"height_px"`
	ZIndex   int     `json:"z_index"`
	Label    string  `json:"label,omitempty"`
}

func toThemeJSON(t theme.Theme) themeJSON {
	out := themeJSON{
		ID:          t.ID,
		Session:     t.SessionID,
		Title:       t.Title,
		Abbreviated: t.AbbreviatedTitle,
		Description: t.Description,
		Tags:        t.Tags,
		Start:       rfc3339Ms(t.StartMs),
		End:         rfc3339Ms(t.EndMs),
		Color:       t.Color,
		Opacity:     t.Opacity,
		Priority:    t.Priority,
		TopPx:       t.TopPx,
		BottomPx:    t.BottomPx,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

func blockLabel(b theme.Block) string {
	label, _ := theme.InlineTitle(b.Theme.Title, b.Theme.AbbreviatedTitle, b.WidthPx, b.HeightPx)
	return label
}

func printTheme(verb string, t theme.Theme) {
	fmt.Printf("%s theme %s\n", verb, t.ID)
	fmt.Printf("  Title:    %s\n", t.Title)
	fmt.Printf("  Range:    %s .. %s UTC\n", formatMs(t.StartMs), formatMs(t.EndMs))
	fmt.Printf("  Band:     %.0f..%.0f px\n", t.TopPx, t.BottomPx)
	fmt.Printf("  Priority: %d\n", t.Priority)
}

// --- theme-add ---

// Execute implements the go-flags Commander interface for ThemeAddCommand.
func (c *ThemeAddCommand) Execute(args []string) error {
	if c.Title == "" {
		return fmt.Errorf("--title is required for theme-add command")
	}
	ws, err := openWorkspace(c.globals)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.executeWith(ws)
}

func (c *ThemeAddCommand) drawn() bool {
	return c.FromX >= 0 || c.FromY >= 0 || c.ToX >= 0 || c.ToY >= 0
}

// geometry resolves the new block either by replaying a drawn rectangle
// through a Placement or by normalizing explicit bounds.
func (c *ThemeAddCommand) geometry(ws *workspace) (theme.Geometry, error) {
	v, height, err := c.ViewportFlags.build(ws.cfg, ws.now())
	if err != nil {
		return theme.Geometry{}, err
	}
	axisY := interact.AxisY(height)

	if c.drawn() {
		if c.FromX < 0 || c.FromY < 0 || c.ToX < 0 || c.ToY < 0 {
			return theme.Geometry{}, fmt.Errorf("--from-x, --from-y, --to-x and --to-y must be given together")
		}
		var p interact.Placement
		if _, err := p.Arm(c.FromX, c.FromY, axisY); err != nil {
			return theme.Geometry{}, err
		}
		draft, _ := p.Move(c.ToX, c.ToY, v.WidthPx)
		ws.logger.Debug("theme draft", "left", draft.LeftPx(), "width", draft.WidthPx(),
			"top", draft.TopPx, "bottom", draft.BottomPx)
		g, _ := p.Release(c.ToX, c.ToY, v)
		return g, nil
	}

	if c.Start == "" || c.End == "" {
		return theme.Geometry{}, fmt.Errorf("either --start/--end or a drawn rectangle is required")
	}
	now := ws.now()
	start, err := parseTime(c.Start, now)
	if err != nil {
		return theme.Geometry{}, fmt.Errorf("--start: %w", err)
	}
	end, err := parseTime(c.End, now)
	if err != nil {
		return theme.Geometry{}, fmt.Errorf("--end: %w", err)
	}
	r := theme.NormalizeRange(start, end)
	b := theme.NormalizeVerticalBounds(c.Top, c.Bottom, axisY)
	return theme.Geometry{StartMs: r.StartMs, EndMs: r.EndMs, TopPx: b.TopPx, BottomPx: b.BottomPx}, nil
}

func (c *ThemeAddCommand) executeWith(ws *workspace) error {
	g, err := c.geometry(ws)
	if err != nil {
		return err
	}

	t := theme.New(c.Title, g.StartMs, g.EndMs).WithGeometry(g)
	t.SessionID = ws.sessionID()
	t.AbbreviatedTitle = c.Abbrev
	t.Description = c.Description
	t.Tags = c.Tags
	if c.Color != "" {
		t.Color = c.Color
	}
	t.Opacity = theme.ClampOpacity(c.Opacity)
	t.Priority = c.Priority

	if err := ws.store.AddTheme(context.Background(), &t); err != nil {
		return fmt.Errorf("storing theme: %w", err)
	}
	ws.logger.Info("theme added", "id", t.ID, "priority", t.Priority)

	if c.globals != nil && c.globals.JSON {
		return writeJSON(toThemeJSON(t))
	}
	printTheme("Added", t)
	return nil
}

// --- theme-list ---

// Execute implements the go-flags Commander interface for ThemeListCommand.
func (c *ThemeListCommand) Execute(args []string) error {
	ws, err := openWorkspace(c.globals)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.executeWith(ws)
}

func (c *ThemeListCommand) executeWith(ws *workspace) error {
	v, height, err := c.ViewportFlags.build(ws.cfg, ws.now())
	if err != nil {
		return err
	}

	q := storage.ThemeQuery{SessionID: ws.sessionID(), Limit: c.Limit, Offset: c.Offset}
	if !c.All {
		q.FromMs, q.ToMs = v.VisibleRange()
	}
	themes, err := ws.store.ListThemes(context.Background(), q)
	if err != nil {
		return fmt.Errorf("list themes: %w", err)
	}
	blocks := theme.Project(themes, v, height)

	var hit *theme.Block
	if c.HitX >= 0 && c.HitY >= 0 {
		if b, ok := theme.HitTest(blocks, c.HitX, c.HitY); ok {
			hit = &b
		}
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]themeJSON, len(blocks))
		for i, b := range blocks {
			out[i] = toThemeJSON(b.Theme)
			out[i].Block = &blockJSON{
				LeftPx:   b.LeftPx,
				WidthPx:  b.WidthPx,
				TopPx:    b.TopPx,
				HeightPx: b.HeightPx,
				ZIndex:   b.ZIndex,
				Label:    blockLabel(b),
			}
		}
		if hit != nil {
			return writeJSON(map[string]interface{}{"themes": out, "hit": hit.Theme.ID})
		}
		return writeJSON(out)
	}

	if len(blocks) == 0 {
		fmt.Println("No themes in view.")
		return nil
	}
	fmt.Printf("%d themes, bottom of the stack first (%s .. %s UTC)\n\n",
		len(blocks), formatMs(v.StartMs), formatMs(v.EndMs))
	for _, b := range blocks {
		label := blockLabel(b)
		if label == "" {
			label = "-"
		}
		fmt.Printf("%3d  %s  p=%-4d  x=%7.1f w=%7.1f  y=%5.0f h=%4.0f  %s\n",
			b.ZIndex, shortID(b.Theme.ID), b.Theme.Priority, b.LeftPx, b.WidthPx, b.TopPx, b.HeightPx, label)
	}
	if top, ok := theme.Topmost(themes); ok {
		fmt.Printf("\nTopmost: %s (%s)\n", top.Title, shortID(top.ID))
	}
	if c.HitX >= 0 && c.HitY >= 0 {
		if hit != nil {
			fmt.Printf("Hit at (%.0f, %.0f): %s (%s)\n", c.HitX, c.HitY, hit.Theme.Title, shortID(hit.Theme.ID))
		} else {
			fmt.Printf("Hit at (%.0f, %.0f): none\n", c.HitX, c.HitY)
		}
	}
	return nil
}

// --- theme-drag ---

// Execute implements the go-flags Commander interface for ThemeDragCommand.
func (c *ThemeDragCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for theme-drag command")
	}
	ws, err := openWorkspace(c.globals)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.executeWith(ws)
}

func (c *ThemeDragCommand) executeWith(ws *workspace) error {
	ctx := context.Background()

	kind, err := theme.ParseDragKind(c.Kind)
	if err != nil {
		return err
	}

	t, err := ws.store.GetTheme(ctx, c.ID)
	if err != nil {
		return notFound(err, "theme", c.ID)
	}

	v, height, err := c.ViewportFlags.build(ws.cfg, ws.now())
	if err != nil {
		return err
	}

	// The pointer goes down on the block's top-left corner.
	x0, y0 := v.XAt(t.StartMs), t.TopPx

	var session interact.ThemeSession
	if err := session.Begin(kind, *t, x0, y0); err != nil {
		return err
	}
	g, _ := session.End(x0+c.DX, y0+c.DY, v, height)
	if g == t.Geometry() {
		fmt.Println("Geometry unchanged.")
		return nil
	}

	updated, err := ws.store.UpdateTheme(ctx, t.ID, g)
	if err != nil {
		return notFound(err, "theme", c.ID)
	}
	ws.logger.Info("theme dragged", "id", updated.ID, "kind", kind,
		"start", updated.StartMs, "end", updated.EndMs)

	if c.globals != nil && c.globals.JSON {
		return writeJSON(toThemeJSON(*updated))
	}
	printTheme("Updated", *updated)
	return nil
}

// --- theme-delete ---

// Execute implements the go-flags Commander interface for ThemeDeleteCommand.
func (c *ThemeDeleteCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for theme-delete command")
	}
	ws, err := openWorkspace(c.globals)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.executeWith(ws)
}

func (c *ThemeDeleteCommand) executeWith(ws *workspace) error {
	if err := ws.store.DeleteTheme(context.Background(), c.ID); err != nil {
		return notFound(err, "theme", c.ID)
	}
	ws.logger.Info("theme deleted", "id", c.ID)

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]interface{}{"id": c.ID, "deleted": true})
	}
	fmt.Printf("Deleted theme %s\n", c.ID)
	return nil
}
