package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config   string `long:"config" description:"Path to config file" default:""`
	DB       string `long:"db" description:"Override the database path from config"`
	JSON     bool   `long:"json" description:"Output in JSON format"`
	Verbose  bool   `short:"v" long:"verbose" description:"Enable debug logging"`
	LogLevel string `long:"log-level" description:"Log level: debug, info, warn, error"`
	Version  bool   `long:"version" description:"Show version and exit"`
}

// ViewportFlags describe the surface a command projects onto. Zero values
// fall back to config.
type ViewportFlags struct {
	Center string `long:"center" description:"Viewport center: now, RFC3339, YYYY-MM-DD, epoch ms or an offset like -7d" default:"now"`
	Span   string `long:"span" description:"Visible duration (e.g., 6h, 30d, 2y)"`
	Width  int    `long:"width" description:"Surface width in pixels"`
	Height int    `long:"height" description:"Surface height in pixels"`
}

// StatusCommand shows config, schema and annotation statistics.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// ViewCommand prints a viewport after replaying pan and zoom steps.
type ViewCommand struct {
	ViewportFlags

	Pan      []float64 `long:"pan" description:"Pointer pan delta in pixels (repeatable, applied in order)"`
	Zoom     []float64 `long:"zoom" description:"Wheel zoom delta (repeatable, applied after pans)"`
	Anchor   float64   `long:"anchor" description:"Zoom anchor x in pixels; negative means the center" default:"-1"`
	AllTicks bool      `long:"all-ticks" description:"Include ticks hidden by the minimum gap"`

	globals *GlobalFlags
	version string
}

// MemoryAddCommand creates a point or range memory.
type MemoryAddCommand struct {
	ViewportFlags

	Title       string   `long:"title" description:"Memory title"`
	Description string   `long:"description" description:"Longer description"`
	Tags        []string `long:"tag" description:"Tag (repeatable)"`
	At          string   `long:"at" description:"Point anchor time"`
	Start       string   `long:"start" description:"Range anchor start time"`
	End         string   `long:"end" description:"Range anchor end time"`
	X           float64  `long:"x" description:"Place by clicking at this x pixel" default:"-1"`
	Y           float64  `long:"y" description:"Click y pixel used with --x" default:"-1"`
	Ratio       float64  `long:"ratio" description:"Vertical ratio in [0, 1]" default:"-1"`

	globals *GlobalFlags
	version string
}

// MemoryListCommand lists memories projected onto a viewport.
type MemoryListCommand struct {
	ViewportFlags

	Selected string `long:"selected" description:"Memory id kept regardless of density thinning"`
	Tag      string `long:"tag" description:"Only memories with this tag"`
	All      bool   `long:"all" description:"Ignore the viewport window"`
	Limit    int    `long:"limit" description:"Maximum memories loaded" default:"500"`
	Offset   int    `long:"offset" description:"Skip this many memories in time order"`

	globals *GlobalFlags
	version string
}

// MemoryDragCommand drags a memory marker and persists the result.
type MemoryDragCommand struct {
	ViewportFlags

	ID   string  `long:"id" description:"Memory ID (required)"`
	Mode string  `long:"mode" description:"Drag mode: point | body | start | end (default by anchor kind)"`
	DX   float64 `long:"dx" description:"Horizontal pointer travel in pixels"`
	DY   float64 `long:"dy" description:"Vertical pointer travel in pixels"`

	globals *GlobalFlags
	version string
}

// MemoryDeleteCommand removes a memory.
type MemoryDeleteCommand struct {
	ID string `long:"id" description:"Memory ID (required)"`

	globals *GlobalFlags
	version string
}

// ThemeAddCommand creates a theme from a drawn rectangle or explicit bounds.
type ThemeAddCommand struct {
	ViewportFlags

	Title       string   `long:"title" description:"Theme title (required)"`
	Abbrev      string   `long:"abbrev" description:"Abbreviated title for narrow blocks"`
	Description string   `long:"description" description:"Longer description"`
	Tags        []string `long:"tag" description:"Tag (repeatable)"`
	Color       string   `long:"color" description:"Block color" default:"#3b82f6"`
	Opacity     float64  `long:"opacity" description:"Block opacity" default:"0.25"`
	Priority    int      `long:"priority" description:"Stacking priority in [0, 1000]" default:"100"`

	Start  string  `long:"start" description:"Start time"`
	End    string  `long:"end" description:"End time"`
	Top    float64 `long:"top" description:"Top edge in pixels" default:"120"`
	Bottom float64 `long:"bottom" description:"Bottom edge in pixels" default:"216"`

	FromX float64 `long:"from-x" description:"Rectangle pointer-down x" default:"-1"`
	FromY float64 `long:"from-y" description:"Rectangle pointer-down y" default:"-1"`
	ToX   float64 `long:"to-x" description:"Rectangle release x" default:"-1"`
	ToY   float64 `long:"to-y" description:"Rectangle release y" default:"-1"`

	globals *GlobalFlags
	version string
}

// ThemeListCommand lists themes in render order as projected blocks.
type ThemeListCommand struct {
	ViewportFlags

	All    bool    `long:"all" description:"Ignore the viewport window"`
	Limit  int     `long:"limit" description:"Maximum themes loaded" default:"500"`
	Offset int     `long:"offset" description:"Skip this many themes in render order"`
	HitX   float64 `long:"hit-x" description:"Report the topmost block under this x" default:"-1"`
	HitY   float64 `long:"hit-y" description:"Report the topmost block under this y" default:"-1"`

	globals *GlobalFlags
	version string
}

// ThemeDragCommand moves or resizes a theme and persists the result.
type ThemeDragCommand struct {
	ViewportFlags

	ID   string  `long:"id" description:"Theme ID (required)"`
	Kind string  `long:"kind" description:"move | start | end | top | bottom | top-left | top-right | bottom-left | bottom-right" default:"move"`
	DX   float64 `long:"dx" description:"Horizontal pointer travel in pixels"`
	DY   float64 `long:"dy" description:"Vertical pointer travel in pixels"`

	globals *GlobalFlags
	version string
}

// ThemeDeleteCommand removes a theme.
type ThemeDeleteCommand struct {
	ID string `long:"id" description:"Theme ID (required)"`

	globals *GlobalFlags
	version string
}
