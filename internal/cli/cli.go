package cli

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Status       *StatusCommand
	View         *ViewCommand
	MemoryAdd    *MemoryAddCommand
	MemoryList   *MemoryListCommand
	MemoryDrag   *MemoryDragCommand
	MemoryDelete *MemoryDeleteCommand
	ThemeAdd     *ThemeAddCommand
	ThemeList    *ThemeListCommand
	ThemeDrag    *ThemeDragCommand
	ThemeDelete  *ThemeDeleteCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "timescape"
	parser.LongDescription = heredoc.Doc(`
		Unbounded horizontal timeline with point/range memories and interval themes.

		Commands replay pointer and wheel input through the timeline engine and
		persist the finished result to a local SQLite database.
	`)

	cmds := &commands{
		Status:       &StatusCommand{globals: &globals, version: version},
		View:         &ViewCommand{globals: &globals, version: version},
		MemoryAdd:    &MemoryAddCommand{globals: &globals, version: version},
		MemoryList:   &MemoryListCommand{globals: &globals, version: version},
		MemoryDrag:   &MemoryDragCommand{globals: &globals, version: version},
		MemoryDelete: &MemoryDeleteCommand{globals: &globals, version: version},
		ThemeAdd:     &ThemeAddCommand{globals: &globals, version: version},
		ThemeList:    &ThemeListCommand{globals: &globals, version: version},
		ThemeDrag:    &ThemeDragCommand{globals: &globals, version: version},
		ThemeDelete:  &ThemeDeleteCommand{globals: &globals, version: version},
	}

	parser.AddCommand("status", "Show database and annotation statistics",
		"Show configuration, schema version and annotation statistics per session.", cmds.Status)
	parser.AddCommand("view", "Print a viewport and its tick labels", heredoc.Doc(`
		Build a viewport around --center spanning --span, replay --pan pointer
		deltas and then --zoom wheel deltas, and print the resulting window and
		its tick labels.

		Zooms that would leave the 6 hour to 50 year range are ignored.
	`), cmds.View)
	parser.AddCommand("memory-add", "Add a point or range memory", heredoc.Doc(`
		Add a memory anchored at --at, over --start/--end, or at the instant
		under a click at --x/--y on the viewport.
	`), cmds.MemoryAdd)
	parser.AddCommand("memory-list", "List memories on a viewport",
		"List memories overlapping the viewport, thinned by density. --selected is always kept.", cmds.MemoryList)
	parser.AddCommand("memory-drag", "Drag a memory marker", heredoc.Doc(`
		Drag a memory by --dx/--dy pixels on the viewport and save the result.
		Travel shorter than 4 pixels is a click and changes nothing.
	`), cmds.MemoryDrag)
	parser.AddCommand("memory-delete", "Delete a memory", "Delete a memory by id.", cmds.MemoryDelete)
	parser.AddCommand("theme-add", "Add a theme block", heredoc.Doc(`
		Add a theme either from a rectangle drawn above the axis
		(--from-x/--from-y to --to-x/--to-y) or from --start/--end with
		--top/--bottom pixel bounds. Short ranges expand to 30 minutes and
		bounds snap to the 4 pixel grid.
	`), cmds.ThemeAdd)
	parser.AddCommand("theme-list", "List themes in render order",
		"List themes overlapping the viewport as projected blocks, bottom of the stack first.", cmds.ThemeList)
	parser.AddCommand("theme-drag", "Move or resize a theme", heredoc.Doc(`
		Move or resize a theme by --dx/--dy pixels with the given --kind and
		save the result.
	`), cmds.ThemeDrag)
	parser.AddCommand("theme-delete", "Delete a theme", "Delete a theme by id.", cmds.ThemeDelete)

	return parser, &globals, cmds
}

// Run is the main entry point for the timescape CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// go-flags requires a subcommand, but --version is valid without one.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("timescape %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
