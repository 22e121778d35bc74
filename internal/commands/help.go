package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

// SetRegistry sets the registry help reads commands from. Defaults to
// DefaultRegistry.
func (c *HelpCmd) SetRegistry(r *Registry) { c.registry = r }

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskrush help [<command>]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	reg := c.registry
	if reg == nil {
		reg = DefaultRegistry
	}

	if len(args) > 0 {
		cmd, ok := reg.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "%s - %s\n\nUsage:\n  %s\n", cmd.Name(), cmd.Synopsis(), cmd.Usage())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "\nAliases: %s\n", strings.Join(aliases, ", "))
		}
		return exitcode.Success
	}

	fmt.Fprint(out, helpText)
	var aliases []string
	for _, cmd := range reg.All() {
		if a := cmd.Aliases(); len(a) > 0 {
			aliases = append(aliases, fmt.Sprintf("  %-12s %s", cmd.Name(), strings.Join(a, ", ")))
		}
	}
	if len(aliases) > 0 {
		fmt.Fprintf(out, "\nAliases:\n%s\n", strings.Join(aliases, "\n"))
	}
	return exitcode.Success
}

const helpText = `Usage:
  taskrush                                          List tasks in the selected list
  taskrush list [common flags] [--all] [<list>]     Select a list and show its tasks
  taskrush add [common flags] [--list <list>] [--est <minutes|mm:ss>] [--priority <1-4>] <title...>
  taskrush done [common flags] <ref>
  taskrush undo [common flags] <ref>
  taskrush rm [common flags] <ref>
  taskrush notes [common flags] [--clear] <ref> [text...]
  taskrush priority [common flags] <ref> <1-4|none>
  taskrush estimate [common flags] <ref> <minutes|mm:ss>
  taskrush focus [common flags] [--minutes <minutes|mm:ss>] <ref>
  taskrush stats [common flags]
  taskrush bg [common flags] [--clear] [<image-url>]
  taskrush lists [common flags]
  taskrush createlist [common flags] [--color <#rrggbb>] <list-name>
  taskrush rmlist [common flags] [--force] <list-name>
  taskrush login [common flags] [--email <address>]
  taskrush logout [common flags]
  taskrush help [<command>]
  taskrush version

Task references:
  3      task 3 of the selected list
  b2     task 2 of list b (see: taskrush lists)

Focus controls:
  p pause, r resume, f finish, s stop

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
