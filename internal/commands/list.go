package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/output"
	"taskrush/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskrush` (no args) and `taskrush list <list-name>`.
type ListCmd struct {
	all bool
}

// SetAll sets the all flag (for testing).
func (c *ListCmd) SetAll(all bool) {
	c.all = all
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "taskrush list [--all] [<list-name>]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.all, "a", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		if len(args) > 0 {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				fmt.Fprintln(errOut, "error: list name required")
				return exitcode.UserError
			}
			list, err := w.resolveList(name)
			if err != nil {
				return reportErr(errOut, err)
			}
			if err := w.selectList(ctx, list.ID); err != nil {
				return reportErr(errOut, err)
			}
		}
		return c.print(cfg, w, out)
	})
}

// print writes the selected list and its tasks. Numbers count every task in
// priority order so that hidden completed tasks keep their place.
func (c *ListCmd) print(cfg *config.Config, w *workspace, out io.Writer) int {
	list, ok := w.selected()
	if !ok {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no lists found")
		}
		return exitcode.Success
	}

	output.FormatListHeader(out, w.letterOf(list.ID), list, true)
	shown := 0
	for i, task := range w.sync.Tasks().Sorted() {
		if task.IsCompleted && !c.all {
			continue
		}
		output.FormatTaskIndented(out, i+1, task)
		if task.Notes != "" {
			output.FormatNotes(out, task.Notes)
		}
		shown++
	}

	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
