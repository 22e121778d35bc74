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
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string      { return "rmlist" }
func (c *RmListCmd) Aliases() []string { return nil }
func (c *RmListCmd) Synopsis() string  { return "Delete a list and its tasks" }
func (c *RmListCmd) Usage() string     { return "taskrush rmlist [--force] <list-name>" }
func (c *RmListCmd) NeedsAuth() bool   { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		list, err := w.resolveList(name)
		if err != nil {
			return reportErr(errOut, err)
		}

		// Deleting a list deletes its tasks, so open tasks need --force.
		if !c.force {
			tasks, err := w.svc.ListTasks(ctx, list.ID)
			if err != nil {
				return reportErr(errOut, err)
			}
			for _, t := range tasks {
				if !t.IsCompleted {
					fmt.Fprintln(errOut, "error: list not empty (use --force)")
					return exitcode.UserError
				}
			}
		}

		wasSelected := w.sync.Lists().Selected() == list.ID
		if err := w.sync.DeleteList(ctx, list.ID); err != nil {
			return reportErr(errOut, err)
		}
		if wasSelected {
			w.remember(ctx, "")
		}

		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	})
}
