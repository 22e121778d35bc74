package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/service"
)

func init() {
	Register(&DoneCmd{done: true})
	Register(&DoneCmd{done: false})
}

// DoneCmd implements the done and undo commands.
type DoneCmd struct {
	done bool
}

func (c *DoneCmd) Name() string {
	if c.done {
		return "done"
	}
	return "undo"
}

func (c *DoneCmd) Aliases() []string { return nil }

func (c *DoneCmd) Synopsis() string {
	if c.done {
		return "Mark a task completed"
	}
	return "Reopen a completed task"
}

func (c *DoneCmd) Usage() string   { return "taskrush " + c.Name() + " <ref>" }
func (c *DoneCmd) NeedsAuth() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		task, _, code := w.taskFromArgs(ctx, args, errOut)
		if code != exitcode.Success {
			return code
		}

		if err := w.sync.ToggleTask(ctx, task.ID, c.done); err != nil {
			return reportErr(errOut, err)
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	})
}
