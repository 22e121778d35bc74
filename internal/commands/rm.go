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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return nil }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskrush rm <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		task, _, code := w.taskFromArgs(ctx, args, errOut)
		if code != exitcode.Success {
			return code
		}

		if err := w.sync.DeleteTask(ctx, task.ID); err != nil {
			return reportErr(errOut, err)
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	})
}
