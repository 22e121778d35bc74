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
	Register(&NotesCmd{})
	Register(&PriorityCmd{})
	Register(&EstimateCmd{})
}

// NotesCmd prints or replaces the notes of a task.
type NotesCmd struct {
	clear bool
}

// SetClear sets the clear flag (for testing).
func (c *NotesCmd) SetClear(clear bool) {
	c.clear = clear
}

func (c *NotesCmd) Name() string      { return "notes" }
func (c *NotesCmd) Aliases() []string { return nil }
func (c *NotesCmd) Synopsis() string  { return "Show or set task notes" }
func (c *NotesCmd) Usage() string     { return "taskrush notes [--clear] <ref> [text...]" }
func (c *NotesCmd) NeedsAuth() bool   { return true }

func (c *NotesCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.clear, "clear", false, "")
}

func (c *NotesCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		task, n, code := w.taskFromArgs(ctx, args, errOut)
		if code != exitcode.Success {
			return code
		}
		text := strings.TrimSpace(strings.Join(args[n:], " "))

		if !c.clear && text == "" {
			if task.Notes != "" {
				output.FormatNotes(out, task.Notes)
			}
			return exitcode.Success
		}
		if c.clear && text != "" {
			fmt.Fprintln(errOut, "error: cannot use both --clear and notes text")
			return exitcode.UserError
		}

		return update(ctx, cfg, w, task.ID, service.TaskPatch{Notes: &text}, out, errOut)
	})
}

// PriorityCmd sets or clears the priority of a task.
type PriorityCmd struct{}

func (c *PriorityCmd) Name() string      { return "priority" }
func (c *PriorityCmd) Aliases() []string { return []string{"prio"} }
func (c *PriorityCmd) Synopsis() string  { return "Set task priority" }
func (c *PriorityCmd) Usage() string     { return "taskrush priority <ref> <1-4|none>" }
func (c *PriorityCmd) NeedsAuth() bool   { return true }

func (c *PriorityCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PriorityCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		task, n, code := w.taskFromArgs(ctx, args, errOut)
		if code != exitcode.Success {
			return code
		}
		if len(args[n:]) != 1 {
			fmt.Fprintln(errOut, "error: priority required")
			return exitcode.UserError
		}
		p, err := parsePriority(args[n])
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}

		patch := service.TaskPatch{Priority: service.Clear[int]()}
		if p != nil {
			patch.Priority = service.SetTo(*p)
		}
		return update(ctx, cfg, w, task.ID, patch, out, errOut)
	})
}

// EstimateCmd sets the estimated minutes of a task.
type EstimateCmd struct{}

func (c *EstimateCmd) Name() string      { return "estimate" }
func (c *EstimateCmd) Aliases() []string { return []string{"est"} }
func (c *EstimateCmd) Synopsis() string  { return "Set the estimated focus time of a task" }
func (c *EstimateCmd) Usage() string     { return "taskrush estimate <ref> <minutes|mm:ss>" }
func (c *EstimateCmd) NeedsAuth() bool   { return true }

func (c *EstimateCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EstimateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		task, n, code := w.taskFromArgs(ctx, args, errOut)
		if code != exitcode.Success {
			return code
		}
		if len(args[n:]) != 1 {
			fmt.Fprintln(errOut, "error: estimate required")
			return exitcode.UserError
		}
		est, err := parseEstimate(args[n])
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return update(ctx, cfg, w, task.ID, service.TaskPatch{EstimatedMinutes: &est}, out, errOut)
	})
}

func update(ctx context.Context, cfg *config.Config, w *workspace, id string, patch service.TaskPatch, out, errOut io.Writer) int {
	if err := w.sync.UpdateTask(ctx, id, patch); err != nil {
		return reportErr(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
