package commands

import (
	"context"
	"flag"
	"io"

	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/output"
	"taskrush/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Print all lists" }
func (c *ListsCmd) Usage() string     { return "taskrush lists [common flags]" }
func (c *ListsCmd) NeedsAuth() bool   { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		selected := w.sync.Lists().Selected()
		for i, list := range w.lists() {
			output.FormatListName(out, string(rune('a'+i)), list, list.ID == selected)
		}
		return exitcode.Success
	})
}
