package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"

	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/service"
)

func init() {
	Register(&CreateListCmd{})
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CreateListCmd implements the createlist command.
type CreateListCmd struct {
	color string
}

// SetColor sets the color (for testing).
func (c *CreateListCmd) SetColor(color string) {
	c.color = color
}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a new list" }
func (c *CreateListCmd) Usage() string {
	return "taskrush createlist [common flags] [--color <#rrggbb>] <list-name>"
}
func (c *CreateListCmd) NeedsAuth() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.color, "color", "", "")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}
	if c.color != "" && !colorPattern.MatchString(c.color) {
		fmt.Fprintf(errOut, "error: invalid color: %s\n", c.color)
		return exitcode.UserError
	}

	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		for _, l := range w.sync.Lists().All() {
			if strings.EqualFold(strings.TrimSpace(l.Name), name) {
				fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
				return exitcode.UserError
			}
		}

		list, err := w.sync.CreateList(ctx, service.NewList{Name: name, Color: c.color})
		if err != nil {
			return reportErr(errOut, err)
		}
		if err := w.selectList(ctx, list.ID); err != nil {
			return reportErr(errOut, err)
		}

		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	})
}
