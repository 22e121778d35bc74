package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/prefs"
	"taskrush/internal/service"
)

func init() {
	Register(&BackgroundCmd{})
}

// BackgroundCmd shows or sets the focus screen background.
type BackgroundCmd struct {
	clear bool
}

// SetClear sets the clear flag (for testing).
func (c *BackgroundCmd) SetClear(clear bool) {
	c.clear = clear
}

func (c *BackgroundCmd) Name() string      { return "bg" }
func (c *BackgroundCmd) Aliases() []string { return []string{"background"} }
func (c *BackgroundCmd) Synopsis() string  { return "Show or set the focus background" }
func (c *BackgroundCmd) Usage() string     { return "taskrush bg [--clear] [<image-url>]" }
func (c *BackgroundCmd) NeedsAuth() bool   { return true }

func (c *BackgroundCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.clear, "clear", false, "")
}

func (c *BackgroundCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	value := strings.TrimSpace(strings.Join(args, " "))
	if c.clear && value != "" {
		fmt.Fprintln(errOut, "error: cannot use both --clear and a value")
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.UserError
	}
	store, err := prefs.Open(cfg.PrefsPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	defer store.Close()

	remote, _ := svc.(service.Preferences)

	if !c.clear && value == "" {
		bg, err := store.Background(ctx, remote, slog.Default())
		if err != nil {
			return reportErr(errOut, err)
		}
		if bg == "" {
			if !cfg.Quiet {
				fmt.Fprintln(out, "no background set")
			}
			return exitcode.Success
		}
		fmt.Fprintln(out, bg)
		return exitcode.Success
	}

	if err := store.SetBackground(ctx, remote, value); err != nil {
		return reportErr(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
