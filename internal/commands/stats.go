package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"taskrush/internal/analytics"
	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/output"
	"taskrush/internal/service"
)

func init() {
	Register(&StatsCmd{now: time.Now})
}

// StatsCmd prints focus analytics for the last two weeks.
type StatsCmd struct {
	now func() time.Time
}

// SetNow sets the clock (for testing).
func (c *StatsCmd) SetNow(now func() time.Time) {
	c.now = now
}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return []string{"insights"} }
func (c *StatsCmd) Synopsis() string  { return "Show focus insights for the last 14 days" }
func (c *StatsCmd) Usage() string     { return "taskrush stats [common flags]" }
func (c *StatsCmd) NeedsAuth() bool   { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	report, err := analytics.Load(ctx, svc, now())
	if err != nil {
		return reportErr(errOut, err)
	}
	output.FormatStats(out, report)
	return exitcode.Success
}
