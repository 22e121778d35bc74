package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/output"
	"taskrush/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName string
	estimate string
	priority string
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

// SetEstimate sets the estimate (for testing).
func (c *AddCmd) SetEstimate(est string) {
	c.estimate = est
}

// SetPriority sets the priority (for testing).
func (c *AddCmd) SetPriority(p string) {
	c.priority = p
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskrush add [--list <list>] [--est <minutes|mm:ss>] [--priority <1-4>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.estimate, "est", "", "")
	fs.StringVar(&c.estimate, "e", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	task := service.NewTask{Title: title}
	if c.estimate != "" {
		est, err := parseEstimate(c.estimate)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		task.EstimatedMinutes = est
	}
	if c.priority != "" {
		p, err := parsePriority(c.priority)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		task.Priority = p
	}

	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		if c.listName != "" {
			list, err := w.resolveList(c.listName)
			if err != nil {
				return reportErr(errOut, err)
			}
			task.ListID = list.ID
		} else if list, ok := w.selected(); ok {
			task.ListID = list.ID
		} else {
			return reportErr(errOut, errNoList)
		}

		created, err := w.sync.CreateTask(ctx, task)
		if err != nil {
			return reportErr(errOut, err)
		}
		if cfg.Quiet {
			return exitcode.Success
		}
		if created.ListID == w.sync.Lists().Selected() {
			for i, t := range w.sync.Tasks().Sorted() {
				if t.ID == created.ID {
					output.FormatTask(out, i+1, t)
					return exitcode.Success
				}
			}
		}
		fmt.Fprintln(out, "ok")
		return exitcode.Success
	})
}

// parseEstimate accepts whole or fractional minutes ("25", "1.5") or a
// minutes:seconds pair ("2:30").
func parseEstimate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	var minutes float64
	if m, sec, ok := strings.Cut(s, ":"); ok {
		mm, err1 := strconv.Atoi(m)
		ss, err2 := strconv.Atoi(sec)
		if err1 != nil || err2 != nil || mm < 0 || ss < 0 || ss > 59 {
			return 0, fmt.Errorf("invalid estimate: %s", s)
		}
		minutes = float64(mm) + float64(ss)/60
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid estimate: %s", s)
		}
		minutes = v
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("invalid estimate: %s", s)
	}
	return minutes, nil
}

// parsePriority accepts 1 to 4, or "none" for no priority.
func parsePriority(s string) (*int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" {
		return nil, nil
	}
	p, err := strconv.Atoi(strings.TrimPrefix(s, "p"))
	if err != nil || p < 1 || p > 4 {
		return nil, fmt.Errorf("invalid priority: %s (use 1-4 or none)", s)
	}
	return &p, nil
}
