package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/output"
	"taskrush/internal/service"
	"taskrush/internal/timer"
)

func init() {
	Register(&FocusCmd{})
}

// FocusCmd runs a focus session on a task in the foreground.
type FocusCmd struct {
	minutes string

	in        io.Reader
	newTicker func(time.Duration) timer.Ticker
}

// SetInput sets the control input (for testing).
func (c *FocusCmd) SetInput(r io.Reader) {
	c.in = r
}

// SetTicker sets the ticker factory (for testing).
func (c *FocusCmd) SetTicker(fn func(time.Duration) timer.Ticker) {
	c.newTicker = fn
}

// SetMinutes sets the session length (for testing).
func (c *FocusCmd) SetMinutes(m string) {
	c.minutes = m
}

func (c *FocusCmd) Name() string      { return "focus" }
func (c *FocusCmd) Aliases() []string { return []string{"start"} }
func (c *FocusCmd) Synopsis() string  { return "Run a focus session on a task" }
func (c *FocusCmd) Usage() string     { return "taskrush focus [--minutes <minutes|mm:ss>] <ref>" }
func (c *FocusCmd) NeedsAuth() bool   { return true }

func (c *FocusCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.minutes, "minutes", "", "")
	fs.StringVar(&c.minutes, "m", "", "")
}

func (c *FocusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	var override float64
	if c.minutes != "" {
		m, err := parseEstimate(c.minutes)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		override = m
	}

	return withWorkspace(ctx, cfg, svc, errOut, func(w *workspace) int {
		task, _, code := w.taskFromArgs(ctx, args, errOut)
		if code != exitcode.Success {
			return code
		}
		if task.IsCompleted {
			fmt.Fprintln(errOut, "error: task already completed")
			return exitcode.UserError
		}

		expected := task.EstimatedMinutes
		if override > 0 {
			expected = override
		}
		if expected <= 0 {
			expected = cfg.Settings.Focus.DefaultMinutes
		}

		remote, _ := svc.(service.Preferences)
		bg, err := w.prefs.Background(ctx, remote, slog.Default())
		if err != nil {
			slog.Debug("read focus background", "error", err)
		}
		if bg != "" && !cfg.Quiet {
			fmt.Fprintf(out, "Background: %s\n", bg)
		}

		return c.session(ctx, w, task, expected, out, errOut)
	})
}

// session drives one timer until it finishes or is stopped. Display and
// input are handled on this goroutine; the runner ticks on its own.
func (c *FocusCmd) session(ctx context.Context, w *workspace, task service.Task, expected float64, out, errOut io.Writer) int {
	tm := timer.New()
	rec := &recordingCompleter{next: w.sync}
	p := timer.NewPersister(tm, rec, slog.Default())
	detach := p.Attach()
	defer detach()

	events := make(chan timer.Snapshot, 16)
	done := make(chan timer.Snapshot, 1)
	unsubscribe := tm.Subscribe(func(tr timer.Transition) {
		if tr.Completed() {
			select {
			case done <- tr.Next:
			default:
			}
			return
		}
		if tr.Kind == timer.KindTick && tr.Next.RemainingSeconds%60 != 0 {
			return
		}
		select {
		case events <- tr.Next:
		default:
		}
	})
	defer unsubscribe()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var opts []timer.RunnerOption
	if c.newTicker != nil {
		opts = append(opts, timer.WithTicker(c.newTicker))
	}
	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		timer.NewRunner(tm, opts...).Run(runCtx)
	}()
	// drain stops ticking and waits for any completion write in flight.
	drain := func() {
		cancel()
		<-runnerDone
		p.Wait()
	}
	complete := func(snap timer.Snapshot) int {
		drain()
		output.FormatCompletion(out, snap)
		tm.Dismiss()
		if err := rec.Err(); err != nil {
			return reportErr(errOut, err)
		}
		return exitcode.Success
	}

	input := readLines(runCtx, c.input())

	tm.Start(task.ID, task.Title, expected)
	fmt.Fprintln(out, "Controls: p pause, r resume, f finish, s stop")

	for {
		select {
		case <-ctx.Done():
			drain()
			select {
			case snap := <-done:
				return complete(snap)
			default:
			}
			tm.Stop()
			fmt.Fprintln(out, "Focus session stopped.")
			return exitcode.Success

		case snap := <-events:
			output.FormatTimer(out, snap)

		case line, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			switch strings.ToLower(line) {
			case "p", "pause":
				tm.Pause()
			case "r", "resume":
				tm.Resume()
			case "f", "finish", "done":
				tm.Finish()
			case "s", "stop", "q", "quit":
				tm.Stop()
				drain()
				fmt.Fprintln(out, "Focus session stopped.")
				return exitcode.Success
			case "":
				output.FormatTimer(out, tm.Snapshot())
			default:
				fmt.Fprintf(errOut, "unknown control: %s\n", line)
			}

		case snap := <-done:
			return complete(snap)
		}
	}
}

func (c *FocusCmd) input() io.Reader {
	if c.in != nil {
		return c.in
	}
	return os.Stdin
}

// readLines delivers trimmed lines from r until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// recordingCompleter keeps the error of the last write so the command can
// report it after the persister is done.
type recordingCompleter struct {
	next timer.Completer

	mu  sync.Mutex
	err error
}

func (r *recordingCompleter) CompleteFocusSession(ctx context.Context, taskID string, actualMinutes float64, at time.Time) error {
	err := r.next.CompleteFocusSession(ctx, taskID, actualMinutes, at)
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	return err
}

func (r *recordingCompleter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
