package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/prefs"
	"taskrush/internal/service"
	"taskrush/internal/store"
)

// maxLists is the number of lists addressable by letter.
const maxLists = 26

// workspace is the client state a command works on: the synced lists and
// tasks plus the local preferences that remember the selected list.
type workspace struct {
	svc   service.Service
	sync  *store.Sync
	prefs *prefs.Store
}

// openWorkspace loads the lists and the tasks of the remembered list, or of
// the first list when none is remembered.
func openWorkspace(ctx context.Context, cfg *config.Config, svc service.Service) (*workspace, error) {
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	p, err := prefs.Open(cfg.PrefsPath())
	if err != nil {
		return nil, err
	}
	w := &workspace{
		svc:   svc,
		sync:  store.NewSync(svc, store.NewLists(), store.NewTasks(), store.WithLogger(slog.Default())),
		prefs: p,
	}

	remembered, _, err := p.Get(ctx, prefs.KeySelectedList)
	if err != nil {
		slog.Debug("read selected list", "error", err)
		remembered, err = "", nil
	}
	if remembered != "" {
		w.sync.Lists().Select(remembered)
	}
	if err := w.sync.LoadLists(ctx); err != nil {
		p.Close()
		return nil, err
	}

	selected := w.sync.Lists().Selected()
	_, exists := w.sync.Lists().Get(selected)
	switch {
	case selected == "":
	case !exists:
		// The remembered list is gone.
		first := ""
		if all := w.sync.Lists().All(); len(all) > 0 {
			first = all[0].ID
		}
		err = w.selectList(ctx, first)
	case remembered != "":
		err = w.sync.LoadTasks(ctx, selected)
	default:
		w.remember(ctx, selected)
	}
	if err != nil {
		p.Close()
		return nil, err
	}
	return w, nil
}

func (w *workspace) Close() {
	w.prefs.Close()
}

// selectList selects a list, loads its tasks and remembers the choice.
func (w *workspace) selectList(ctx context.Context, id string) error {
	if err := w.sync.SelectList(ctx, id); err != nil {
		return err
	}
	w.remember(ctx, id)
	return nil
}

func (w *workspace) remember(ctx context.Context, id string) {
	var err error
	if id == "" {
		err = w.prefs.Delete(ctx, prefs.KeySelectedList)
	} else {
		err = w.prefs.Set(ctx, prefs.KeySelectedList, id)
	}
	if err != nil {
		slog.Debug("remember selected list", "error", err)
	}
}

// selected returns the selected list.
func (w *workspace) selected() (service.List, bool) {
	return w.sync.Lists().Get(w.sync.Lists().Selected())
}

// lists returns the lists in display order, at most maxLists.
func (w *workspace) lists() []service.List {
	all := w.sync.Lists().All()
	if len(all) > maxLists {
		all = all[:maxLists]
	}
	return all
}

// letterOf returns the display letter of a list, or "".
func (w *workspace) letterOf(id string) string {
	for i, l := range w.lists() {
		if l.ID == id {
			return string(rune('a' + i))
		}
	}
	return ""
}

// listByLetter resolves a list letter.
func (w *workspace) listByLetter(letter rune) (service.List, error) {
	lists := w.lists()
	i := int(letter - 'a')
	if i < 0 || i >= len(lists) {
		return service.List{}, fmt.Errorf("list letter not found: %c", letter)
	}
	return lists[i], nil
}

// resolveList finds a list by letter or by name (case-insensitive, trimmed).
func (w *workspace) resolveList(name string) (service.List, error) {
	name = strings.TrimSpace(name)
	if len(name) == 1 && isLetter(rune(name[0])) {
		if l, err := w.listByLetter(rune(name[0])); err == nil {
			return l, nil
		}
	}

	var matches []service.List
	for _, l := range w.sync.Lists().All() {
		if strings.EqualFold(strings.TrimSpace(l.Name), name) {
			matches = append(matches, l)
		}
	}
	switch len(matches) {
	case 0:
		return service.List{}, fmt.Errorf("list not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return service.List{}, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// resolveTask finds the task a reference points at. A lettered reference
// loads that list's tasks into view.
func (w *workspace) resolveTask(ctx context.Context, ref TaskRef) (service.Task, error) {
	if ref.HasLetter {
		list, err := w.listByLetter(ref.Letter)
		if err != nil {
			return service.Task{}, err
		}
		if list.ID != w.sync.Lists().Selected() {
			if err := w.sync.LoadTasks(ctx, list.ID); err != nil {
				return service.Task{}, err
			}
		}
	} else if _, ok := w.selected(); !ok {
		return service.Task{}, errNoList
	}
	return findTaskByNumber(w.sync.Tasks().Sorted(), ref.TaskNum)
}

var errNoList = errors.New("no lists (run: taskrush createlist <name>)")

// taskFromArgs parses and resolves a task reference, reporting failures to
// errOut. The second result is the number of args consumed.
func (w *workspace) taskFromArgs(ctx context.Context, args []string, errOut io.Writer) (service.Task, int, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return service.Task{}, 0, exitcode.UserError
	}
	if ref.TaskNum < 1 {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", ref.TaskNum)
		return service.Task{}, 0, exitcode.UserError
	}
	task, err := w.resolveTask(ctx, ref)
	if err != nil {
		return service.Task{}, 0, reportErr(errOut, err)
	}
	return task, ref.consumed, exitcode.Success
}

// reportErr prints err and maps it to an exit code.
func reportErr(errOut io.Writer, err error) int {
	msg := err.Error()
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, errNoList),
		strings.HasPrefix(msg, "list not found"),
		strings.HasPrefix(msg, "ambiguous list name"),
		strings.HasPrefix(msg, "list letter not found"),
		strings.HasPrefix(msg, "task number out of range"):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// withWorkspace opens a workspace, runs fn and closes it.
func withWorkspace(ctx context.Context, cfg *config.Config, svc service.Service, errOut io.Writer, fn func(w *workspace) int) int {
	w, err := openWorkspace(ctx, cfg, svc)
	if err != nil {
		return reportErr(errOut, err)
	}
	defer w.Close()
	return fn(w)
}
