package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"taskrush/internal/cli"
	"taskrush/internal/commands"
	"taskrush/internal/config"
	"taskrush/internal/exitcode"
	"taskrush/internal/service"
	"taskrush/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// isolate keeps config and .env lookups inside temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TASKRUSH_BACKEND", "")
	t.Setenv("DATABASE_URL", "")
	return t.TempDir()
}

func run(t *testing.T, svc *testutil.FakeService, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testutil.NewFakeService(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testutil.NewFakeService(), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	isolate(t)
	stdout, stderr, code := run(t, testutil.NewFakeService(), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !bytes.Contains([]byte(stdout), []byte("Usage:")) {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	isolate(t)
	stdout, stderr, code := run(t, testutil.NewFakeService(), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskrush 0.1.0\n" {
		t.Errorf("expected 'taskrush 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testutil.NewFakeService(), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	dir := isolate(t)
	_, stderr, code := run(t, testutil.NewFakeService(), "add", "--config", dir, "--est")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -est\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsListsSelectedList(t *testing.T) {
	isolate(t)
	svc := testutil.NewFakeService()
	svc.AddList("work", "Work", 1)
	svc.AddTask(service.Task{ID: "t1", ListID: "work", Title: "Write report", EstimatedMinutes: 25})

	stdout, stderr, code := run(t, svc)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "------------\na) Work [selected]\n------------\n       1  [ ] Write report  (25m)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestDispatcher_AddWithFlags(t *testing.T) {
	dir := isolate(t)
	svc := testutil.NewFakeService()
	svc.AddList("work", "Work", 1)

	stdout, stderr, code := run(t, svc, "add", "--config", dir, "--est", "10", "-p", "1", "Buy", "milk")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if expected := "   1  [ ] Buy milk  (P1, 10m)\n"; stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	tasks, _ := svc.ListTasks(context.Background(), "work")
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].EstimatedMinutes != 10 {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	dir := isolate(t)
	svc := testutil.NewFakeService()
	svc.SignedOut()

	_, stderr, code := run(t, svc, "lists", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: not logged in (run: taskrush login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FactoryAuthError(t *testing.T) {
	dir := isolate(t)
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, service.ErrNotAuthenticated
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var outBuf, errBuf bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"lists", "--config", dir}, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: auth error: not authenticated (run: taskrush login)\n"
	if errBuf.String() != expected {
		t.Errorf("expected %q, got %q", expected, errBuf.String())
	}
}

func TestDispatcher_LoginGetsServiceWhileSignedOut(t *testing.T) {
	dir := isolate(t)
	svc := testutil.NewFakeService()
	svc.SignedOut()

	stdout, stderr, code := run(t, svc, "login", "--config", dir, "--email", "a@example.com")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}
	session, err := svc.Session(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session == nil || session.Email != "a@example.com" {
		t.Errorf("expected session for a@example.com, got %+v", session)
	}
}

func TestDispatcher_InvalidConfig(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("backend: mongo\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := run(t, testutil.NewFakeService(), "lists", "--config", dir)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown backend \"mongo\"\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}
