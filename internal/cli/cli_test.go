package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/storage"
	"github.com/sandeepkv93/lazytask/internal/update"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type harness struct {
	dir      string
	dataFile string
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	stdin    string
	program  func(ctx context.Context, m tea.Model, opts ...tea.ProgramOption) error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, name := range []string{"LAZYTASK_CONFIG", "LAZYTASK_DATA_FILE", "LAZYTASK_BACKEND", "LAZYTASK_UI", "LAZYTASK_LOG_LEVEL", "LAZYTASK_LOG_FILE", "LAZYTASK_FUZZY_THRESHOLD", "LAZYTASK_ALT_SCREEN"} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	return &harness{
		dir:      dir,
		dataFile: filepath.Join(dir, "tasks.json"),
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	root := NewRootCommand(Options{
		Stdin:       strings.NewReader(h.stdin),
		Stdout:      h.stdout,
		Stderr:      h.stderr,
		Version:     "1.2.3",
		Now:         func() time.Time { return fixedNow },
		RunProgram:  h.program,
		Interactive: func() bool { return false },
	})
	base := []string{"--config", filepath.Join(h.dir, "missing.toml"), "--data-file", h.dataFile}
	root.SetArgs(append(base, args...))
	return root.ExecuteContext(context.Background())
}

func (h *harness) seed(t *testing.T, tasks ...model.Task) {
	t.Helper()
	if err := storage.NewJSONStore(h.dataFile).SaveAll(context.Background(), tasks); err != nil {
		t.Fatalf("seed tasks: %v", err)
	}
}

func (h *harness) tasks(t *testing.T) []model.Task {
	t.Helper()
	tasks, err := storage.NewJSONStore(h.dataFile).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	return tasks
}

func task(id int, desc string, status model.Status, priority model.Priority) model.Task {
	return model.Task{ID: id, Description: desc, Status: status, Priority: priority, Tags: []string{}, CreatedAt: fixedNow, UpdatedAt: fixedNow}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	if err := h.run(t, "version"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := h.stdout.String(); got != "lazytask 1.2.3\n" {
		t.Fatalf("unexpected version output %q", got)
	}
}

func TestAddThenList(t *testing.T) {
	h := newHarness(t)
	if err := h.run(t, "add", "buy", "milk", "--priority", "high", "--tags", "home,errand", "--due", "2026-03-01"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "created task #1: buy milk") {
		t.Fatalf("unexpected add output %q", h.stdout.String())
	}
	if err := h.run(t, "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "buy milk") || !strings.Contains(out, "home, errand") {
		t.Fatalf("expected task row in list output:\n%s", out)
	}
	if !strings.Contains(out, "2026-03-01 !") {
		t.Fatalf("expected overdue marker in list output:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape codes in non-interactive output:\n%s", out)
	}
}

func TestAddRejectsBadPriority(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "add", "thing", "--priority", "urgent")
	if !errors.Is(err, model.ErrInvalidPriority) {
		t.Fatalf("expected invalid priority error, got %v", err)
	}
	if len(h.tasks(t)) != 0 {
		t.Fatal("expected nothing stored")
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	h := newHarness(t)
	h.seed(t,
		task(1, "alpha", model.StatusTodo, model.PriorityLow),
		task(2, "bravo", model.StatusDone, model.PriorityCritical),
		task(3, "charlie", model.StatusTodo, model.PriorityHigh),
	)
	if err := h.run(t, "list", "--status", "todo", "--sort", "priority", "--order", "desc"); err != nil {
		t.Fatalf("list: %v", err)
	}
	out := h.stdout.String()
	if strings.Contains(out, "bravo") {
		t.Fatalf("expected done task filtered out:\n%s", out)
	}
	if strings.Index(out, "charlie") > strings.Index(out, "alpha") {
		t.Fatalf("expected charlie before alpha:\n%s", out)
	}

	if err := h.run(t, "list", "--search", "charlle", "--fuzzy"); err != nil {
		t.Fatalf("fuzzy list: %v", err)
	}
	if out := h.stdout.String(); !strings.Contains(out, "charlie") || strings.Contains(out, "alpha") {
		t.Fatalf("expected only charlie from fuzzy search:\n%s", out)
	}

	if err := h.run(t, "list", "--search", "zulu"); err != nil {
		t.Fatalf("empty list: %v", err)
	}
	if got := h.stdout.String(); got != "no tasks found\n" {
		t.Fatalf("unexpected empty output %q", got)
	}
}

func TestListRejectsUnknownSort(t *testing.T) {
	h := newHarness(t)
	if err := h.run(t, "list", "--sort", "colour"); err == nil {
		t.Fatal("expected unknown sort field error")
	}
}

func TestMarkReportsPartialFailure(t *testing.T) {
	h := newHarness(t)
	h.seed(t,
		task(1, "alpha", model.StatusTodo, model.PriorityLow),
		task(2, "bravo", model.StatusDone, model.PriorityLow),
	)
	if err := h.run(t, "mark", "done", "1-2,7"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "invalid task IDs: 7") {
		t.Fatalf("expected invalid id report:\n%s", out)
	}
	if !strings.Contains(out, "1 task(s) marked done, 1 failed") {
		t.Fatalf("expected summary line:\n%s", out)
	}
	if !strings.Contains(out, "#2: task already has status: done") {
		t.Fatalf("expected failure line:\n%s", out)
	}
}

func TestMarkRejectsBadExpression(t *testing.T) {
	h := newHarness(t)
	h.seed(t, task(1, "alpha", model.StatusTodo, model.PriorityLow))
	err := h.run(t, "mark", "done", "3-1")
	if err == nil || !strings.Contains(err.Error(), "ID parsing error") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestUpdateAppliesOnlyGivenFlags(t *testing.T) {
	h := newHarness(t)
	h.seed(t,
		task(1, "alpha", model.StatusTodo, model.PriorityLow),
		task(2, "bravo", model.StatusTodo, model.PriorityLow),
	)
	if err := h.run(t, "update", "1,2", "--priority", "high", "--tags", "work"); err != nil {
		t.Fatalf("update: %v", err)
	}
	for _, tk := range h.tasks(t) {
		if tk.Priority != model.PriorityHigh || len(tk.Tags) != 1 || tk.Tags[0] != "work" {
			t.Fatalf("unexpected task after update: %+v", tk)
		}
		if tk.Status != model.StatusTodo {
			t.Fatalf("expected status untouched, got %q", tk.Status)
		}
	}
	if err := h.run(t, "update", "1"); err == nil {
		t.Fatal("expected error without changes")
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	h.seed(t,
		task(1, "alpha", model.StatusTodo, model.PriorityLow),
		task(2, "bravo", model.StatusTodo, model.PriorityLow),
	)
	h.stdin = "n\n"
	if err := h.run(t, "delete", "1"); err != nil {
		t.Fatalf("delete declined: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "[1] alpha") {
		t.Fatalf("expected summary in prompt:\n%s", h.stdout.String())
	}
	if len(h.tasks(t)) != 2 {
		t.Fatal("expected nothing deleted after decline")
	}

	h.stdin = "y\n"
	if err := h.run(t, "delete", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := h.tasks(t); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only #2 left, got %+v", got)
	}

	h.stdin = ""
	if err := h.run(t, "delete", "--yes", "2"); err != nil {
		t.Fatalf("delete --yes: %v", err)
	}
	if len(h.tasks(t)) != 0 {
		t.Fatal("expected no tasks left")
	}
}

func TestDeleteStopsOnUnreadableStore(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(h.dataFile, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	h.stdin = "y\n"
	err := h.run(t, "delete", "1")
	if err == nil || !strings.Contains(err.Error(), "load tasks") {
		t.Fatalf("expected load error, got %v", err)
	}
	if strings.Contains(h.stdout.String(), "About to delete") {
		t.Fatalf("expected no prompt, got:\n%s", h.stdout.String())
	}
}

func TestExportAndImportRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.seed(t,
		task(1, "alpha", model.StatusTodo, model.PriorityLow),
		task(2, "bravo", model.StatusDone, model.PriorityHigh),
	)
	out := filepath.Join(h.dir, "out.csv")
	if err := h.run(t, "export", "--output", out, "--status", "done"); err != nil {
		t.Fatalf("export: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(raw), "id,description,details,status") || !strings.Contains(string(raw), "bravo") || strings.Contains(string(raw), "alpha") {
		t.Fatalf("unexpected csv export:\n%s", raw)
	}

	if err := h.run(t, "import", out); err != nil {
		t.Fatalf("import: %v", err)
	}
	tasks := h.tasks(t)
	if len(tasks) != 3 || tasks[2].ID != 3 || tasks[2].Description != "bravo" {
		t.Fatalf("expected merged copy as #3, got %+v", tasks)
	}
}

func TestExportToStdout(t *testing.T) {
	h := newHarness(t)
	h.seed(t, task(1, "alpha", model.StatusTodo, model.PriorityLow))
	if err := h.run(t, "export", "-o", "-"); err != nil {
		t.Fatalf("export: %v", err)
	}
	var got []model.Task
	if err := json.Unmarshal(h.stdout.Bytes(), &got); err != nil {
		t.Fatalf("expected json on stdout: %v\n%s", err, h.stdout.String())
	}
	if len(got) != 1 || got[0].Description != "alpha" {
		t.Fatalf("unexpected export %+v", got)
	}
}

func TestImportValidationFailureWritesNothing(t *testing.T) {
	h := newHarness(t)
	h.seed(t, task(1, "alpha", model.StatusTodo, model.PriorityLow))
	bad := filepath.Join(h.dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"description": "", "status": "todo", "priority": "low"}]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := h.run(t, "import", bad, "--mode", "replace"); err == nil {
		t.Fatal("expected validation error")
	}
	if got := h.tasks(t); len(got) != 1 || got[0].Description != "alpha" {
		t.Fatalf("expected store untouched, got %+v", got)
	}
}

func TestStatsOutput(t *testing.T) {
	h := newHarness(t)
	h.seed(t,
		task(1, "alpha", model.StatusTodo, model.PriorityLow),
		task(2, "bravo", model.StatusDone, model.PriorityHigh),
	)
	if err := h.run(t, "stats"); err != nil {
		t.Fatalf("stats: %v", err)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "Total tasks: 2") || !strings.Contains(out, "Completion: 50%") {
		t.Fatalf("unexpected stats output:\n%s", out)
	}
}

func TestInvalidBackendFlag(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "--backend", "postgres", "list")
	if err == nil || !strings.Contains(err.Error(), "invalid storage.backend") {
		t.Fatalf("expected backend validation error, got %v", err)
	}
}

func TestDashboardRunsProgram(t *testing.T) {
	h := newHarness(t)
	h.seed(t, task(1, "alpha", model.StatusTodo, model.PriorityLow))
	var got tea.Model
	h.program = func(_ context.Context, m tea.Model, _ ...tea.ProgramOption) error {
		got = m
		return nil
	}
	if err := h.run(t, "--ui", "plain"); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	m, ok := got.(update.Model)
	if !ok {
		t.Fatalf("expected update.Model, got %T", got)
	}
	if len(m.Tasks()) != 1 {
		t.Fatalf("expected tasks loaded, got %d", len(m.Tasks()))
	}
}

func TestDashboardReportsProgramError(t *testing.T) {
	h := newHarness(t)
	h.program = func(context.Context, tea.Model, ...tea.ProgramOption) error {
		return errors.New("no tty")
	}
	err := h.run(t, "dashboard")
	if err == nil || !strings.Contains(err.Error(), "no tty") {
		t.Fatalf("expected program error, got %v", err)
	}
}
