package transfer

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/storage"
)

var now = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *storage.JSONStore {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "tasks.json"))
	tasks := []model.Task{
		{ID: 1, Description: `Say "hi", then leave`, Details: "line one", Status: model.StatusTodo, Priority: model.PriorityHigh, DueDate: "2026-03-01", Tags: []string{"work", "social"}, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Description: "Pay rent", Status: model.StatusDone, Priority: model.PriorityCritical, Tags: []string{"home"}, CreatedAt: now, UpdatedAt: now},
	}
	if err := store.SaveAll(context.Background(), tasks); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"JSON": FormatJSON, "csv": FormatCSV, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if f, err := FormatFromPath("out/tasks.yaml"); err != nil || f != FormatYAML {
		t.Fatalf("FormatFromPath: %q %v", f, err)
	}
}

func TestExportFilters(t *testing.T) {
	store := seededStore(t)
	var buf bytes.Buffer
	n, err := Export(context.Background(), store, &buf, FormatCSV, Filter{Tags: []string{"HOME"}})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 exported task, got %d", n)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "id,description,details,status,priority,dueDate,tags,createdAt,updatedAt" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2,Pay rent,,done,critical,,home,") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestRoundTripEveryFormat(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatCSV, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			src := seededStore(t)
			var buf bytes.Buffer
			if _, err := Export(context.Background(), src, &buf, format, Filter{}); err != nil {
				t.Fatalf("export: %v", err)
			}

			dst := storage.NewJSONStore(filepath.Join(t.TempDir(), "tasks.json"))
			res, err := Import(context.Background(), dst, buf.Bytes(), ImportOptions{Format: format, Mode: ModeReplace}, now)
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if !res.Success || res.Imported != 2 {
				t.Fatalf("unexpected import result: %+v", res)
			}
			got, _ := dst.LoadAll(context.Background())
			if len(got) != 2 || got[0].ID != 1 || got[0].Description != `Say "hi", then leave` {
				t.Fatalf("unexpected tasks: %+v", got)
			}
			if got[0].DueDate != "2026-03-01" || len(got[0].Tags) != 2 || got[0].Tags[1] != "social" {
				t.Fatalf("unexpected fields: %+v", got[0])
			}
			if !got[1].CreatedAt.Equal(now) || got[1].Status != model.StatusDone {
				t.Fatalf("unexpected second task: %+v", got[1])
			}
		})
	}
}

func TestImportMergeAssignsNewIDs(t *testing.T) {
	store := seededStore(t)
	data := []byte(`[
		// comments and trailing commas are accepted
		{"id": 1, "description": "new one", "status": "todo", "priority": "low"},
		{"description": "new two", "status": "in-progress", "priority": "medium", "tags": ["x"],},
	]`)
	later := now.Add(time.Hour)
	res, err := Import(context.Background(), store, data, ImportOptions{Format: FormatJSON, Mode: ModeMerge}, later)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Success || res.Imported != 2 || res.Message != "Successfully merged 2 tasks." {
		t.Fatalf("unexpected result: %+v", res)
	}
	got, _ := store.LoadAll(context.Background())
	if len(got) != 4 || got[2].ID != 3 || got[3].ID != 4 {
		t.Fatalf("unexpected ids: %+v", got)
	}
	if !got[3].UpdatedAt.Equal(later) {
		t.Fatalf("expected merged updatedAt to be now, got %v", got[3].UpdatedAt)
	}
}

func TestImportValidationFailsWholeBatch(t *testing.T) {
	store := seededStore(t)
	data := []byte("description,status,priority,dueDate\nok,todo,low,\n,blocked,urgent,01/02/2026\n")
	res, err := Import(context.Background(), store, data, ImportOptions{Format: FormatCSV}, now)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Success || res.Message != "Validation failed for 1 task(s)" {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := "Line 2: description is required and must be a string, status is required and must be one of: todo, in-progress, done, priority is required and must be one of: low, medium, high, critical, dueDate must be in YYYY-MM-DD format"
	if len(res.Errors) != 1 || res.Errors[0] != want {
		t.Fatalf("unexpected errors: %#v", res.Errors)
	}
	got, _ := store.LoadAll(context.Background())
	if len(got) != 2 {
		t.Fatalf("store should be untouched, got %d tasks", len(got))
	}
}

func TestImportValidateOnlyDoesNotWrite(t *testing.T) {
	store := seededStore(t)
	data := []byte("- description: a\n  status: todo\n  priority: low\n")
	res, err := Import(context.Background(), store, data, ImportOptions{Format: FormatYAML, ValidateOnly: true}, now)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Success || res.Imported != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	got, _ := store.LoadAll(context.Background())
	if len(got) != 2 {
		t.Fatalf("validate-only wrote to the store: %d tasks", len(got))
	}
}

func TestImportRejectsNonArrayJSON(t *testing.T) {
	res, err := Import(context.Background(), seededStore(t), []byte(`{"id": 1}`), ImportOptions{Format: FormatJSON}, now)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Success || res.Message != "JSON file must contain an array of tasks" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAssignIDsKeepsUniquePositiveIDs(t *testing.T) {
	tasks := []model.Task{{ID: 5}, {ID: 0}, {ID: 5}, {ID: 2}}
	assignIDs(tasks)
	want := []int{5, 6, 7, 2}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("task %d id = %d, want %d (%+v)", i, tasks[i].ID, id, tasks)
		}
	}
}

func TestDefaultPaths(t *testing.T) {
	if got := DefaultExportPath(FormatCSV, now); got != "lazytask-export-2026-02-09.csv" {
		t.Fatalf("unexpected export path %q", got)
	}
	if got := BackupPath(now); !strings.HasPrefix(got, "lazytask-backup-2026-02-09T12-00-00-") || !strings.HasSuffix(got, ".json") {
		t.Fatalf("unexpected backup path %q", got)
	}
}
