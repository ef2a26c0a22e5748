package bulk

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/storage"
)

var created = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

type memStore struct {
	tasks   []model.Task
	saves   int
	loadErr error
	saveErr error
}

func (s *memStore) LoadAll(context.Context) ([]model.Task, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *memStore) SaveAll(_ context.Context, tasks []model.Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.tasks = tasks
	return nil
}

func (s *memStore) NextID(context.Context) (int, error) { return model.NextID(s.tasks), nil }
func (s *memStore) Close() error                         { return nil }

func (s *memStore) find(id int) (model.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func seedStore() *memStore {
	return &memStore{tasks: []model.Task{
		{ID: 1, Description: "one", Status: model.StatusTodo, Priority: model.PriorityLow, Tags: []string{}, CreatedAt: created, UpdatedAt: created},
		{ID: 2, Description: "two", Status: model.StatusDone, Priority: model.PriorityMedium, Tags: []string{"a"}, CreatedAt: created, UpdatedAt: created},
		{ID: 3, Description: "three", Status: model.StatusDone, Priority: model.PriorityHigh, Tags: []string{}, CreatedAt: created, UpdatedAt: created},
	}}
}

func newTestEngine(s storage.Store) (*Engine, time.Time) {
	later := created.Add(48 * time.Hour)
	return NewEngine(s, func() time.Time { return later }), later
}

func assertCounts(t *testing.T, res model.BulkResult, requested int) {
	t.Helper()
	if res.SuccessCount+res.FailedCount != requested {
		t.Fatalf("success %d + failed %d != requested %d", res.SuccessCount, res.FailedCount, requested)
	}
	if len(res.Errors) != res.FailedCount {
		t.Fatalf("expected %d error entries, got %+v", res.FailedCount, res.Errors)
	}
}

func TestMarkIsIdempotent(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(store)

	res := engine.Mark(context.Background(), []int{2, 3}, model.StatusDone)
	assertCounts(t, res, 2)
	if res.SuccessCount != 0 || res.RolledBack {
		t.Fatalf("unexpected result: %+v", res)
	}
	for _, e := range res.Errors {
		if e.Reason != "task already has status: done" {
			t.Fatalf("unexpected reason: %+v", e)
		}
	}
	if store.saves != 0 {
		t.Fatalf("expected no save, got %d", store.saves)
	}
	for _, id := range []int{2, 3} {
		task, _ := store.find(id)
		if !task.UpdatedAt.Equal(created) {
			t.Fatalf("task %d updatedAt changed: %v", id, task.UpdatedAt)
		}
	}
}

func TestMarkPartialSuccess(t *testing.T) {
	store := seedStore()
	engine, later := newTestEngine(store)

	res := engine.Mark(context.Background(), []int{1, 2, 1, 42}, model.StatusDone)
	assertCounts(t, res, 3)
	if res.SuccessCount != 1 || res.FailedCount != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := res.FailedIDs(); len(got) != 2 || got[0] != 2 || got[1] != 42 {
		t.Fatalf("unexpected failed ids: %v", got)
	}
	if res.Errors[1].Reason != "task not found" {
		t.Fatalf("unexpected reason for missing id: %+v", res.Errors[1])
	}
	task, _ := store.find(1)
	if task.Status != model.StatusDone || !task.UpdatedAt.Equal(later) {
		t.Fatalf("task 1 not marked: %+v", task)
	}
	if store.saves != 1 {
		t.Fatalf("expected exactly one save, got %d", store.saves)
	}
}

func TestMarkInvalidStatus(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(store)
	res := engine.Mark(context.Background(), []int{1, 2}, model.Status("blocked"))
	assertCounts(t, res, 2)
	if res.RolledBack || res.Errors[0].Reason != "invalid status: blocked" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestDeletePresentAndAbsent(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(store)

	res := engine.Delete(context.Background(), []int{2, 99})
	assertCounts(t, res, 2)
	if res.SuccessCount != 1 || res.FailedCount != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Errors[0].ID != 99 || res.Errors[0].Reason != "task not found" {
		t.Fatalf("unexpected failure: %+v", res.Errors[0])
	}
	if _, ok := store.find(2); ok {
		t.Fatal("task 2 should be gone")
	}
	if len(store.tasks) != 2 {
		t.Fatalf("expected 2 remaining tasks, got %d", len(store.tasks))
	}
}

func TestDeleteNothingFoundDoesNotSave(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(store)
	res := engine.Delete(context.Background(), []int{50, 51})
	assertCounts(t, res, 2)
	if res.SuccessCount != 0 || store.saves != 0 {
		t.Fatalf("unexpected result %+v saves=%d", res, store.saves)
	}
}

func TestUpdateInvalidStatusFailsOnlyThatTask(t *testing.T) {
	store := seedStore()
	engine, later := newTestEngine(store)
	ctx := context.Background()

	ok := engine.Update(ctx, []int{1}, model.Changes{Priority: model.Ptr("critical")})
	bad := engine.Update(ctx, []int{2}, model.Changes{Priority: model.Ptr("critical"), Status: model.Ptr("blocked")})

	if ok.SuccessCount != 1 || ok.FailedCount != 0 {
		t.Fatalf("unexpected result for valid change: %+v", ok)
	}
	if bad.SuccessCount != 0 || bad.FailedCount != 1 || bad.Errors[0].Reason != "invalid status: blocked" {
		t.Fatalf("unexpected result for invalid change: %+v", bad)
	}

	one, _ := store.find(1)
	if one.Priority != model.PriorityCritical || !one.UpdatedAt.Equal(later) {
		t.Fatalf("task 1 not updated: %+v", one)
	}
	two, _ := store.find(2)
	if two.Priority != model.PriorityMedium || two.Status != model.StatusDone || !two.UpdatedAt.Equal(created) {
		t.Fatalf("task 2 should be unchanged: %+v", two)
	}
}

func TestUpdateMixedBatch(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(store)
	changes := model.Changes{Priority: model.Ptr("urgent")}

	res := engine.Update(context.Background(), []int{1, 3}, changes)
	assertCounts(t, res, 2)
	if res.SuccessCount != 0 || res.Errors[0].Reason != "invalid priority: urgent" {
		t.Fatalf("unexpected result: %+v", res)
	}

	res = engine.Update(context.Background(), []int{1, 3, 77}, model.Changes{Description: model.Ptr("  renamed  ")}.WithTags([]string{"x", " ", "x", "y"}))
	assertCounts(t, res, 3)
	if res.SuccessCount != 2 || res.Errors[0].ID != 77 {
		t.Fatalf("unexpected result: %+v", res)
	}
	three, _ := store.find(3)
	if three.Description != "renamed" || len(three.Tags) != 2 || three.Tags[1] != "y" {
		t.Fatalf("task 3 not updated: %+v", three)
	}
}

func TestUpdateWithoutEffectKeepsUpdatedAt(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(store)
	res := engine.Update(context.Background(), []int{1}, model.Changes{Priority: model.Ptr("low")})
	if res.SuccessCount != 1 {
		t.Fatalf("expected success, got %+v", res)
	}
	one, _ := store.find(1)
	if !one.UpdatedAt.Equal(created) {
		t.Fatalf("expected updatedAt untouched for a no-op change, got %v", one.UpdatedAt)
	}
}

func TestUpdateRejectsBlankDescriptionAndBadDate(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(store)
	res := engine.Update(context.Background(), []int{1}, model.Changes{Description: model.Ptr("   ")})
	if res.FailedCount != 1 || res.Errors[0].Reason != "description cannot be empty" {
		t.Fatalf("unexpected result: %+v", res)
	}
	res = engine.Update(context.Background(), []int{1}, model.Changes{DueDate: model.Ptr("tomorrow")})
	if res.FailedCount != 1 || res.Errors[0].Reason != "invalid due date: tomorrow" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestStorageFailureRollsBack(t *testing.T) {
	cases := []struct {
		name string
		run  func(*Engine) model.BulkResult
	}{
		{"mark", func(e *Engine) model.BulkResult { return e.Mark(context.Background(), []int{1, 2}, model.StatusInProgress) }},
		{"delete", func(e *Engine) model.BulkResult { return e.Delete(context.Background(), []int{1, 2}) }},
		{"update", func(e *Engine) model.BulkResult {
			return e.Update(context.Background(), []int{1, 2}, model.Changes{Priority: model.Ptr("high")})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := seedStore()
			store.saveErr = errors.New("disk full")
			engine, _ := newTestEngine(store)

			res := tc.run(engine)
			assertCounts(t, res, 2)
			if !res.RolledBack || res.SuccessCount != 0 {
				t.Fatalf("expected rolled back result, got %+v", res)
			}
			for _, e := range res.Errors {
				if !strings.HasPrefix(e.Reason, "storage error: ") || !strings.Contains(e.Reason, "disk full") {
					t.Fatalf("unexpected reason: %+v", e)
				}
			}
			if !IsStorageFailure(ResultErr(res)) {
				t.Fatalf("expected ResultErr to report a storage failure")
			}
			one, _ := store.find(1)
			if one.Status != model.StatusTodo || one.Priority != model.PriorityLow {
				t.Fatalf("store mutated despite failure: %+v", one)
			}
		})
	}
}

func TestLoadFailureRollsBack(t *testing.T) {
	store := seedStore()
	store.loadErr = errors.New("permission denied")
	engine, _ := newTestEngine(store)
	res := engine.Delete(context.Background(), []int{1, 1, 3})
	assertCounts(t, res, 2)
	if !res.RolledBack {
		t.Fatalf("expected rolled back, got %+v", res)
	}
	if ResultErr(model.BulkResult{}) != nil {
		t.Fatal("expected nil error for a clean result")
	}
}

func TestCreateAssignsNextIDAndDefaults(t *testing.T) {
	store := seedStore()
	engine, later := newTestEngine(store)

	task, err := engine.Create(context.Background(), Draft{Description: "  four  ", Tags: []string{"home", "home"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != 4 || task.Description != "four" || task.Status != model.StatusTodo || task.Priority != model.PriorityMedium {
		t.Fatalf("unexpected task: %+v", task)
	}
	if len(task.Tags) != 1 || !task.CreatedAt.Equal(later) || !task.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected task fields: %+v", task)
	}

	if _, err := engine.Create(context.Background(), Draft{Description: "  "}); err == nil {
		t.Fatal("expected blank description error")
	}
	if _, err := engine.Create(context.Background(), Draft{Description: "x", DueDate: "soon"}); !errors.Is(err, model.ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate, got %v", err)
	}

	store.saveErr = errors.New("read-only")
	if _, err := engine.Create(context.Background(), Draft{Description: "x"}); !IsStorageFailure(err) {
		t.Fatalf("expected storage failure, got %v", err)
	}
}

func TestIDsAreNotReusedAfterDeletingTheMiddle(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(store)
	engine.Delete(context.Background(), []int{2})
	task, err := engine.Create(context.Background(), Draft{Description: "next"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != 4 {
		t.Fatalf("expected id 4, got %d", task.ID)
	}
}

func TestEngineOverJSONStore(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "tasks.json"))
	engine, _ := newTestEngine(store)
	ctx := context.Background()
	for _, d := range []string{"a", "b", "c"} {
		if _, err := engine.Create(ctx, Draft{Description: d}); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}
	res := engine.Mark(ctx, []int{1, 3}, model.StatusDone)
	if res.SuccessCount != 2 {
		t.Fatalf("unexpected mark result: %+v", res)
	}
	n, err := engine.Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("clear: %d %v", n, err)
	}
	tasks, _ := store.LoadAll(ctx)
	if len(tasks) != 0 {
		t.Fatalf("expected empty list after clear, got %d", len(tasks))
	}
}
