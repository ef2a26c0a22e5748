// Package bulk applies status changes, field updates and deletions to sets
// of tasks, reporting per-task outcomes instead of stopping at the first
// failure.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/storage"
)

const (
	reasonNotFound    = "task not found"
	reasonEmptyDesc   = "description cannot be empty"
	reasonStoragePfx  = "storage error: "
	reasonHasStatus   = "task already has status: "
	reasonBadStatus   = "invalid status: "
	reasonBadPriority = "invalid priority: "
	reasonBadDueDate  = "invalid due date: "
)

// StorageError marks a failure of the underlying store. Batches that hit one
// are reported as rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type Engine struct {
	store storage.Store
	now   func() time.Time
}

func NewEngine(store storage.Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: store, now: now}
}

func (e *Engine) Store() storage.Store {
	return e.store
}

// Mark sets status on every listed task. Tasks already in that status fail
// and keep their updatedAt.
func (e *Engine) Mark(ctx context.Context, ids []int, status model.Status) model.BulkResult {
	ids = dedupe(ids)
	if !status.IsValid() {
		return failAll(ids, reasonBadStatus+string(status), false)
	}
	return e.apply(ctx, "mark", ids, func(t *model.Task, now time.Time) (bool, string) {
		if t.Status == status {
			return false, reasonHasStatus + string(status)
		}
		t.Status = status
		t.UpdatedAt = now
		return true, ""
	})
}

// Update applies the fields present in changes. An invalid value fails only
// the task it was applied to.
func (e *Engine) Update(ctx context.Context, ids []int, changes model.Changes) model.BulkResult {
	ids = dedupe(ids)
	return e.apply(ctx, "update", ids, func(t *model.Task, now time.Time) (bool, string) {
		next, reason := applyChanges(*t, changes)
		if reason != "" {
			return false, reason
		}
		if !equalTask(*t, next) {
			next.UpdatedAt = now
		}
		*t = next
		return true, ""
	})
}

// Delete removes every listed task that is still present.
func (e *Engine) Delete(ctx context.Context, ids []int) model.BulkResult {
	ids = dedupe(ids)
	tasks, err := e.store.LoadAll(ctx)
	if err != nil {
		return failAll(ids, reasonStoragePfx+err.Error(), true)
	}

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	found := map[int]bool{}
	kept := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if wanted[t.ID] {
			found[t.ID] = true
			continue
		}
		kept = append(kept, t)
	}

	res := model.BulkResult{Errors: []model.BulkFailure{}}
	for _, id := range ids {
		if found[id] {
			res.SuccessCount++
			continue
		}
		res.FailedCount++
		res.Errors = append(res.Errors, model.BulkFailure{ID: id, Reason: reasonNotFound})
	}
	if res.SuccessCount > 0 {
		if err := e.store.SaveAll(ctx, kept); err != nil {
			return failAll(ids, reasonStoragePfx+err.Error(), true)
		}
	}
	return res
}

type Draft struct {
	Description string
	Details     string
	Priority    model.Priority
	Status      model.Status
	DueDate     string
	Tags        []string
}

// Create appends a new task with the next free ID.
func (e *Engine) Create(ctx context.Context, d Draft) (model.Task, error) {
	tasks, err := e.store.LoadAll(ctx)
	if err != nil {
		return model.Task{}, &StorageError{Op: "load tasks", Err: err}
	}
	now := e.now().UTC()
	task := model.Task{
		ID:          model.NextID(tasks),
		Description: strings.TrimSpace(d.Description),
		Details:     strings.TrimSpace(d.Details),
		Status:      d.Status,
		Priority:    d.Priority,
		DueDate:     strings.TrimSpace(d.DueDate),
		Tags:        cleanTags(d.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = model.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := e.store.SaveAll(ctx, append(tasks, task)); err != nil {
		return model.Task{}, &StorageError{Op: "save tasks", Err: err}
	}
	return task, nil
}

// Clear removes every task.
func (e *Engine) Clear(ctx context.Context) (int, error) {
	tasks, err := e.store.LoadAll(ctx)
	if err != nil {
		return 0, &StorageError{Op: "load tasks", Err: err}
	}
	if err := e.store.SaveAll(ctx, []model.Task{}); err != nil {
		return 0, &StorageError{Op: "save tasks", Err: err}
	}
	return len(tasks), nil
}

type mutator func(t *model.Task, now time.Time) (changed bool, reason string)

func (e *Engine) apply(ctx context.Context, op string, ids []int, fn mutator) model.BulkResult {
	tasks, err := e.store.LoadAll(ctx)
	if err != nil {
		return failAll(ids, reasonStoragePfx+err.Error(), true)
	}
	index := make(map[int]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	now := e.now().UTC()
	res := model.BulkResult{Errors: []model.BulkFailure{}}
	for _, id := range ids {
		i, ok := index[id]
		if !ok {
			res.FailedCount++
			res.Errors = append(res.Errors, model.BulkFailure{ID: id, Reason: reasonNotFound})
			continue
		}
		working := tasks[i].Clone()
		if ok, reason := fn(&working, now); !ok {
			res.FailedCount++
			res.Errors = append(res.Errors, model.BulkFailure{ID: id, Reason: reason})
			continue
		}
		tasks[i] = working
		res.SuccessCount++
	}

	if res.SuccessCount > 0 {
		if err := e.store.SaveAll(ctx, tasks); err != nil {
			return failAll(ids, fmt.Sprintf("%s%s: %v", reasonStoragePfx, op, err), true)
		}
	}
	return res
}

func applyChanges(t model.Task, c model.Changes) (model.Task, string) {
	if c.Priority != nil {
		p, err := model.ParsePriority(*c.Priority)
		if err != nil {
			return t, reasonBadPriority + *c.Priority
		}
		t.Priority = p
	}
	if c.Status != nil {
		s, err := model.ParseStatus(*c.Status)
		if err != nil {
			return t, reasonBadStatus + *c.Status
		}
		t.Status = s
	}
	if c.DueDate != nil {
		due, err := model.ParseDueDate(*c.DueDate)
		if err != nil {
			return t, reasonBadDueDate + *c.DueDate
		}
		t.DueDate = due
	}
	if c.Description != nil {
		desc := strings.TrimSpace(*c.Description)
		if desc == "" {
			return t, reasonEmptyDesc
		}
		t.Description = desc
	}
	if c.Details != nil {
		t.Details = strings.TrimSpace(*c.Details)
	}
	if c.SetTags {
		t.Tags = cleanTags(c.Tags)
	}
	return t, ""
}

func equalTask(a, b model.Task) bool {
	return a.Description == b.Description &&
		a.Details == b.Details &&
		a.Status == b.Status &&
		a.Priority == b.Priority &&
		a.DueDate == b.DueDate &&
		slices.Equal(a.Tags, b.Tags)
}

func failAll(ids []int, reason string, rolledBack bool) model.BulkResult {
	res := model.BulkResult{
		FailedCount: len(ids),
		Errors:      make([]model.BulkFailure, 0, len(ids)),
		RolledBack:  rolledBack,
	}
	for _, id := range ids {
		res.Errors = append(res.Errors, model.BulkFailure{ID: id, Reason: reason})
	}
	return res
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// IsStorageFailure reports whether err came from the store.
func IsStorageFailure(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// ResultErr returns a *StorageError for rolled-back results and nil otherwise.
func ResultErr(res model.BulkResult) error {
	if !res.RolledBack {
		return nil
	}
	reason := "storage failure"
	if len(res.Errors) > 0 {
		reason = strings.TrimPrefix(res.Errors[0].Reason, reasonStoragePfx)
	}
	return &StorageError{Op: "bulk", Err: errors.New(reason)}
}
