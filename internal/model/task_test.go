package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:          1,
		Description: "Implement model validation",
		Status:      StatusInProgress,
		Priority:    PriorityHigh,
		DueDate:     "2026-03-01",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateRequiresDescription(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{ID: 1, Description: "   ", Status: StatusTodo, Priority: PriorityLow, CreatedAt: now, UpdatedAt: now}
	err := task.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "model: task description is required" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaskValidateInvalidEnums(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:          1,
		Description: "Bad status",
		Status:      Status("blocked"),
		Priority:    PriorityLow,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := task.Validate()
	if err == nil || !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got: %v", err)
	}

	task.Status = StatusTodo
	task.Priority = Priority("urgent")
	err = task.Validate()
	if err == nil || !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}

	task.Priority = PriorityMedium
	task.DueDate = "03/01/2026"
	err = task.Validate()
	if err == nil || !errors.Is(err, ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate, got: %v", err)
	}
}

func TestParseEnumsCaseInsensitive(t *testing.T) {
	s, err := ParseStatus(" In-Progress ")
	if err != nil || s != StatusInProgress {
		t.Fatalf("expected in-progress, got %q (%v)", s, err)
	}
	p, err := ParsePriority("CRITICAL")
	if err != nil || p != PriorityCritical {
		t.Fatalf("expected critical, got %q (%v)", p, err)
	}
	if _, err := ParsePriority("urgent"); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestNormalizeFillsLegacyFields(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	got := Task{ID: 3, Description: "legacy"}.Normalize(now)
	if got.Priority != PriorityMedium || got.Status != StatusTodo {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Fatalf("expected empty tags, got %#v", got.Tags)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps from now, got %+v", got)
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		due    string
		status Status
		want   bool
	}{
		{"2026-02-08", StatusTodo, true},
		{"2026-02-09", StatusTodo, false},
		{"2026-02-08", StatusDone, false},
		{"", StatusTodo, false},
	}
	for _, tc := range cases {
		task := Task{DueDate: tc.due, Status: tc.status}
		if got := task.Overdue(now); got != tc.want {
			t.Fatalf("Overdue(due=%q status=%q) = %v, want %v", tc.due, tc.status, got, tc.want)
		}
	}
}

func TestNextIDUsesMaximum(t *testing.T) {
	if got := NextID(nil); got != 1 {
		t.Fatalf("expected 1 for empty list, got %d", got)
	}
	tasks := []Task{{ID: 4}, {ID: 2}, {ID: 9}}
	if got := NextID(tasks); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" work, ,urgent ,")
	if len(got) != 2 || got[0] != "work" || got[1] != "urgent" {
		t.Fatalf("unexpected tags: %#v", got)
	}
}
