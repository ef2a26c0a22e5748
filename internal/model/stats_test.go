package model

import (
	"testing"
	"time"
)

func TestCalculateStats(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	old := now.Add(-30 * 24 * time.Hour)
	tasks := []Task{
		{ID: 1, Status: StatusDone, Priority: PriorityHigh, Tags: []string{"work"}, CreatedAt: old},
		{ID: 2, Status: StatusTodo, Priority: PriorityHigh, Tags: []string{"work", "home"}, DueDate: "2026-01-01", CreatedAt: now},
		{ID: 3, Status: StatusInProgress, Priority: PriorityLow, Tags: []string{"home", "errand"}, CreatedAt: now.Add(-time.Hour)},
	}

	stats := CalculateStats(tasks, now)
	if stats.Total != 3 {
		t.Fatalf("expected total 3, got %d", stats.Total)
	}
	if stats.ByStatus[StatusDone] != 1 || stats.ByStatus[StatusTodo] != 1 || stats.ByStatus[StatusInProgress] != 1 {
		t.Fatalf("unexpected status counts: %+v", stats.ByStatus)
	}
	if stats.ByPriority[PriorityHigh] != 2 || stats.ByPriority[PriorityCritical] != 0 {
		t.Fatalf("unexpected priority counts: %+v", stats.ByPriority)
	}
	if stats.Overdue != 1 {
		t.Fatalf("expected 1 overdue, got %d", stats.Overdue)
	}
	if stats.CompletionRate != 33 {
		t.Fatalf("expected completion 33, got %d", stats.CompletionRate)
	}
	if stats.RecentActivity != 2 {
		t.Fatalf("expected recent activity 2, got %d", stats.RecentActivity)
	}
	if len(stats.TopTags) != 3 || stats.TopTags[0].Tag != "home" || stats.TopTags[1].Tag != "work" {
		t.Fatalf("unexpected top tags: %+v", stats.TopTags)
	}
}

func TestCalculateStatsEmpty(t *testing.T) {
	stats := CalculateStats(nil, time.Now())
	if stats.Total != 0 || stats.CompletionRate != 0 || len(stats.TopTags) != 0 {
		t.Fatalf("unexpected empty stats: %+v", stats)
	}
}
