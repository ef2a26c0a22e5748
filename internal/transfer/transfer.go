package transfer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/storage"
)

// Filter narrows an export. Zero values match everything; Tags match when a
// task carries any of them.
type Filter struct {
	Status   model.Status
	Priority model.Priority
	Tags     []string
}

func (f Filter) Apply(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(t, f.Tags) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func hasAnyTag(t model.Task, tags []string) bool {
	for _, tag := range tags {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}

// Export writes the filtered task list and returns how many tasks it wrote.
func Export(ctx context.Context, store storage.Store, w io.Writer, format Format, filter Filter) (int, error) {
	tasks, err := store.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load tasks: %w", err)
	}
	tasks = filter.Apply(tasks)
	if err := Encode(w, format, tasks); err != nil {
		return 0, fmt.Errorf("encode %s: %w", format, err)
	}
	return len(tasks), nil
}

func DefaultExportPath(format Format, now time.Time) string {
	return fmt.Sprintf("lazytask-export-%s.%s", now.Format(model.DateLayout), format)
}

// BackupPath names a JSON backup; the suffix keeps two backups taken in the
// same second apart.
func BackupPath(now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15-04-05")
	return fmt.Sprintf("lazytask-backup-%s-%s.json", stamp, uuid.NewString()[:8])
}

type Mode string

const (
	ModeMerge   Mode = "merge"
	ModeReplace Mode = "replace"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeMerge, "":
		return ModeMerge, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("transfer: unknown import mode %q", raw)
	}
}

type ImportOptions struct {
	Format       Format
	Mode         Mode
	ValidateOnly bool
}

type ImportResult struct {
	Success  bool
	Message  string
	Imported int
	Errors   []string
}

// Import validates every record before writing anything. A single invalid
// record fails the whole import.
func Import(ctx context.Context, store storage.Store, data []byte, opts ImportOptions, now time.Time) (ImportResult, error) {
	records, err := decode(data, opts.Format)
	if err != nil {
		return ImportResult{Message: err.Error()}, nil
	}

	valid := make([]model.Task, 0, len(records))
	var problems []string
	for i, rec := range records {
		task, verr := rec.validate(i+1, now.UTC())
		if verr != nil {
			problems = append(problems, verr.Error())
			continue
		}
		valid = append(valid, task)
	}
	if len(problems) > 0 {
		return ImportResult{
			Message: fmt.Sprintf("Validation failed for %d task(s)", len(problems)),
			Errors:  problems,
		}, nil
	}
	if opts.ValidateOnly {
		return ImportResult{
			Success:  true,
			Message:  fmt.Sprintf("Validation successful. %d tasks would be imported.", len(valid)),
			Imported: len(valid),
		}, nil
	}

	switch opts.Mode {
	case ModeReplace:
		assignIDs(valid)
		if err := store.SaveAll(ctx, valid); err != nil {
			return ImportResult{}, fmt.Errorf("save tasks: %w", err)
		}
		return ImportResult{
			Success:  true,
			Message:  fmt.Sprintf("Successfully replaced all tasks with %d imported tasks.", len(valid)),
			Imported: len(valid),
		}, nil
	default:
		existing, err := store.LoadAll(ctx)
		if err != nil {
			return ImportResult{}, fmt.Errorf("load tasks: %w", err)
		}
		next := model.NextID(existing)
		for i := range valid {
			valid[i].ID = next + i
			valid[i].UpdatedAt = now.UTC()
		}
		if err := store.SaveAll(ctx, append(existing, valid...)); err != nil {
			return ImportResult{}, fmt.Errorf("save tasks: %w", err)
		}
		return ImportResult{
			Success:  true,
			Message:  fmt.Sprintf("Successfully merged %d tasks.", len(valid)),
			Imported: len(valid),
		}, nil
	}
}

// assignIDs keeps positive unique IDs and numbers the rest after the maximum.
func assignIDs(tasks []model.Task) {
	seen := map[int]bool{}
	var pending []int
	for i, t := range tasks {
		if t.ID > 0 && !seen[t.ID] {
			seen[t.ID] = true
			continue
		}
		pending = append(pending, i)
	}
	next := model.NextID(tasks)
	for _, i := range pending {
		for seen[next] {
			next++
		}
		tasks[i].ID = next
		seen[next] = true
		next++
	}
}
