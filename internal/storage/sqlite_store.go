package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/lazytask/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLiteStore persists the task list in SQLite. SaveAll replaces every row
// inside one transaction, so a failed save leaves the previous list intact.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, details, status, priority, due_date, created_at, updated_at
		FROM tasks ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	index := map[int]int{}
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		index[task.ID] = len(tasks)
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := s.db.QueryContext(ctx, `SELECT task_id, tag FROM task_tags ORDER BY task_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var id int
		var tag string
		if err := tagRows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			tasks[i].Tags = append(tasks[i].Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	for i := range tasks {
		tasks[i] = tasks[i].Normalize(now)
	}
	return tasks, nil
}

func (s *SQLiteStore) SaveAll(ctx context.Context, tasks []model.Task) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM task_tags`); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	for pos, t := range tasks {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (id, position, description, details, status, priority, due_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, pos, t.Description, t.Details, string(t.Status), string(t.Priority),
			nullString(t.DueDate), t.CreatedAt.UTC().Format(sqliteTimeLayout), t.UpdatedAt.UTC().Format(sqliteTimeLayout),
		); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
		for tagPos, tag := range t.Tags {
			if _, err = tx.ExecContext(ctx, `INSERT INTO task_tags (task_id, position, tag) VALUES (?, ?, ?)`, t.ID, tagPos, tag); err != nil {
				return fmt.Errorf("insert tag for task %d: %w", t.ID, err)
			}
		}
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO save_log (id, saved_at, task_count) VALUES (?, ?, ?)`,
		uuid.NewString(), s.now().UTC().Format(sqliteTimeLayout), len(tasks)); err != nil {
		return fmt.Errorf("record save: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) NextID(ctx context.Context) (int, error) {
	var maxID sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM tasks`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("query max id: %w", err)
	}
	return int(maxID.Int64) + 1, nil
}

// SaveCount reports how many full saves have been committed.
func (s *SQLiteStore) SaveCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM save_log`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var status, priority string
	var due sql.NullString
	var created, updated string
	if err := s.Scan(&out.ID, &out.Description, &out.Details, &status, &priority, &due, &created, &updated); err != nil {
		return model.Task{}, err
	}
	createdAt, err := time.Parse(sqliteTimeLayout, created)
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: task %d created_at: %v", ErrCorruptData, out.ID, err)
	}
	updatedAt, err := time.Parse(sqliteTimeLayout, updated)
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: task %d updated_at: %v", ErrCorruptData, out.ID, err)
	}
	out.Status = model.Status(status)
	out.Priority = model.Priority(priority)
	if due.Valid {
		out.DueDate = due.String
	}
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
