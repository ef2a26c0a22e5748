package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/lazytask/internal/model"
)

var (
	ErrCorruptData    = errors.New("storage: corrupt task data")
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

// Store persists the whole task list. Every save is a full overwrite.
type Store interface {
	LoadAll(ctx context.Context) ([]model.Task, error)
	SaveAll(ctx context.Context, tasks []model.Task) error
	NextID(ctx context.Context) (int, error)
	Close() error
}

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend rooted at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		return NewJSONStore(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func nextID(ctx context.Context, s Store) (int, error) {
	tasks, err := s.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	return model.NextID(tasks), nil
}
