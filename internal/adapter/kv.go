package adapter

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"book-finder/internal/core"

	"github.com/pkg/errors"
)

type ClosableKV interface {
	core.KeyValueStore
	io.Closer
}

// OpenKV opens the storage backend named by driver: "file" treats path as
// a directory, "sqlite" as a database file, "memory" ignores it.
func OpenKV(ctx context.Context, driver, path string) (ClosableKV, error) {
	switch driver {
	case "memory":
		return NewMemoryKV(), nil
	case "file", "":
		kv, err := NewFileKV(path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case "sqlite":
		if path != ":memory:" {
			if filepath.Ext(path) == "" {
				path = filepath.Join(path, "bookfinder.db")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, errors.WithStack(err)
			}
		}
		kv, err := OpenSQLiteKV(ctx, path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", driver)
	}
}
