// Package storage persists custom variable values and execution history.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/pkg/filesystem"
	"github.com/doeshing/shcmd/internal/ports"
)

// Driver names accepted in storage.driver.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Store is both a variable store and a history repository.
type Store interface {
	ports.VariableStore
	ports.HistoryRepository
	Path() string
	Close() error
}

// Open returns the configured store. When SQLite cannot be opened the file store is used
// instead and the SQLite error is returned alongside it.
func Open(ctx context.Context, settings domain.StorageSettings) (Store, error) {
	switch settings.Driver {
	case "", DriverSQLite:
		path := settings.Path
		if path == "" {
			path = filepath.Join(filesystem.AppDir(), "shcmd.db")
		}
		store, err := NewSQLiteStore(ctx, path)
		if err == nil {
			return store, nil
		}
		return NewFileStore(filepath.Dir(path)), fmt.Errorf("open sqlite store, using files instead: %w", err)
	case DriverFile:
		dir := settings.Path
		if dir == "" {
			dir = filesystem.AppDir()
		}
		return NewFileStore(dir), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", settings.Driver)
	}
}

// ExportJSONL writes records to w, one JSON object per line.
func ExportJSONL(w io.Writer, records []domain.HistoryRecord) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
