package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/spf13/afero"

	"github.com/doeshing/shcmd/internal/domain"
)

// FileStore keeps variable values in a JSON object and appends history records to a jsonl file.
type FileStore struct {
	fs          afero.Fs
	dir         string
	varsPath    string
	historyPath string
	mu          sync.Mutex
}

// NewFileStore creates a store under dir on the OS filesystem.
func NewFileStore(dir string) *FileStore {
	return NewFileStoreFs(afero.NewOsFs(), dir)
}

// NewFileStoreFs creates a store under dir on fs.
func NewFileStoreFs(fs afero.Fs, dir string) *FileStore {
	return &FileStore{
		fs:          fs,
		dir:         dir,
		varsPath:    filepath.Join(dir, "variables.json"),
		historyPath: filepath.Join(dir, "history", "history.jsonl"),
	}
}

func (f *FileStore) readVars() (map[string]string, error) {
	data, err := afero.ReadFile(f.fs, f.varsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	values := map[string]string{}
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (f *FileStore) writeVars(values map[string]string) error {
	if err := f.fs.MkdirAll(f.dir, domain.DirectoryPermissions); err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(f.fs, f.varsPath, data, domain.SecureFilePermissions)
}

// Get implements ports.VariableStore.
func (f *FileStore) Get(_ context.Context, id string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.readVars()
	if err != nil {
		return "", false, err
	}
	v, ok := values[id]
	return v, ok, nil
}

// Set implements ports.VariableStore.
func (f *FileStore) Set(_ context.Context, id, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.readVars()
	if err != nil {
		return err
	}
	values[id] = value
	return f.writeVars(values)
}

// Delete implements ports.VariableStore.
func (f *FileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.readVars()
	if err != nil {
		return err
	}
	delete(values, id)
	return f.writeVars(values)
}

// All implements ports.VariableStore.
func (f *FileStore) All(context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readVars()
}

// Record implements ports.HistoryRepository.
func (f *FileStore) Record(_ context.Context, rec domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fs.MkdirAll(filepath.Dir(f.historyPath), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := f.fs.OpenFile(f.historyPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}

// Recent implements ports.HistoryRepository. Unreadable lines are skipped.
func (f *FileStore) Recent(_ context.Context, limit int) ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := afero.ReadFile(f.fs, f.historyPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var records []domain.HistoryRecord
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec domain.HistoryRecord
		if err := json.Unmarshal(line, &rec); err == nil {
			records = append(records, rec)
		}
	}
	slices.Reverse(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Clear implements ports.HistoryRepository.
func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fs.Remove(f.historyPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the directory holding the store's files.
func (f *FileStore) Path() string {
	return f.dir
}

// Close is a no-op.
func (f *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
