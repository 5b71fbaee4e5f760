// Package document builds the active document a command runs against.
package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/doeshing/shcmd/internal/domain"
)

// Request describes the document given on the command line.
type Request struct {
	// File is absolute or relative to the vault root. Empty means no document.
	File string
	// Selection is highlighted text, if any.
	Selection *string
	// Latest picks the most recently modified file in the vault when File is empty.
	Latest bool
}

// Collector resolves document requests against a vault.
type Collector struct {
	fs        afero.Fs
	vaultRoot string
}

// NewCollector creates a collector for vaultRoot on fs.
func NewCollector(fs afero.Fs, vaultRoot string) *Collector {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Collector{fs: fs, vaultRoot: vaultRoot}
}

// Collect returns the document for req, or nil when none was requested.
func (c *Collector) Collect(ctx context.Context, req Request) (*domain.Document, error) {
	path := req.File
	if path == "" && req.Latest {
		latest, err := c.Latest(ctx)
		if err != nil {
			return nil, err
		}
		path = latest
	}
	if path == "" {
		if req.Selection != nil {
			return &domain.Document{Selection: req.Selection}, nil
		}
		return nil, nil
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(c.vaultRoot, path)
	}
	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("document %s is a directory", path)
	}
	return &domain.Document{Path: filepath.Clean(path), Selection: req.Selection}, nil
}

// Latest returns the most recently modified file under the vault root, skipping hidden
// files and directories.
func (c *Collector) Latest(ctx context.Context) (string, error) {
	var (
		latest   string
		latestAt time.Time
	)
	err := afero.Walk(c.fs, c.vaultRoot, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != c.vaultRoot && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() && info.ModTime().After(latestAt) {
			latest, latestAt = path, info.ModTime()
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if latest == "" {
		return "", errors.New("the vault contains no files")
	}
	return latest, nil
}
