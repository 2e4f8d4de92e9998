// Package filesystem reads corpus files from a local directory tree.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// DefaultExtensions are the file types the ingest pipeline can normalise.
var DefaultExtensions = []string{".txt", ".csv", ".json", ".pdf"}

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector walks a directory and emits every supported file.
type Connector struct {
	rootPath   string
	extensions []string
}

// New creates a connector rooted at rootPath. Extensions are matched
// case-insensitively; when none are given DefaultExtensions apply.
func New(rootPath string, extensions ...string) *Connector {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make([]string, len(extensions))
	for i, ext := range extensions {
		exts[i] = strings.ToLower(ext)
	}
	return &Connector{
		rootPath:   rootPath,
		extensions: exts,
	}
}

// Factory adapts New to the ingest service's connector factory.
func Factory(extensions ...string) func(string) driven.Connector {
	return func(sourceDir string) driven.Connector {
		return New(sourceDir, extensions...)
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// RootPath returns the directory being walked.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks the root path exists and is a directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", c.rootPath)
		}
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", c.rootPath)
	}
	return nil
}

// FullSync walks the tree in lexical order. Unreadable files are reported
// on the error channel and the walk continues.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawFile, <-chan error) {
	files := make(chan domain.RawFile)
	errs := make(chan error, 16)

	go func() {
		defer close(files)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if path == c.rootPath {
					return err
				}
				c.report(ctx, errs, fmt.Errorf("walk %s: %w", path, err))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(path))
			if !slices.Contains(c.extensions, ext) {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				c.report(ctx, errs, fmt.Errorf("read %s: %w", path, err))
				return nil
			}

			rel, err := filepath.Rel(c.rootPath, path)
			if err != nil {
				rel = d.Name()
			}

			raw := domain.RawFile{
				SourceID:  filepath.ToSlash(rel),
				Path:      path,
				Extension: ext,
				Content:   content,
			}
			select {
			case files <- raw:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			c.report(ctx, errs, err)
		}
	}()

	return files, errs
}

func (c *Connector) report(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}

// isHidden returns true if the file or directory name starts with a dot.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
