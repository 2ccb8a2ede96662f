package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vango-dev/slate/internal/errors"
)

// Loader lists and reads template documents.
type Loader interface {
	// List returns the names of all documents in sorted order.
	List(ctx context.Context) ([]string, error)

	// Read returns the content of the named document.
	Read(ctx context.Context, name string) ([]byte, error)
}

// Locator is implemented by loaders that can name where a document lives.
// The location is used in error messages.
type Locator interface {
	Location(name string) string
}

// IsDocument reports whether name has a template document extension.
func IsDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Dir loads documents from a local directory tree.
type Dir struct {
	Root string
}

// List walks Root and returns document paths relative to it, using forward
// slashes.
func (d Dir) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.Root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != d.Root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsDocument(path) {
			return nil
		}
		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.New(errors.CodeSourceRead).WithDetail(d.Root).Wrap(err)
	}
	sort.Strings(names)
	return names, nil
}

// Read reads one document.
func (d Dir) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(d.Location(name))
	if err != nil {
		return nil, errors.New(errors.CodeSourceRead).WithDetail(name).Wrap(err)
	}
	return data, nil
}

// Location returns the file path of the named document.
func (d Dir) Location(name string) string {
	return filepath.Join(d.Root, filepath.FromSlash(name))
}
