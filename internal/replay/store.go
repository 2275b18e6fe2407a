package replay

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const datasetExt = ".json"

// Store is the persistence abstraction for dataset files.
// Paths are slash separated and relative to the store root.
type Store interface {
	// ListCategories returns the category directory names, sorted.
	ListCategories() ([]string, error)

	// ListFiles returns the dataset file names of one category, sorted.
	ListFiles(category string) ([]string, error)

	// Read returns the raw content of a dataset file.
	Read(relPath string) ([]byte, error)
}

// DirStore is a Store over a directory tree: one subdirectory per category,
// one JSON file per dataset.
type DirStore struct {
	root string
}

// NewDirStore returns a DirStore rooted at root.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Root returns the configured root directory.
func (s *DirStore) Root() string {
	return s.root
}

// ListCategories implements Store.ListCategories.
func (s *DirStore) ListCategories() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListFiles implements Store.ListFiles.
func (s *DirStore) ListFiles(category string) ([]string, error) {
	dir, err := s.resolve(category)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: category %q: %w", ErrReadFailure, category, err)
	}

	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), datasetExt) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Read implements Store.Read. It never opens a file outside the root.
func (s *DirStore) Read(relPath string) ([]byte, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, relPath)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailure, relPath, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, relPath)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailure, relPath, err)
	}
	return data, nil
}

// resolve maps a root-relative path to a canonical filesystem path,
// following symlinks, and rejects anything that lands outside the root.
func (s *DirStore) resolve(relPath string) (string, error) {
	if relPath == "" || path.IsAbs(relPath) || filepath.IsAbs(relPath) || strings.ContainsRune(relPath, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathInvalid, relPath)
	}

	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	rootCanon, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	candidate := filepath.Join(rootCanon, filepath.FromSlash(relPath))
	if !within(rootCanon, candidate) {
		return "", fmt.Errorf("%w: %q escapes the dataset root", ErrPathInvalid, relPath)
	}

	canonical, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, relPath)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrReadFailure, relPath, err)
	}
	if !within(rootCanon, canonical) {
		return "", fmt.Errorf("%w: %q escapes the dataset root", ErrPathInvalid, relPath)
	}
	return canonical, nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
