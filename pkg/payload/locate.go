package payload

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Locate picks the payload archive in dir: defaultName when present,
// otherwise the first zip whose name contains one of keywords, otherwise the
// first zip in name order.
func Locate(fs afero.Fs, dir, defaultName string, keywords []string) (string, error) {
	if defaultName != "" {
		path := filepath.Join(dir, defaultName)
		if ok, err := afero.Exists(fs, path); err == nil && ok {
			return path, nil
		}
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no payload directory at %s", ErrNotFound, dir)
		}
		return "", fmt.Errorf("failed to read payload directory: %w", err)
	}

	var zips []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			continue
		}
		zips = append(zips, entry.Name())
	}
	if len(zips) == 0 {
		return "", fmt.Errorf("%w: no zip archives in %s", ErrNotFound, dir)
	}
	sort.Strings(zips)

	for _, name := range zips {
		lower := strings.ToLower(name)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	return filepath.Join(dir, zips[0]), nil
}

// Subtree is a top-level directory of an extracted payload, such as one
// skybox in a skybox pack.
type Subtree struct {
	Name  string
	Path  string
	Files int
}

// Subtrees lists the directories directly under dir with their recursive
// file counts, in name order.
func Subtrees(fs afero.Fs, dir string) ([]Subtree, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	var trees []Subtree
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == macMetadataDir {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		tree := Subtree{Name: entry.Name(), Path: path}
		err := afero.Walk(fs, path, func(_ string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				tree.Files++
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count files in %s: %w", path, err)
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// Find returns the subtree called name, ignoring case.
func Find(trees []Subtree, name string) (Subtree, bool) {
	for _, t := range trees {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Subtree{}, false
}
