// Package payload finds texture payload archives and unpacks them into
// temporary source trees.
package payload

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// IgnoreFile lists gitignore-style patterns, relative to the payload root,
// for files that must not be copied into the game.
const IgnoreFile = ".patchignore"

// macMetadataDir is added to zips by the macOS archiver and never holds
// game files.
const macMetadataDir = "__MACOSX"

// ExtractOptions configures the extraction process.
type ExtractOptions struct {
	Fs      afero.Fs       // Filesystem holding the archive and temp dir (default: OS)
	TempDir string         // Parent of the extraction dir (default: system temp)
	Logger  zerolog.Logger // Progress logging
}

// Extraction is an unpacked payload. Close removes it from disk.
type Extraction struct {
	Dir     string   // Temporary directory the archive was unpacked into
	Root    string   // Source tree: Dir, or its only subdirectory
	Files   int      // Regular files extracted
	Exclude []string // Patterns read from IgnoreFile, plus IgnoreFile itself

	fs afero.Fs
}

// Close removes the extracted files.
func (e *Extraction) Close() error {
	if e == nil || e.Dir == "" {
		return nil
	}
	return e.fs.RemoveAll(e.Dir)
}

// Extract unpacks the zip archive at archivePath into a new temporary
// directory. If the archive holds exactly one top-level directory, Root
// points inside it.
func Extract(archivePath string, opts ExtractOptions) (*Extraction, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	fs := opts.Fs
	log := opts.Logger

	f, err := fs.Open(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, archivePath)
		}
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidArchive, archivePath)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, archivePath, err)
	}

	dir, err := afero.TempDir(fs, opts.TempDir, "rivalspatch-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	ext := &Extraction{Dir: dir, Root: dir, fs: fs}
	log.Debug().Str("archive", archivePath).Str("dir", dir).Msg("extracting")

	for _, zf := range zr.File {
		n, err := extractEntry(fs, dir, zf)
		if err != nil {
			ext.Close()
			return nil, err
		}
		if n {
			ext.Files++
			log.Debug().Str("file", zf.Name).Msg("extracted")
		}
	}

	if ext.Files == 0 {
		ext.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmptyPayload, archivePath)
	}

	root, err := unwrap(fs, dir)
	if err != nil {
		ext.Close()
		return nil, err
	}
	ext.Root = root

	exclude, err := readIgnoreFile(fs, filepath.Join(root, IgnoreFile))
	if err != nil {
		ext.Close()
		return nil, err
	}
	ext.Exclude = append([]string{"/" + IgnoreFile}, exclude...)

	log.Info().Str("archive", archivePath).Int("files", ext.Files).Str("root", root).Msg("payload extracted")
	return ext, nil
}

// extractEntry writes one archive entry below dir and reports whether it was
// a regular file.
func extractEntry(fs afero.Fs, dir string, zf *zip.File) (bool, error) {
	name := strings.TrimSuffix(strings.ReplaceAll(zf.Name, `\`, "/"), "/")
	if name == "" {
		return false, nil
	}
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return false, fmt.Errorf("%w: entry %q escapes the archive root", ErrInvalidArchive, zf.Name)
	}
	if name == macMetadataDir || strings.HasPrefix(name, macMetadataDir+"/") {
		return false, nil
	}

	target := filepath.Join(dir, filepath.FromSlash(name))
	mode := zf.Mode()

	switch {
	case mode.IsDir():
		if err := fs.MkdirAll(target, 0o755); err != nil {
			return false, fmt.Errorf("failed to create directory %s: %w", target, err)
		}
		return false, nil
	case !mode.IsRegular():
		// Links and devices are not game assets.
		return false, nil
	}

	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory for file %s: %w", target, err)
	}

	rc, err := zf.Open()
	if err != nil {
		return false, fmt.Errorf("%w: failed to open %s: %v", ErrInvalidArchive, zf.Name, err)
	}
	defer rc.Close()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return false, fmt.Errorf("failed to create file %s: %w", target, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return false, fmt.Errorf("failed to write file %s: %w", target, err)
		}
		return false, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidArchive, zf.Name, err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("failed to close file %s: %w", target, err)
	}

	if !zf.Modified.IsZero() {
		if err := fs.Chtimes(target, zf.Modified, zf.Modified); err != nil {
			return false, fmt.Errorf("failed to set modification time on %s: %w", target, err)
		}
	}
	return true, nil
}

// unwrap returns the single top-level directory of dir, or dir itself.
func unwrap(fs afero.Fs, dir string) (string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted payload: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}

func readIgnoreFile(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", IgnoreFile, err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}
	return patterns, nil
}
