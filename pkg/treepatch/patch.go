package treepatch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// maxBackupSuffix bounds the search for a free backup directory name.
const maxBackupSuffix = 1000

// Patcher copies source trees over destination trees with backups.
type Patcher struct {
	opts    Options
	fs      afero.Fs
	log     zerolog.Logger
	exclude *ignore.GitIgnore
}

// NewPatcher creates a new patcher.
func NewPatcher(opts Options) *Patcher {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	p := &Patcher{
		opts: opts,
		fs:   opts.Fs,
		log:  opts.Logger,
	}
	if len(opts.Exclude) > 0 {
		p.exclude = ignore.CompileIgnoreLines(opts.Exclude...)
	}
	return p
}

// Patch patches destinationRoot with sourceRoot on the OS filesystem using
// default options.
func Patch(sourceRoot, destinationRoot string) (Result, error) {
	return NewPatcher(Options{}).Patch(sourceRoot, destinationRoot)
}

// DefaultBackupRoot returns the backup root used for destinationRoot when
// none is configured: a "backups" directory beside it.
func DefaultBackupRoot(destinationRoot string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(destinationRoot)), BackupDirName)
}

// Patch runs the discovery, backup and copy passes in that order.
//
// The backup pass finishes for every file before the destination is touched;
// if it fails the destination is left as it was. A failure during the copy
// pass returns the partial result together with the error.
func (p *Patcher) Patch(sourceRoot, destinationRoot string) (Result, error) {
	plan, err := p.Discover(sourceRoot, destinationRoot)
	if err != nil {
		return Result{}, err
	}
	return p.Apply(plan)
}

// Apply runs the backup and copy passes for a plan produced by Discover.
func (p *Patcher) Apply(plan *Plan) (Result, error) {
	var result Result
	if plan.Len() == 0 {
		p.log.Info().Str("source", plan.SourceRoot).Msg("source tree is empty, nothing to patch")
		return result, nil
	}

	if len(plan.ToOverwrite) > 0 {
		backupPath, err := p.backup(plan)
		if err != nil {
			return result, err
		}
		result.BackupPath = backupPath
	}

	if err := p.fs.MkdirAll(plan.DestinationRoot, 0o755); err != nil {
		return result, ioError("create destination", plan.DestinationRoot, err)
	}

	for _, f := range plan.Files() {
		p.log.Debug().Str("file", f.Rel).Bool("overwrite", f.Exists).Msg("copying")
		if err := copyFile(p.fs, f.Source, f.Dest); err != nil {
			return result, ioError("copy", f.Dest, err)
		}
		result.FilesCopied++
		if f.Exists {
			result.FilesOverwritten++
		}
	}

	p.log.Info().
		Int("copied", result.FilesCopied).
		Int("overwritten", result.FilesOverwritten).
		Str("backup", result.BackupPath).
		Msg("patch complete")
	return result, nil
}

// Discover enumerates every regular file under sourceRoot and partitions the
// files by whether their destination path already exists. It does not modify
// either tree.
func (p *Patcher) Discover(sourceRoot, destinationRoot string) (*Plan, error) {
	sourceRoot = filepath.Clean(sourceRoot)
	destinationRoot = filepath.Clean(destinationRoot)

	info, err := p.fs.Stat(sourceRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound("open source", sourceRoot, err)
		}
		return nil, ioError("open source", sourceRoot, err)
	}
	if !info.IsDir() {
		return nil, ioError("open source", sourceRoot, errors.New("not a directory"))
	}

	plan := &Plan{
		SourceRoot:      sourceRoot,
		DestinationRoot: destinationRoot,
	}
	if err := p.walk(plan, sourceRoot, "", []os.FileInfo{info}); err != nil {
		return nil, err
	}

	p.log.Info().
		Int("new", len(plan.ToCreate)).
		Int("overwrite", len(plan.ToOverwrite)).
		Msg("discovery complete")
	return plan, nil
}

func (p *Patcher) walk(plan *Plan, dir, rel string, ancestors []os.FileInfo) error {
	entries, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return ioError("read source directory", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		relPath := filepath.Join(rel, entry.Name())

		if entry.Mode()&os.ModeSymlink != 0 {
			target, err := p.fs.Stat(path)
			if err != nil {
				return ioError("read source", path, err)
			}
			entry = target
		}

		switch {
		case entry.IsDir():
			if p.excluded(relPath + string(filepath.Separator)) {
				continue
			}
			if isAncestor(entry, ancestors) {
				p.log.Warn().Str("path", path).Msg("skipping symlink cycle")
				continue
			}
			if err := p.walk(plan, path, relPath, append(ancestors, entry)); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			if p.excluded(relPath) {
				continue
			}
			f := File{
				Rel:    relPath,
				Source: path,
				Dest:   filepath.Join(plan.DestinationRoot, relPath),
			}
			dest, err := p.statDestination(f.Dest)
			if err != nil {
				return err
			}
			if dest != nil && os.SameFile(entry, dest) {
				return ioError("copy", f.Dest, ErrSameFile)
			}
			f.Exists = dest != nil
			if f.Exists {
				plan.ToOverwrite = append(plan.ToOverwrite, f)
			} else {
				plan.ToCreate = append(plan.ToCreate, f)
			}
		}
	}
	return nil
}

// statDestination returns nil when nothing exists at path yet.
func (p *Patcher) statDestination(path string) (os.FileInfo, error) {
	info, err := p.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ioError("stat destination", path, err)
	}
	if info.IsDir() {
		return nil, ioError("stat destination", path, errors.New("destination is a directory"))
	}
	return info, nil
}

func (p *Patcher) excluded(rel string) bool {
	return p.exclude != nil && p.exclude.MatchesPath(filepath.ToSlash(rel))
}

func isAncestor(info os.FileInfo, ancestors []os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(info, a) {
			return true
		}
	}
	return false
}

// backup copies every file in plan.ToOverwrite into a fresh backup set and
// returns its path. A partially written set is removed on failure.
func (p *Patcher) backup(plan *Plan) (string, error) {
	root := p.opts.BackupRoot
	if root == "" {
		root = DefaultBackupRoot(plan.DestinationRoot)
	}

	dir, err := p.createBackupDir(root)
	if err != nil {
		return "", err
	}
	p.log.Info().Int("files", len(plan.ToOverwrite)).Str("backup", dir).Msg("backing up")

	for _, f := range plan.ToOverwrite {
		target := filepath.Join(dir, f.Rel)
		p.log.Debug().Str("file", f.Rel).Msg("backing up")
		if err := copyFile(p.fs, f.Dest, target); err != nil {
			if rmErr := p.fs.RemoveAll(dir); rmErr != nil {
				p.log.Warn().Str("backup", dir).Err(rmErr).Msg("failed to remove partial backup")
			}
			return "", ioError("back up", f.Dest, err)
		}
	}
	return dir, nil
}

// createBackupDir creates root/<timestamp>, appending _1, _2, ... when a set
// with the same timestamp already exists.
func (p *Patcher) createBackupDir(root string) (string, error) {
	if err := p.fs.MkdirAll(root, 0o755); err != nil {
		return "", ioError("create backup root", root, err)
	}

	stamp := p.opts.Now().Format(BackupTimeFormat)
	name := stamp
	for i := 1; i <= maxBackupSuffix; i++ {
		dir := filepath.Join(root, name)
		err := p.fs.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", ioError("create backup set", dir, err)
		}
		name = fmt.Sprintf("%s_%d", stamp, i)
	}
	return "", ioError("create backup set", filepath.Join(root, stamp), errors.New("too many backup sets for one timestamp"))
}
