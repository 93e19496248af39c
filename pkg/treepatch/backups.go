package treepatch

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// ListBackups returns the backup sets under root, oldest first. A missing
// root yields no sets.
func ListBackups(fs afero.Fs, root string) ([]BackupSet, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ioError("read backup root", root, err)
	}

	var sets []BackupSet
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		files := 0
		err := afero.Walk(fs, path, func(_ string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				files++
			}
			return nil
		})
		if err != nil {
			return nil, ioError("read backup set", path, err)
		}

		sets = append(sets, BackupSet{
			Name:    entry.Name(),
			Path:    path,
			Files:   files,
			Created: backupTime(entry),
		})
	}

	sort.SliceStable(sets, func(i, j int) bool {
		if sets[i].Created.Equal(sets[j].Created) {
			return sets[i].Name < sets[j].Name
		}
		return sets[i].Created.Before(sets[j].Created)
	})
	return sets, nil
}

// backupTime reads the creation time from a set's name, falling back to the
// directory's modification time for names it did not generate.
func backupTime(info os.FileInfo) time.Time {
	name := info.Name()
	if len(name) >= len(BackupTimeFormat) {
		if t, err := time.ParseInLocation(BackupTimeFormat, name[:len(BackupTimeFormat)], time.Local); err == nil {
			return t
		}
	}
	return info.ModTime()
}
