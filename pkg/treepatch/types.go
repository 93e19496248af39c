// Package treepatch overwrites a destination directory tree with the contents
// of a source tree, backing up every destination file it is about to replace.
package treepatch

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// BackupTimeFormat names backup set directories.
const BackupTimeFormat = "20060102_150405"

// BackupDirName is the directory, beside the destination root, that holds
// backup sets unless Options.BackupRoot says otherwise.
const BackupDirName = "backups"

// Options configures a Patcher.
type Options struct {
	Fs         afero.Fs         // Filesystem to operate on (default: afero.NewOsFs())
	BackupRoot string           // Directory receiving backup sets (default: <destination parent>/backups)
	Exclude    []string         // Gitignore-style patterns, matched against source-relative paths
	Logger     zerolog.Logger   // Progress logging (zero value logs nothing)
	Now        func() time.Time // Clock used to name backup sets
}

// File is one regular file found under the source root.
type File struct {
	Rel    string // Path relative to the source root, OS separators
	Source string // Absolute path under the source root
	Dest   string // Absolute path under the destination root
	Exists bool   // Dest existed when the plan was made
}

// Plan is the result of the discovery pass.
type Plan struct {
	SourceRoot      string
	DestinationRoot string
	ToCreate        []File // Destination path does not exist yet
	ToOverwrite     []File // Destination path exists and will be backed up
}

// Len returns the number of files the plan will copy.
func (p *Plan) Len() int {
	return len(p.ToCreate) + len(p.ToOverwrite)
}

// Files returns every planned file, new files first.
func (p *Plan) Files() []File {
	files := make([]File, 0, p.Len())
	files = append(files, p.ToCreate...)
	return append(files, p.ToOverwrite...)
}

// Result reports what a patch did.
type Result struct {
	FilesCopied      int
	FilesOverwritten int
	BackupPath       string // Empty when nothing was overwritten
}

// BackupSet describes one backup directory under a backup root.
type BackupSet struct {
	Name    string
	Path    string
	Files   int
	Created time.Time
}
