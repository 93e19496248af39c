// Package identity remembers which user unlocked the patcher so later runs
// can skip the confirmation prompt.
package identity

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var ErrEmptyName = errors.New("user name cannot be empty")

// State is the verification state of an Authenticator.
type State int

const (
	Unset State = iota
	Verified
)

func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Verified:
		return "verified"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Store persists the verified user name. Load returns "" when nothing is
// stored.
type Store interface {
	Load() (string, error)
	Save(name string) error
	Clear() error
}

// Authenticator holds the verified user for the lifetime of the process.
// Call Init once at startup before reading State or Name.
type Authenticator struct {
	state State
	name  string
	st    Store
}

// NewAuthenticator creates an Authenticator backed by st.
func NewAuthenticator(st Store) *Authenticator {
	return &Authenticator{st: st}
}

// Init loads the stored user, if any.
func (a *Authenticator) Init() error {
	name, err := a.st.Load()
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if name == "" {
		a.state, a.name = Unset, ""
		return nil
	}
	a.state, a.name = Verified, name
	return nil
}

// State returns the current verification state.
func (a *Authenticator) State() State { return a.state }

// Name returns the verified user name, or "" when Unset.
func (a *Authenticator) Name() string { return a.name }

// Verify records name as the verified user.
func (a *Authenticator) Verify(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := a.st.Save(name); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	a.state, a.name = Verified, name
	return nil
}

// Reset forgets the verified user.
func (a *Authenticator) Reset() error {
	if err := a.st.Clear(); err != nil {
		return fmt.Errorf("failed to clear user: %w", err)
	}
	a.state, a.name = Unset, ""
	return nil
}

// Detect returns the name of the user running the process.
func Detect() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		// Windows reports DOMAIN\name.
		if i := strings.LastIndex(u.Username, `\`); i >= 0 {
			return u.Username[i+1:]
		}
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// FileStore keeps the user name in a single lock file.
type FileStore struct {
	Fs   afero.Fs
	Path string
}

// NewFileStore creates a FileStore for path on the OS filesystem.
func NewFileStore(path string) *FileStore {
	return &FileStore{Fs: afero.NewOsFs(), Path: path}
}

func (s *FileStore) Load() (string, error) {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Save(name string) error {
	if err := s.Fs.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(s.Fs, s.Path, []byte(name), 0o600)
}

func (s *FileStore) Clear() error {
	err := s.Fs.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
