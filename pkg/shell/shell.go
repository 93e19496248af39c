// Package shell runs the interactive, menu-driven patching session.
package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/rivalspatch/pkg/console"
	"github.com/rivalspatch/pkg/identity"
	"github.com/rivalspatch/pkg/locate"
	"github.com/rivalspatch/pkg/payload"
	"github.com/rivalspatch/pkg/treepatch"
)

// PatchFunc patches dst with src, skipping files matching exclude.
type PatchFunc func(src, dst string, exclude []string) (treepatch.Result, error)

// Env holds the shell's collaborators.
type Env struct {
	Console     *console.Console
	Auth        *identity.Authenticator // Must already be initialised
	DetectUser  func() string
	FindInstall func() (locate.Install, error)
	FindPayload func() (string, error) // Main texture archive
	SkyArchive  string                 // Skybox pack archive
	Extract     func(archivePath string) (*payload.Extraction, error)
	Patch       PatchFunc
	Fs          afero.Fs
}

type state int

const (
	stateIdentify state = iota
	stateMainPrompt
	stateMainPatch
	stateSkyPrompt
	stateSkySelect
	stateDone
)

func (s state) String() string {
	switch s {
	case stateIdentify:
		return "identify"
	case stateMainPrompt:
		return "main-prompt"
	case stateMainPatch:
		return "main-patch"
	case stateSkyPrompt:
		return "sky-prompt"
	case stateSkySelect:
		return "sky-select"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Shell walks the user through the main texture patch and the optional
// skybox patch.
type Shell struct {
	env     Env
	con     *console.Console
	install *locate.Install
}

// New creates a shell.
func New(env Env) *Shell {
	if env.Fs == nil {
		env.Fs = afero.NewOsFs()
	}
	if env.DetectUser == nil {
		env.DetectUser = identity.Detect
	}
	return &Shell{env: env, con: env.Console}
}

// Run drives the session to completion. Patch failures are reported on the
// console and do not end the session early; only input errors are returned.
func (s *Shell) Run() error {
	st := stateIdentify
	for st != stateDone {
		next, err := s.step(st)
		if err != nil {
			return fmt.Errorf("%s: %w", st, err)
		}
		st = next
	}
	s.con.Neon("\nDone!")
	return nil
}

func (s *Shell) step(st state) (state, error) {
	switch st {
	case stateIdentify:
		return s.identify()
	case stateMainPrompt:
		return s.mainPrompt()
	case stateMainPatch:
		return s.mainPatch()
	case stateSkyPrompt:
		return s.skyPrompt()
	case stateSkySelect:
		return s.skySelect()
	}
	return stateDone, fmt.Errorf("unknown state %d", int(st))
}

func (s *Shell) identify() (state, error) {
	auth := s.env.Auth
	if auth.State() == identity.Verified {
		s.con.Neon("User verified: %s", auth.Name())
		return stateMainPrompt, nil
	}

	detected := s.env.DetectUser()
	name := detected
	if detected != "" {
		s.con.Neon("User found: %s", detected)
		s.con.Accent("Is this correct?")
		s.con.Neon("1) Yes - unlock automatically")
		s.con.Accent("2) No  - enter manually")
		choice, err := s.con.Choose("> ", 2)
		if errors.Is(err, console.ErrTooManyAttempts) {
			s.con.Error("Please answer 1 or 2.")
			return stateIdentify, nil
		}
		if err != nil {
			return stateDone, err
		}
		if choice == 2 {
			detected = ""
		}
	}
	if detected == "" {
		manual, err := s.con.Ask("Enter username: ")
		if err != nil {
			return stateDone, err
		}
		name = manual
	}

	if err := auth.Verify(name); err != nil {
		s.con.Error("%s", Describe(err))
		return stateIdentify, nil
	}
	if detected != "" {
		s.con.Neon("Unlocked automatically.")
	} else {
		s.con.Neon("Manual unlock: %s", auth.Name())
	}
	return stateMainPrompt, nil
}

func (s *Shell) mainPrompt() (state, error) {
	s.con.Neon("/// RIVALS PATCHER ///")
	ok, err := s.con.Confirm("Patch game textures now? (y/n)")
	if err != nil {
		return stateDone, err
	}
	if !ok {
		s.con.Warn("Main patch skipped.")
		return stateSkyPrompt, nil
	}
	return stateMainPatch, nil
}

func (s *Shell) mainPatch() (state, error) {
	install, err := s.findInstall()
	if err != nil {
		s.con.Error("Error locating the game: %s", Describe(err))
		return stateDone, nil
	}
	s.con.Neon("Using version: %s", install.Version)

	archive, err := s.env.FindPayload()
	if errors.Is(err, payload.ErrNotFound) {
		s.con.Warn("No texture zip found automatically.")
		archive, err = s.con.Ask("Path to textures zip (leave empty to cancel): ")
		if err != nil {
			return stateDone, err
		}
		if archive == "" {
			s.con.Warn("Cancelled.")
			return stateDone, nil
		}
		archive = expandHome(archive)
	} else if err != nil {
		s.con.Error("%s", Describe(err))
		return stateDone, nil
	}
	s.con.Accent("Found texture zip: %s", archive)

	s.con.Neon("Extracting textures...")
	ext, err := s.env.Extract(archive)
	if err != nil {
		s.con.Error("%s", Describe(err))
		return stateDone, nil
	}
	defer ext.Close()

	result, err := s.env.Patch(ext.Root, install.TexturesDir(), ext.Exclude)
	s.report(result, err)
	if err != nil {
		return stateDone, nil
	}
	s.con.Accent("\nPatch applied successfully!")
	return stateSkyPrompt, nil
}

func (s *Shell) skyPrompt() (state, error) {
	ok, err := s.con.Confirm("\nDo you want to patch a custom sky now? (y/n)")
	if err != nil {
		return stateDone, err
	}
	if !ok {
		s.con.Warn("Skipping custom sky.")
		return stateDone, nil
	}
	return stateSkySelect, nil
}

func (s *Shell) skySelect() (state, error) {
	install, err := s.findInstall()
	if err != nil {
		s.con.Error("Cannot find the game to patch sky: %s", Describe(err))
		return stateDone, nil
	}

	s.con.Neon("Extracting skyboxes...")
	ext, err := s.env.Extract(s.env.SkyArchive)
	if err != nil {
		s.con.Error("%s", Describe(err))
		return stateDone, nil
	}
	defer ext.Close()

	trees, err := payload.Subtrees(s.env.Fs, ext.Dir)
	if err != nil {
		s.con.Error("%s", Describe(err))
		return stateDone, nil
	}
	if len(trees) == 0 {
		s.con.Error("No skyboxes inside the zip.")
		return stateDone, nil
	}

	s.con.Accent("\nAvailable skyboxes:")
	for i, t := range trees {
		s.con.Item(i+1, t.Name, fmt.Sprintf("%d files", t.Files))
	}
	n, err := s.con.Choose("\nSelect a skybox number: ", len(trees))
	if errors.Is(err, console.ErrTooManyAttempts) {
		s.con.Error("Invalid number.")
		return stateDone, nil
	}
	if err != nil {
		return stateDone, err
	}

	selected := trees[n-1]
	s.con.Neon("Applying skybox: %s", selected.Name)
	result, err := s.env.Patch(selected.Path, install.SkyDir(), nil)
	s.report(result, err)
	return stateDone, nil
}

func (s *Shell) findInstall() (locate.Install, error) {
	if s.install != nil {
		return *s.install, nil
	}
	install, err := s.env.FindInstall()
	if err != nil {
		return locate.Install{}, err
	}
	s.install = &install
	return install, nil
}

// report prints a patch outcome, including the partial result of a failed
// copy pass.
func (s *Shell) report(result treepatch.Result, err error) {
	if err != nil {
		s.con.Error("Error during copy: %s", Describe(err))
		if result.FilesCopied > 0 {
			s.con.Warn("%d files were copied before the failure.", result.FilesCopied)
		}
		if result.BackupPath != "" {
			s.con.Warn("Original files are backed up at: %s", result.BackupPath)
		}
		return
	}
	s.con.Neon("Patch complete: %d files copied, %d overwritten.", result.FilesCopied, result.FilesOverwritten)
	if result.BackupPath != "" {
		s.con.Warn("Backup stored at: %s", result.BackupPath)
	} else {
		s.con.Info("Nothing was overwritten, no backup needed.")
	}
}

// expandHome replaces a leading ~ with the current user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
