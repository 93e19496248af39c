package shell

import (
	"errors"
	"fmt"

	"github.com/rivalspatch/pkg/locate"
	"github.com/rivalspatch/pkg/payload"
	"github.com/rivalspatch/pkg/treepatch"
)

// Describe turns an error from any patcher collaborator into the message
// shown to the user. Each error kind gets its own wording.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, payload.ErrInvalidArchive):
		return fmt.Sprintf("Invalid/corrupted archive: %v", err)
	case errors.Is(err, payload.ErrEmptyPayload):
		return fmt.Sprintf("No valid files found inside the archive: %v", err)
	case errors.Is(err, payload.ErrNotFound):
		return fmt.Sprintf("Payload not found: %v", err)
	case errors.Is(err, locate.ErrNotFound):
		return fmt.Sprintf("Game installation not found: %v", err)
	case errors.Is(err, treepatch.ErrNotFound):
		return fmt.Sprintf("Source files not found: %v", err)
	case errors.Is(err, treepatch.ErrIO):
		return fmt.Sprintf("File operation failed (check permissions, free space and path length; try running as administrator): %v", err)
	default:
		return err.Error()
	}
}
