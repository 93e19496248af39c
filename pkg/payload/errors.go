package payload

import "errors"

var (
	ErrNotFound       = errors.New("payload not found")
	ErrInvalidArchive = errors.New("invalid or corrupted archive")
	ErrEmptyPayload   = errors.New("payload contains no files")
)
