package treepatch

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrIO       = errors.New("i/o failure")

	// ErrSameFile is wrapped when a source file resolves to its own destination.
	ErrSameFile = errors.New("source and destination are the same file")
)

// Error records the operation and path behind a patch failure.
// Every Error matches ErrIO; missing roots additionally match ErrNotFound.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + " " + e.Path + ": " + e.Kind.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrIO || target == e.Kind
}

func ioError(op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: ErrIO, Err: err}
}

func notFound(op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: ErrNotFound, Err: err}
}
