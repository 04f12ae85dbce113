package restore

import (
	"errors"
	"fmt"
)

// ErrToolNotFound is returned when the restore client binary cannot be
// located on the child process search path.
var ErrToolNotFound = errors.New("restore client not found")

// MissingFileError reports a backup file that does not exist. The client is
// never started when this error is returned.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("backup file not found at %s", e.Path)
}

// ToolNotFoundError reports the client that could not be located. It
// matches ErrToolNotFound with errors.Is.
type ToolNotFoundError struct {
	Client string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrToolNotFound, e.Client)
}

func (e *ToolNotFoundError) Is(target error) bool {
	return target == ErrToolNotFound
}

// ExitError reports a client process that exited with a non-zero status.
type ExitError struct {
	Client string
	Code   int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Client, e.Code)
}
