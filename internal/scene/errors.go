package scene

import (
	"errors"
	"fmt"
)

// ErrDestroyed is returned by operations that need a live controller.
var ErrDestroyed = errors.New("scene destroyed")

// InvalidContainerError means the container was detached or had no measurable
// size at construction. Retrying after layout settles may succeed.
type InvalidContainerError struct {
	Container string
	Reason    string
}

func (e *InvalidContainerError) Error() string {
	return fmt.Sprintf("invalid container %q: %s", e.Container, e.Reason)
}

// RenderingUnavailableError means no render surface could be created.
type RenderingUnavailableError struct {
	Err error
}

func (e *RenderingUnavailableError) Error() string {
	return fmt.Sprintf("rendering unavailable: %v", e.Err)
}

func (e *RenderingUnavailableError) Unwrap() error { return e.Err }

// DoubleDestroyError is a programming error: Destroy was called twice.
type DoubleDestroyError struct {
	Scene string
}

func (e *DoubleDestroyError) Error() string {
	return fmt.Sprintf("scene %s destroyed twice", e.Scene)
}

// Recoverable reports whether a construction error may go away on retry.
func Recoverable(err error) bool {
	var ic *InvalidContainerError
	var ru *RenderingUnavailableError
	return errors.As(err, &ic) || errors.As(err, &ru)
}
