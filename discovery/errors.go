package discovery

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingModule is returned when no module exists for a source file.
	ErrMissingModule = errors.New("discovery: module not found")

	// ErrNotRouter is returned when a loaded module does not export a router.
	ErrNotRouter = errors.New("discovery: module does not export a router")
)

// LoadError describes a module that failed to load.
type LoadError struct {
	MountPath string
	Artifact  string
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("discovery: load router %q from %s: %v", e.MountPath, e.Artifact, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
