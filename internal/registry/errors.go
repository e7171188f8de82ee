package registry

import (
	"errors"
	"fmt"
)

// Registry construction errors. All of them are fatal: a story with an
// inconsistent table must not start.
var (
	ErrEmptyID          = errors.New("registry: layer has no id")
	ErrDuplicateID      = errors.New("registry: duplicate layer id")
	ErrNoScenes         = errors.New("registry: layer belongs to no scene")
	ErrUnknownScene     = errors.New("registry: unknown scene")
	ErrUnknownSubScene  = errors.New("registry: unknown sub-scene")
	ErrNegativeDuration = errors.New("registry: negative duration")
	ErrNegativeIndex    = errors.New("registry: negative content index")
	ErrMissingShot      = errors.New("registry: camera layer without a shot")
	ErrCameraTiming     = errors.New("registry: camera layer timing comes from its shot")
	ErrDuplicateScene   = errors.New("registry: scene described twice")
)

// DescriptorError names the registry entry an error was found in.
type DescriptorError struct {
	ID      string
	Wrapped error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("%s: %v", e.ID, e.Wrapped)
}

func (e *DescriptorError) Unwrap() error {
	return e.Wrapped
}
