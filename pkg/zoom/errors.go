package zoom

import (
	"errors"
	"fmt"
)

var (
	// ErrPortalNotFound is returned when the portal target does not exist.
	ErrPortalNotFound = errors.New("zoom: portal target not found")
	// ErrNoDocument is returned when a surface is built without a host.
	ErrNoDocument = errors.New("zoom: no document")
)

// ConfigError reports an invalid option.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("zoom: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
