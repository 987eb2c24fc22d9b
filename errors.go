package stickerstroke

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig matches every *ConfigError via errors.Is.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrEmptyImage is returned for sources with zero width or height.
	ErrEmptyImage = errors.New("image has zero width or height")
	// ErrSizeMismatch is returned when a mask and an image disagree on size.
	ErrSizeMismatch = errors.New("mask and image sizes differ")
)

// ConfigError describes a rejected parameter.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
