package config

import (
	"fmt"
)

type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("configuration file could not be read: %s", e.Path)
}

type InvalidConfigError struct {
	Path    string
	Wrapped error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%s is not a valid configuration file: %v", e.Path, e.Wrapped)
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Wrapped
}
