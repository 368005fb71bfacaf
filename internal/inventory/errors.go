package inventory

import (
	"fmt"
)

type MissingInventoryError struct {
	Path string
}

func (e *MissingInventoryError) Error() string {
	return fmt.Sprintf("inventory directory could not be read: %s", e.Path)
}

type InvalidVarsFileError struct {
	Path string
}

func (e *InvalidVarsFileError) Error() string {
	return fmt.Sprintf("variables file %s must contain a mapping", e.Path)
}

type InvalidDirectiveError struct {
	Name   string
	Reason string
}

func (e *InvalidDirectiveError) Error() string {
	return fmt.Sprintf("reserved variable %s %s", e.Name, e.Reason)
}
