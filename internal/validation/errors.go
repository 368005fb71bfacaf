package validation

import (
	"fmt"
)

type InvalidOutcomeError struct {
	Value string
}

func (e *InvalidOutcomeError) Error() string {
	return fmt.Sprintf("result must be either %s or %s, got %q", Pass, Fail, e.Value)
}

type MissingMessageError struct {
	SchemaID string
}

func (e *MissingMessageError) Error() string {
	return fmt.Sprintf("FAIL result for schema %s must carry a message", e.SchemaID)
}
