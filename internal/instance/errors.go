package instance

import (
	"fmt"
)

type StrictHostSchemaCountError struct {
	Host  string
	Count int
}

func (e *StrictHostSchemaCountError) Error() string {
	return fmt.Sprintf("host %s: strict validation requires exactly one declared schema id, got %d", e.Host, e.Count)
}
