package report

import (
	"io"

	"github.com/networktocode/schema-enforcer/internal/validation"
)

// Reporter renders a batch of validation results.
type Reporter interface {
	Write(w io.Writer, results []validation.Result) error
}
