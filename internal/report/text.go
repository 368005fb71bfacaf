package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/networktocode/schema-enforcer/internal/validation"
)

// TextReporter renders results as one line per check. FAIL lines always
// print; PASS lines only with ShowPass.
type TextReporter struct {
	ShowPass  bool
	UseColour bool
}

const (
	colReset     = "\033[0m"
	colRed       = "\033[31m"
	colGreen     = "\033[32m"
	colGrey      = "\033[90m"
	colWhite     = "\033[37m"
	colBoldRed   = "\033[1;31m"
	colBoldGreen = "\033[1;32m"
)

// cs returns a string which will render with the given colour
// if colourisation is enabled.
func (tr *TextReporter) cs(c, s string) string {
	if !tr.UseColour {
		return s
	}
	return c + s + colReset
}

func (tr *TextReporter) Write(w io.Writer, results []validation.Result) error {
	failed := 0
	for i := range results {
		r := &results[i]
		if r.Passed() {
			if tr.ShowPass {
				fmt.Fprintf(w, "%s | [%s] %s\n",
					tr.cs(colGreen, "PASS"),
					tr.cs(colWhite, string(r.InstanceType)),
					tr.cs(colGrey, instanceLabel(r)))
			}
			continue
		}
		failed++
		fmt.Fprintf(w, "%s | [ERROR] %s [%s] %s%s\n",
			tr.cs(colRed, "FAIL"),
			r.Message,
			tr.cs(colWhite, string(r.InstanceType)),
			tr.cs(colGrey, instanceLabel(r)),
			propertySuffix(r))
	}

	if failed == 0 {
		fmt.Fprintf(w, "%s\n", tr.cs(colBoldGreen, "ALL SCHEMA VALIDATION CHECKS PASSED"))
	} else {
		fmt.Fprintf(w, "%s\n", tr.cs(colBoldRed,
			fmt.Sprintf("%d SCHEMA VALIDATION CHECK(S) FAILED", failed)))
	}
	return nil
}

// instanceLabel names the record a result refers to: its file path, hostname,
// or schema id.
func instanceLabel(r *validation.Result) string {
	switch {
	case r.InstanceHostname != "":
		return fmt.Sprintf("%s [SCHEMA] %s", r.InstanceHostname, r.SchemaID)
	case r.InstanceLocation != "":
		return fmt.Sprintf("%s/%s", r.InstanceLocation, r.InstanceName)
	case r.InstanceName != "":
		return r.InstanceName
	default:
		return r.SchemaID
	}
}

func propertySuffix(r *validation.Result) string {
	if len(r.AbsolutePath) == 0 {
		return ""
	}
	return fmt.Sprintf(" [PROPERTY] %s", strings.Join(r.AbsolutePath, ":"))
}
