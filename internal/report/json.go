// Package report renders validation results for humans and machines.
package report

import (
	"encoding/json"
	"io"

	"github.com/networktocode/schema-enforcer/internal/validation"
)

// JSONReporter renders results as a single JSON document.
type JSONReporter struct {
	// ShowPass includes passing results in the output. Failures always appear.
	ShowPass bool
}

type jsonOutput struct {
	Stats struct {
		TotalPassed int `json:"totalPassed"`
		TotalFailed int `json:"totalFailed"`
	} `json:"stats"`
	Results []validation.Result `json:"results"`
}

func (jr *JSONReporter) Write(w io.Writer, results []validation.Result) error {
	out := jsonOutput{Results: []validation.Result{}}
	for i := range results {
		r := results[i]
		if r.Passed() {
			out.Stats.TotalPassed++
			if !jr.ShowPass {
				continue
			}
		} else {
			out.Stats.TotalFailed++
		}
		out.Results = append(out.Results, r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
