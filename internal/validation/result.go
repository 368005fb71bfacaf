// Package validation defines the result types produced by every validator.
package validation

import (
	"strings"
)

// Outcome is the closed set of result states. Anything else is a construction error.
type Outcome string

const (
	Pass Outcome = "PASS"
	Fail Outcome = "FAIL"
)

// NewOutcome creates an Outcome from a string, normalising case.
func NewOutcome(s string) (Outcome, error) {
	switch Outcome(strings.ToUpper(s)) {
	case Pass:
		return Pass, nil
	case Fail:
		return Fail, nil
	default:
		return "", &InvalidOutcomeError{Value: s}
	}
}

// InstanceType identifies the kind of record a Result refers to.
type InstanceType string

const (
	InstanceTypeFile   InstanceType = "FILE"
	InstanceTypeHost   InstanceType = "HOST"
	InstanceTypeSchema InstanceType = "SCHEMA"
	InstanceTypeTest   InstanceType = "TEST"
)

// Result records the outcome of validating one record against one schema.
// Results are created during a Validate call and never mutated afterwards,
// except for the instance annotations which the caller sets before reporting.
type Result struct {
	Result   Outcome `json:"result" yaml:"result"`
	SchemaID string  `json:"schema_id" yaml:"schema_id"`

	InstanceType     InstanceType `json:"instance_type,omitempty" yaml:"instance_type,omitempty"`
	InstanceName     string       `json:"instance_name,omitempty" yaml:"instance_name,omitempty"`
	InstanceLocation string       `json:"instance_location,omitempty" yaml:"instance_location,omitempty"`
	InstanceHostname string       `json:"instance_hostname,omitempty" yaml:"instance_hostname,omitempty"`

	// AbsolutePath locates the failure within the instance. Empty on PASS.
	AbsolutePath []string `json:"absolute_path,omitempty" yaml:"absolute_path,omitempty"`
	// Message is the human-readable cause. Required on FAIL, empty on PASS.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// NewPass creates a passing Result for the given schema.
func NewPass(schemaID string) Result {
	return Result{Result: Pass, SchemaID: schemaID}
}

// NewFail creates a failing Result. A FAIL without a message is a programming
// error, so the message is required here rather than validated later.
func NewFail(schemaID, message string, absolutePath []string) Result {
	return Result{
		Result:       Fail,
		SchemaID:     schemaID,
		Message:      message,
		AbsolutePath: absolutePath,
	}
}

// Passed reports whether the result represents a successful check.
func (r *Result) Passed() bool {
	return r.Result == Pass
}

// Validate checks the construction invariants of a Result that was decoded
// from an external source (e.g. an expected-results fixture file).
func (r *Result) Validate() error {
	if r.Result != Pass && r.Result != Fail {
		return &InvalidOutcomeError{Value: string(r.Result)}
	}
	if r.Result == Fail && r.Message == "" {
		return &MissingMessageError{SchemaID: r.SchemaID}
	}
	return nil
}

// Annotate fills in the instance context fields on a batch of results.
// Validators know nothing about the record they are checking, so the caller
// stamps the record identity on the way out.
func Annotate(results []Result, it InstanceType, name, location string) []Result {
	for i := range results {
		results[i].InstanceType = it
		results[i].InstanceName = name
		results[i].InstanceLocation = location
	}
	return results
}

// AllPassed reports whether every result in the set passed.
// An empty set is clean by definition.
func AllPassed(results []Result) bool {
	for i := range results {
		if !results[i].Passed() {
			return false
		}
	}
	return true
}
