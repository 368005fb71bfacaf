package schema

import (
	"fmt"
	"strings"
)

type MissingSchemaIDError struct {
	Path string
}

func (e *MissingSchemaIDError) Error() string {
	return fmt.Sprintf("schema document %s has no $id property", e.Path)
}

type DuplicateSchemaIDError struct {
	ID    string
	Path  string
	Other string
}

func (e *DuplicateSchemaIDError) Error() string {
	return fmt.Sprintf("schema id %s in %s is already defined by %s", e.ID, e.Path, e.Other)
}

type InvalidSchemaDocumentError struct {
	Path   string
	Errors []string
}

func (e *InvalidSchemaDocumentError) Error() string {
	return fmt.Sprintf("invalid JSON Schema document %s: %s", e.Path, strings.Join(e.Errors, "; "))
}

type SchemaNotDefinedError struct {
	ID string
}

func (e *SchemaNotDefinedError) Error() string {
	return fmt.Sprintf("schema id %s declared but not defined", e.ID)
}

type SchemaNotFoundError struct {
	ID string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("could not find schema id %s", e.ID)
}

type InvalidValidatorFileError struct {
	Path    string
	Wrapped error
}

func (e *InvalidValidatorFileError) Error() string {
	return fmt.Sprintf("validator definition file %s could not be loaded: %v", e.Path, e.Wrapped)
}

func (e *InvalidValidatorFileError) Unwrap() error {
	return e.Wrapped
}

type InvalidOperatorError struct {
	Value string
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("invalid operator: %s - valid operators are: %s, %s, %s, %s, %s, %s",
		e.Value, OpGT, OpGTE, OpEQ, OpLT, OpLTE, OpContains)
}

type InvalidPredicateError struct {
	ID     string
	Reason string
}

func (e *InvalidPredicateError) Error() string {
	return fmt.Sprintf("predicate validator %s is invalid: %s", e.ID, e.Reason)
}

type InvalidModelError struct {
	Name   string
	Reason string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("model validator %s is invalid: %s", e.Name, e.Reason)
}

type TestDirMissingError struct {
	Path     string
	SchemaID string
}

func (e *TestDirMissingError) Error() string {
	return fmt.Sprintf("no fixture directory for schema %s: %s", e.SchemaID, e.Path)
}

type FixtureExpectedToFailError struct {
	DataFile string
}

func (e *FixtureExpectedToFailError) Error() string {
	return fmt.Sprintf("%s is schema valid, but should be schema invalid as it defines an invalid test", e.DataFile)
}

type InvalidExpectedResultsError struct {
	Path    string
	Wrapped error
}

func (e *InvalidExpectedResultsError) Error() string {
	return fmt.Sprintf("expected results file %s is invalid: %v", e.Path, e.Wrapped)
}

func (e *InvalidExpectedResultsError) Unwrap() error {
	return e.Wrapped
}
