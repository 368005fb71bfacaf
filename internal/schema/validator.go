// Package schema loads, indexes and runs the validators which enforce data
// contracts: structural JSON Schema documents, declarative predicate
// expressions, and typed structural models.
package schema

import (
	"slices"

	"github.com/networktocode/schema-enforcer/internal/validation"
)

// Kind identifies the variant of validation logic behind a Validator.
type Kind string

const (
	KindJSONSchema Kind = "jsonschema"
	KindPredicate  Kind = "predicate"
	KindModel      Kind = "model"
)

// Validator is the shared contract of all schema kinds. Validate is a pure
// function from data to results: it must return at least one result (a PASS
// when nothing failed) so the absence of failures is distinguishable from
// "never ran", and it must never return an error for expected validation
// failures - those are data. An error return signals a programming problem
// (malformed validator definition, unmarshallable input) and is fatal.
type Validator interface {
	// ID is the stable, globally unique identity of the schema.
	ID() string

	// Kind reports the validator variant.
	Kind() Kind

	// TopLevelProperties returns the root field names the schema declares.
	// It is used only by automapping; an empty set opts the validator out of
	// automap matching while keeping it reachable by explicit id.
	TopLevelProperties() PropertySet

	// Source describes where the validator was defined (file path or group).
	Source() string

	// Validate checks data against the schema. The strict flag additionally
	// flags fields not declared by the schema; variants that have no notion
	// of undeclared fields ignore it.
	Validate(data any, strict bool) ([]validation.Result, error)
}

// PropertySet is a set of property names.
type PropertySet map[string]struct{}

// NewPropertySet creates a PropertySet from the given names.
func NewPropertySet(names ...string) PropertySet {
	s := make(PropertySet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts a name into the set.
func (p PropertySet) Add(name string) {
	p[name] = struct{}{}
}

// Has reports whether the set contains name.
func (p PropertySet) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Intersects reports whether the two sets share at least one name.
func (p PropertySet) Intersects(other PropertySet) bool {
	small, large := p, other
	if len(other) < len(p) {
		small, large = other, p
	}
	for n := range small {
		if large.Has(n) {
			return true
		}
	}
	return false
}

// Sorted returns the names in the set in lexical order.
func (p PropertySet) Sorted() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
