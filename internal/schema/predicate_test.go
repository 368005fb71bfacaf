package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networktocode/schema-enforcer/internal/schema"
	"github.com/networktocode/schema-enforcer/internal/validation"
)

func newPredicate(t *testing.T, def schema.PredicateDefinition) *schema.Predicate {
	t.Helper()
	p, err := schema.NewPredicate(def, "validators/checks.yml")
	require.NoError(t, err)
	return p
}

func TestNewOperatorRejectsUnknown(t *testing.T) {
	t.Parallel()

	_, err := schema.NewOperator("ne")
	var invalidErr *schema.InvalidOperatorError
	require.ErrorAs(t, err, &invalidErr)
}

func TestNewPredicateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  schema.PredicateDefinition
	}{
		{name: "missing id", def: schema.PredicateDefinition{Left: "a", Right: 1, Operator: "eq"}},
		{name: "missing left", def: schema.PredicateDefinition{ID: "x", Right: 1, Operator: "eq"}},
		{name: "missing right", def: schema.PredicateDefinition{ID: "x", Left: "a", Operator: "eq"}},
		{name: "bad operator", def: schema.PredicateDefinition{ID: "x", Left: "a", Right: 1, Operator: "between"}},
		{name: "right mapping without query", def: schema.PredicateDefinition{
			ID: "x", Left: "a", Right: map[string]any{"value": 1}, Operator: "eq"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := schema.NewPredicate(tt.def, "validators/checks.yml")
			require.Error(t, err)
		})
	}
}

func TestPredicateOperators(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"name":     "core-rt1",
		"count":    3,
		"tags":     []any{"core", "edge"},
		"services": map[string]any{"ntp": true},
	}

	tests := []struct {
		name string
		def  schema.PredicateDefinition
		pass bool
	}{
		{name: "gt passing", def: schema.PredicateDefinition{ID: "t", Left: "count", Right: 2, Operator: "gt"}, pass: true},
		{name: "gt failing", def: schema.PredicateDefinition{ID: "t", Left: "count", Right: 3, Operator: "gt"}, pass: false},
		{name: "gte boundary", def: schema.PredicateDefinition{ID: "t", Left: "count", Right: 3, Operator: "gte"}, pass: true},
		{name: "lt failing", def: schema.PredicateDefinition{ID: "t", Left: "count", Right: 3, Operator: "lt"}, pass: false},
		{name: "lte boundary", def: schema.PredicateDefinition{ID: "t", Left: "count", Right: 3, Operator: "lte"}, pass: true},
		{name: "eq string", def: schema.PredicateDefinition{ID: "t", Left: "name", Right: "core-rt1", Operator: "eq"}, pass: true},
		{name: "eq number", def: schema.PredicateDefinition{ID: "t", Left: "count", Right: 3, Operator: "eq"}, pass: true},
		{name: "eq mismatch", def: schema.PredicateDefinition{ID: "t", Left: "name", Right: "edge-rt1", Operator: "eq"}, pass: false},
		{name: "contains array", def: schema.PredicateDefinition{ID: "t", Left: "tags", Right: "core", Operator: "contains"}, pass: true},
		{name: "contains array missing", def: schema.PredicateDefinition{ID: "t", Left: "tags", Right: "spine", Operator: "contains"}, pass: false},
		{name: "contains string", def: schema.PredicateDefinition{ID: "t", Left: "name", Right: "rt1", Operator: "contains"}, pass: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := newPredicate(t, tt.def)
			results, err := p.Validate(data, false)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.pass, results[0].Passed())
		})
	}
}

func TestPredicateVacuousPass(t *testing.T) {
	t.Parallel()

	// A left query that selects nothing - or a falsy value - passes: asserting
	// on absent data is the structural schemas' job.
	tests := []struct {
		name string
		data map[string]any
	}{
		{name: "missing path", data: map[string]any{}},
		{name: "null value", data: map[string]any{"count": nil}},
		{name: "zero", data: map[string]any{"count": 0}},
		{name: "empty array", data: map[string]any{"count": []any{}}},
		{name: "empty string", data: map[string]any{"count": ""}},
	}

	p := newPredicate(t, schema.PredicateDefinition{
		ID: "t", Left: "count", Right: 10, Operator: "gte",
	})

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results, err := p.Validate(tt.data, false)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.True(t, results[0].Passed())
		})
	}
}

func TestPredicateCountsMatchingElements(t *testing.T) {
	t.Parallel()

	// At least two core-facing interfaces must exist when any do.
	p := newPredicate(t, schema.PredicateDefinition{
		ID:                 "check_core_interfaces",
		Left:               `interfaces.#(type=="core")#|#`,
		Right:              2,
		Operator:           "gte",
		Error:              "needs at least two core interfaces",
		TopLevelProperties: []string{"interfaces"},
	})
	assert.Equal(t, []string{"interfaces"}, p.TopLevelProperties().Sorted())

	pass := map[string]any{"interfaces": []any{
		map[string]any{"name": "Ethernet1", "type": "core"},
		map[string]any{"name": "Ethernet2", "type": "core"},
		map[string]any{"name": "Ethernet3", "type": "access"},
	}}
	results, err := p.Validate(pass, false)
	require.NoError(t, err)
	assert.True(t, validation.AllPassed(results))

	fail := map[string]any{"interfaces": []any{
		map[string]any{"name": "Ethernet1", "type": "core"},
	}}
	results, err = p.Validate(fail, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed())
	assert.Equal(t, "needs at least two core interfaces", results[0].Message)
}

func TestPredicateRightQuery(t *testing.T) {
	t.Parallel()

	// Compare two parts of the same instance.
	p := newPredicate(t, schema.PredicateDefinition{
		ID:       "mirrored_counts",
		Left:     "primary.count",
		Right:    map[string]any{"query": "backup.count"},
		Operator: "eq",
		Error:    "primary and backup counts differ",
	})

	results, err := p.Validate(map[string]any{
		"primary": map[string]any{"count": 4},
		"backup":  map[string]any{"count": 4},
	}, false)
	require.NoError(t, err)
	assert.True(t, validation.AllPassed(results))

	results, err = p.Validate(map[string]any{
		"primary": map[string]any{"count": 4},
		"backup":  map[string]any{"count": 2},
	}, false)
	require.NoError(t, err)
	assert.False(t, validation.AllPassed(results))
}

func TestPredicateTypeMismatchIsAnError(t *testing.T) {
	t.Parallel()

	p := newPredicate(t, schema.PredicateDefinition{
		ID: "t", Left: "name", Right: 3, Operator: "gt",
	})
	_, err := p.Validate(map[string]any{"name": "core-rt1"}, false)
	require.Error(t, err)
}
