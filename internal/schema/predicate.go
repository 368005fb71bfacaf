package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/networktocode/schema-enforcer/internal/validation"
)

// Operator is a predicate comparison operator.
type Operator string

const (
	OpGT       Operator = "gt"
	OpGTE      Operator = "gte"
	OpEQ       Operator = "eq"
	OpLT       Operator = "lt"
	OpLTE      Operator = "lte"
	OpContains Operator = "contains"
)

// NewOperator parses an operator name.
func NewOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case OpGT, OpGTE, OpEQ, OpLT, OpLTE, OpContains:
		return op, nil
	default:
		return "", &InvalidOperatorError{Value: s}
	}
}

// PredicateDefinition is one entry of a validator definition file.
type PredicateDefinition struct {
	ID                 string   `yaml:"id"`
	Left               string   `yaml:"left"`
	Right              any      `yaml:"right"`
	Operator           string   `yaml:"operator"`
	Error              string   `yaml:"error"`
	TopLevelProperties []string `yaml:"top_level_properties"`
}

// Predicate is a single-assertion validator: a query against the instance
// compared to a literal or to the result of a second query. A left query
// which selects nothing (or a falsy value) passes vacuously - presence is
// the structural schemas' job.
type Predicate struct {
	id         string
	left       string
	right      any
	rightQuery string
	operator   Operator
	message    string
	topLevel   PropertySet
	source     string
}

// NewPredicate builds a Predicate from its definition. The right side is
// either a literal, or a {query: "..."} mapping naming a second query to
// evaluate against the same instance.
func NewPredicate(def PredicateDefinition, source string) (*Predicate, error) {
	if def.ID == "" {
		return nil, &InvalidPredicateError{ID: "(unset)", Reason: "id is required"}
	}
	if def.Left == "" {
		return nil, &InvalidPredicateError{ID: def.ID, Reason: "left is required"}
	}
	op, err := NewOperator(def.Operator)
	if err != nil {
		return nil, &InvalidPredicateError{ID: def.ID, Reason: err.Error()}
	}
	message := def.Error
	if message == "" {
		message = fmt.Sprintf("%s %s check failed", def.Left, op)
	}

	p := &Predicate{
		id:       def.ID,
		left:     def.Left,
		operator: op,
		message:  message,
		topLevel: NewPropertySet(def.TopLevelProperties...),
		source:   source,
	}
	if m, ok := def.Right.(map[string]any); ok {
		q, ok := m["query"].(string)
		if !ok || q == "" {
			return nil, &InvalidPredicateError{ID: def.ID, Reason: "right mapping must carry a query string"}
		}
		p.rightQuery = q
	} else {
		if def.Right == nil {
			return nil, &InvalidPredicateError{ID: def.ID, Reason: "right is required"}
		}
		p.right = def.Right
	}
	return p, nil
}

func (p *Predicate) ID() string { return p.id }

func (p *Predicate) Kind() Kind { return KindPredicate }

func (p *Predicate) TopLevelProperties() PropertySet { return p.topLevel }

func (p *Predicate) Source() string { return p.source }

// Validate evaluates the predicate against data. The strict flag has no
// meaning for predicates and is ignored.
func (p *Predicate) Validate(data any, _ bool) ([]validation.Result, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("predicate %s: instance is not serialisable: %w", p.id, err)
	}

	lhs := gjson.GetBytes(encoded, p.left)
	if isFalsy(lhs) {
		return []validation.Result{validation.NewPass(p.id)}, nil
	}

	rhs := p.right
	if p.rightQuery != "" {
		rhs = gjson.GetBytes(encoded, p.rightQuery).Value()
	}

	ok, err := compare(p.operator, lhs, rhs)
	if err != nil {
		return nil, fmt.Errorf("predicate %s: %w", p.id, err)
	}
	if !ok {
		return []validation.Result{validation.NewFail(p.id, p.message, nil)}, nil
	}
	return []validation.Result{validation.NewPass(p.id)}, nil
}

// isFalsy reports whether the left-hand query selected nothing worth
// asserting on: missing path, null, false, zero, or an empty string/array.
func isFalsy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return true
	case gjson.False:
		return true
	case gjson.Number:
		return r.Num == 0
	case gjson.String:
		return r.Str == ""
	default:
		if r.IsArray() {
			return len(r.Array()) == 0
		}
		return !r.Exists()
	}
}

func compare(op Operator, lhs gjson.Result, rhs any) (bool, error) {
	switch op {
	case OpEQ:
		return looseEqual(lhs.Value(), rhs), nil
	case OpContains:
		return contains(lhs, rhs)
	}

	// The remaining operators are numeric.
	left, ok := numeric(lhs.Value())
	if !ok {
		return false, fmt.Errorf("operator %s needs a numeric left side, got %s", op, lhs.Type)
	}
	right, ok := numeric(rhs)
	if !ok {
		return false, fmt.Errorf("operator %s needs a numeric right side, got %T", op, rhs)
	}
	switch op {
	case OpGT:
		return left > right, nil
	case OpGTE:
		return left >= right, nil
	case OpLT:
		return left < right, nil
	case OpLTE:
		return left <= right, nil
	}
	return false, &InvalidOperatorError{Value: string(op)}
}

func contains(lhs gjson.Result, rhs any) (bool, error) {
	if lhs.IsArray() {
		for _, el := range lhs.Array() {
			if looseEqual(el.Value(), rhs) {
				return true, nil
			}
		}
		return false, nil
	}
	if lhs.Type == gjson.String {
		needle, ok := rhs.(string)
		if !ok {
			needle = fmt.Sprint(rhs)
		}
		return strings.Contains(lhs.Str, needle), nil
	}
	return false, fmt.Errorf("operator %s needs an array or string left side, got %s", OpContains, lhs.Type)
}

// looseEqual compares two decoded values, treating all numeric
// representations (json.Number, float64, int) as equal when their values are.
func looseEqual(a, b any) bool {
	if an, ok := numeric(a); ok {
		bn, ok := numeric(b)
		return ok && an == bn
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !looseEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !looseEqual(v, bvv) {
				return false
			}
		}
		return true
	}
	return false
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
