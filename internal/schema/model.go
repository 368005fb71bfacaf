package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	pv "github.com/go-playground/validator/v10"

	"github.com/networktocode/schema-enforcer/internal/validation"
)

// structValidator checks `validate` struct tags. Namespaces are reported
// using json tag names so failure paths line up with the instance data.
var structValidator = newStructValidator()

func newStructValidator() *pv.Validate {
	v := pv.New(pv.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return field.Name
		}
		return tag
	})
	return v
}

// ModelGroup registers a set of typed models under a shared id prefix.
// Each model is a struct (or pointer to one) whose json tags define the
// accepted document shape and whose validate tags define field constraints.
type ModelGroup struct {
	Prefix string
	Models []any
}

// TypedModel validates instances by decoding them into a Go struct and
// running its field constraints. Strict validation additionally rejects
// fields the struct does not declare.
type TypedModel struct {
	id       string
	typ      reflect.Type
	topLevel PropertySet
	source   string
}

// NewTypedModel builds a TypedModel from a prototype struct value. The id is
// prefix/Name where Name is the struct type name.
func NewTypedModel(model any, prefix string) (*TypedModel, error) {
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, &InvalidModelError{Name: fmt.Sprintf("%T", model), Reason: "model must be a struct"}
	}

	id := typ.Name()
	if prefix != "" {
		id = prefix + "/" + id
	}
	return &TypedModel{
		id:       id,
		typ:      typ,
		topLevel: modelProperties(typ),
		source:   "model group " + prefix,
	}, nil
}

// modelProperties derives the top-level property names from the struct's
// json tags.
func modelProperties(typ reflect.Type) PropertySet {
	set := PropertySet{}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		switch tag {
		case "-":
			continue
		case "":
			set.Add(field.Name)
		default:
			set.Add(tag)
		}
	}
	return set
}

func (m *TypedModel) ID() string { return m.id }

func (m *TypedModel) Kind() Kind { return KindModel }

func (m *TypedModel) TopLevelProperties() PropertySet { return m.topLevel }

func (m *TypedModel) Source() string { return m.source }

// Validate decodes data into a fresh instance of the model type and runs its
// field constraints. Decode failures and constraint violations are FAIL
// results, not errors.
func (m *TypedModel) Validate(data any, strict bool) ([]validation.Result, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: instance is not serialisable: %w", m.id, err)
	}

	instance := reflect.New(m.typ).Interface()
	dec := json.NewDecoder(bytes.NewReader(encoded))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(instance); err != nil {
		return []validation.Result{validation.NewFail(m.id, err.Error(), nil)}, nil
	}

	err = structValidator.Struct(instance)
	if err == nil {
		return []validation.Result{validation.NewPass(m.id)}, nil
	}
	var verrs pv.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("model %s: %w", m.id, err)
	}

	results := make([]validation.Result, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("'%s' failed the '%s' constraint", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("'%s' failed the '%s=%s' constraint", fe.Namespace(), fe.Tag(), fe.Param())
		}
		results = append(results, validation.NewFail(m.id, msg, namespacePath(fe.Namespace())))
	}
	return results, nil
}

// namespacePath converts a validator namespace such as
// "Model.servers[0].address" into instance path segments, dropping the
// leading type name.
func namespacePath(namespace string) []string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	var path []string
	for _, part := range parts {
		for {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				if part != "" {
					path = append(path, part)
				}
				break
			}
			if open > 0 {
				path = append(path, part[:open])
			}
			closing := strings.IndexByte(part, ']')
			if closing < open {
				break
			}
			path = append(path, part[open+1:closing])
			part = part[closing+1:]
		}
	}
	return path
}

// BuildModelValidators expands model groups into validators.
func BuildModelValidators(groups []ModelGroup) ([]Validator, error) {
	var validators []Validator
	for _, group := range groups {
		for _, model := range group.Models {
			tm, err := NewTypedModel(model, group.Prefix)
			if err != nil {
				return nil, err
			}
			validators = append(validators, tm)
		}
	}
	return validators, nil
}
