package schema

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/networktocode/schema-enforcer/internal/config"
	"github.com/networktocode/schema-enforcer/internal/fs"
)

// Manager owns every loaded validator, keyed by schema id. Structural schema
// documents are loaded from the schema directory, predicate validators from
// the validator directory, and typed models from the groups registered at
// construction. The registry is immutable once built.
type Manager struct {
	settings   *config.Settings
	logger     *slog.Logger
	validators map[string]Validator
	ids        []string
}

// NewManager discovers and loads every validator. Any structural schema that
// fails to load - unreadable, missing $id, duplicate $id, or invalid against
// its meta-schema - aborts the whole load. Predicate and model validators
// whose id collides with an already-registered one are logged and skipped.
func NewManager(settings *config.Settings, logger *slog.Logger, groups ...ModelGroup) (*Manager, error) {
	m := &Manager{
		settings:   settings,
		logger:     logger,
		validators: map[string]Validator{},
	}

	if err := m.loadJSONSchemas(); err != nil {
		return nil, err
	}

	predicates, err := LoadValidatorDefinitions(settings.ValidatorDir(), logger)
	if err != nil {
		return nil, err
	}
	m.addSkippingDuplicates(predicates)

	models, err := BuildModelValidators(groups)
	if err != nil {
		return nil, err
	}
	m.addSkippingDuplicates(models)

	m.ids = make([]string, 0, len(m.validators))
	for id := range m.validators {
		m.ids = append(m.ids, id)
	}
	slices.Sort(m.ids)
	return m, nil
}

func (m *Manager) loadJSONSchemas() error {
	files, err := fs.FindFiles(
		fs.StructuredExtensions,
		[]string{m.settings.SchemaDir()},
		m.settings.SchemaFileExcludeFilenames,
		nil,
	)
	if err != nil {
		return err
	}

	compiler := NewCompiler()
	for _, file := range files {
		js, err := NewJSONSchema(file.Path(), compiler)
		if err != nil {
			return err
		}
		if other, dup := m.validators[js.ID()]; dup {
			return &DuplicateSchemaIDError{ID: js.ID(), Path: file.Path(), Other: other.Source()}
		}
		m.validators[js.ID()] = js
	}
	return nil
}

func (m *Manager) addSkippingDuplicates(validators []Validator) {
	for _, v := range validators {
		if other, dup := m.validators[v.ID()]; dup {
			m.logger.Warn("validator id already registered, skipping",
				"id", v.ID(), "source", v.Source(), "registered_by", other.Source())
			continue
		}
		m.validators[v.ID()] = v
	}
}

// Get returns the validator registered under id.
func (m *Manager) Get(id string) (Validator, bool) {
	v, ok := m.validators[id]
	return v, ok
}

// IDs returns every registered schema id in lexical order.
func (m *Manager) IDs() []string {
	return slices.Clone(m.ids)
}

// Len returns the number of registered validators.
func (m *Manager) Len() int {
	return len(m.validators)
}

// ValidateSchemasExist confirms that every declared id resolves to a
// registered validator, failing fast on the first unknown id.
func (m *Manager) ValidateSchemasExist(ids []string) error {
	for _, id := range ids {
		if _, ok := m.validators[id]; !ok {
			return &SchemaNotDefinedError{ID: id}
		}
	}
	return nil
}

// Dump writes the reference-resolved document of the schema with the given
// id, or of every structural schema when id is empty, as YAML to w.
func (m *Manager) Dump(w io.Writer, id string) error {
	ids := m.ids
	if id != "" {
		if _, ok := m.validators[id]; !ok {
			return &SchemaNotFoundError{ID: id}
		}
		ids = []string{id}
	}

	for _, sid := range ids {
		js, ok := m.validators[sid].(*JSONSchema)
		if !ok {
			if id != "" {
				return fmt.Errorf("schema %s is not a JSON Schema document", sid)
			}
			continue
		}
		resolved, err := resolveRefs(js)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "---\n# %s\n", sid); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resolved); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return nil
}
