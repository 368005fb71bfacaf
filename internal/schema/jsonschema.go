package schema

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/networktocode/schema-enforcer/internal/fs"
	"github.com/networktocode/schema-enforcer/internal/validation"
)

// errPrinter renders jsonschema error kinds as plain English messages.
var errPrinter = message.NewPrinter(language.English)

// fileLoader resolves file:// references for the jsonschema compiler so that
// $ref values pointing at sibling documents (YAML or JSON) load from disk.
type fileLoader struct{}

func (fileLoader) Load(url string) (any, error) {
	path, ok := strings.CutPrefix(url, "file://")
	if !ok {
		return nil, fmt.Errorf("unsupported reference scheme: %s", url)
	}
	return fs.LoadFile(filepath.FromSlash(path))
}

// NewCompiler returns a jsonschema compiler configured for schema documents:
// draft-07 by default and file references resolved from disk.
func NewCompiler() *jsonschema.Compiler {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	c.AssertFormat() // format keywords are checks here, not annotations
	c.UseLoader(fileLoader{})
	return c
}

// fileURL converts a filesystem path to the canonical URL the document is
// registered under with the compiler.
func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// JSONSchema is a structural validator backed by a JSON Schema document
// loaded from a YAML or JSON file.
type JSONSchema struct {
	id       string
	path     string
	document map[string]any
	topLevel PropertySet
	compiled *jsonschema.Schema

	mu     sync.Mutex
	strict *jsonschema.Schema // compiled lazily on first strict validation
}

// NewJSONSchema loads the schema document at path and compiles it with the
// given compiler. The document must carry a string $id. A document that does
// not compile against its meta-schema is a fatal load error.
func NewJSONSchema(path string, compiler *jsonschema.Compiler) (*JSONSchema, error) {
	doc, err := fs.LoadFile(path)
	if err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, &InvalidSchemaDocumentError{Path: path, Errors: []string{"document is not an object"}}
	}
	id, ok := m["$id"].(string)
	if !ok || id == "" {
		return nil, &MissingSchemaIDError{Path: path}
	}

	url := fileURL(path)
	if err := compiler.AddResource(url, m); err != nil {
		return nil, &InvalidSchemaDocumentError{Path: path, Errors: []string{err.Error()}}
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, &InvalidSchemaDocumentError{Path: path, Errors: []string{err.Error()}}
	}

	return &JSONSchema{
		id:       id,
		path:     path,
		document: m,
		topLevel: declaredProperties(m),
		compiled: compiled,
	}, nil
}

// declaredProperties extracts the top-level property names of a schema
// document.
func declaredProperties(doc map[string]any) PropertySet {
	set := PropertySet{}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		return set
	}
	for name := range props {
		set.Add(name)
	}
	return set
}

func (s *JSONSchema) ID() string { return s.id }

func (s *JSONSchema) Kind() Kind { return KindJSONSchema }

func (s *JSONSchema) TopLevelProperties() PropertySet { return s.topLevel }

func (s *JSONSchema) Source() string { return s.path }

// Document returns the parsed, unresolved schema document.
func (s *JSONSchema) Document() map[string]any { return s.document }

// Validate checks data against the schema. Every leaf violation becomes one
// FAIL result carrying the failing instance path; a clean run yields a single
// PASS result.
func (s *JSONSchema) Validate(data any, strict bool) ([]validation.Result, error) {
	compiled := s.compiled
	if strict {
		sc, err := s.strictSchema()
		if err != nil {
			return nil, err
		}
		compiled = sc
	}

	err := compiled.Validate(data)
	if err == nil {
		return []validation.Result{validation.NewPass(s.id)}, nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}

	var results []validation.Result
	for _, leaf := range leafErrors(verr) {
		msg := leaf.ErrorKind.LocalizedString(errPrinter)
		results = append(results, validation.NewFail(s.id, msg, leaf.InstanceLocation))
	}
	return results, nil
}

// leafErrors flattens a validation error tree into its leaves. Only leaves
// carry actionable messages; interior nodes repeat the schema location.
func leafErrors(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		leaves = append(leaves, leafErrors(cause)...)
	}
	return leaves
}

// CheckValid re-validates the schema document itself against its meta-schema
// and reports the outcome as results, one per compile error.
func (s *JSONSchema) CheckValid() []validation.Result {
	compiler := NewCompiler()
	url := fileURL(s.path)
	if err := compiler.AddResource(url, s.document); err != nil {
		return annotateSchemaResults(s, []validation.Result{validation.NewFail(s.id, err.Error(), nil)})
	}
	if _, err := compiler.Compile(url); err != nil {
		return annotateSchemaResults(s, []validation.Result{validation.NewFail(s.id, err.Error(), nil)})
	}
	return annotateSchemaResults(s, []validation.Result{validation.NewPass(s.id)})
}

func annotateSchemaResults(s *JSONSchema, results []validation.Result) []validation.Result {
	dir, name := filepath.Split(s.path)
	return validation.Annotate(results, validation.InstanceTypeSchema, name, filepath.Clean(dir))
}

// strictSchema compiles the strict variant of the document, which forbids
// properties the schema does not declare. Compiled once and cached.
func (s *JSONSchema) strictSchema() (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.strict != nil {
		return s.strict, nil
	}

	doc, err := strictDocument(s.document)
	if err != nil {
		return nil, err
	}
	compiler := NewCompiler()
	// A sibling URL keeps relative references resolving from the same
	// directory as the original document.
	url := fileURL(s.path) + ".strict"
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, &InvalidSchemaDocumentError{Path: s.path, Errors: []string{err.Error()}}
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, &InvalidSchemaDocumentError{Path: s.path, Errors: []string{err.Error()}}
	}
	s.strict = compiled
	return compiled, nil
}

// strictDocument deep-copies the schema document and injects
// additionalProperties: false at the root object and into every object-typed
// items definition of a top-level array property that does not already set
// it. Nested objects further down are left alone.
func strictDocument(doc map[string]any) (map[string]any, error) {
	copied, err := fs.DeepCopy(doc)
	if err != nil {
		return nil, err
	}
	root, ok := copied.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schema document is not an object")
	}
	// The strict variant must not share an identity with the relaxed one.
	delete(root, "$id")

	if _, set := root["additionalProperties"]; !set {
		root["additionalProperties"] = false
	}
	props, ok := root["properties"].(map[string]any)
	if !ok {
		return root, nil
	}
	for _, p := range props {
		prop, ok := p.(map[string]any)
		if !ok {
			continue
		}
		items, ok := prop["items"].(map[string]any)
		if !ok {
			continue
		}
		if _, set := items["additionalProperties"]; !set {
			items["additionalProperties"] = false
		}
	}
	return root, nil
}
