// Package instance discovers the data files to validate and binds each one
// to the schema ids that apply to it.
package instance

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/networktocode/schema-enforcer/internal/fs"
	"github.com/networktocode/schema-enforcer/internal/schema"
	"github.com/networktocode/schema-enforcer/internal/validation"
)

// SchemaTag is the comment keyword that binds a data file to schema ids:
//
//	# jsonschema: schemas/dns_servers,schemas/ntp
var SchemaTag = "jsonschema"

var tagPattern = regexp.MustCompile(`(?m)^#.*` + SchemaTag + `:\s*(.*)$`)

// File is one discovered data file together with the schema ids it matched.
// Matching sources are consulted in precedence order - static mapping from
// the settings file, then the in-file comment tag, then automapping - and
// the first source that yields any ids wins outright.
type File struct {
	Dir  string
	Name string

	matches []string

	mu       sync.Mutex
	data     any
	loaded   bool
	topLevel schema.PropertySet
}

// NewFile creates a File and resolves its static and tag-declared matches.
// staticMatches come from the settings schema mapping; when non-empty they
// suppress the comment tag entirely.
func NewFile(found fs.FoundFile, staticMatches []string) (*File, error) {
	f := &File{Dir: found.Dir, Name: found.Name}

	if len(staticMatches) > 0 {
		f.matches = staticMatches
		return f, nil
	}

	declared, err := f.taggedSchemaIDs()
	if err != nil {
		return nil, err
	}
	f.matches = declared
	return f, nil
}

// Path returns the full path of the data file.
func (f *File) Path() string {
	return fs.FoundFile{Dir: f.Dir, Name: f.Name}.Path()
}

// Matches returns the schema ids bound to this file so far.
func (f *File) Matches() []string {
	return f.matches
}

// AddMatches appends schema ids that are not already bound.
func (f *File) AddMatches(ids []string) {
	for _, id := range ids {
		found := false
		for _, existing := range f.matches {
			if existing == id {
				found = true
				break
			}
		}
		if !found {
			f.matches = append(f.matches, id)
		}
	}
}

// taggedSchemaIDs extracts schema ids from the comment tag, if present.
func (f *File) taggedSchemaIDs() ([]string, error) {
	content, err := os.ReadFile(f.Path())
	if err != nil {
		return nil, err
	}
	m := tagPattern.FindSubmatch(content)
	if m == nil {
		return nil, nil
	}
	var ids []string
	for _, id := range strings.Split(string(m[1]), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Data loads and caches the file content as a generic structured value.
func (f *File) Data() (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded {
		return f.data, nil
	}
	data, err := fs.LoadFile(f.Path())
	if err != nil {
		return nil, err
	}
	f.data = data
	f.loaded = true
	return data, nil
}

// TopLevelProperties returns the property set of the file content, used for
// automapping. A mapping contributes its root keys, a list of mappings the
// union of their keys, and a scalar or list of scalars the literal values.
func (f *File) TopLevelProperties() (schema.PropertySet, error) {
	data, err := f.Data()
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.topLevel != nil {
		return f.topLevel, nil
	}
	f.topLevel = extractProperties(data)
	return f.topLevel, nil
}

func extractProperties(data any) schema.PropertySet {
	set := schema.PropertySet{}
	switch v := data.(type) {
	case map[string]any:
		for k := range v {
			set.Add(k)
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				for k := range m {
					set.Add(k)
				}
			} else {
				set.Add(fmt.Sprint(item))
			}
		}
	default:
		if v != nil {
			set.Add(fmt.Sprint(v))
		}
	}
	return set
}

// Validate runs every matched schema against the file content. A matched id
// with no registered validator is logged and skipped rather than failing the
// run - the file may be shared with a repository that defines more schemas.
func (f *File) Validate(manager *schema.Manager, strict bool, logger *slog.Logger) ([]validation.Result, error) {
	var results []validation.Result
	for _, id := range f.matches {
		v, ok := manager.Get(id)
		if !ok {
			logger.Warn("schema id is not defined, skipping", "id", id, "file", f.Path())
			continue
		}
		data, err := f.Data()
		if err != nil {
			return nil, err
		}
		fileResults, err := v.Validate(data, strict)
		if err != nil {
			return nil, err
		}
		results = append(results,
			validation.Annotate(fileResults, validation.InstanceTypeFile, f.Name, f.Dir)...)
	}
	return results, nil
}
