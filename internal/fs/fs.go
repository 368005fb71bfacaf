// Package fs provides file discovery and structured-data loading helpers.
package fs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StructuredExtensions are the file extensions recognised as structured data.
var StructuredExtensions = []string{".json", ".yaml", ".yml"}

// LoadFile loads a YAML or JSON file into a generic value.
// YAML content is normalised through a JSON round trip so that every caller
// sees the same shapes: map[string]any, []any, json.Number, string, bool, nil.
func LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, filepath.Ext(path))
}

// Unmarshal decodes structured content based on the file extension.
func Unmarshal(data []byte, ext string) (any, error) {
	if ext == ".json" {
		return decodeJSON(data)
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	// Round trip via JSON to normalise integer and key types.
	j, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeJSON(j)
}

// decodeJSON decodes JSON keeping numbers as json.Number, which is the
// representation the structural validator expects.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// FindFile looks for a structured data file with the given base path and any
// recognised extension. It returns the full path of the first match, or ""
// if none exists. E.g. FindFile("/x/data") finds "/x/data.yml".
func FindFile(base string) string {
	for _, ext := range []string{".yml", ".yaml", ".json"} {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// DumpYAML writes v to path as a YAML document with an explicit start marker.
func DumpYAML(v any, path string) error {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// DeepCopy clones a generic structured value through a JSON round trip.
func DeepCopy(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeJSON(data)
}

// HasExtension reports whether name carries one of the given extensions.
func HasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// CanonicalPath returns the canonical, absolute path by resolving symlinks.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
