package fs_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networktocode/schema-enforcer/internal/fs"
)

func TestUnmarshalNormalisesYAMLAndJSON(t *testing.T) {
	t.Parallel()

	yamlDoc := []byte("---\nntp_servers:\n  - address: 10.6.6.6\n    vrf: mgmt\ncount: 2\n")
	jsonDoc := []byte(`{"ntp_servers": [{"address": "10.6.6.6", "vrf": "mgmt"}], "count": 2}`)

	fromYAML, err := fs.Unmarshal(yamlDoc, ".yml")
	require.NoError(t, err)
	fromJSON, err := fs.Unmarshal(jsonDoc, ".json")
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)

	m, ok := fromYAML.(map[string]any)
	require.True(t, ok)
	// Numbers stay as json.Number regardless of the source format.
	assert.Equal(t, json.Number("2"), m["count"])
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.yml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))

	v, err := fs.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, v)

	_, err = fs.LoadFile(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestFindFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.yaml"), []byte("{}"), 0o600))

	assert.Equal(t, filepath.Join(dir, "data.yaml"), fs.FindFile(filepath.Join(dir, "data")))
	assert.Empty(t, fs.FindFile(filepath.Join(dir, "other")))
}

func TestFindFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustWrite := func(rel string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	}
	mustWrite("dns.yml")
	mustWrite("readme.md")
	mustWrite(".travis.yml")
	mustWrite("schema/schemas/dns.yml")
	mustWrite("nested/deep/ntp.json")

	found, err := fs.FindFiles(
		fs.StructuredExtensions,
		[]string{dir},
		[]string{".travis.yml"},
		[]string{filepath.Join(dir, "schema")},
	)
	require.NoError(t, err)

	var paths []string
	for _, f := range found {
		rel, rErr := filepath.Rel(dir, f.Path())
		require.NoError(t, rErr)
		paths = append(paths, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"dns.yml", "nested/deep/ntp.json"}, paths)
}

func TestDumpYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.yml")
	in := map[string]any{"results": []any{map[string]any{"result": "FAIL"}}}

	require.NoError(t, fs.DumpYAML(in, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(content) > 4 && string(content[:4]) == "---\n")

	out, err := fs.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDeepCopy(t *testing.T) {
	t.Parallel()

	original := map[string]any{"properties": map[string]any{"a": map[string]any{}}}
	copied, err := fs.DeepCopy(original)
	require.NoError(t, err)

	m, ok := copied.(map[string]any)
	require.True(t, ok)
	m["additionalProperties"] = false

	_, mutated := original["additionalProperties"]
	assert.False(t, mutated)
}

func TestHasExtension(t *testing.T) {
	t.Parallel()

	assert.True(t, fs.HasExtension("dns.yml", fs.StructuredExtensions))
	assert.True(t, fs.HasExtension("DNS.YAML", fs.StructuredExtensions))
	assert.False(t, fs.HasExtension("dns.txt", fs.StructuredExtensions))
}
