package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networktocode/schema-enforcer/internal/config"
)

// fakeEnv satisfies fs.EnvProvider for tests.
type fakeEnv map[string]string

func (f fakeEnv) Get(key string) string {
	return f[key]
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema-enforcer.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	// No explicit path, no env var, no default file in cwd of this test run:
	// point at a file that does not exist via env to prove explicit missing
	// paths fail, then check pure defaults separately below.
	settings, err := config.Load("", fakeEnv{})
	require.NoError(t, err)

	assert.Equal(t, "schema", settings.MainDirectory)
	assert.Equal(t, filepath.Join("schema", "schemas"), settings.SchemaDir())
	assert.Equal(t, filepath.Join("schema", "validators"), settings.ValidatorDir())
	assert.Equal(t, filepath.Join("schema", "tests"), settings.TestDir())
	assert.Equal(t, []string{"./"}, settings.DataFileSearchDirectories)
	assert.True(t, settings.Automap())
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `---
main_directory: contracts
data_file_automap: false
schema_mapping:
  dns_v1.yml:
    - schemas/dns_servers
`)

	settings, err := config.Load(path, fakeEnv{})
	require.NoError(t, err)

	assert.Equal(t, "contracts", settings.MainDirectory)
	assert.False(t, settings.Automap())
	assert.Equal(t, []string{"schemas/dns_servers"}, settings.SchemaMapping["dns_v1.yml"])
	// Unset fields still get defaults.
	assert.Equal(t, filepath.Join("contracts", "schemas"), settings.SchemaDir())
}

func TestLoadFromEnvVar(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "main_directory: from_env\n")
	settings, err := config.Load("", fakeEnv{config.ConfigEnvVar: path})
	require.NoError(t, err)
	assert.Equal(t, "from_env", settings.MainDirectory)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"), fakeEnv{})
	var missingErr *config.MissingConfigError
	require.ErrorAs(t, err, &missingErr)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "main_directroy: typo\n")
	_, err := config.Load(path, fakeEnv{})
	var invalidErr *config.InvalidConfigError
	require.ErrorAs(t, err, &invalidErr)
}

func TestLoadRejectsWrongTypes(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "data_file_search_directories: not-a-list\n")
	_, err := config.Load(path, fakeEnv{})
	var invalidErr *config.InvalidConfigError
	require.ErrorAs(t, err, &invalidErr)
}
