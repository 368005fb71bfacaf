package inventory_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networktocode/schema-enforcer/internal/inventory"
)

func writeInventoryFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDirectoryHosts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInventoryFile(t, dir, "group_vars/all.yml", "domain: example.com\nntp_authentication: false\n")
	writeInventoryFile(t, dir, "host_vars/rt1.yml", "ntp_authentication: true\n")
	writeInventoryFile(t, dir, "host_vars/rt2/main.yml", "dns_servers:\n  - address: 10.1.1.1\n")

	hosts, err := inventory.NewDirectory(dir).Hosts()
	require.NoError(t, err)
	require.Len(t, hosts, 2)

	rt1, rt2 := hosts[0], hosts[1]
	assert.Equal(t, "rt1", rt1.Name)
	assert.Equal(t, "rt2", rt2.Name)

	// Host variables win over group variables; untouched group variables
	// carry through.
	assert.Equal(t, true, rt1.Vars["ntp_authentication"])
	assert.Equal(t, "example.com", rt1.Vars["domain"])
	assert.Equal(t, false, rt2.Vars["ntp_authentication"])
	assert.NotNil(t, rt2.Vars["dns_servers"])
}

func TestDirectoryHostsExtractsDirectives(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInventoryFile(t, dir, "host_vars/rt1.yml", `---
schema_enforcer_schemas:
  - schemas/dns_servers
schema_enforcer_strict: true
schema_enforcer_automap: false
dns_servers:
  - address: 10.1.1.1
`)

	hosts, err := inventory.NewDirectory(dir).Hosts()
	require.NoError(t, err)
	require.Len(t, hosts, 1)

	h := hosts[0]
	assert.Equal(t, []string{"schemas/dns_servers"}, h.Schemas)
	assert.True(t, h.Strict)
	assert.False(t, h.Automap)

	// Reserved variables never reach the schemas.
	for _, reserved := range []string{
		inventory.VarSchemas, inventory.VarStrict, inventory.VarAutomap,
	} {
		_, present := h.Vars[reserved]
		assert.False(t, present, reserved)
	}
	assert.Contains(t, h.Vars, "dns_servers")
}

func TestDirectoryMissing(t *testing.T) {
	t.Parallel()

	_, err := inventory.NewDirectory(filepath.Join(t.TempDir(), "nope")).Hosts()
	var missingErr *inventory.MissingInventoryError
	require.ErrorAs(t, err, &missingErr)
}

func TestExtractDirectives(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		d, vars, err := inventory.ExtractDirectives(map[string]any{"a": json.Number("1")})
		require.NoError(t, err)
		assert.Empty(t, d.Schemas)
		assert.False(t, d.Strict)
		assert.True(t, d.Automap)
		assert.Equal(t, map[string]any{"a": json.Number("1")}, vars)
	})

	t.Run("wrong schema list type", func(t *testing.T) {
		t.Parallel()
		_, _, err := inventory.ExtractDirectives(map[string]any{
			inventory.VarSchemas: "schemas/dns_servers",
		})
		var dirErr *inventory.InvalidDirectiveError
		require.ErrorAs(t, err, &dirErr)
	})

	t.Run("wrong strict type", func(t *testing.T) {
		t.Parallel()
		_, _, err := inventory.ExtractDirectives(map[string]any{
			inventory.VarStrict: "yes",
		})
		var dirErr *inventory.InvalidDirectiveError
		require.ErrorAs(t, err, &dirErr)
	})
}
