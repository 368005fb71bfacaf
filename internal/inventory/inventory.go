// Package inventory loads host variable sets for host-oriented validation.
package inventory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	localfs "github.com/networktocode/schema-enforcer/internal/fs"
)

// Reserved variable names. These direct how a host is validated and are
// stripped from the variable set before any schema sees it.
const (
	VarSchemas = "schema_enforcer_schemas"
	VarStrict  = "schema_enforcer_strict"
	VarAutomap = "schema_enforcer_automap"
)

// Host is one inventory host: its resolved variable set after group and host
// variables are merged, minus the reserved directive variables.
type Host struct {
	Name     string
	Location string
	Vars     map[string]any
	Directives
}

// Directives are the validation controls extracted from a host's reserved
// variables.
type Directives struct {
	// Schemas are the schema ids explicitly declared for the host.
	Schemas []string
	// Strict validates the whole variable set against a single declared
	// schema, rejecting undeclared variables.
	Strict bool
	// Automap matches schemas by top-level properties when no ids are
	// declared. On unless switched off.
	Automap bool
}

// HostProvider yields the hosts to validate.
type HostProvider interface {
	Hosts() ([]Host, error)
}

// ExtractDirectives splits a raw variable set into directives and the
// remaining variables. A reserved variable of the wrong type is fatal.
func ExtractDirectives(vars map[string]any) (Directives, map[string]any, error) {
	d := Directives{Automap: true}
	cleaned := make(map[string]any, len(vars))
	for k, v := range vars {
		cleaned[k] = v
	}

	if raw, ok := cleaned[VarSchemas]; ok {
		delete(cleaned, VarSchemas)
		list, ok := raw.([]any)
		if !ok {
			return d, nil, &InvalidDirectiveError{Name: VarSchemas, Reason: "must be a list of schema ids"}
		}
		for _, item := range list {
			id, ok := item.(string)
			if !ok {
				return d, nil, &InvalidDirectiveError{Name: VarSchemas, Reason: fmt.Sprintf("entry %v is not a string", item)}
			}
			d.Schemas = append(d.Schemas, id)
		}
	}
	if raw, ok := cleaned[VarStrict]; ok {
		delete(cleaned, VarStrict)
		b, ok := raw.(bool)
		if !ok {
			return d, nil, &InvalidDirectiveError{Name: VarStrict, Reason: "must be a boolean"}
		}
		d.Strict = b
	}
	if raw, ok := cleaned[VarAutomap]; ok {
		delete(cleaned, VarAutomap)
		b, ok := raw.(bool)
		if !ok {
			return d, nil, &InvalidDirectiveError{Name: VarAutomap, Reason: "must be a boolean"}
		}
		d.Automap = b
	}
	return d, cleaned, nil
}

// Directory reads hosts from an inventory directory laid out as
//
//	<dir>/group_vars/all.yml          variables shared by every host
//	<dir>/host_vars/<name>.yml        per-host variables (or a <name>/
//	                                  directory of files, merged in order)
//
// Host variables win over group variables, key by key at the top level.
type Directory struct {
	dir string
}

// NewDirectory creates an inventory over dir.
func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

// Hosts loads every host under host_vars, sorted by name.
func (d *Directory) Hosts() ([]Host, error) {
	if _, err := os.Stat(d.dir); err != nil {
		return nil, &MissingInventoryError{Path: d.dir}
	}

	groupVars, err := d.groupVars()
	if err != nil {
		return nil, err
	}

	hostVarsDir := filepath.Join(d.dir, "host_vars")
	entries, err := os.ReadDir(hostVarsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var hosts []Host
	for _, entry := range entries {
		name, vars, location, err := d.hostVars(hostVarsDir, entry)
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}

		merged := make(map[string]any, len(groupVars)+len(vars))
		for k, v := range groupVars {
			merged[k] = v
		}
		for k, v := range vars {
			merged[k] = v
		}
		directives, cleaned, err := ExtractDirectives(merged)
		if err != nil {
			return nil, fmt.Errorf("host %s: %w", name, err)
		}
		hosts = append(hosts, Host{
			Name:       name,
			Location:   location,
			Vars:       cleaned,
			Directives: directives,
		})
	}

	slices.SortFunc(hosts, func(a, b Host) int {
		return strings.Compare(a.Name, b.Name)
	})
	return hosts, nil
}

func (d *Directory) groupVars() (map[string]any, error) {
	path := localfs.FindFile(filepath.Join(d.dir, "group_vars", "all"))
	if path == "" {
		return nil, nil
	}
	return loadVarsFile(path)
}

func (d *Directory) hostVars(dir string, entry os.DirEntry) (string, map[string]any, string, error) {
	if entry.IsDir() {
		hostDir := filepath.Join(dir, entry.Name())
		files, err := localfs.FindFiles(localfs.StructuredExtensions, []string{hostDir}, nil, nil)
		if err != nil {
			return "", nil, "", err
		}
		vars := map[string]any{}
		for _, file := range files {
			fileVars, err := loadVarsFile(file.Path())
			if err != nil {
				return "", nil, "", err
			}
			for k, v := range fileVars {
				vars[k] = v
			}
		}
		return entry.Name(), vars, hostDir, nil
	}

	if !localfs.HasExtension(entry.Name(), localfs.StructuredExtensions) {
		return "", nil, "", nil
	}
	path := filepath.Join(dir, entry.Name())
	vars, err := loadVarsFile(path)
	if err != nil {
		return "", nil, "", err
	}
	name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
	return name, vars, path, nil
}

func loadVarsFile(path string) (map[string]any, error) {
	data, err := localfs.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	vars, ok := data.(map[string]any)
	if !ok {
		return nil, &InvalidVarsFileError{Path: path}
	}
	return vars, nil
}
