package instance

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/networktocode/schema-enforcer/internal/config"
	"github.com/networktocode/schema-enforcer/internal/fs"
	"github.com/networktocode/schema-enforcer/internal/schema"
	"github.com/networktocode/schema-enforcer/internal/validation"
)

// Manager discovers the data files under the configured search directories
// and validates them. The schema tree itself is excluded from discovery.
type Manager struct {
	settings *config.Settings
	logger   *slog.Logger
	files    []*File
}

// NewManager discovers every data file and resolves static and tag-declared
// schema matches. Automapping is a separate, explicit step so callers control
// when the schema registry is consulted.
func NewManager(settings *config.Settings, logger *slog.Logger) (*Manager, error) {
	found, err := fs.FindFiles(
		settings.DataFileExtensions,
		settings.DataFileSearchDirectories,
		settings.DataFileExcludeFilenames,
		[]string{settings.MainDirectory},
	)
	if err != nil {
		return nil, err
	}

	m := &Manager{settings: settings, logger: logger}
	for _, ff := range found {
		file, err := NewFile(ff, settings.SchemaMapping[ff.Name])
		if err != nil {
			return nil, err
		}
		m.files = append(m.files, file)
	}
	return m, nil
}

// Files returns the discovered data files.
func (m *Manager) Files() []*File {
	return m.files
}

// AddMatchesByAutomap binds schemas to the files that no higher-precedence
// source matched, by intersecting the file's top-level keys with each
// schema's declared top-level properties.
func (m *Manager) AddMatchesByAutomap(schemas *schema.Manager) error {
	for _, file := range m.files {
		if len(file.Matches()) > 0 {
			continue
		}
		props, err := file.TopLevelProperties()
		if err != nil {
			return err
		}
		if len(props) == 0 {
			continue
		}
		var matched []string
		for _, id := range schemas.IDs() {
			v, _ := schemas.Get(id)
			if v.TopLevelProperties().Intersects(props) {
				matched = append(matched, id)
			}
		}
		file.AddMatches(matched)
	}
	return nil
}

// Validate runs every file against its matched schemas.
func (m *Manager) Validate(schemas *schema.Manager, strict bool) ([]validation.Result, error) {
	var results []validation.Result
	for _, file := range m.files {
		fileResults, err := file.Validate(schemas, strict, m.logger)
		if err != nil {
			return nil, err
		}
		results = append(results, fileResults...)
	}
	return results, nil
}

// ShowChecks writes a table of every discovered file and the schema ids it
// will be checked against.
func (m *Manager) ShowChecks(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 4, ' ', 0)
	fmt.Fprintln(tw, "Instance File\tSchema ID")
	fmt.Fprintln(tw, "-------------\t---------")
	for _, file := range m.files {
		ids := file.Matches()
		if len(ids) == 0 {
			fmt.Fprintf(tw, "%s\t\n", file.Path())
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", file.Path(), strings.Join(ids, ", "))
	}
	return tw.Flush()
}
