// Package config loads and validates the schema-enforcer settings file.
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	localfs "github.com/networktocode/schema-enforcer/internal/fs"
)

// ConfigFile is the default name of the settings file, looked up in the
// working directory unless overridden on the command line or by ConfigEnvVar.
const ConfigFile = "schema-enforcer.yml"

// ConfigEnvVar names an environment variable which, if set, points at the
// settings file to load.
const ConfigEnvVar = "SCHEMA_ENFORCER_CONFIG"

// Settings holds every tunable of a run. Each field type is enforced when the
// file is decoded; a wrong type is a fatal configuration error.
type Settings struct {
	// Directory layout. Schema definitions, validator definitions and schema
	// test fixtures all live under MainDirectory.
	MainDirectory      string `yaml:"main_directory"`
	SchemaDirectory    string `yaml:"schema_directory"`
	ValidatorDirectory string `yaml:"validator_directory"`
	TestDirectory      string `yaml:"test_directory"`

	SchemaFileExcludeFilenames []string `yaml:"schema_file_exclude_filenames"`

	// Instance file discovery.
	DataFileSearchDirectories []string `yaml:"data_file_search_directories"`
	DataFileExtensions        []string `yaml:"data_file_extensions"`
	DataFileExcludeFilenames  []string `yaml:"data_file_exclude_filenames"`
	DataFileAutomap           *bool    `yaml:"data_file_automap"`

	// Static filename -> schema id mapping. Lowest-effort, highest-precedence
	// way to bind a data file to its schemas.
	SchemaMapping map[string][]string `yaml:"schema_mapping"`

	// Inventory is the directory holding host variable files for host-oriented
	// validation. Optional.
	Inventory string `yaml:"inventory"`
}

// SchemaDir returns the directory scanned for schema definition documents.
func (s *Settings) SchemaDir() string {
	return filepath.Join(s.MainDirectory, s.SchemaDirectory)
}

// ValidatorDir returns the directory scanned for validator definition files.
func (s *Settings) ValidatorDir() string {
	return filepath.Join(s.MainDirectory, s.ValidatorDirectory)
}

// TestDir returns the root directory of the schema self-test fixtures.
func (s *Settings) TestDir() string {
	return filepath.Join(s.MainDirectory, s.TestDirectory)
}

// Automap reports whether automapping is enabled. It defaults to true when
// the setting is absent from the file.
func (s *Settings) Automap() bool {
	return s.DataFileAutomap == nil || *s.DataFileAutomap
}

// Load reads the settings file at path. If path is empty, the environment
// variable and then the default filename are tried; a missing default file is
// not an error and yields the default settings.
func Load(path string, envProvider localfs.EnvProvider) (*Settings, error) {
	explicit := path != ""
	if !explicit && envProvider != nil {
		if envPath := envProvider.Get(ConfigEnvVar); envPath != "" {
			path = envPath
			explicit = true
		}
	}
	if path == "" {
		path = ConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return withDefaults(&Settings{}), nil
		}
		return nil, &MissingConfigError{Path: path}
	}

	settings := &Settings{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if dErr := dec.Decode(settings); dErr != nil {
		return nil, &InvalidConfigError{Path: path, Wrapped: dErr}
	}

	return withDefaults(settings), nil
}

// withDefaults fills in the defaults for any unset field.
func withDefaults(s *Settings) *Settings {
	if s.MainDirectory == "" {
		s.MainDirectory = "schema"
	}
	if s.SchemaDirectory == "" {
		s.SchemaDirectory = "schemas"
	}
	if s.ValidatorDirectory == "" {
		s.ValidatorDirectory = "validators"
	}
	if s.TestDirectory == "" {
		s.TestDirectory = "tests"
	}
	if s.DataFileSearchDirectories == nil {
		s.DataFileSearchDirectories = []string{"./"}
	}
	if s.DataFileExtensions == nil {
		s.DataFileExtensions = localfs.StructuredExtensions
	}
	if s.DataFileExcludeFilenames == nil {
		s.DataFileExcludeFilenames = []string{ConfigFile, ".yamllint.yml", ".travis.yml"}
	}
	if s.SchemaMapping == nil {
		s.SchemaMapping = map[string][]string{}
	}
	return s
}
