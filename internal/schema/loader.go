package schema

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	localfs "github.com/networktocode/schema-enforcer/internal/fs"
)

// definitionFile is the on-disk shape of a validator definition file: an
// optional id prefix and a list of predicate definitions.
type definitionFile struct {
	Prefix     string                `yaml:"prefix"`
	Validators []PredicateDefinition `yaml:"validators"`
}

// LoadValidatorDefinitions reads every definition file under dir and builds
// the predicate validators they declare. A missing directory simply yields no
// validators; an unparseable file or malformed definition is a fatal error.
// Duplicate ids within the directory are logged and skipped, keeping the
// first occurrence.
func LoadValidatorDefinitions(dir string, logger *slog.Logger) ([]Validator, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	files, err := localfs.FindFiles(localfs.StructuredExtensions, []string{dir}, nil, nil)
	if err != nil {
		return nil, err
	}

	var validators []Validator
	seen := map[string]string{}
	for _, file := range files {
		path := file.Path()
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &InvalidValidatorFileError{Path: path, Wrapped: err}
		}
		var def definitionFile
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, &InvalidValidatorFileError{Path: path, Wrapped: err}
		}

		for _, pd := range def.Validators {
			if def.Prefix != "" && pd.ID != "" {
				pd.ID = def.Prefix + "/" + pd.ID
			}
			p, err := NewPredicate(pd, path)
			if err != nil {
				return nil, &InvalidValidatorFileError{Path: path, Wrapped: err}
			}
			if other, dup := seen[p.ID()]; dup {
				logger.Warn("duplicate validator id skipped",
					"id", p.ID(), "file", path, "defined_in", other)
				continue
			}
			seen[p.ID()] = path
			validators = append(validators, p)
		}
	}
	return validators, nil
}
