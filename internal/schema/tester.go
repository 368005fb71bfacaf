package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/networktocode/schema-enforcer/internal/config"
	localfs "github.com/networktocode/schema-enforcer/internal/fs"
	"github.com/networktocode/schema-enforcer/internal/validation"
)

// expectedResults is the on-disk shape of an invalid-fixture results file.
type expectedResults struct {
	Results []validation.Result `yaml:"results"`
}

// Tester runs schemas against their on-disk fixtures: files under
// tests/<name>/valid must pass, and each case under tests/<name>/invalid
// must fail with exactly the recorded messages.
type Tester struct {
	manager  *Manager
	settings *config.Settings
	logger   *slog.Logger
}

// NewTester creates a Tester over the given registry.
func NewTester(manager *Manager, settings *config.Settings, logger *slog.Logger) *Tester {
	return &Tester{manager: manager, settings: settings, logger: logger}
}

// fixtureName maps a schema id to its fixture directory name: the part after
// the first slash, or the whole id when there is none.
func fixtureName(id string) string {
	if _, name, found := strings.Cut(id, "/"); found {
		return name
	}
	return id
}

func (t *Tester) fixtureDir(id string) string {
	return filepath.Join(t.settings.TestDir(), fixtureName(id))
}

// TestAll exercises every registered schema that has a fixture directory.
// Structural schemas are additionally re-checked against their meta-schema.
// Schemas without fixtures are skipped.
func (t *Tester) TestAll(strict bool) ([]validation.Result, error) {
	var results []validation.Result
	for _, id := range t.manager.IDs() {
		dir := t.fixtureDir(id)
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			t.logger.Debug("no fixtures for schema, skipping", "id", id, "dir", dir)
			continue
		}

		if js, ok := t.manager.validators[id].(*JSONSchema); ok {
			results = append(results, js.CheckValid()...)
		}

		valid, err := t.TestValid(id, strict)
		if err != nil {
			return nil, err
		}
		results = append(results, valid...)

		invalid, err := t.TestInvalid(id)
		if err != nil {
			return nil, err
		}
		results = append(results, invalid...)
	}
	return results, nil
}

// TestValid validates every file under the schema's valid fixture directory;
// each file is expected to pass cleanly.
func (t *Tester) TestValid(id string, strict bool) ([]validation.Result, error) {
	v, ok := t.manager.Get(id)
	if !ok {
		return nil, &SchemaNotFoundError{ID: id}
	}

	dir := filepath.Join(t.fixtureDir(id), "valid")
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	files, err := localfs.FindFiles(localfs.StructuredExtensions, []string{dir}, nil, nil)
	if err != nil {
		return nil, err
	}

	var results []validation.Result
	for _, file := range files {
		data, err := localfs.LoadFile(file.Path())
		if err != nil {
			return nil, err
		}
		fileResults, err := v.Validate(data, strict)
		if err != nil {
			return nil, err
		}
		results = append(results,
			validation.Annotate(fileResults, validation.InstanceTypeTest, file.Name, file.Dir)...)
	}
	return results, nil
}

// TestInvalid runs every case under the schema's invalid fixture directory
// and compares the produced failures with the recorded expectations. The
// comparison is by (outcome, message) pairs sorted by message, so expectation
// files stay stable across reordering of schema keywords.
func (t *Tester) TestInvalid(id string) ([]validation.Result, error) {
	v, ok := t.manager.Get(id)
	if !ok {
		return nil, &SchemaNotFoundError{ID: id}
	}

	var results []validation.Result
	cases, err := t.invalidCases(id)
	if err != nil {
		return nil, err
	}
	for _, c := range cases {
		if c.dataFile == "" || c.resultsFile == "" {
			t.logger.Warn("invalid fixture case is incomplete, skipping",
				"schema", id, "dir", c.dir)
			continue
		}

		data, err := localfs.LoadFile(c.dataFile)
		if err != nil {
			return nil, err
		}
		actual, err := v.Validate(data, false)
		if err != nil {
			return nil, err
		}
		expected, err := loadExpectedResults(c.resultsFile)
		if err != nil {
			return nil, err
		}

		result := validation.NewPass(id)
		if !resultsMatch(actual, expected) {
			result = validation.NewFail(id,
				fmt.Sprintf("produced results do not match those recorded in %s", c.resultsFile), nil)
		}
		annotated := validation.Annotate([]validation.Result{result},
			validation.InstanceTypeTest, filepath.Base(c.dir), filepath.Dir(c.dir))
		results = append(results, annotated...)
	}
	return results, nil
}

// GenerateInvalidExpected regenerates the results file of every invalid case
// of the schema from the failures the schema currently produces. A case that
// validates cleanly is an error: an invalid fixture must fail.
func (t *Tester) GenerateInvalidExpected(id string) error {
	v, ok := t.manager.Get(id)
	if !ok {
		return &SchemaNotFoundError{ID: id}
	}

	cases, err := t.invalidCases(id)
	if err != nil {
		return err
	}
	for _, c := range cases {
		if c.dataFile == "" {
			t.logger.Warn("invalid fixture case has no data file, skipping",
				"schema", id, "dir", c.dir)
			continue
		}
		data, err := localfs.LoadFile(c.dataFile)
		if err != nil {
			return err
		}
		results, err := v.Validate(data, false)
		if err != nil {
			return err
		}
		if validation.AllPassed(results) {
			return &FixtureExpectedToFailError{DataFile: c.dataFile}
		}

		out := filepath.Join(c.dir, "results.yml")
		if err := localfs.DumpYAML(expectedResults{Results: results}, out); err != nil {
			return err
		}
		t.logger.Info("recorded expected results", "schema", id, "file", out)
	}
	return nil
}

type invalidCase struct {
	dir         string
	dataFile    string
	resultsFile string
}

func (t *Tester) invalidCases(id string) ([]invalidCase, error) {
	dir := filepath.Join(t.fixtureDir(id), "invalid")
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cases []invalidCase
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		caseDir := filepath.Join(dir, entry.Name())
		cases = append(cases, invalidCase{
			dir:         caseDir,
			dataFile:    localfs.FindFile(filepath.Join(caseDir, "data")),
			resultsFile: localfs.FindFile(filepath.Join(caseDir, "results")),
		})
	}
	return cases, nil
}

func loadExpectedResults(path string) ([]validation.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InvalidExpectedResultsError{Path: path, Wrapped: err}
	}
	var expected expectedResults
	if err := yaml.Unmarshal(data, &expected); err != nil {
		return nil, &InvalidExpectedResultsError{Path: path, Wrapped: err}
	}
	for i := range expected.Results {
		if err := expected.Results[i].Validate(); err != nil {
			return nil, &InvalidExpectedResultsError{Path: path, Wrapped: err}
		}
	}
	return expected.Results, nil
}

// resultsMatch compares two result sets on (outcome, message) pairs only,
// ignoring annotation fields, ordered by message.
func resultsMatch(actual, expected []validation.Result) bool {
	type pair struct {
		outcome validation.Outcome
		message string
	}
	project := func(results []validation.Result) []pair {
		pairs := make([]pair, 0, len(results))
		for _, r := range results {
			pairs = append(pairs, pair{outcome: r.Result, message: r.Message})
		}
		slices.SortFunc(pairs, func(a, b pair) int {
			return strings.Compare(a.message, b.message)
		})
		return pairs
	}
	return slices.Equal(project(actual), project(expected))
}
