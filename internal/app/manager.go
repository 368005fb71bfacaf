package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/singleflight"

	"github.com/networktocode/schema-enforcer/internal/config"
	"github.com/networktocode/schema-enforcer/internal/instance"
	"github.com/networktocode/schema-enforcer/internal/inventory"
	"github.com/networktocode/schema-enforcer/internal/report"
	"github.com/networktocode/schema-enforcer/internal/schema"
	"github.com/networktocode/schema-enforcer/internal/validation"
)

// ValidateOptions controls a data-file validation run.
type ValidateOptions struct {
	Strict     bool
	ShowPass   bool
	ShowChecks bool
	Format     string
	UseColour  bool
}

// HostOptions controls a host validation run.
type HostOptions struct {
	Inventory  string
	Host       string
	ShowPass   bool
	ShowChecks bool
	Format     string
	UseColour  bool
}

// CheckOptions controls a schema self-test run.
type CheckOptions struct {
	Strict    bool
	ShowPass  bool
	Format    string
	UseColour bool
}

// Manager defines the business logic behind each command.
type Manager interface {
	ValidateData(ctx context.Context, opts ValidateOptions) error
	WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error
	ValidateHosts(ctx context.Context, opts HostOptions) error
	CheckSchemas(ctx context.Context, opts CheckOptions) error
	ListSchemas(w io.Writer) error
	DumpSchemas(w io.Writer, id string) error
	GenerateInvalid(ctx context.Context, id string) error
}

// Ensure the interface is satisfied.
var _ Manager = (*LazyManager)(nil)

// LazyManager acts as a placeholder for a real Manager implementation,
// allowing for deferred initialization of dependencies.
type LazyManager struct {
	inner Manager
}

func (l *LazyManager) SetInner(m Manager) {
	l.inner = m
}

// HasInner returns true if the inner manager has been set.
// This is used by PersistentPreRunE to skip initialization if already
// configured (e.g., in tests).
func (l *LazyManager) HasInner() bool {
	return l.inner != nil
}

func (l *LazyManager) check() Manager {
	if l.inner == nil {
		panic("LazyManager accessed before initialization; check command wiring.")
	}
	return l.inner
}

func (l *LazyManager) ValidateData(ctx context.Context, opts ValidateOptions) error {
	return l.check().ValidateData(ctx, opts)
}

func (l *LazyManager) WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error {
	return l.check().WatchValidation(ctx, opts, readyChan)
}

func (l *LazyManager) ValidateHosts(ctx context.Context, opts HostOptions) error {
	return l.check().ValidateHosts(ctx, opts)
}

func (l *LazyManager) CheckSchemas(ctx context.Context, opts CheckOptions) error {
	return l.check().CheckSchemas(ctx, opts)
}

func (l *LazyManager) ListSchemas(w io.Writer) error {
	return l.check().ListSchemas(w)
}

func (l *LazyManager) DumpSchemas(w io.Writer, id string) error {
	return l.check().DumpSchemas(w, id)
}

func (l *LazyManager) GenerateInvalid(ctx context.Context, id string) error {
	return l.check().GenerateInvalid(ctx, id)
}

// Ensure the interface is satisfied.
var _ Manager = (*CLIManager)(nil)

// CLIManager is the concrete implementation of the Manager interface.
type CLIManager struct {
	logger         *slog.Logger
	settings       *config.Settings
	modelGroups    []schema.ModelGroup
	reporterWriter io.Writer

	// revalidate collapses overlapping watch-triggered runs.
	revalidate singleflight.Group
}

func NewCLIManager(l *slog.Logger, settings *config.Settings, groups ...schema.ModelGroup) *CLIManager {
	return &CLIManager{
		logger:         l,
		settings:       settings,
		modelGroups:    groups,
		reporterWriter: os.Stdout,
	}
}

// schemas builds a fresh schema registry from disk. Each run reloads so that
// watch mode always validates against current schema content.
func (m *CLIManager) schemas() (*schema.Manager, error) {
	return schema.NewManager(m.settings, m.logger, m.modelGroups...)
}

func (m *CLIManager) reporter(format string, showPass, useColour bool) report.Reporter {
	switch format {
	case "json":
		return &report.JSONReporter{ShowPass: showPass}
	default:
		return &report.TextReporter{ShowPass: showPass, UseColour: useColour}
	}
}

// report writes the results and converts failures into the sentinel error
// the CLI maps to its exit code.
func (m *CLIManager) report(results []validation.Result, format string, showPass, useColour bool) error {
	if err := m.reporter(format, showPass, useColour).Write(m.reporterWriter, results); err != nil {
		return err
	}
	if !validation.AllPassed(results) {
		return ErrChecksFailed
	}
	return nil
}

// ValidateData validates every discovered data file against its matched
// schemas.
func (m *CLIManager) ValidateData(_ context.Context, opts ValidateOptions) error {
	m.logger.Debug("validating data files", "strict", opts.Strict, "format", opts.Format)

	schemas, err := m.schemas()
	if err != nil {
		return err
	}
	instances, err := instance.NewManager(m.settings, m.logger)
	if err != nil {
		return err
	}
	if m.settings.Automap() {
		if err := instances.AddMatchesByAutomap(schemas); err != nil {
			return err
		}
	}

	if opts.ShowChecks {
		return instances.ShowChecks(m.reporterWriter)
	}

	results, err := instances.Validate(schemas, opts.Strict)
	if err != nil {
		return err
	}
	return m.report(results, opts.Format, opts.ShowPass, opts.UseColour)
}

// WatchValidation validates once, then revalidates whenever a schema or data
// file changes. Pass a non-nil readyChan to learn when the watcher is
// listening. Validation failures do not stop the watch; only setup errors do.
func (m *CLIManager) WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error {
	runOnce := func() {
		_, err, _ := m.revalidate.Do("validate", func() (any, error) {
			return nil, m.ValidateData(ctx, opts)
		})
		if err != nil && !errors.Is(err, ErrChecksFailed) {
			m.logger.Error("Validation failed", "error", err)
		}
	}

	runOnce()

	roots := append([]string{m.settings.MainDirectory}, m.settings.DataFileSearchDirectories...)
	watcher := schema.NewWatcher(roots, m.settings.DataFileExtensions, m.logger)

	// Forward watcher Ready signal if caller wants notification
	if readyChan != nil {
		go func() {
			<-watcher.Ready
			readyChan <- struct{}{}
		}()
	}

	return watcher.Watch(ctx, func(event schema.WatchEvent) {
		m.logger.Info("Change detected, revalidating", "path", event.Path)
		runOnce()
	})
}

// ValidateHosts validates every host from the configured inventory.
func (m *CLIManager) ValidateHosts(_ context.Context, opts HostOptions) error {
	m.logger.Debug("validating hosts", "inventory", opts.Inventory, "host", opts.Host)

	dir := opts.Inventory
	if dir == "" {
		dir = m.settings.Inventory
	}
	if dir == "" {
		return &MissingInventoryPathError{}
	}
	provider := inventory.NewDirectory(dir)

	schemas, err := m.schemas()
	if err != nil {
		return err
	}

	if opts.ShowChecks {
		return instance.ShowHostChecks(m.reporterWriter, provider, schemas)
	}

	results, err := instance.ValidateHosts(provider, schemas, opts.Host, m.logger)
	if err != nil {
		return err
	}
	return m.report(results, opts.Format, opts.ShowPass, opts.UseColour)
}

// CheckSchemas runs every schema against its fixtures.
func (m *CLIManager) CheckSchemas(_ context.Context, opts CheckOptions) error {
	m.logger.Debug("checking schemas", "strict", opts.Strict)

	schemas, err := m.schemas()
	if err != nil {
		return err
	}
	tester := schema.NewTester(schemas, m.settings, m.logger)
	results, err := tester.TestAll(opts.Strict)
	if err != nil {
		return err
	}
	return m.report(results, opts.Format, opts.ShowPass, opts.UseColour)
}

// ListSchemas writes a table of every registered schema.
func (m *CLIManager) ListSchemas(w io.Writer) error {
	schemas, err := m.schemas()
	if err != nil {
		return err
	}
	return writeSchemaList(w, schemas)
}

// DumpSchemas writes one or all structural schema documents,
// reference-resolved, as YAML.
func (m *CLIManager) DumpSchemas(w io.Writer, id string) error {
	schemas, err := m.schemas()
	if err != nil {
		return err
	}
	return schemas.Dump(w, id)
}

// GenerateInvalid records the expected failures of the invalid fixtures for
// one schema, or for every schema when id is empty.
func (m *CLIManager) GenerateInvalid(_ context.Context, id string) error {
	schemas, err := m.schemas()
	if err != nil {
		return err
	}
	tester := schema.NewTester(schemas, m.settings, m.logger)

	ids := []string{id}
	if id == "" {
		ids = schemas.IDs()
	}
	for _, sid := range ids {
		if err := tester.GenerateInvalidExpected(sid); err != nil {
			return err
		}
	}
	return nil
}
