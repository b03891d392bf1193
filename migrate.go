package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
)

// TableReport is the outcome of migrating one table.
type TableReport struct {
	Name        string
	Columns     []string
	ParseIssues []ParseIssue
	Indexes     []IndexResult
	Transfer    *TransferReport // nil when data was not transferred
	Err         error           // table-level failure; the run continued
}

// MigrationReport aggregates the table reports of one run.
type MigrationReport struct {
	Tables   []TableReport
	Duration time.Duration
}

func (r *MigrationReport) RowsInserted() int {
	n := 0
	for _, t := range r.Tables {
		if t.Transfer != nil {
			n += t.Transfer.RowsInserted
		}
	}
	return n
}

func (r *MigrationReport) FailedBatches() int {
	n := 0
	for _, t := range r.Tables {
		if t.Transfer != nil {
			n += len(t.Transfer.FailedBatches())
		}
	}
	return n
}

func (r *MigrationReport) FailedTables() []TableReport {
	var failed []TableReport
	for _, t := range r.Tables {
		if t.Err != nil {
			failed = append(failed, t)
		}
	}
	return failed
}

// Migrator copies tables from a source catalog into a target database, one
// table at a time.
type Migrator struct {
	cfg     *MigrationConfig
	source  Catalog
	target  Executor
	dialect Dialect
	log     *logrus.Entry
	metrics *migrationMetrics
}

func newMigrator(cfg *MigrationConfig, source Catalog, target Executor, d Dialect, log *logrus.Entry, metrics *migrationMetrics) *Migrator {
	return &Migrator{
		cfg:     cfg,
		source:  source,
		target:  target,
		dialect: d,
		log:     log,
		metrics: metrics,
	}
}

// Run migrates every selected table. Only catalog and hook failures and
// cancellation are returned; table, index and batch failures are logged and
// reported. An interrupted run returns the tables migrated so far.
func (m *Migrator) Run(ctx context.Context) (*MigrationReport, error) {
	start := time.Now()

	all, err := m.source.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	var tables []string
	for _, name := range all {
		if m.cfg.tableSelected(name) {
			tables = append(tables, name)
		}
	}
	for _, want := range m.cfg.Tables {
		if !slices.Contains(all, want) {
			m.log.Warnf("requested table %s not found in source", want)
		}
	}
	m.log.Infof("tables found: %v", tables)

	objs, err := m.source.SourceObjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspect source objects: %w", err)
	}
	for _, w := range sourceObjectWarnings(objs) {
		m.log.Warn(w)
	}

	if !m.cfg.SchemaOnly {
		if err := runHooks(ctx, m.target, m.cfg, m.cfg.Hooks.BeforeData, "before_data", m.log); err != nil {
			return nil, err
		}
	}

	report := &MigrationReport{}
	for _, name := range tables {
		if err := ctx.Err(); err != nil {
			return report, m.interrupted(report, err)
		}
		tr := m.migrateTable(ctx, name)
		m.metrics.observeTable(tr)
		report.Tables = append(report.Tables, tr)
	}
	if err := ctx.Err(); err != nil {
		return report, m.interrupted(report, err)
	}

	if !m.cfg.SchemaOnly {
		if err := runHooks(ctx, m.target, m.cfg, m.cfg.Hooks.AfterData, "after_data", m.log); err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(start)
	m.log.Infof("migration complete: %d tables (%d failed), %d rows inserted, %d failed batches in %s",
		len(report.Tables), len(report.FailedTables()), report.RowsInserted(), report.FailedBatches(),
		report.Duration.Round(time.Millisecond))
	return report, nil
}

func (m *Migrator) interrupted(report *MigrationReport, err error) error {
	m.log.Warnf("migration interrupted after %d of the selected tables", len(report.Tables))
	return fmt.Errorf("migration interrupted: %w", err)
}

// migrateTable translates, applies and transfers one table.
func (m *Migrator) migrateTable(ctx context.Context, name string) TableReport {
	log := m.log.WithField("table", name)
	rep := TableReport{Name: name}
	fail := func(err error) TableReport {
		rep.Err = err
		log.Errorf("table %s: %v", name, err)
		return rep
	}

	createSQL, err := m.source.TableSQL(ctx, name)
	if err != nil {
		return fail(fmt.Errorf("read definition: %w", err))
	}

	parsed := parseColumns(createSQL)
	rep.ParseIssues = parsed.Issues
	for _, issue := range parsed.Issues {
		log.Warnf("could not parse column definition of %s: %s", name, issue)
	}
	if len(parsed.Issues) > 0 && m.cfg.OnParseError == "fail" {
		return fail(fmt.Errorf("%d column clause(s) could not be parsed", len(parsed.Issues)))
	}

	for _, c := range parsed.Constraints {
		log.Debugf("table constraint not carried over: %s", c)
	}

	table := describeTable(name, parsed)
	rep.Columns = table.ColumnNames()
	log.Infof("columns for %s: %v", name, rep.Columns)
	for _, w := range collectTypeLossWarnings(table) {
		log.Debugf("type detail dropped: %s", w)
	}
	for _, w := range collectGeneratedColumnWarnings(table) {
		log.Warn(w)
	}
	for _, w := range collectCollationWarnings(table, m.dialect) {
		log.Warn(w)
	}

	if !m.cfg.DataOnly {
		defs, err := m.source.IndexDefinitions(ctx, name)
		if err != nil {
			return fail(fmt.Errorf("read indexes: %w", err))
		}
		var unparsed []IndexResult
		for _, def := range defs {
			idx, err := parseIndex(def.Name, def.SQL)
			if err != nil {
				log.Warnf("skipping index %s: %v", def.Name, err)
				unparsed = append(unparsed, IndexResult{Name: def.Name, Statement: def.SQL, Skipped: true, Err: err})
				continue
			}
			table.Indexes = append(table.Indexes, idx)
		}

		results, err := applySchema(ctx, m.target, translateTable(table, m.dialect), log)
		rep.Indexes = append(unparsed, results...)
		for _, r := range rep.Indexes {
			m.metrics.observeIndex(r)
		}
		if err != nil {
			return fail(err)
		}
	}

	if m.cfg.SchemaOnly {
		return rep
	}

	transfer := transferTable(ctx, m.source, m.target, m.dialect, table, m.cfg.BatchSize, log, m.metrics)
	rep.Transfer = &transfer
	if transfer.ReadErr != nil {
		return fail(transfer.ReadErr)
	}
	if !transfer.Complete() {
		log.Warnf("table %s incomplete: %d of %d rows inserted, %d failed batches",
			name, transfer.RowsInserted, transfer.RowsRead, len(transfer.FailedBatches()))
	}
	return rep
}

// describeTable builds the table descriptor from parsed columns, mapping
// each source type to its target type.
func describeTable(name string, parsed ParseResult) TableDescriptor {
	t := TableDescriptor{Name: name, Columns: make([]ColumnDescriptor, len(parsed.Columns))}
	for i, c := range parsed.Columns {
		c.TargetType = mapType(c.SourceType)
		t.Columns[i] = c
	}
	return t
}
