// SPDX-License-Identifier: Apache-2.0

// Package reconcile drives a full reconciliation run: schema diff, gated
// schema changes, and row-level data sync.
package reconcile

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pgkit/dbsync/pkg/inspect"
	"github.com/pgkit/dbsync/pkg/prompt"
	"github.com/pgkit/dbsync/pkg/schema"
)

// Instance is the slice of the inspector surface a reconciliation run
// needs from each database. Tests substitute a recording double.
type Instance interface {
	FetchSchema(ctx context.Context) (*schema.Snapshot, error)
	CreateTable(ctx context.Context, table *schema.Table) error
	AddColumn(ctx context.Context, tableName string, column schema.Column) error
	DropTable(ctx context.Context, tableName string) error
	DropColumn(ctx context.Context, tableName, columnName string) error
	FetchKeyValues(ctx context.Context, tableName string, key []string) (inspect.ValueSet, error)
	IsColumnUnique(ctx context.Context, tableName, columnName string) (bool, error)
	FetchRows(ctx context.Context, tableName string, columns []string) ([]inspect.Row, error)
	InsertRows(ctx context.Context, tableName string, columns []string, rows []inspect.Row) (int, error)
	UpdateRows(ctx context.Context, tableName string, syncKey, columns []string, rows []inspect.Row) (int, error)
}

// Summary reports what one run did.
type Summary struct {
	TablesCreated  int
	ColumnsAdded   int
	ColumnsDropped int
	TablesDropped  int
	RowsInserted   int
	RowsUpdated    int
}

// Reconciler mutates the target database toward the reference. Additive
// schema changes apply automatically; destructive ones are gated by an
// operator prompt.
type Reconciler struct {
	ref      Instance
	target   Instance
	prompter prompt.Prompter
	logger   zerolog.Logger
}

type Option func(*Reconciler)

func WithPrompter(p prompt.Prompter) Option {
	return func(r *Reconciler) {
		r.prompter = p
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// New creates a Reconciler over a reference and a target instance.
func New(ref, target Instance, opts ...Option) *Reconciler {
	r := &Reconciler{
		ref:      ref,
		target:   target,
		prompter: prompt.Default(),
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes the reconciliation pipeline: fetch both snapshots, diff,
// apply schema changes, re-introspect the target, then sync data. Any DDL
// or non-recoverable DML error aborts the run; committed changes remain.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	logger := r.logger.With().Str("run_id", uuid.NewString()).Logger()
	logger.Info().Msg("starting schema and data reconciliation")

	refSnap, err := r.ref.FetchSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspecting reference: %w", err)
	}
	targetSnap, err := r.target.FetchSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspecting target: %w", err)
	}

	diff := schema.Diff(refSnap, targetSnap)
	summary := &Summary{}

	if err := r.applySchemaChanges(ctx, logger, diff, summary); err != nil {
		return nil, err
	}

	// The target changed shape; data sync runs against a fresh snapshot.
	targetSnap, err = r.target.FetchSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("re-introspecting target: %w", err)
	}

	if err := r.syncData(ctx, logger, refSnap, targetSnap, summary); err != nil {
		return nil, err
	}

	logger.Info().
		Int("rows_inserted", summary.RowsInserted).
		Int("rows_updated", summary.RowsUpdated).
		Msg("reconciliation finished")
	return summary, nil
}

func (r *Reconciler) applySchemaChanges(ctx context.Context, logger zerolog.Logger, diff *schema.SchemaDiff, summary *Summary) error {
	for _, table := range diff.NewTables {
		logger.Info().Str("table", table.Name).Msg("creating missing table on target")
		if err := r.target.CreateTable(ctx, table); err != nil {
			return fmt.Errorf("creating table %q: %w", table.Name, err)
		}
		summary.TablesCreated++
	}

	for _, tableName := range sortedKeys(diff.MissingColumns) {
		for _, column := range diff.MissingColumns[tableName] {
			logger.Info().Str("table", tableName).Str("column", column.Name).Msg("adding missing column on target")
			if err := r.target.AddColumn(ctx, tableName, column); err != nil {
				return fmt.Errorf("adding column %s.%s: %w", tableName, column.Name, err)
			}
			summary.ColumnsAdded++
		}
	}

	for _, tableName := range sortedKeys(diff.OrphanColumns) {
		columns := diff.OrphanColumns[tableName]
		confirmed, err := r.prompter.ConfirmDrop(columns)
		if err != nil {
			return err
		}
		if !confirmed {
			logger.Warn().Str("table", tableName).Strs("columns", columns).Msg("orphan columns kept on operator request")
			continue
		}
		for _, column := range columns {
			logger.Warn().Str("table", tableName).Str("column", column).Msg("dropping orphan column")
			if err := r.target.DropColumn(ctx, tableName, column); err != nil {
				return fmt.Errorf("dropping column %s.%s: %w", tableName, column, err)
			}
			summary.ColumnsDropped++
		}
	}

	for _, table := range diff.MissingTables {
		confirmed, err := r.prompter.ConfirmDrop([]string{table.Name})
		if err != nil {
			return err
		}
		if !confirmed {
			logger.Warn().Str("table", table.Name).Msg("target-only table kept on operator request")
			continue
		}
		logger.Warn().Str("table", table.Name).Msg("dropping target-only table")
		if err := r.target.DropTable(ctx, table.Name); err != nil {
			return fmt.Errorf("dropping table %q: %w", table.Name, err)
		}
		summary.TablesDropped++
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
