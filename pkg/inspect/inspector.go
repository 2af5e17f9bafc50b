// SPDX-License-Identifier: Apache-2.0

// Package inspect holds every interaction with one PostgreSQL instance:
// schema introspection, DDL, row fetches, and DML with NOT NULL conflict
// recovery.
package inspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/pgkit/dbsync/pkg/db"
	"github.com/pgkit/dbsync/pkg/prompt"
	"github.com/pgkit/dbsync/pkg/schema"
)

const notNullViolationErrorCode pq.ErrorCode = "23502"

// ErrMissingColumnInfo is returned when a NOT NULL violation carries no
// column name, which makes the conflict unresolvable.
var ErrMissingColumnInfo = errors.New("not null violation reports no column name")

type columnRef struct {
	table  string
	column string
}

// Inspector performs all database I/O against a single PostgreSQL
// instance. Each operation opens a fresh connection; the FetchSchema
// catalog queries share one. The inspector memoizes operator decisions for
// NOT NULL conflicts so each (table, column) pair prompts at most once per
// inspector lifetime.
type Inspector struct {
	dsn      string
	prompter prompt.Prompter
	logger   zerolog.Logger

	// operator decisions for NOT NULL conflicts, keyed by column
	decisions map[columnRef]prompt.NotNullDecision
}

type Option func(*Inspector)

// WithPrompter injects the interaction port consulted by the NULL-conflict
// protocol.
func WithPrompter(p prompt.Prompter) Option {
	return func(i *Inspector) {
		i.prompter = p
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// New creates an Inspector for the database behind dsn. No connection is
// opened until the first operation.
func New(dsn string, opts ...Option) *Inspector {
	i := &Inspector{
		dsn:       dsn,
		prompter:  prompt.Default(),
		logger:    zerolog.Nop(),
		decisions: make(map[columnRef]prompt.NotNullDecision),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

func (i *Inspector) open(ctx context.Context) (*db.RDB, error) {
	conn, err := db.Open(ctx, i.dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return conn, nil
}

// FetchSchema introspects the public schema into a snapshot. Tables with
// zero columns do not appear.
func (i *Inspector) FetchSchema(ctx context.Context) (*schema.Snapshot, error) {
	conn, err := i.open(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	columnsByTable := make(map[string][]schema.Column)
	var tableOrder []string

	rows, err := conn.QueryContext(ctx, columnsQuery)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	for rows.Next() {
		var (
			tableName  string
			column     schema.Column
			defaultExp *string
		)
		if err := rows.Scan(&tableName, &column.Name, &column.Type, &column.Nullable, &defaultExp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning column row: %w", err)
		}
		column.Default = defaultExp
		if _, seen := columnsByTable[tableName]; !seen {
			tableOrder = append(tableOrder, tableName)
		}
		columnsByTable[tableName] = append(columnsByTable[tableName], column)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("reading column rows: %w", err)
	}
	rows.Close()

	primaryKeys := make(map[string][]string)
	pkRows, err := conn.QueryContext(ctx, primaryKeyQuery)
	if err != nil {
		return nil, fmt.Errorf("querying primary keys: %w", err)
	}
	defer pkRows.Close()
	for pkRows.Next() {
		var tableName, columnName string
		var position int
		if err := pkRows.Scan(&tableName, &columnName, &position); err != nil {
			return nil, fmt.Errorf("scanning primary key row: %w", err)
		}
		primaryKeys[tableName] = append(primaryKeys[tableName], columnName)
	}
	if err := pkRows.Err(); err != nil {
		return nil, fmt.Errorf("reading primary key rows: %w", err)
	}

	snapshot := schema.NewSnapshot()
	for _, name := range tableOrder {
		snapshot.AddTable(&schema.Table{
			Name:       name,
			Columns:    columnsByTable[name],
			PrimaryKey: primaryKeys[name],
		})
	}
	return snapshot, nil
}

// ListTables returns the names of all tables in the public schema.
func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	conn, err := i.open(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateTable creates a table from the given model, including its primary
// key.
func (i *Inspector) CreateTable(ctx context.Context, table *schema.Table) error {
	return i.exec(ctx, createTableSQL(table))
}

// AddColumn adds a column to an existing table. The column is always added
// as nullable so the ALTER cannot fail on tables that already hold rows.
func (i *Inspector) AddColumn(ctx context.Context, tableName string, column schema.Column) error {
	return i.exec(ctx, addColumnSQL(tableName, column))
}

// DropTable drops a table and everything that depends on it.
func (i *Inspector) DropTable(ctx context.Context, tableName string) error {
	return i.exec(ctx, dropTableSQL(tableName))
}

// DropColumn drops a column and everything that depends on it.
func (i *Inspector) DropColumn(ctx context.Context, tableName, columnName string) error {
	return i.exec(ctx, dropColumnSQL(tableName, columnName))
}

// FetchKeyValues returns the set of value tuples the table currently holds
// under the given key columns. An empty key yields an empty set without a
// query.
func (i *Inspector) FetchKeyValues(ctx context.Context, tableName string, key []string) (ValueSet, error) {
	values := make(ValueSet)
	if len(key) == 0 {
		return values, nil
	}

	conn, err := i.open(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, selectSQL(tableName, key))
	if err != nil {
		return nil, fmt.Errorf("fetching key values from %q: %w", tableName, err)
	}
	defer rows.Close()

	scanned, err := scanRows(rows, key)
	if err != nil {
		return nil, fmt.Errorf("scanning key values from %q: %w", tableName, err)
	}
	for _, row := range scanned {
		values.Add(TupleKey(row, key))
	}
	return values, nil
}

// IsColumnUnique reports whether every non-NULL value in the column is
// distinct and the column holds at least one of them. A column of NULLs is
// not unique under this rule.
func (i *Inspector) IsColumnUnique(ctx context.Context, tableName, columnName string) (bool, error) {
	conn, err := i.open(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	var unique bool
	err = conn.QueryRowContext(ctx, uniqueCheckSQL(tableName, columnName)).Scan(&unique)
	if err != nil {
		return false, fmt.Errorf("checking uniqueness of %s.%s: %w", tableName, columnName, err)
	}
	return unique, nil
}

// FetchRows returns the table's rows under the given columns. Empty
// columns yield no rows without a query. No ordering is guaranteed.
func (i *Inspector) FetchRows(ctx context.Context, tableName string, columns []string) ([]Row, error) {
	if len(columns) == 0 {
		return nil, nil
	}

	conn, err := i.open(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, selectSQL(tableName, columns))
	if err != nil {
		return nil, fmt.Errorf("fetching rows from %q: %w", tableName, err)
	}
	defer rows.Close()

	scanned, err := scanRows(rows, columns)
	if err != nil {
		return nil, fmt.Errorf("scanning rows from %q: %w", tableName, err)
	}
	return scanned, nil
}

// InsertRows inserts the rows as one multi-row statement, so a failed
// batch never partially commits. NOT NULL violations are recovered through
// the NULL-conflict protocol and the insert is retried; any other error is
// fatal. Returns the number of rows ultimately inserted.
func (i *Inspector) InsertRows(ctx context.Context, tableName string, columns []string, rows []Row) (int, error) {
	if len(columns) == 0 || len(rows) == 0 {
		i.logger.Debug().Str("table", tableName).Msg("no columns or rows to insert, skipping")
		return 0, nil
	}

	args := make([]any, 0, len(columns)*len(rows))
	for _, row := range rows {
		for _, col := range columns {
			args = append(args, row[col])
		}
	}

	err := i.exec(ctx, insertSQL(tableName, columns, len(rows)), args...)
	if err == nil {
		i.logger.Info().Str("table", tableName).Int("count", len(rows)).Msg("inserted rows")
		return len(rows), nil
	}

	pqErr := &pq.Error{}
	if !errors.As(err, &pqErr) || pqErr.Code != notNullViolationErrorCode {
		return 0, fmt.Errorf("inserting rows into %q: %w", tableName, err)
	}

	table := pqErr.Table
	if table == "" {
		table = tableName
	}
	column := pqErr.Column
	if column == "" {
		i.logger.Error().Str("table", table).Msg("not null violation without a column name")
		return 0, fmt.Errorf("inserting rows into %q: %w", tableName, ErrMissingColumnInfo)
	}
	i.logger.Warn().Str("table", table).Str("column", column).Msg("not null violation detected")

	decision, err := i.resolveNotNull(table, column)
	if err != nil {
		return 0, err
	}

	if decision.Action == prompt.ActionDropConstraint {
		i.logger.Warn().Str("table", table).Str("column", column).Msg("dropping not null constraint")
		if err := i.exec(ctx, dropNotNullSQL(table, column)); err != nil {
			return 0, fmt.Errorf("dropping not null on %s.%s: %w", table, column, err)
		}
		return i.InsertRows(ctx, tableName, columns, rows)
	}

	i.logger.Info().
		Str("table", table).
		Str("column", column).
		Str("value", decision.Value).
		Msg("substituting default value for nulls")
	return i.InsertRows(ctx, tableName, columns, substituteNulls(rows, column, decision.Value))
}

// UpdateRows updates existing rows matched by the sync key. Sync key
// columns are never written, only matched; the per-row statements run in a
// single transaction. Returns the count of attempted updates.
func (i *Inspector) UpdateRows(ctx context.Context, tableName string, syncKey, columns []string, rows []Row) (int, error) {
	if len(columns) == 0 || len(rows) == 0 || len(syncKey) == 0 {
		i.logger.Debug().Str("table", tableName).Msg("no columns, rows or sync key to update, skipping")
		return 0, nil
	}

	keySet := make(map[string]struct{}, len(syncKey))
	for _, col := range syncKey {
		keySet[col] = struct{}{}
	}
	var updateColumns []string
	for _, col := range columns {
		if _, isKey := keySet[col]; !isKey {
			updateColumns = append(updateColumns, col)
		}
	}
	if len(updateColumns) == 0 {
		i.logger.Warn().Str("table", tableName).Msg("no columns to update besides the sync key")
		return 0, nil
	}

	conn, err := i.open(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	statement := updateSQL(tableName, syncKey, updateColumns)
	err = conn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, row := range rows {
			args := make([]any, 0, len(updateColumns)+len(syncKey))
			for _, col := range updateColumns {
				args = append(args, row[col])
			}
			for _, col := range syncKey {
				args = append(args, row[col])
			}
			if _, err := tx.ExecContext(ctx, statement, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("updating rows in %q: %w", tableName, err)
	}

	i.logger.Info().Str("table", tableName).Int("count", len(rows)).Msg("updated rows")
	return len(rows), nil
}

// ExecRaw runs one statement verbatim. Used by the seed bootstrap only.
func (i *Inspector) ExecRaw(ctx context.Context, statement string) error {
	return i.exec(ctx, statement)
}

func (i *Inspector) exec(ctx context.Context, statement string, args ...any) error {
	conn, err := i.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	i.logger.Debug().Str("sql", statement).Msg("executing statement")
	_, err = conn.ExecContext(ctx, statement, args...)
	return err
}

// resolveNotNull returns the memoized decision for the column, prompting
// the operator only on first sight.
func (i *Inspector) resolveNotNull(table, column string) (prompt.NotNullDecision, error) {
	key := columnRef{table: table, column: column}
	if decision, ok := i.decisions[key]; ok {
		return decision, nil
	}

	decision, err := i.prompter.ResolveNotNull(table, column)
	if err != nil {
		return prompt.NotNullDecision{}, fmt.Errorf("resolving not null conflict on %s.%s: %w", table, column, err)
	}
	i.decisions[key] = decision
	return decision, nil
}

// substituteNulls returns a copy of rows with every NULL in the column
// replaced by the given value. Other columns are untouched.
func substituteNulls(rows []Row, column string, value string) []Row {
	updated := make([]Row, len(rows))
	for n, row := range rows {
		if row[column] != nil {
			updated[n] = row
			continue
		}
		clone := make(Row, len(row))
		for k, v := range row {
			clone[k] = v
		}
		clone[column] = value
		updated[n] = clone
	}
	return updated
}
