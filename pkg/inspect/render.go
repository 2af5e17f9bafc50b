// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/pgkit/dbsync/pkg/schema"
)

// columnDefinition renders one column of a CREATE TABLE statement.
//
// Integer columns whose default draws from a sequence are rewritten to
// SERIAL so the created table gets a working sequence of its own; the
// original nextval expression would reference a sequence that does not
// exist on the target. A SERIAL column carries no NOT NULL or DEFAULT
// clause.
func columnDefinition(column schema.Column) string {
	if isSerial(column) {
		return fmt.Sprintf("%s SERIAL", pq.QuoteIdentifier(column.Name))
	}

	parts := []string{pq.QuoteIdentifier(column.Name), column.Type}
	if !column.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if column.Default != nil {
		parts = append(parts, "DEFAULT "+*column.Default)
	}
	return strings.Join(parts, " ")
}

func isSerial(column schema.Column) bool {
	return column.Default != nil &&
		strings.Contains(strings.ToLower(*column.Default), "nextval") &&
		strings.Contains(strings.ToLower(column.Type), "integer")
}

// createTableSQL renders the full CREATE TABLE statement for a table. The
// primary key is emitted as a separate table constraint; postgres accepts
// SERIAL together with a PRIMARY KEY clause naming the same column.
func createTableSQL(table *schema.Table) string {
	defs := make([]string, 0, len(table.Columns)+1)
	for _, col := range table.Columns {
		defs = append(defs, columnDefinition(col))
	}
	if len(table.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteJoin(table.PrimaryKey)))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", pq.QuoteIdentifier(table.Name), strings.Join(defs, ", "))
}

// addColumnSQL renders an ALTER TABLE ADD COLUMN statement. NOT NULL is
// deliberately omitted even when the source column is non-nullable: the
// ALTER must not fail on tables that already hold rows.
func addColumnSQL(tableName string, column schema.Column) string {
	parts := []string{pq.QuoteIdentifier(column.Name), column.Type}
	if column.Default != nil {
		parts = append(parts, "DEFAULT "+*column.Default)
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s",
		pq.QuoteIdentifier(tableName), strings.Join(parts, " "))
}

func dropTableSQL(tableName string) string {
	return fmt.Sprintf("DROP TABLE %s CASCADE", pq.QuoteIdentifier(tableName))
}

func dropColumnSQL(tableName, columnName string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s CASCADE",
		pq.QuoteIdentifier(tableName), pq.QuoteIdentifier(columnName))
}

func dropNotNullSQL(tableName, columnName string) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL",
		pq.QuoteIdentifier(tableName), pq.QuoteIdentifier(columnName))
}

// insertSQL renders a parameterized multi-row INSERT statement.
func insertSQL(tableName string, columns []string, rowCount int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		pq.QuoteIdentifier(tableName), quoteJoin(columns))

	arg := 1
	for r := 0; r < rowCount; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", arg)
			arg++
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// updateSQL renders a parameterized single-row UPDATE statement. Sync key
// columns appear only in the WHERE clause.
func updateSQL(tableName string, syncKey, updateColumns []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET ", pq.QuoteIdentifier(tableName))

	arg := 1
	for i, col := range updateColumns {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = $%d", pq.QuoteIdentifier(col), arg)
		arg++
	}
	sb.WriteString(" WHERE ")
	for i, col := range syncKey {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, "%s = $%d", pq.QuoteIdentifier(col), arg)
		arg++
	}
	return sb.String()
}

func uniqueCheckSQL(tableName, columnName string) string {
	col := pq.QuoteIdentifier(columnName)
	return fmt.Sprintf("SELECT COUNT(%s) = COUNT(DISTINCT %s) AND COUNT(%s) > 0 FROM %s",
		col, col, col, pq.QuoteIdentifier(tableName))
}

func selectSQL(tableName string, columns []string) string {
	return fmt.Sprintf("SELECT %s FROM %s", quoteJoin(columns), pq.QuoteIdentifier(tableName))
}

func quoteJoin(identifiers []string) string {
	quoted := make([]string, len(identifiers))
	for i, ident := range identifiers {
		quoted[i] = pq.QuoteIdentifier(ident)
	}
	return strings.Join(quoted, ", ")
}
