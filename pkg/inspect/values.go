// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"database/sql"
	"fmt"
	"strings"
)

// Row is one table row keyed by column name. Values are driver-native;
// byte slices are converted to strings on scan so rows are printable and
// their key tuples comparable.
type Row map[string]any

// TupleKey encodes the row's values under the given columns into a single
// comparable key, preserving column order.
func TupleKey(row Row, columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%v", row[col])
	}
	return strings.Join(parts, "\x1f")
}

// ValueSet is a set of key tuples, stored under their TupleKey encoding.
type ValueSet map[string]struct{}

func (s ValueSet) Add(key string) {
	s[key] = struct{}{}
}

func (s ValueSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// scanRows drains a result set into rows keyed by the selected columns.
func scanRows(rows *sql.Rows, columns []string) ([]Row, error) {
	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
