// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"slices"
)

// SchemaDiff is the structural delta between two snapshots, limited to
// table and column presence. Column types, nullability, defaults and
// primary keys are not compared.
type SchemaDiff struct {
	// Tables present in the reference but not in the target
	NewTables []*Table

	// Tables present in the target but not in the reference
	MissingTables []*Table

	// Per-table column names present in the target but not in the
	// reference, sorted by name
	OrphanColumns map[string][]string

	// Per-table columns present in the reference but not in the target,
	// in reference column order
	MissingColumns map[string][]Column
}

// IsEmpty returns true if the diff contains no differences
func (d *SchemaDiff) IsEmpty() bool {
	return len(d.NewTables) == 0 &&
		len(d.MissingTables) == 0 &&
		len(d.OrphanColumns) == 0 &&
		len(d.MissingColumns) == 0
}

// Diff computes the structural delta between a reference and a target
// snapshot. It is a pure function; neither snapshot is modified. Table
// slices are ordered by table name.
func Diff(ref, target *Snapshot) *SchemaDiff {
	diff := &SchemaDiff{
		OrphanColumns:  make(map[string][]string),
		MissingColumns: make(map[string][]Column),
	}

	for _, name := range ref.TableNames() {
		refTable := ref.GetTable(name)
		targetTable := target.GetTable(name)
		if targetTable == nil {
			diff.NewTables = append(diff.NewTables, refTable)
			continue
		}

		var orphans []string
		for _, col := range targetTable.Columns {
			if !refTable.HasColumn(col.Name) {
				orphans = append(orphans, col.Name)
			}
		}
		if len(orphans) > 0 {
			slices.Sort(orphans)
			diff.OrphanColumns[name] = orphans
		}

		var missing []Column
		for _, col := range refTable.Columns {
			if !targetTable.HasColumn(col.Name) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			diff.MissingColumns[name] = missing
		}
	}

	for _, name := range target.TableNames() {
		if ref.GetTable(name) == nil {
			diff.MissingTables = append(diff.MissingTables, target.GetTable(name))
		}
	}

	return diff
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
