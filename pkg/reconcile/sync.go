// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/pgkit/dbsync/pkg/inspect"
	"github.com/pgkit/dbsync/pkg/schema"
)

// syncData brings the target's rows in line with the reference for every
// table present in both snapshots. Within a table, inserts are issued
// before updates.
func (r *Reconciler) syncData(ctx context.Context, logger zerolog.Logger, refSnap, targetSnap *schema.Snapshot, summary *Summary) error {
	for _, tableName := range refSnap.TableNames() {
		refTable := refSnap.GetTable(tableName)
		targetTable := targetSnap.GetTable(tableName)
		if targetTable == nil {
			logger.Debug().Str("table", tableName).Msg("table absent from target, skipping data sync")
			continue
		}

		sharedColumns := sharedColumns(refTable, targetTable)
		if len(sharedColumns) == 0 {
			logger.Warn().Str("table", tableName).Msg("no shared columns, skipping data sync")
			continue
		}

		syncKey, err := r.selectSyncKey(ctx, tableName, refTable, targetTable)
		if err != nil {
			return err
		}
		if len(syncKey) == 0 {
			logger.Warn().Str("table", tableName).Msg("no usable sync key, skipping data sync")
			continue
		}
		logger.Info().Str("table", tableName).Strs("sync_key", syncKey).Msg("sync key selected")

		syncValues, err := r.target.FetchKeyValues(ctx, tableName, syncKey)
		if err != nil {
			return err
		}

		// Values under the declared primary key guard inserts against
		// unique violations when the sync key is not the PK. When the two
		// keys coincide one fetch serves both purposes.
		targetPK := targetTable.PrimaryKey
		pkValues := syncValues
		if !slices.Equal(targetPK, syncKey) {
			pkValues, err = r.target.FetchKeyValues(ctx, tableName, targetPK)
			if err != nil {
				return err
			}
		}

		rows, err := r.ref.FetchRows(ctx, tableName, sharedColumns)
		if err != nil {
			return err
		}

		missing, existing, skipped := partitionRows(rows, syncKey, targetPK, sharedColumns, syncValues, pkValues)
		if skipped > 0 {
			logger.Warn().
				Str("table", tableName).
				Int("count", skipped).
				Msg("rows skipped: absent under the sync key but their primary key already exists")
		}

		if len(missing) > 0 {
			logger.Info().Str("table", tableName).Int("count", len(missing)).Msg("inserting new rows")
			inserted, err := r.target.InsertRows(ctx, tableName, sharedColumns, missing)
			if err != nil {
				return err
			}
			summary.RowsInserted += inserted
		}

		if len(existing) > 0 {
			logger.Info().Str("table", tableName).Int("count", len(existing)).Msg("updating existing rows")
			updated, err := r.target.UpdateRows(ctx, tableName, syncKey, sharedColumns, existing)
			if err != nil {
				return err
			}
			summary.RowsUpdated += updated
		}
	}

	return nil
}

// selectSyncKey picks the column set used to match reference rows against
// the target. Columns unique on both sides are offered to the operator;
// with no candidates the target's declared primary key is a safe fallback.
func (r *Reconciler) selectSyncKey(ctx context.Context, tableName string, refTable, targetTable *schema.Table) ([]string, error) {
	common := commonColumns(refTable, targetTable)
	if len(common) == 0 {
		return nil, nil
	}

	var candidates []string
	for _, col := range common {
		refUnique, err := r.ref.IsColumnUnique(ctx, tableName, col)
		if err != nil {
			return nil, err
		}
		if !refUnique {
			continue
		}
		targetUnique, err := r.target.IsColumnUnique(ctx, tableName, col)
		if err != nil {
			return nil, err
		}
		if targetUnique {
			candidates = append(candidates, col)
		}
	}

	if len(candidates) == 0 {
		if len(targetTable.PrimaryKey) > 0 {
			return targetTable.PrimaryKey, nil
		}
		return nil, nil
	}

	key, err := r.prompter.SelectSyncKey(tableName, candidates, targetTable.PrimaryKey)
	if err != nil {
		return nil, fmt.Errorf("selecting sync key for %q: %w", tableName, err)
	}
	return key, nil
}

// partitionRows classifies reference rows for a table: rows already
// present under the sync key become updates, rows whose declared primary
// key already exists on the target are skipped, everything else is
// inserted.
func partitionRows(rows []inspect.Row, syncKey, targetPK, sharedColumns []string, syncValues, pkValues inspect.ValueSet) (missing, existing []inspect.Row, skipped int) {
	pkCovered := len(targetPK) > 0 && containsAll(sharedColumns, targetPK)

	for _, row := range rows {
		if syncValues.Contains(inspect.TupleKey(row, syncKey)) {
			existing = append(existing, row)
			continue
		}
		if pkCovered && pkValues.Contains(inspect.TupleKey(row, targetPK)) {
			skipped++
			continue
		}
		missing = append(missing, row)
	}
	return missing, existing, skipped
}

// sharedColumns returns the reference table's column names, in reference
// order, that also exist on the target.
func sharedColumns(refTable, targetTable *schema.Table) []string {
	var shared []string
	for _, col := range refTable.Columns {
		if targetTable.HasColumn(col.Name) {
			shared = append(shared, col.Name)
		}
	}
	return shared
}

// commonColumns returns the sorted intersection of the two tables' column
// names.
func commonColumns(refTable, targetTable *schema.Table) []string {
	common := sharedColumns(refTable, targetTable)
	slices.Sort(common)
	return common
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		if !slices.Contains(haystack, n) {
			return false
		}
	}
	return true
}
