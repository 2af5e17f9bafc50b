// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgkit/dbsync/pkg/inspect"
	"github.com/pgkit/dbsync/pkg/schema"
)

func TestPartitionRowsClassifiesInsertAndUpdate(t *testing.T) {
	t.Parallel()

	rows := []inspect.Row{
		{"id": int64(1), "name": "A"},
		{"id": int64(2), "name": "B"},
	}
	syncValues := make(inspect.ValueSet)
	syncValues.Add(inspect.TupleKey(inspect.Row{"id": int64(1)}, []string{"id"}))

	missing, existing, skipped := partitionRows(rows,
		[]string{"id"}, []string{"id"}, []string{"id", "name"},
		syncValues, syncValues)

	require.Len(t, existing, 1)
	assert.Equal(t, "A", existing[0]["name"])
	require.Len(t, missing, 1)
	assert.Equal(t, "B", missing[0]["name"])
	assert.Zero(t, skipped)
}

func TestPartitionRowsSkipsPrimaryKeyConflicts(t *testing.T) {
	t.Parallel()

	// The row is absent under the sync key (name) but its primary key
	// value already exists on the target: inserting would violate the PK.
	rows := []inspect.Row{
		{"id": int64(1), "name": "X"},
	}
	syncValues := make(inspect.ValueSet) // target has no row named X
	pkValues := make(inspect.ValueSet)
	pkValues.Add(inspect.TupleKey(inspect.Row{"id": int64(1)}, []string{"id"}))

	missing, existing, skipped := partitionRows(rows,
		[]string{"name"}, []string{"id"}, []string{"id", "name"},
		syncValues, pkValues)

	assert.Empty(t, missing)
	assert.Empty(t, existing)
	assert.Equal(t, 1, skipped)
}

func TestPartitionRowsIgnoresPKNotCoveredBySharedColumns(t *testing.T) {
	t.Parallel()

	// The target PK column is not among the shared columns, so the
	// conflict guard cannot apply and the row is inserted.
	rows := []inspect.Row{
		{"name": "X"},
	}
	pkValues := make(inspect.ValueSet)
	pkValues.Add(inspect.TupleKey(inspect.Row{"id": int64(1)}, []string{"id"}))

	missing, existing, skipped := partitionRows(rows,
		[]string{"name"}, []string{"id"}, []string{"name"},
		make(inspect.ValueSet), pkValues)

	require.Len(t, missing, 1)
	assert.Empty(t, existing)
	assert.Zero(t, skipped)
}

func TestSharedColumnsKeepReferenceOrder(t *testing.T) {
	t.Parallel()

	ref := &schema.Table{Name: "users", Columns: []schema.Column{
		{Name: "zeta"}, {Name: "id"}, {Name: "alpha"},
	}}
	target := &schema.Table{Name: "users", Columns: []schema.Column{
		{Name: "alpha"}, {Name: "id"}, {Name: "other"},
	}}

	assert.Equal(t, []string{"id", "alpha"}, sharedColumns(ref, target))
	assert.Equal(t, []string{"alpha", "id"}, commonColumns(ref, target))
}

func TestContainsAll(t *testing.T) {
	t.Parallel()

	assert.True(t, containsAll([]string{"a", "b", "c"}, []string{"b", "c"}))
	assert.False(t, containsAll([]string{"a", "b"}, []string{"b", "z"}))
	assert.True(t, containsAll([]string{"a"}, nil))
}
