// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"slices"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pgkit/dbsync/pkg/inspect"
	"github.com/pgkit/dbsync/pkg/schema"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show schema drift between the reference and the target without applying anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			testDSN, prodDSN, err := requireDSNs()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			sp, _ := pterm.DefaultSpinner.WithText("Introspecting databases...").Start()
			refSnap, err := inspect.New(testDSN).FetchSchema(ctx)
			if err != nil {
				sp.Fail("Failed to introspect the reference database")
				return err
			}
			targetSnap, err := inspect.New(prodDSN).FetchSchema(ctx)
			if err != nil {
				sp.Fail("Failed to introspect the target database")
				return err
			}
			sp.Success("Schemas fetched")

			diff := schema.Diff(refSnap, targetSnap)
			if diff.IsEmpty() {
				pterm.Success.Println("Schemas are in sync; nothing to apply")
				return nil
			}

			data := pterm.TableData{{"Change", "Table", "Details"}}
			for _, t := range diff.NewTables {
				data = append(data, []string{"create table", t.Name, strings.Join(t.ColumnNames(), ", ")})
			}
			for _, tableName := range sortedTableNames(diff.MissingColumns) {
				names := make([]string, 0, len(diff.MissingColumns[tableName]))
				for _, c := range diff.MissingColumns[tableName] {
					names = append(names, c.Name)
				}
				data = append(data, []string{"add columns", tableName, strings.Join(names, ", ")})
			}
			for _, tableName := range sortedTableNames(diff.OrphanColumns) {
				data = append(data, []string{"orphan columns", tableName, strings.Join(diff.OrphanColumns[tableName], ", ")})
			}
			for _, t := range diff.MissingTables {
				data = append(data, []string{"target-only table", t.Name, ""})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func sortedTableNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
