// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pgkit/dbsync/pkg/inspect"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "show [test|prod]",
		Short:     "Render the contents of every table on one or both sides",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"test", "prod"},
		RunE: func(cmd *cobra.Command, args []string) error {
			testDSN, prodDSN, err := requireDSNs()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			side := ""
			if len(args) == 1 {
				side = args[0]
			}

			if side == "" || side == "test" {
				pterm.DefaultSection.Println("Reference database (test)")
				if err := renderTables(ctx, inspect.New(testDSN)); err != nil {
					return err
				}
			}
			if side == "" || side == "prod" {
				pterm.DefaultSection.Println("Target database (prod)")
				if err := renderTables(ctx, inspect.New(prodDSN)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// renderTables prints every public table of one database as a pterm table.
func renderTables(ctx context.Context, inspector *inspect.Inspector) error {
	names, err := inspector.ListTables(ctx)
	if err != nil {
		return err
	}
	slices.Sort(names)

	snapshot, err := inspector.FetchSchema(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		table := snapshot.GetTable(name)
		if table == nil {
			continue
		}
		columns := table.ColumnNames()

		rows, err := inspector.FetchRows(ctx, name, columns)
		if err != nil {
			return err
		}

		pterm.Printfln("%s (%d rows)", pterm.Bold.Sprint(name), len(rows))
		data := pterm.TableData{columns}
		for _, row := range rows {
			rendered := make([]string, len(columns))
			for i, col := range columns {
				if row[col] == nil {
					rendered[i] = "NULL"
					continue
				}
				rendered[i] = fmt.Sprintf("%v", row[col])
			}
			data = append(data, rendered)
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
	}
	return nil
}
