// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pgkit/dbsync/cmd/flags"
	"github.com/pgkit/dbsync/pkg/inspect"
	"github.com/pgkit/dbsync/pkg/logging"
	"github.com/pgkit/dbsync/pkg/prompt"
	"github.com/pgkit/dbsync/pkg/reconcile"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the target database's schema and rows with the reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			testDSN, prodDSN, err := requireDSNs()
			if err != nil {
				return err
			}

			logger := logging.New(logging.DefaultFilename, flags.LogLevel())
			prompter := prompt.Default()

			ref := inspect.New(testDSN, inspect.WithLogger(logger))
			target := inspect.New(prodDSN,
				inspect.WithLogger(logger),
				inspect.WithPrompter(prompter))

			rec := reconcile.New(ref, target,
				reconcile.WithLogger(logger),
				reconcile.WithPrompter(prompter))

			summary, err := rec.Run(cmd.Context())
			if err != nil {
				pterm.Error.Printfln("Reconciliation failed: %s", err)
				return err
			}

			pterm.Success.Println("Reconciliation complete")
			pterm.Info.Printfln(
				"tables created: %d, columns added: %d, columns dropped: %d, tables dropped: %d",
				summary.TablesCreated, summary.ColumnsAdded, summary.ColumnsDropped, summary.TablesDropped)
			pterm.Info.Printfln("rows inserted: %d, rows updated: %d",
				summary.RowsInserted, summary.RowsUpdated)
			return nil
		},
	}
}
