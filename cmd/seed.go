// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pgkit/dbsync/internal/seed"
	"github.com/pgkit/dbsync/pkg/inspect"
	"github.com/pgkit/dbsync/pkg/prompt"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Reset both databases and load the demo dataset with deliberate drift",
		RunE: func(cmd *cobra.Command, args []string) error {
			testDSN, prodDSN, err := requireDSNs()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			// Seeding drops the public schema on both sides, so it is
			// gated like any other destructive operation.
			confirmed, err := prompt.Default().ConfirmDrop([]string{"schema public (both databases)"})
			if err != nil {
				return err
			}
			if !confirmed {
				pterm.Warning.Println("Seed aborted")
				return nil
			}

			ref := inspect.New(testDSN)
			target := inspect.New(prodDSN)

			sp, _ := pterm.DefaultSpinner.WithText("Seeding reference database...").Start()
			if err := seed.Apply(ctx, ref, seed.ReferenceStatements); err != nil {
				sp.Fail("Failed to seed the reference database")
				return err
			}
			sp.UpdateText("Seeding target database...")
			if err := seed.Apply(ctx, target, seed.TargetStatements); err != nil {
				sp.Fail("Failed to seed the target database")
				return err
			}
			sp.Success("Both databases seeded")

			pterm.DefaultSection.Println("Reference database (test)")
			if err := renderTables(ctx, ref); err != nil {
				return err
			}
			pterm.DefaultSection.Println("Target database (prod)")
			return renderTables(ctx, target)
		},
	}
}
