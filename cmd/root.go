// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pgkit/dbsync/cmd/flags"
)

// Version is the dbsync version
var Version = "development"

var (
	errMissingTestDSN = errors.New("TEST_DB_DSN is not set: provide the reference database DSN via the environment or --test-url")
	errMissingProdDSN = errors.New("PROD_DB_DSN is not set: provide the target database DSN via the environment or --prod-url")
)

func init() {
	viper.AutomaticEnv()

	// A .env file in the working directory is a convenience, not a
	// requirement; a missing or unreadable one is ignored.
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	flags.ConnectionFlags(rootCmd.PersistentFlags())
}

var rootCmd = &cobra.Command{
	Use:          "dbsync",
	Short:        "Reconcile a target PostgreSQL database with a reference",
	SilenceUsage: true,
	Version:      Version,
}

// requireDSNs resolves both connection strings, failing before any
// connection is opened when one is missing.
func requireDSNs() (testDSN, prodDSN string, err error) {
	testDSN = flags.TestDSN()
	if testDSN == "" {
		return "", "", errMissingTestDSN
	}
	prodDSN = flags.ProdDSN()
	if prodDSN == "" {
		return "", "", errMissingProdDSN
	}
	return testDSN, prodDSN, nil
}

// Execute executes the root command.
func Execute() error {
	// register subcommands
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(showCmd())

	return rootCmd.Execute()
}
