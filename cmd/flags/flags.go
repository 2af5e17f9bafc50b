// SPDX-License-Identifier: Apache-2.0

package flags

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConnectionFlags registers the DSN and log level flags and binds them to
// the settings resolved from the environment.
func ConnectionFlags(fs *pflag.FlagSet) {
	fs.String("test-url", "", "Postgres URL of the reference (test) database")
	fs.String("prod-url", "", "Postgres URL of the target (prod) database")
	fs.String("log-level", "INFO", "Run log level (DEBUG|INFO|WARNING|ERROR)")

	viper.BindPFlag("TEST_DB_DSN", fs.Lookup("test-url"))
	viper.BindPFlag("PROD_DB_DSN", fs.Lookup("prod-url"))
	viper.BindPFlag("LOG_LEVEL", fs.Lookup("log-level"))
}

func TestDSN() string {
	return viper.GetString("TEST_DB_DSN")
}

func ProdDSN() string {
	return viper.GetString("PROD_DB_DSN")
}

func LogLevel() string {
	return viper.GetString("LOG_LEVEL")
}
