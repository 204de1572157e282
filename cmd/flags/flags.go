// SPDX-License-Identifier: Apache-2.0

package flags

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

func WorkDir() string {
	return viper.GetString("WORK_DIR")
}

func StoreURL() string {
	return viper.GetString("STORE")
}

func StoreSchema() string {
	return viper.GetString("STORE_SCHEMA")
}

func Verbose() bool {
	return viper.GetBool("VERBOSE")
}

func Format() string { return viper.GetString("FORMAT") }

func SkipValidation() bool { return viper.GetBool("SKIP_VALIDATION") }

// DefaultStoreURL is the SQLite history database in the user's config
// directory, or in the working directory when there is none.
func DefaultStoreURL() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "jmeter-analyzer.db"
	}
	return filepath.Join(dir, "jmeter-analyzer", "history.db")
}
