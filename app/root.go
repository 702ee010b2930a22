// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "go-settings-admin",
	Short: "GoSettings-Admin is a web-based back office for application settings",
	Long: `GoSettings-Admin is a web-based back office for application settings
with typed definitions, a complete change history, backups with restore
preview and a staged settings import/export pipeline.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
