// Init command for the linktrove CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize linktrove storage",
	Long: `Init creates the configuration and data directories, writes a default
config.yaml, and seeds the store with a default organization, collection,
and group.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		if err := ensureConfigDir(configDir); err != nil {
			return err
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return err
		}

		// Attaching creates the data directory and seeds defaults.
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		dataDir, err := resolveDataDir()
		if err != nil {
			return err
		}

		fmt.Println("Linktrove initialized successfully")
		fmt.Println("  config:", configDir)
		fmt.Println("  data:  ", dataDir)
		return nil
	},
}
