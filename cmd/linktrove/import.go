// Import command for the linktrove CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/linktrove/linktrove/internal/export"
)

var importIn string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the dataset from a backup document",
	Long: `Import replaces the entire local dataset with the backup document,
including per-group card order. This is wholesale: existing local data is
discarded.

Example:
  linktrove import --in backup.json
  linktrove import < backup.json`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importIn, "in", "", "read from this file instead of stdin")
}

func runImport(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if importIn == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(importIn)
	}
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	doc, err := export.Decode(data)
	if err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Import(doc); err != nil {
		return fmt.Errorf("import dataset: %w", err)
	}
	fmt.Println("Imported dataset:",
		len(doc.Collections), "collections,",
		len(doc.Groups), "groups,",
		len(doc.Cards), "cards")
	return nil
}
