// Export command for the linktrove CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linktrove/linktrove/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the whole dataset as JSON",
	Long: `Export writes a versioned backup document holding every collection,
group, and card, plus the per-group order lists, so a later import
restores exact ordering.

Example:
  linktrove export --out backup.json
  linktrove export > backup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	doc, err := app.Export()
	if err != nil {
		return fmt.Errorf("export dataset: %w", err)
	}
	data, err := export.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	if exportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintln(os.Stderr, "Exported dataset to", exportOut)
	return nil
}
