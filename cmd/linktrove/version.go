// Version command for the linktrove CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linktrove/linktrove/pkg/linktrove"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("linktrove v" + linktrove.Version)
	},
}
