// Collection commands for the linktrove CLI.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/linktrove/linktrove/pkg/types"
)

var collectionAddColor string

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections",
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE:  runCollectionList,
}

var collectionAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a collection",
	Long: `Add creates a collection in the default organization, along with its
initial group.

Example:
  linktrove collection add Research
  linktrove collection add Work --color "#f59e0b"`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionAdd,
}

var collectionRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runCollectionRename,
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a collection and its contents",
	Long: `Delete soft-deletes a collection: its cards are soft-deleted with it and
its groups removed. The last collection of an organization cannot be
deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionDelete,
}

var collectionSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Set the active collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionSelect,
}

func init() {
	collectionAddCmd.Flags().StringVar(&collectionAddColor, "color", "", "display color (default: "+types.DefaultCollectionColor+")")

	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionAddCmd)
	collectionCmd.AddCommand(collectionRenameCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
	collectionCmd.AddCommand(collectionSelectCmd)
}

func runCollectionList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	org, err := defaultOrg(app)
	if err != nil {
		return err
	}
	collections, err := app.Store().Collections().List(org.ID)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	selected, err := app.SelectedCollection(org.ID)
	if err != nil {
		return fmt.Errorf("read selection: %w", err)
	}

	if flagJSON {
		return printJSON(collections)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tSELECTED")
	for _, c := range collections {
		marker := ""
		if c.ID == selected {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Color, marker)
	}
	return w.Flush()
}

func runCollectionAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	org, err := defaultOrg(app)
	if err != nil {
		return err
	}
	collection, err := app.CreateCollection(org.ID, args[0], collectionAddColor)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	if flagJSON {
		return printJSON(collection)
	}
	fmt.Println("Created collection:", collection.ID)
	return nil
}

func runCollectionRename(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	collection, err := app.Store().Collections().Rename(args[0], args[1])
	if err != nil {
		return fmt.Errorf("rename collection: %w", err)
	}

	if flagJSON {
		return printJSON(collection)
	}
	fmt.Println("Renamed collection:", collection.ID)
	return nil
}

func runCollectionDelete(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.DeleteCollection(args[0]); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	fmt.Println("Deleted collection:", args[0])
	return nil
}

func runCollectionSelect(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	org, err := defaultOrg(app)
	if err != nil {
		return err
	}
	if err := app.SelectCollection(org.ID, args[0]); err != nil {
		return fmt.Errorf("select collection: %w", err)
	}
	fmt.Println("Selected collection:", args[0])
	return nil
}
