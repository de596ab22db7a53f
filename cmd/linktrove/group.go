// Group commands for the linktrove CLI.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/linktrove/linktrove/pkg/types"
)

var (
	groupDeleteReassignTo string
	groupDeleteWithPages  bool
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups within a collection",
}

var groupListCmd = &cobra.Command{
	Use:   "list <collection-id>",
	Short: "List the groups of a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupList,
}

var groupAddCmd = &cobra.Command{
	Use:   "add <collection-id> <name>",
	Short: "Create a group in a collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runGroupAdd,
}

var groupRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a group",
	Long: `Rename trims the new name; a blank name falls back to "group" instead
of failing.`,
	Args: cobra.ExactArgs(2),
	RunE: runGroupRename,
}

var groupReorderCmd = &cobra.Command{
	Use:   "reorder <collection-id> <group-id>...",
	Short: "Reorder the groups of a collection",
	Long: `Reorder places the listed groups first, in the given sequence. Groups
of the collection left unlisted keep their relative order after them.

Example:
  linktrove group reorder c1 g3 g1`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGroupReorder,
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a group",
	Long: `Delete removes a group. By default its cards move to the group named by
--reassign-to; with --with-pages the cards are deleted along with it. The
last group of a collection cannot be deleted.

Example:
  linktrove group delete g2 --reassign-to g1
  linktrove group delete g2 --with-pages`,
	Args: cobra.ExactArgs(1),
	RunE: runGroupDelete,
}

func init() {
	groupDeleteCmd.Flags().StringVar(&groupDeleteReassignTo, "reassign-to", "", "group receiving the deleted group's cards")
	groupDeleteCmd.Flags().BoolVar(&groupDeleteWithPages, "with-pages", false, "delete the group's cards too")

	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupAddCmd)
	groupCmd.AddCommand(groupRenameCmd)
	groupCmd.AddCommand(groupReorderCmd)
	groupCmd.AddCommand(groupDeleteCmd)
}

func runGroupList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	groups, err := app.Store().Groups().List(args[0])
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}

	if flagJSON {
		return printJSON(groups)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tORDER")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%d\n", g.ID, g.Name, g.Order)
	}
	return w.Flush()
}

func runGroupAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	group, err := app.Store().Groups().Create(args[0], args[1])
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	if flagJSON {
		return printJSON(group)
	}
	fmt.Println("Created group:", group.ID)
	return nil
}

func runGroupRename(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	group, err := app.Store().Groups().Rename(args[0], args[1])
	if err != nil {
		return fmt.Errorf("rename group: %w", err)
	}

	if flagJSON {
		return printJSON(group)
	}
	fmt.Println("Renamed group:", group.ID)
	return nil
}

func runGroupReorder(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Store().Groups().Reorder(args[0], args[1:]); err != nil {
		return fmt.Errorf("reorder groups: %w", err)
	}
	fmt.Println("Reordered groups in collection:", args[0])
	return nil
}

func runGroupDelete(cmd *cobra.Command, args []string) error {
	if groupDeleteWithPages && groupDeleteReassignTo != "" {
		return fmt.Errorf("--with-pages and --reassign-to are mutually exclusive")
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	opts := types.GroupDeleteOptions{Mode: types.GroupDeleteReassign, ReassignTo: groupDeleteReassignTo}
	if groupDeleteWithPages {
		opts = types.GroupDeleteOptions{Mode: types.GroupDeleteWithPages}
	}
	if err := app.DeleteGroup(args[0], opts); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	fmt.Println("Deleted group:", args[0])
	return nil
}
