// Move and reorder commands for the linktrove CLI.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	moveGroup  string
	moveBefore string
	moveToEnd  bool
)

var moveCmd = &cobra.Command{
	Use:   "move <card-id>",
	Short: "Move or reorder a card",
	Long: `Move repositions a card. With --group it moves the card into another
group; with --before it lands ahead of that card, otherwise at the end.
Without --group it reorders within the card's own group.

Moving relative to an unknown card, or reordering an unknown card, does
nothing rather than failing: another device may have removed it since the
view was rendered.

Example:
  linktrove move 0198f2... --group g2
  linktrove move 0198f2... --group g2 --before 0198f3...
  linktrove move 0198f2... --before 0198f3...
  linktrove move 0198f2... --end`,
	Args: cobra.ExactArgs(1),
	RunE: runMove,
}

func init() {
	moveCmd.Flags().StringVar(&moveGroup, "group", "", "destination group")
	moveCmd.Flags().StringVar(&moveBefore, "before", "", "insert before this card")
	moveCmd.Flags().BoolVar(&moveToEnd, "end", false, "move to the end of the group")
}

func runMove(cmd *cobra.Command, args []string) error {
	if moveToEnd && (moveGroup != "" || moveBefore != "") {
		return fmt.Errorf("--end cannot be combined with --group or --before")
	}
	if moveGroup == "" && moveBefore == "" && !moveToEnd {
		return fmt.Errorf("one of --group, --before, or --end is required")
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	id := args[0]
	switch {
	case moveToEnd:
		order, err := app.MoveCardToEnd(id)
		if err != nil {
			return fmt.Errorf("move card: %w", err)
		}
		return printOrder(id, order)
	case moveGroup != "":
		if err := app.MoveCard(id, moveGroup, moveBefore); err != nil {
			return fmt.Errorf("move card: %w", err)
		}
		fmt.Println("Moved card:", id)
		return nil
	default:
		order, err := app.ReorderCard(id, moveBefore)
		if err != nil {
			return fmt.Errorf("reorder card: %w", err)
		}
		return printOrder(id, order)
	}
}

func printOrder(id string, order []string) error {
	if flagJSON {
		return printJSON(order)
	}
	fmt.Println("Moved card:", id)
	if len(order) > 0 {
		fmt.Println("Order:", strings.Join(order, " "))
	}
	return nil
}
