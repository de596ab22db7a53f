// Card commands for the linktrove CLI.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/linktrove/linktrove/pkg/types"
)

var (
	cardAddTitle   string
	cardAddFavicon string
	cardAddBefore  string

	cardListCollection string

	cardUpdateTitle string
	cardUpdateURL   string
	cardUpdateNote  string
	cardUpdateGroup string
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage saved tabs (cards)",
}

var cardAddCmd = &cobra.Command{
	Use:   "add <group-id> <url>",
	Short: "Save a tab as a card",
	Long: `Add saves a browser tab into a group. The URL must be absolute http or
https; it is normalized before storage. A missing title falls back to the
URL hostname.

New cards land at the front of the group unless --before names a card to
insert ahead of.

Example:
  linktrove card add g1 https://example.com/article --title "Good read"
  linktrove card add g1 https://example.com --before 0198f2...`,
	Args: cobra.ExactArgs(2),
	RunE: runCardAdd,
}

var cardListCmd = &cobra.Command{
	Use:   "list [group-id]",
	Short: "List cards in display order",
	Long: `List prints a group's cards in display order, or with --collection all
cards of a collection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCardList,
}

var cardGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one card",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardGet,
}

var cardUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update card fields",
	Long: `Update changes only the fields whose flags are given. Changing the URL
re-validates and re-normalizes it. Moving to another group with --group
keeps the card's collection consistent with the target group.`,
	Args: cobra.ExactArgs(1),
	RunE: runCardUpdate,
}

var cardDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete cards",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCardDelete,
}

func init() {
	cardAddCmd.Flags().StringVar(&cardAddTitle, "title", "", "card title (default: page hostname)")
	cardAddCmd.Flags().StringVar(&cardAddFavicon, "favicon", "", "favicon URL")
	cardAddCmd.Flags().StringVar(&cardAddBefore, "before", "", "insert before this card instead of at the front")

	cardListCmd.Flags().StringVar(&cardListCollection, "collection", "", "list all cards of a collection instead")

	cardUpdateCmd.Flags().StringVar(&cardUpdateTitle, "title", "", "new title")
	cardUpdateCmd.Flags().StringVar(&cardUpdateURL, "url", "", "new URL")
	cardUpdateCmd.Flags().StringVar(&cardUpdateNote, "note", "", "new note")
	cardUpdateCmd.Flags().StringVar(&cardUpdateGroup, "group", "", "move to this group")

	cardCmd.AddCommand(cardAddCmd)
	cardCmd.AddCommand(cardListCmd)
	cardCmd.AddCommand(cardGetCmd)
	cardCmd.AddCommand(cardUpdateCmd)
	cardCmd.AddCommand(cardDeleteCmd)
}

func runCardAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	tab := types.TabPayload{Title: cardAddTitle, URL: args[1], Favicon: cardAddFavicon}

	var card *types.Card
	if cardAddBefore != "" {
		card, err = app.SaveTabBefore(args[0], tab, cardAddBefore)
	} else {
		card, err = app.SaveTab(args[0], tab)
	}
	if err != nil {
		return fmt.Errorf("save tab: %w", err)
	}

	if flagJSON {
		return printJSON(card)
	}
	fmt.Println("Saved card:", card.ID)
	return nil
}

func runCardList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var cards []*types.Card
	switch {
	case cardListCollection != "":
		cards, err = app.Store().Cards().ListByCollection(cardListCollection)
	case len(args) == 1:
		cards, err = app.CardsInGroup(args[0])
	default:
		return fmt.Errorf("a group ID or --collection is required")
	}
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}

	if flagJSON {
		return printJSON(cards)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tURL")
	for _, c := range cards {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Title, c.URL)
	}
	return w.Flush()
}

func runCardGet(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	card, err := app.Store().Cards().Get(args[0])
	if err != nil {
		return fmt.Errorf("get card: %w", err)
	}

	if flagJSON {
		return printJSON(card)
	}
	fmt.Println("ID:     ", card.ID)
	fmt.Println("Title:  ", card.Title)
	fmt.Println("URL:    ", card.URL)
	if card.Note != "" {
		fmt.Println("Note:   ", card.Note)
	}
	fmt.Println("Group:  ", card.GroupID)
	fmt.Println("Created:", card.CreatedAt)
	return nil
}

func runCardUpdate(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var patch types.CardPatch
	if cmd.Flags().Changed("title") {
		patch.Title = &cardUpdateTitle
	}
	if cmd.Flags().Changed("url") {
		patch.URL = &cardUpdateURL
	}
	if cmd.Flags().Changed("note") {
		patch.Note = &cardUpdateNote
	}
	if cmd.Flags().Changed("group") {
		patch.GroupID = &cardUpdateGroup
	}

	card, err := app.UpdateCard(args[0], patch)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}

	if flagJSON {
		return printJSON(card)
	}
	fmt.Println("Updated card:", card.ID)
	return nil
}

func runCardDelete(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.DeleteCards(args); err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}
	fmt.Println("Deleted", len(args), "card(s)")
	return nil
}
