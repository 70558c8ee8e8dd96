package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openshelf/lending-engine-go/engine"
)

func newItemCommand(connect func() (*cliContext, error)) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Manage catalog items",
	}

	itemCmd.AddCommand(
		newItemAddCommand(connect),
		newItemUpdateCommand(connect),
		newItemRetireCommand(connect),
	)

	return itemCmd
}

func newItemAddCommand(connect func() (*cliContext, error)) *cobra.Command {
	var code string
	var title string
	var copies int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new catalog item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			item, err := cli.engine.AddCatalogItem(cmd.Context(), code, title, copies)
			if err != nil {
				return err
			}

			cmd.Printf("Added item %s (%s, %d copies)\n", item.ID, item.Code, item.TotalCopies)

			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "catalog code, unique per item (required)")
	cmd.Flags().StringVar(&title, "title", "", "item title")
	cmd.Flags().IntVar(&copies, "copies", 1, "total number of copies")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

func newItemUpdateCommand(connect func() (*cliContext, error)) *cobra.Command {
	var title string
	var copies int

	cmd := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Update a catalog item's title or total copies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			update := engine.CatalogItemUpdate{}
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("copies") {
				update.TotalCopies = &copies
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			item, err := cli.engine.UpdateCatalogItem(cmd.Context(), itemID, update)
			if err != nil {
				return err
			}

			cmd.Printf("Updated item %s (%s, %d copies, %d available)\n",
				item.ID, item.Code, item.TotalCopies, item.AvailableCopies)

			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().IntVar(&copies, "copies", 0, "new total number of copies")

	return cmd
}

func newItemRetireCommand(connect func() (*cliContext, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "retire <item-id>",
		Short: "Retire a catalog item so no new loans can be created for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			item, err := cli.engine.RetireCatalogItem(cmd.Context(), itemID)
			if err != nil {
				return err
			}

			cmd.Printf("Retired item %s (%s)\n", item.ID, item.Code)

			return nil
		},
	}
}
