package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List the items of the local mailbox",
	Args:  cobra.NoArgs,
	RunE:  runItems,
}

func runItems(cmd *cobra.Command, args []string) error {
	return withApp(context.Background(), func(ctx context.Context,
		a *app) error {

		if err := a.requireLocal(); err != nil {
			return err
		}

		items, err := a.local.Items(ctx)
		if err != nil {
			return err
		}

		return printItems(cmd.OutOrStdout(), items)
	})
}
