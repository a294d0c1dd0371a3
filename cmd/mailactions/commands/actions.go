package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions <id>...",
	Short: "Show the actions offered for a selection",
	Long: `Select the given items and print the toolbar actions and the
actions behind the More button, as the action bar would show them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runActions,
}

func runActions(cmd *cobra.Command, args []string) error {
	sel, err := parseSelection(args)
	if err != nil {
		return err
	}

	return withApp(context.Background(), func(ctx context.Context,
		a *app) error {

		st, err := a.selectItems(ctx, sel)
		if err != nil {
			return err
		}

		return printActions(cmd.OutOrStdout(), st.Visible, st.Overflow)
	})
}
