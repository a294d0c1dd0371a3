package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokensPrune bool

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List the undo tokens that can still be used",
	Args:  cobra.NoArgs,
	RunE:  runTokens,
}

func init() {
	tokensCmd.Flags().BoolVar(&tokensPrune, "prune", false,
		"Delete consumed and expired tokens first")
}

func runTokens(cmd *cobra.Command, args []string) error {
	return withApp(context.Background(), func(ctx context.Context,
		a *app) error {

		if err := a.requireLocal(); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if tokensPrune {
			n, err := a.local.PruneTokens(ctx)
			if err != nil {
				return err
			}
			if outputFormat != "json" {
				fmt.Fprintf(w, "Pruned %d tokens.\n", n)
			}
		}

		tokens, err := a.local.PendingTokens(ctx)
		if err != nil {
			return err
		}

		return printTokens(w, tokens, time.Now())
	})
}
