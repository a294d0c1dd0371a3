package commands

import (
	"context"
	"fmt"

	"github.com/roasbeef/mailactions/internal/core"
	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo <token>",
	Short: "Reverse an operation by its undo token",
	Long: `Exchange an undo token for the reversal of the operation that issued
it. Tokens are listed by the tokens command; each works once and only until
it expires.`,
	Args: cobra.ExactArgs(1),
	RunE: runUndo,
}

func runUndo(cmd *cobra.Command, args []string) error {
	tok, err := core.ParseUndoToken(args[0])
	if err != nil {
		return err
	}

	return withApp(context.Background(), func(ctx context.Context,
		a *app) error {

		w := cmd.OutOrStdout()
		toasts, err := a.watchToasts(ctx, w)
		if err != nil {
			return err
		}
		defer toasts.cancel()

		undoErr := a.performer.Undo.Undo(ctx, tok)
		if undoErr != nil {
			a.undo.ReportError(ctx, undoErr)
		}
		if err := toasts.drain(ctx, a.presenter); err != nil {
			return err
		}
		if undoErr != nil {
			return undoErr
		}

		fmt.Fprintln(w, "Undone.")
		return nil
	})
}
