package commands

import (
	"context"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
	"github.com/spf13/cobra"
)

var (
	actFolder    string
	actLabels    string
	actArchive   bool
	actUntil     string
	actYes       bool
	actUndoAfter time.Duration
)

var actCmd = &cobra.Command{
	Use:   "act <action> <id>...",
	Short: "Perform an action on a selection",
	Long: `Perform an action the way the action bar would: the items are
selected, the action is tapped (opening More first when it sits in the
overflow), and its sheet or alert is answered from the flags.

Actions are named by ID: star, unstar, markRead, markUnread, moveTo,
labelAs, snooze, permanentDelete, notSpam:<folder> and
moveToSystemFolder:<folder>.`,
	Example: `  mailactions act moveToSystemFolder:trash 1 2
  mailactions act moveTo --folder archive 3
  mailactions act labelAs --labels work,later --archive 1
  mailactions act snooze --until 2h 1
  mailactions act permanentDelete --yes 5
  mailactions act moveToSystemFolder:archive --undo-after 2s 1`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAct,
}

func init() {
	actCmd.Flags().StringVar(&actFolder, "folder", "",
		"Destination for moveTo: inbox, trash, spam, archive")
	actCmd.Flags().StringVar(&actLabels, "labels", "",
		"Comma separated labels for labelAs")
	actCmd.Flags().BoolVar(&actArchive, "archive", false,
		"Also archive the items for labelAs")
	actCmd.Flags().StringVar(&actUntil, "until", "",
		"Snooze end: offset (2h), RFC3339 timestamp or date")
	actCmd.Flags().BoolVarP(&actYes, "yes", "y", false,
		"Confirm permanentDelete")
	actCmd.Flags().DurationVar(&actUndoAfter, "undo-after", 0,
		"Tap undo on the resulting toast after this long")
}

// buildActRequest turns the command line into a request.
func buildActRequest(args []string, now time.Time) (actRequest, error) {
	act, err := action.Parse(args[0])
	if err != nil {
		return actRequest{}, err
	}

	sel, err := parseSelection(args[1:])
	if err != nil {
		return actRequest{}, err
	}

	req := actRequest{
		Action:    act,
		Selection: sel,
		Labels:    parseLabels(actLabels),
		Archive:   actArchive,
		Confirm:   actYes,
		UndoAfter: actUndoAfter,
	}

	if actFolder != "" {
		req.Folder, err = action.ParseFolder(actFolder)
		if err != nil {
			return actRequest{}, err
		}
	}

	if actUntil != "" {
		req.Until, err = parseWhen(actUntil, now)
		if err != nil {
			return actRequest{}, err
		}
	}

	return req, req.validate()
}

func runAct(cmd *cobra.Command, args []string) error {
	req, err := buildActRequest(args, time.Now())
	if err != nil {
		return err
	}

	return withApp(context.Background(), func(ctx context.Context,
		a *app) error {

		return a.act(ctx, cmd.OutOrStdout(), req)
	})
}
