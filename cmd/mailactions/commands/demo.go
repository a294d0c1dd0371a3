package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/core"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through a scripted session on an in-memory mailbox",
	Long: `Run a scripted session against an in-memory copy of the sample
mailbox: it resolves actions, stars, moves with undo, labels, snoozes and
deletes, printing the toasts raised on the way. The database is not
touched.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

// demoStep is one scripted interaction.
type demoStep struct {
	title string
	req   actRequest
}

func demoSteps(now time.Time) []demoStep {
	conv := func(ids ...action.ItemID) action.Selection {
		return action.NewSelection(action.ItemConversation, ids...)
	}

	return []demoStep{
		{
			title: "Star the first conversation",
			req: actRequest{
				Action: action.Star{}, Selection: conv(1),
			},
		},
		{
			title: "Trash two conversations, then undo",
			req: actRequest{
				Action: action.MoveToSystemFolder{
					Folder: action.FolderTrash,
				},
				Selection: conv(1, 2),
				UndoAfter: 200 * time.Millisecond,
			},
		},
		{
			title: "Label and archive",
			req: actRequest{
				Action:    action.LabelAs{},
				Selection: conv(1),
				Labels:    []string{"later"},
				Archive:   true,
			},
		},
		{
			title: "Snooze for two hours",
			req: actRequest{
				Action:    action.Snooze{},
				Selection: conv(2),
				Until:     now.Add(2 * time.Hour),
			},
		},
		{
			title: "Rescue from spam",
			req: actRequest{
				Action: action.NotSpam{
					Folder: action.FolderInbox,
				},
				Selection: conv(4),
			},
		},
		{
			title: "Delete from trash for good",
			req: actRequest{
				Action:    action.PermanentDelete{},
				Selection: conv(5),
				Confirm:   true,
			},
		},
	}
}

// runScript plays steps on a and prints what happens.
func runScript(ctx context.Context, w io.Writer, a *app,
	steps []demoStep) error {

	for i, step := range steps {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, step.title)

		st, err := a.selectItems(ctx, step.req.Selection)
		if err != nil {
			return err
		}
		if err := printActions(w, st.Visible, st.Overflow); err != nil {
			return err
		}

		fmt.Fprintf(w, "> %s\n", step.req.Action.ID())
		if err := a.act(ctx, w, step.req); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logs, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	mock := core.NewMockMailbox(
		sampleItems(), core.WithTokenTTL(cfg.TokenTTL()),
	)
	a := startApp(cfg, logs, mock)
	defer a.close()

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Mailbox:")
	if err := printItems(w, mock.Items()); err != nil {
		return err
	}

	if err := runScript(ctx, w, a, demoSteps(time.Now())); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nMailbox afterwards:")
	return printItems(w, mock.Items())
}
