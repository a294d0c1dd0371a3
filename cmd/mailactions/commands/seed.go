package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load items into the local mailbox",
	Long: `Insert items into the local mailbox, replacing items with the same ID.
Without --file a small sample mailbox is loaded.

The file is YAML:

  items:
    - id: 1
      type: conversation
      folder: inbox
      unread: true
      labels: [work]
      snooze: 2h`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "",
		"YAML file with the items to load")
}

// seedItem is one item of a seed file.
type seedItem struct {
	ID      uint64   `yaml:"id"`
	Type    string   `yaml:"type"`
	Folder  string   `yaml:"folder"`
	Starred bool     `yaml:"starred"`
	Unread  bool     `yaml:"unread"`
	Labels  []string `yaml:"labels"`

	// Snooze is an offset or timestamp, see parseWhen.
	Snooze string `yaml:"snooze"`
}

type seedDoc struct {
	Items []seedItem `yaml:"items"`
}

// state converts the item, filling in the defaults.
func (s seedItem) state(now time.Time) (core.ItemState, error) {
	if s.ID == 0 {
		return core.ItemState{}, fmt.Errorf("item without id")
	}

	st := core.ItemState{
		ID:      action.ItemID(s.ID),
		Type:    action.ItemConversation,
		Folder:  action.FolderInbox,
		Starred: s.Starred,
		Unread:  s.Unread,
		Labels:  s.Labels,
	}

	var err error
	if s.Type != "" {
		st.Type, err = action.ParseItemType(s.Type)
		if err != nil {
			return core.ItemState{}, fmt.Errorf("item %d: %w", s.ID, err)
		}
	}
	if s.Folder != "" {
		st.Folder, err = action.ParseFolder(s.Folder)
		if err != nil {
			return core.ItemState{}, fmt.Errorf("item %d: %w", s.ID, err)
		}
	}
	if s.Snooze != "" {
		st.SnoozedUntil, err = parseWhen(s.Snooze, now)
		if err != nil {
			return core.ItemState{}, fmt.Errorf("item %d: %w", s.ID, err)
		}
	}

	return st, nil
}

// parseSeed decodes a seed file.
func parseSeed(data []byte, now time.Time) ([]core.ItemState, error) {
	var doc seedDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	seen := make(map[uint64]bool, len(doc.Items))
	items := make([]core.ItemState, 0, len(doc.Items))
	for _, it := range doc.Items {
		if seen[it.ID] {
			return nil, fmt.Errorf("item %d listed twice", it.ID)
		}
		seen[it.ID] = true

		st, err := it.state(now)
		if err != nil {
			return nil, err
		}
		items = append(items, st)
	}

	return items, nil
}

// sampleItems is the mailbox loaded when no seed file is given.
func sampleItems() []core.ItemState {
	return []core.ItemState{
		{
			ID:     1,
			Type:   action.ItemConversation,
			Folder: action.FolderInbox,
			Unread: true,
		},
		{
			ID:      2,
			Type:    action.ItemConversation,
			Folder:  action.FolderInbox,
			Starred: true,
			Labels:  []string{"work"},
		},
		{
			ID:     3,
			Type:   action.ItemConversation,
			Folder: action.FolderArchive,
		},
		{
			ID:     4,
			Type:   action.ItemConversation,
			Folder: action.FolderSpam,
			Unread: true,
		},
		{
			ID:     5,
			Type:   action.ItemConversation,
			Folder: action.FolderTrash,
		},
		{
			ID:     6,
			Type:   action.ItemMessage,
			Folder: action.FolderInbox,
			Unread: true,
		},
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	items := sampleItems()
	if seedFile != "" {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return err
		}
		items, err = parseSeed(data, time.Now())
		if err != nil {
			return err
		}
	}

	return withApp(ctx, func(ctx context.Context, a *app) error {
		if err := a.requireLocal(); err != nil {
			return err
		}
		if err := a.local.Seed(ctx, items); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d items.\n", len(items))
		return nil
	})
}
