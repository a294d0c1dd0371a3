package commands

import (
	"github.com/spf13/cobra"
)

var (
	// configPath is an explicit config file.
	configPath string

	// dbPath overrides the database path of the config.
	dbPath string

	// itemTypeName is the type of the items named on the command line.
	itemTypeName string

	// outputFormat controls output format (text, json).
	outputFormat string

	// verbose mirrors the log to stderr.
	verbose bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "mailactions",
	Short: "Drive mailbox actions against a local mailbox",
	Long: `mailactions runs the action bar of a mail client against a local
SQLite mailbox: it resolves the actions a selection offers, performs them the
way the toolbar would, and shows the toasts they raise, undo included.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "",
		"Config file (default: ./mailactions.yaml or "+
			"~/.mailactions/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&dbPath, "db", "",
		"Path to SQLite database (default: ~/.mailactions/mailactions.db)",
	)
	rootCmd.PersistentFlags().StringVar(
		&itemTypeName, "type", "conversation",
		"Item type of the given IDs: conversation, message",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "format", "text",
		"Output format: text, json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false,
		"Also write the log to stderr",
	)

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(actCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(demoCmd)
}
