package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/database"
	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <value> [target...]",
	Short: "Search the catalog for a value",
	Long: `Search runs a value search across the catalog. Targets restrict where
to look:

  search jane                    every column of every table
  search jane users              every column of the users table
  search jane users.email        one column of one table
  search jane *.email            the email column of every table that has one

Text columns match case-insensitively on substrings; other columns match
on exact equality. Multiple targets on the same table are merged and each
table is queried once. Ctrl-C stops the search and reports the matches
found so far.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	log := newLogger(settings)
	defer log.Sync()

	value, targets := args[0], args[1:]

	ctx := database.SetupSignalHandlerWithCallback(func(os.Signal) {
		log.Warn("Interrupt received - finishing current table...")
	})

	manager, err := openDatabase(ctx, settings)
	if err != nil {
		return err
	}
	defer manager.Close()

	snap, err := schema.NewInspector(manager.DB).Snapshot(ctx)
	if err != nil {
		return err
	}

	log.Debugw("search starting", "value", value, "targets", len(targets), "tables", snap.Len())

	// Parse and resolution errors abort before any query runs.
	report, err := search.Run(ctx, manager.DB, log, snap, value, targets)
	if err != nil {
		return err
	}

	newRenderer(cmd).SearchReport(report)
	return nil
}
