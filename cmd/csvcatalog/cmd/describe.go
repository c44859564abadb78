package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/storage"
)

var describeCmd = &cobra.Command{
	Use:   "describe <table> [description]",
	Short: "Show a table's schema or set its description",
	Long: `Describe shows a table's columns and metadata. With a second argument
the table's description is set instead:

  csvcatalog describe users
  csvcatalog describe users "accounts imported from the CRM"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	log := newLogger(settings)
	defer log.Sync()

	ctx := context.Background()
	manager, err := openDatabase(ctx, settings)
	if err != nil {
		return err
	}
	defer manager.Close()

	name := args[0]

	snap, err := schema.NewInspector(manager.DB).Snapshot(ctx)
	if err != nil {
		return err
	}
	table, ok := snap.Table(name)
	if !ok {
		return fmt.Errorf("table '%s' does not exist", name)
	}

	if len(args) == 2 {
		store := storage.NewStore(manager.DB, log)
		if err := store.SetDescription(ctx, name, args[1]); err != nil {
			return err
		}
		newRenderer(cmd).Successf("Description of '%s' updated.", name)
		return nil
	}

	newRenderer(cmd).Describe(table)
	return nil
}
