package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/storage"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <table>",
	Short: "Delete a table from the catalog",
	Long: `Delete drops a table and its metadata from the catalog.

WARNING: This permanently deletes the table's data.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false,
		"Skip the deletion confirmation")

	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	log := newLogger(settings)
	defer log.Sync()
	out := newRenderer(cmd)

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

	if !deleteYes {
		question := fmt.Sprintf("Delete table '%s' (%d rows)?", name, table.RowCount)
		if !confirm(cmd, question) {
			out.Printf("Deletion cancelled.")
			return nil
		}
	}

	if err := storage.NewStore(manager.DB, log).DropTable(ctx, name); err != nil {
		return err
	}

	out.Successf("Table '%s' deleted.", name)
	return nil
}
