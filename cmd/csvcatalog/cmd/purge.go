package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/storage"
)

var purgeYes bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every table from the catalog",
	Long: `Purge drops every table in the catalog.

WARNING: This permanently deletes all catalog data.`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false,
		"Skip the purge confirmation")

	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
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

	snap, err := schema.NewInspector(manager.DB).Snapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Len() == 0 {
		out.Printf("The catalog is already empty.")
		return nil
	}

	if !purgeYes {
		question := fmt.Sprintf("Delete all %d tables?", snap.Len())
		if !confirm(cmd, question) {
			out.Printf("Purge cancelled.")
			return nil
		}
	}

	names := make([]string, 0, snap.Len())
	for _, table := range snap.Tables() {
		names = append(names, table.Name)
	}
	if err := storage.NewStore(manager.DB, log).Purge(ctx, names); err != nil {
		return err
	}

	out.Successf("Deleted %d tables.", len(names))
	return nil
}
