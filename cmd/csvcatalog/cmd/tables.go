package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/schema"
)

var tablesFilter string

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List catalog tables",
	Long: `Tables lists every table in the catalog with its row count, column
count, creation time, and description.`,
	Args: cobra.NoArgs,
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesFilter, "filter", "f", "",
		"Only show tables whose name or description contains this text")

	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	log := newLogger(settings)
	defer log.Sync()

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

	tables := snap.Tables()
	if tablesFilter != "" {
		needle := strings.ToLower(tablesFilter)
		filtered := tables[:0]
		for _, tbl := range tables {
			if strings.Contains(strings.ToLower(tbl.Name), needle) ||
				strings.Contains(strings.ToLower(tbl.Description), needle) {
				filtered = append(filtered, tbl)
			}
		}
		tables = filtered
	}

	newRenderer(cmd).TableList(tables)
	return nil
}
