package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/export"
	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/storage"
)

var (
	exportOutput  string
	exportColumns []string
	exportLimit   int64
	exportFilters []string
)

var exportCmd = &cobra.Command{
	Use:   "export <table> [table...]",
	Short: "Export tables to CSV files",
	Long: `Export writes catalog tables back out as CSV files. Output ending in
.gz or .zst is compressed. Filters keep only rows where a column matches a
regular expression; the pattern can also be the name of a saved filter.

With one table --output names the file; with several it names a directory
and each table is written as <table>.csv inside it.

Example:
  csvcatalog export users --columns name,email --filter "email=@example\.com$"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"Output file, or directory when exporting several tables")
	exportCmd.Flags().StringSliceVar(&exportColumns, "columns", nil,
		"Export only these columns (single table only)")
	exportCmd.Flags().Int64Var(&exportLimit, "limit", 0,
		"Export at most this many rows per table (0 = all)")
	exportCmd.Flags().StringArrayVar(&exportFilters, "filter", nil,
		"Row filter, as 'column=pattern' or 'column=saved_filter' (repeatable)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	log := newLogger(settings)
	defer log.Sync()
	out := newRenderer(cmd)

	if len(args) > 1 && len(exportColumns) > 0 {
		return fmt.Errorf("--columns applies to a single table export")
	}

	filters := make([]export.Filter, 0, len(exportFilters))
	for _, arg := range exportFilters {
		f, err := export.ParseFilter(arg, settings)
		if err != nil {
			return err
		}
		filters = append(filters, f)
	}

	paths, err := outputPaths(args, exportOutput)
	if err != nil {
		return err
	}

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
	store := storage.NewStore(manager.DB, log)

	for i, name := range args {
		table, ok := snap.Table(name)
		if !ok {
			return fmt.Errorf("table '%s' does not exist", name)
		}
		written, err := export.ToFile(ctx, store, table, export.Options{
			Columns: exportColumns,
			Limit:   exportLimit,
			Filters: filters,
		}, paths[i])
		if err != nil {
			return err
		}
		out.Successf("Exported %d rows to '%s'.", written, paths[i])
	}
	return nil
}

// outputPaths maps each table to its output file. A single table exports to
// --output directly (default <table>.csv); several tables export into the
// --output directory.
func outputPaths(tables []string, output string) ([]string, error) {
	if len(tables) == 1 {
		path := output
		if path == "" {
			path = export.DefaultFileName(tables[0])
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, export.DefaultFileName(tables[0]))
		}
		return []string{path}, nil
	}

	dir := output
	if dir == "" {
		dir = "."
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory (required when exporting several tables)", dir)
	}

	paths := make([]string, len(tables))
	for i, name := range tables {
		paths[i] = filepath.Join(dir, export.DefaultFileName(name))
	}
	return paths, nil
}
