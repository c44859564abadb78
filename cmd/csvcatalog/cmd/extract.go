package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/extract"
	"github.com/tomashevich/csvcatalog/internal/storage"
)

var (
	extractTable     string
	extractSeparator string
	extractColumns   []string
	extractRenames   []string
	extractLimit     int
	extractYes       bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Import a CSV file into the catalog",
	Long: `Extract reads a CSV file and imports it as a new catalog table. Files
compressed with gzip, bzip2, xz, or zstd are decompressed automatically.

Headers become column names: invalid characters are replaced and renames
can be given explicitly. A preview of the file is shown before anything
is written; pass --yes to skip the confirmation.

Example:
  csvcatalog extract users.csv.gz --table users --rename "User ID=user_id"`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractTable, "table", "t", "",
		"Table name (default: derived from the file name)")
	extractCmd.Flags().StringVarP(&extractSeparator, "separator", "s", ",",
		"Field separator")
	extractCmd.Flags().StringSliceVar(&extractColumns, "columns", nil,
		"Import only these columns (names after renaming)")
	extractCmd.Flags().StringArrayVar(&extractRenames, "rename", nil,
		"Rename a header, as 'CSV Header=column_name' (repeatable)")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0,
		"Import at most this many rows (0 = all)")
	extractCmd.Flags().BoolVarP(&extractYes, "yes", "y", false,
		"Skip the import confirmation")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	log := newLogger(settings)
	defer log.Sync()
	out := newRenderer(cmd)

	path := args[0]

	sep, err := parseSeparator(extractSeparator)
	if err != nil {
		return err
	}
	renames, err := parseRenames(extractRenames)
	if err != nil {
		return err
	}

	tableName := extractTable
	if tableName == "" {
		tableName = extract.DefaultTableName(path)
		if tableName == "" {
			return fmt.Errorf("could not derive a table name from '%s', use --table", path)
		}
	}

	result, err := extract.Read(extract.Options{
		Path:      path,
		Separator: sep,
		Renames:   renames,
		Columns:   extractColumns,
		Limit:     extractLimit,
	})
	if err != nil {
		return err
	}

	if !extractYes {
		preview := result.Rows
		if len(preview) > 5 {
			preview = preview[:5]
		}
		out.Printf("Importing '%s' into table '%s' (%d rows):", path, tableName, len(result.Rows))
		out.Printf("")
		out.Table(result.Columns, preview)
		out.Printf("")
		if !confirm(cmd, "Proceed with import?") {
			out.Printf("Import cancelled.")
			return nil
		}
	}

	ctx := context.Background()
	manager, err := openDatabase(ctx, settings)
	if err != nil {
		return err
	}
	defer manager.Close()

	store := storage.NewStore(manager.DB, log)
	if err := store.CreateTable(ctx, tableName, result.Columns); err != nil {
		return err
	}
	if err := store.InsertRows(ctx, tableName, result.Columns, result.Rows); err != nil {
		return err
	}

	out.Successf("Imported %d rows into '%s'.", len(result.Rows), tableName)
	return nil
}

func parseSeparator(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case "\\t", "tab":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got '%s'", s)
	}
	return runes[0], nil
}

func parseRenames(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	renames := make(map[string]string, len(args))
	for _, arg := range args {
		header, name, found := strings.Cut(arg, "=")
		if !found || header == "" || name == "" {
			return nil, fmt.Errorf("invalid rename '%s': expected 'CSV Header=column_name'", arg)
		}
		renames[header] = name
	}
	return renames, nil
}
