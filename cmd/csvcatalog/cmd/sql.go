package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/database"
	"github.com/tomashevich/csvcatalog/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <statement>",
	Short: "Run a raw SQL statement against the catalog",
	Long: `Sql runs an arbitrary SQL statement against the catalog database and
prints any result set.

Example:
  csvcatalog sql "SELECT name, email FROM users WHERE id < '100'"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func init() {
	rootCmd.AddCommand(sqlCmd)
}

func runSQL(cmd *cobra.Command, args []string) error {
	settings := loadSettings()
	log := newLogger(settings)
	defer log.Sync()

	query := strings.Join(args, " ")

	ctx := database.SetupSignalHandler()
	manager, err := openDatabase(ctx, settings)
	if err != nil {
		return err
	}
	defer manager.Close()

	result, err := storage.NewStore(manager.DB, log).ExecSQL(ctx, query)
	if err != nil {
		return err
	}

	out := newRenderer(cmd)
	if len(result.Rows) == 0 && len(result.Columns) == 0 {
		out.Printf("OK.")
		return nil
	}
	out.ResultSet(result.Columns, result.Rows)
	return nil
}
