package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomashevich/csvcatalog/internal/config"
	"github.com/tomashevich/csvcatalog/internal/database"
	"github.com/tomashevich/csvcatalog/internal/logger"
	"github.com/tomashevich/csvcatalog/internal/render"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override settings file values
var (
	dbPath    string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "csvcatalog",
	Short: "CSV catalog and search tool",
	Long: `A CLI tool for importing CSV files into a local SQLite catalog and
searching across its tables.

Features:
  - Import plain or compressed CSV files (gzip, bzip2, xz, zstd)
  - Search any table, column, or the whole catalog by value
  - Export tables back to CSV with regex row filters
  - Optional password encryption of the catalog file`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"Path to the catalog database file (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
}

// loadSettings reads the settings file and applies CLI overrides on top.
func loadSettings() *config.Settings {
	settings, err := config.Load()
	if err != nil {
		settings = config.DefaultSettings()
	}
	settings.ApplyOverrides(dbPath, logLevel, logFormat)
	return settings
}

// newLogger builds the logger from effective settings.
func newLogger(settings *config.Settings) *logger.Logger {
	log, err := logger.New(&settings.Logging)
	if err != nil {
		return logger.NewDefault()
	}
	return log
}

// openDatabase opens the catalog database per the effective settings,
// prompting for a password when the file is encrypted.
func openDatabase(ctx context.Context, settings *config.Settings) (*database.Manager, error) {
	manager := database.NewManager(database.Options{
		Path:      settings.DBPath,
		Encrypted: settings.Encryption,
		Prompt:    promptPassword,
	})
	if err := manager.Open(ctx); err != nil {
		return nil, err
	}
	return manager, nil
}

// promptPassword reads a password from the terminal without echo. The prompt
// goes to stderr so stdout stays clean for data output.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Database password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

// confirm asks a yes/no question on the command's input stream. Only "y" and
// "yes" count as confirmation.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// newRenderer builds the stdout renderer for a command.
func newRenderer(cmd *cobra.Command) *render.Renderer {
	return render.New(cmd.OutOrStdout())
}
