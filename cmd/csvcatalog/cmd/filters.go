package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/config"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Manage saved export filters",
	Long: `Filters manages named regular expressions for use with 'export --filter'.
Without a subcommand the saved filters are listed.`,
	Args: cobra.NoArgs,
	RunE: runFiltersList,
}

var filtersAddCmd = &cobra.Command{
	Use:   "add <name> <pattern>",
	Short: "Save a named filter",
	Args:  cobra.ExactArgs(2),
	RunE:  runFiltersAdd,
}

var filtersRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE:  runFiltersRemove,
}

func init() {
	filtersCmd.AddCommand(filtersAddCmd)
	filtersCmd.AddCommand(filtersRemoveCmd)
	rootCmd.AddCommand(filtersCmd)
}

func runFiltersList(cmd *cobra.Command, args []string) error {
	newRenderer(cmd).Filters(loadSettings().Filters)
	return nil
}

func runFiltersAdd(cmd *cobra.Command, args []string) error {
	name, pattern := args[0], args[1]

	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	// Persisted settings are edited without CLI overrides so flag values
	// never leak into the settings file.
	settings, err := config.Load()
	if err != nil {
		return err
	}
	settings.Filters[name] = pattern
	if err := settings.Save(); err != nil {
		return err
	}

	newRenderer(cmd).Successf("Filter '%s' saved.", name)
	return nil
}

func runFiltersRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	settings, err := config.Load()
	if err != nil {
		return err
	}
	if _, ok := settings.Filters[name]; !ok {
		return fmt.Errorf("no saved filter named '%s'", name)
	}
	delete(settings.Filters, name)
	if err := settings.Save(); err != nil {
		return err
	}

	newRenderer(cmd).Successf("Filter '%s' removed.", name)
	return nil
}
