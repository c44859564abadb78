package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomashevich/csvcatalog/internal/config"
	"github.com/tomashevich/csvcatalog/internal/crypto"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change application settings",
	Long: `Settings manages the persisted application settings: the catalog
database file and whether it is encrypted. Without a subcommand the
current settings are shown.`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsDBFileCmd = &cobra.Command{
	Use:   "dbfile <path>",
	Short: "Set the catalog database file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsDBFile,
}

var settingsEncryptionCmd = &cobra.Command{
	Use:   "encryption on|off",
	Short: "Enable or disable database encryption",
	Long: `Enabling encryption encrypts the current database file in place with a
password. Disabling it asks for the password and decrypts the file.
Accepts on/off or true/false.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsEncryption,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsDBFileCmd)
	settingsCmd.AddCommand(settingsEncryptionCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	path, err := config.Path()
	if err != nil {
		return err
	}

	out := newRenderer(cmd)
	out.Printf("Settings file: %s", path)
	dbFile := settings.DBPath
	if dbFile == "" {
		dbFile = "(not set)"
	}
	out.Printf("Database file: %s", dbFile)
	out.Printf("Encryption: %t", settings.Encryption)
	out.Printf("Saved filters: %d", len(settings.Filters))
	return nil
}

func runSettingsDBFile(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	settings.DBPath = args[0]
	if err := settings.Save(); err != nil {
		return err
	}

	newRenderer(cmd).Successf("Database file set to '%s'.", args[0])
	return nil
}

func runSettingsEncryption(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if settings.DBPath == "" {
		return fmt.Errorf("no database file is configured, use 'settings dbfile' first")
	}

	out := newRenderer(cmd)

	switch args[0] {
	case "on", "true":
		if settings.Encryption {
			out.Printf("Encryption is already enabled.")
			return nil
		}
		password, err := promptPassword()
		if err != nil {
			return err
		}
		if err := crypto.EncryptFile(settings.DBPath, password); err != nil {
			return err
		}
		settings.Encryption = true
		if err := settings.Save(); err != nil {
			return err
		}
		out.Successf("Encryption enabled.")
	case "off", "false":
		if !settings.Encryption {
			out.Printf("Encryption is already disabled.")
			return nil
		}
		password, err := promptPassword()
		if err != nil {
			return err
		}
		if err := crypto.DecryptFile(settings.DBPath, password); err != nil {
			return err
		}
		settings.Encryption = false
		if err := settings.Save(); err != nil {
			return err
		}
		out.Successf("Encryption disabled.")
	default:
		return fmt.Errorf("expected 'on' or 'off', got '%s'", args[0])
	}
	return nil
}
