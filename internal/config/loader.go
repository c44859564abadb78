package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	appDirName       = "csvcatalog"
	settingsFileName = "settings.json"
)

// Dir returns the application's configuration directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	return dir, nil
}

// Path returns the path to the settings.json file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// Load reads settings from the default location. A missing or unreadable
// settings file yields default settings, matching first-run behavior.
func Load() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path), nil
}

// LoadFrom reads settings from an explicit file path. Missing or malformed
// files fall back to defaults rather than failing: a broken settings file
// should never lock the user out of the tool.
func LoadFrom(path string) *Settings {
	s := DefaultSettings()

	if _, err := os.Stat(path); err != nil {
		return s
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return DefaultSettings()
	}
	if err := v.Unmarshal(s); err != nil {
		return DefaultSettings()
	}
	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	return s
}

// Save writes settings to the default location.
func (s *Settings) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SaveTo writes settings as indented JSON to the given path.
func (s *Settings) SaveTo(path string) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
