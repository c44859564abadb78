// Package config provides settings structures and persistence for csvcatalog.
package config

// Settings represents the persisted application settings.
type Settings struct {
	DBPath     string            `json:"db_path" mapstructure:"db_path"`
	Encryption bool              `json:"encryption" mapstructure:"encryption"`
	Filters    map[string]string `json:"filters" mapstructure:"filters"`
	Logging    LoggingConfig     `json:"logging" mapstructure:"logging"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // json or text
	Output string `json:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultSettings returns Settings with sensible default values.
func DefaultSettings() *Settings {
	return &Settings{
		DBPath:     "",
		Encryption: false,
		Filters:    map[string]string{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ApplyOverrides applies CLI flag values on top of loaded settings.
// Empty values leave the corresponding setting untouched.
func (s *Settings) ApplyOverrides(dbPath, logLevel, logFormat string) {
	if dbPath != "" {
		s.DBPath = dbPath
	}
	if logLevel != "" {
		s.Logging.Level = logLevel
	}
	if logFormat != "" {
		s.Logging.Format = logFormat
	}
}

// FilterPattern resolves a saved filter by name. Returns the pattern and
// whether the name was found.
func (s *Settings) FilterPattern(name string) (string, bool) {
	pattern, ok := s.Filters[name]
	return pattern, ok
}
