// Package sqlutil provides SQL utility functions for csvcatalog.
package sqlutil

import (
	"regexp"
	"strings"
)

// QuoteIdentifier quotes a SQLite identifier (table name, column name) with
// double quotes. It escapes any embedded double quotes by doubling them.
// Example: my_table -> "my_table"
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// validIdentifierRegex matches valid identifier characters. SQLite accepts
// almost anything inside double quotes, but every identifier we create comes
// from user input (CSV headers, command arguments), so we restrict to
// alphanumeric and underscore, not starting with a digit.
var validIdentifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier checks if a name is an identifier we are willing to use
// for a table or column.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe quotes an identifier after validating it.
// Returns an error if the identifier contains invalid characters.
// Use this when identifiers come from untrusted sources.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// SanitizeIdentifier strips characters that are not valid in an identifier
// and trims leading digits and underscores. Used to derive table and column
// names from CSV headers and file names. Returns an empty string when
// nothing usable remains.
func SanitizeIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() > 0 {
				b.WriteRune(r)
			}
		case r == ' ' || r == '-' || r == '.':
			if b.Len() > 0 {
				b.WriteRune('_')
			}
		}
	}
	cleaned := strings.TrimLeft(b.String(), "_0123456789")
	if !IsValidIdentifier(cleaned) {
		return ""
	}
	return cleaned
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
