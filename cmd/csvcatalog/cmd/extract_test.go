package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCommandStructure(t *testing.T) {
	assert.NotNil(t, extractCmd)
	assert.Equal(t, "extract <file>", extractCmd.Use)
	assert.NotEmpty(t, extractCmd.Short)
	assert.NotNil(t, extractCmd.RunE)

	flags := extractCmd.Flags()
	for _, name := range []string{"table", "separator", "columns", "rename", "limit", "yes"} {
		assert.NotNil(t, flags.Lookup(name), "Expected flag %s not found", name)
	}
}

func TestParseSeparator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    rune
		wantErr bool
	}{
		{"default", "", ',', false},
		{"comma", ",", ',', false},
		{"semicolon", ";", ';', false},
		{"tab escape", "\\t", '\t', false},
		{"tab word", "tab", '\t', false},
		{"unicode", "§", '§', false},
		{"too long", ";;", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSeparator(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRenames(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		renames, err := parseRenames(nil)
		require.NoError(t, err)
		assert.Nil(t, renames)
	})

	t.Run("valid", func(t *testing.T) {
		renames, err := parseRenames([]string{"User ID=user_id", "Full Name=name"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"User ID":   "user_id",
			"Full Name": "name",
		}, renames)
	})

	t.Run("missing equals", func(t *testing.T) {
		_, err := parseRenames([]string{"user_id"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid rename")
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := parseRenames([]string{"User ID="})
		require.Error(t, err)
	})
}
