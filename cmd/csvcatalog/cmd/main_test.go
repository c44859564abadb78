package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecute(t *testing.T) {
	// Execute() calls os.Exit(1) on error, so the error path cannot be
	// exercised here. This is primarily a compile-time check.
	assert.NotNil(t, Execute)
}

func TestVersionVariables(t *testing.T) {
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, Commit, "Commit should not be empty")
}

func TestCLIFlagsVariables(t *testing.T) {
	// Package-level variables that get set by cobra flags.
	assert.Equal(t, "", dbPath)
	assert.Equal(t, "", logLevel)
	assert.Equal(t, "", logFormat)
}

func TestCommandFlagDefaults(t *testing.T) {
	assert.Equal(t, "", extractTable)
	assert.Equal(t, ",", extractSeparator)
	assert.False(t, extractYes)
	assert.False(t, deleteYes)
	assert.False(t, purgeYes)
	assert.Equal(t, "", exportOutput)
	assert.Equal(t, "", tablesFilter)
}
