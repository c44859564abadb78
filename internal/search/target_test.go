package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargets_EmptyListMeansAllTables(t *testing.T) {
	specs, err := ParseTargets(nil)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, KindAllTables, specs[0].Kind)

	specs, err = ParseTargets([]string{})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, KindAllTables, specs[0].Kind)
}

func TestParseTargets_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		expected TargetSpec
	}{
		{
			name:     "bare table",
			target:   "users",
			expected: TargetSpec{Kind: KindTable, Table: "users", Raw: "users"},
		},
		{
			name:     "table and column",
			target:   "users.email",
			expected: TargetSpec{Kind: KindTableColumn, Table: "users", Column: "email", Raw: "users.email"},
		},
		{
			name:     "wildcard column",
			target:   "*.status",
			expected: TargetSpec{Kind: KindAnyTableColumn, Column: "status", Raw: "*.status"},
		},
		{
			name:     "bare star is a table name",
			target:   "*",
			expected: TargetSpec{Kind: KindTable, Table: "*", Raw: "*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, err := ParseTargets([]string{tt.target})
			require.NoError(t, err)
			require.Len(t, specs, 1)
			assert.Equal(t, tt.expected, specs[0])
		})
	}
}

func TestParseTargets_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"two dots", "a.b.c"},
		{"many dots", "a.b.c.d"},
		{"lone dot", "."},
		{"trailing dot", "users."},
		{"leading dot", ".email"},
		{"empty token", ""},
		{"wildcard with empty column", "*."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTargets([]string{tt.target})
			require.Error(t, err)

			var malformed *MalformedTargetError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.target, malformed.Target)
		})
	}
}

func TestParseTargets_FirstErrorAborts(t *testing.T) {
	_, err := ParseTargets([]string{"users", "a.b.c", "products"})

	var malformed *MalformedTargetError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "a.b.c", malformed.Target)
}

func TestParseTargets_PreservesOrder(t *testing.T) {
	specs, err := ParseTargets([]string{"products", "users.name", "*.id"})
	require.NoError(t, err)
	require.Len(t, specs, 3)

	assert.Equal(t, KindTable, specs[0].Kind)
	assert.Equal(t, "products", specs[0].Table)
	assert.Equal(t, KindTableColumn, specs[1].Kind)
	assert.Equal(t, KindAnyTableColumn, specs[2].Kind)
}
