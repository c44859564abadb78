package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomashevich/csvcatalog/internal/schema"
)

// fixtureSnapshot builds the schema used throughout the resolver tests:
// users(id, name, email) and products(id, name, status).
func fixtureSnapshot() *schema.Snapshot {
	return schema.NewSnapshot(
		&schema.Table{
			Name: "users",
			Columns: []schema.Column{
				{Name: "id", Type: "INTEGER"},
				{Name: "name", Type: "TEXT"},
				{Name: "email", Type: "TEXT"},
			},
		},
		&schema.Table{
			Name: "products",
			Columns: []schema.Column{
				{Name: "id", Type: "INTEGER"},
				{Name: "name", Type: "TEXT"},
				{Name: "status", Type: "TEXT"},
			},
		},
	)
}

func mustParse(t *testing.T, targets ...string) []TargetSpec {
	t.Helper()
	specs, err := ParseTargets(targets)
	require.NoError(t, err)
	return specs
}

func TestResolve_NoTargets_OneUnitPerTableInSchemaOrder(t *testing.T) {
	units, err := Resolve(mustParse(t), fixtureSnapshot())
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "users", units[0].Table.Name)
	assert.Equal(t, []string{"id", "name", "email"}, units[0].ColumnNames())
	assert.Equal(t, "products", units[1].Table.Name)
	assert.Equal(t, []string{"id", "name", "status"}, units[1].ColumnNames())
}

func TestResolve_UnknownTable(t *testing.T) {
	_, err := Resolve(mustParse(t, "orders"), fixtureSnapshot())

	var unknown *UnknownTableError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "orders", unknown.Table)
}

func TestResolve_UnknownColumn(t *testing.T) {
	_, err := Resolve(mustParse(t, "users.status"), fixtureSnapshot())

	var unknown *UnknownColumnError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "users", unknown.Table)
	assert.Equal(t, "status", unknown.Column)
}

func TestResolve_TableNamesAreCaseSensitive(t *testing.T) {
	_, err := Resolve(mustParse(t, "Users"), fixtureSnapshot())

	var unknown *UnknownTableError
	require.ErrorAs(t, err, &unknown)
}

func TestResolve_WildcardSkipsTablesWithoutColumn(t *testing.T) {
	units, err := Resolve(mustParse(t, "*.status"), fixtureSnapshot())
	require.NoError(t, err)

	// users lacks status and is silently skipped, not an error.
	require.Len(t, units, 1)
	assert.Equal(t, "products", units[0].Table.Name)
	assert.Equal(t, []string{"status"}, units[0].ColumnNames())
}

func TestResolve_WildcardAcrossAllTables(t *testing.T) {
	units, err := Resolve(mustParse(t, "*.name"), fixtureSnapshot())
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "users", units[0].Table.Name)
	assert.Equal(t, []string{"name"}, units[0].ColumnNames())
	assert.Equal(t, "products", units[1].Table.Name)
	assert.Equal(t, []string{"name"}, units[1].ColumnNames())
}

func TestResolve_WildcardColumnExistsNowhere(t *testing.T) {
	units, err := Resolve(mustParse(t, "*.archived"), fixtureSnapshot())
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestResolve_MergesUnitsForSameTable(t *testing.T) {
	t.Run("table absorbs narrower column spec", func(t *testing.T) {
		units, err := Resolve(mustParse(t, "users", "users.name"), fixtureSnapshot())
		require.NoError(t, err)

		require.Len(t, units, 1, "never two units for the same table")
		assert.Equal(t, "users", units[0].Table.Name)
		assert.ElementsMatch(t, []string{"id", "name", "email"}, units[0].ColumnNames())
	})

	t.Run("column spec then whole table unions to full set", func(t *testing.T) {
		units, err := Resolve(mustParse(t, "users.name", "users"), fixtureSnapshot())
		require.NoError(t, err)

		require.Len(t, units, 1)
		assert.ElementsMatch(t, []string{"id", "name", "email"}, units[0].ColumnNames())
	})

	t.Run("repeated column deduplicated", func(t *testing.T) {
		units, err := Resolve(mustParse(t, "users.name", "users.name"), fixtureSnapshot())
		require.NoError(t, err)

		require.Len(t, units, 1)
		assert.Equal(t, []string{"name"}, units[0].ColumnNames())
	})
}

func TestResolve_MergedUnitKeepsFirstMentionPosition(t *testing.T) {
	units, err := Resolve(mustParse(t, "products.status", "users", "products"), fixtureSnapshot())
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "products", units[0].Table.Name)
	assert.ElementsMatch(t, []string{"id", "name", "status"}, units[0].ColumnNames())
	assert.Equal(t, "users", units[1].Table.Name)
}

func TestResolve_PreservesTargetOrder(t *testing.T) {
	units, err := Resolve(mustParse(t, "products", "users"), fixtureSnapshot())
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "products", units[0].Table.Name)
	assert.Equal(t, "users", units[1].Table.Name)
}

func TestResolve_FailsFastBeforePermissiveTargets(t *testing.T) {
	// One explicit bad target aborts the whole resolution even when other
	// targets would resolve fine.
	_, err := Resolve(mustParse(t, "*.name", "orders"), fixtureSnapshot())

	var unknown *UnknownTableError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "orders", unknown.Table)
}

func TestResolve_EmptySchema(t *testing.T) {
	units, err := Resolve(mustParse(t), schema.NewSnapshot())
	require.NoError(t, err)
	assert.Empty(t, units)
}
