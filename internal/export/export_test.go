package export

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/tomashevich/csvcatalog/internal/config"
	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/storage"
)

func setupTable(t *testing.T) (*storage.Store, *schema.Table) {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := storage.NewStore(db, nil)
	require.NoError(t, store.CreateTable(ctx, "users", []string{"id", "name", "email"}))
	require.NoError(t, store.InsertRows(ctx, "users", []string{"id", "name", "email"}, [][]string{
		{"1", "Jane Doe", "jane@example.com"},
		{"2", "Bob", "bob@test.org"},
		{"3", "Eve", "eve@example.com"},
	}))

	snap, err := schema.NewInspector(db).Snapshot(ctx)
	require.NoError(t, err)
	table, ok := snap.Table("users")
	require.True(t, ok)
	return store, table
}

func TestParseFilter(t *testing.T) {
	t.Run("inline regex", func(t *testing.T) {
		f, err := ParseFilter("email=@example\\.com$", nil)
		require.NoError(t, err)
		assert.Equal(t, "email", f.Column)
		assert.True(t, f.Pattern.MatchString("jane@example.com"))
		assert.False(t, f.Pattern.MatchString("bob@test.org"))
	})

	t.Run("saved filter name", func(t *testing.T) {
		settings := config.DefaultSettings()
		settings.Filters["example_mail"] = "@example\\.com$"

		f, err := ParseFilter("email=example_mail", settings)
		require.NoError(t, err)
		assert.True(t, f.Pattern.MatchString("jane@example.com"))
	})

	t.Run("missing equals", func(t *testing.T) {
		_, err := ParseFilter("emailpattern", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "column=pattern")
	})

	t.Run("broken regex", func(t *testing.T) {
		_, err := ParseFilter("email=[", nil)
		require.Error(t, err)
	})
}

func TestTable_AllColumns(t *testing.T) {
	store, table := setupTable(t)

	var buf bytes.Buffer
	n, err := Table(context.Background(), store, table, Options{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	expected := "id,name,email\n" +
		"1,Jane Doe,jane@example.com\n" +
		"2,Bob,bob@test.org\n" +
		"3,Eve,eve@example.com\n"
	assert.Equal(t, expected, buf.String())
}

func TestTable_ColumnSubsetAndLimit(t *testing.T) {
	store, table := setupTable(t)

	var buf bytes.Buffer
	n, err := Table(context.Background(), store, table, Options{
		Columns: []string{"name"},
		Limit:   2,
	}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "name\nJane Doe\nBob\n", buf.String())
}

func TestTable_Filters(t *testing.T) {
	store, table := setupTable(t)

	f, err := ParseFilter("email=@example\\.com$", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := Table(context.Background(), store, table, Options{Filters: []Filter{f}}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotContains(t, buf.String(), "bob@test.org")
	assert.Contains(t, buf.String(), "jane@example.com")
}

func TestTable_UnknownColumn(t *testing.T) {
	store, table := setupTable(t)

	var buf bytes.Buffer
	_, err := Table(context.Background(), store, table, Options{Columns: []string{"missing"}}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no column 'missing'")
}

func TestTable_FilterColumnNotExported(t *testing.T) {
	store, table := setupTable(t)

	f, err := ParseFilter("email=.*", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Table(context.Background(), store, table, Options{
		Columns: []string{"name"},
		Filters: []Filter{f},
	}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not part of the export")
}

func TestToFile_Gzip(t *testing.T) {
	store, table := setupTable(t)
	path := filepath.Join(t.TempDir(), "users.csv.gz")

	n, err := ToFile(context.Background(), store, table, Options{}, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	gz, err := gzip.NewReader(file)
	require.NoError(t, err)
	content, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Contains(t, string(content), "jane@example.com")
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "users.csv", DefaultFileName("users"))
}
