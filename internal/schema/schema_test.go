package schema

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeAffinity(t *testing.T) {
	tests := []struct {
		declared string
		expected Affinity
	}{
		{"TEXT", AffinityText},
		{"VARCHAR(255)", AffinityText},
		{"NVARCHAR(100)", AffinityText},
		{"CLOB", AffinityText},
		{"INTEGER", AffinityInteger},
		{"INT", AffinityInteger},
		{"BIGINT", AffinityInteger},
		{"REAL", AffinityReal},
		{"DOUBLE", AffinityReal},
		{"FLOAT", AffinityReal},
		{"BLOB", AffinityBlob},
		{"", AffinityBlob},
		{"NUMERIC", AffinityNumeric},
		{"DECIMAL(10,2)", AffinityNumeric},
		{"BOOLEAN", AffinityNumeric},
		{"DATE", AffinityNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeAffinity(tt.declared))
		})
	}
}

func TestColumnIsText(t *testing.T) {
	assert.True(t, Column{Name: "name", Type: "TEXT"}.IsText())
	assert.False(t, Column{Name: "id", Type: "INTEGER"}.IsText())
}

func TestTableHelpers(t *testing.T) {
	table := &Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: "INTEGER"},
			{Name: "name", Type: "TEXT"},
			{Name: "email", Type: "TEXT"},
		},
	}

	assert.Equal(t, []string{"id", "name", "email"}, table.ColumnNames())
	assert.True(t, table.HasColumn("email"))
	assert.False(t, table.HasColumn("Email"), "column lookup is case-sensitive")
	assert.False(t, table.HasColumn("status"))

	col, ok := table.Column("name")
	require.True(t, ok)
	assert.Equal(t, "TEXT", col.Type)
}

func TestSnapshot_PreservesOrder(t *testing.T) {
	snap := NewSnapshot(
		&Table{Name: "zebra"},
		&Table{Name: "alpha"},
		&Table{Name: "middle"},
	)

	require.Equal(t, 3, snap.Len())

	var names []string
	for _, tbl := range snap.Tables() {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"zebra", "alpha", "middle"}, names,
		"snapshot must preserve insertion order, not sort")

	_, ok := snap.Table("alpha")
	assert.True(t, ok)
	_, ok = snap.Table("missing")
	assert.False(t, ok)
}

func TestInspector_Snapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WithArgs(MetaTable).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("users").
			AddRow("products"))

	mock.ExpectQuery(`PRAGMA table_info\("users"\)`).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 0, nil, 0).
			AddRow(1, "name", "TEXT", 0, nil, 0).
			AddRow(2, "email", "TEXT", 0, nil, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT description, created_at FROM _catalog_meta").
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"description", "created_at"}).
			AddRow("user accounts", "2025-01-02 10:00:00"))

	mock.ExpectQuery(`PRAGMA table_info\("products"\)`).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 0, nil, 0).
			AddRow(1, "name", "TEXT", 0, nil, 0).
			AddRow(2, "status", "TEXT", 0, nil, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery("SELECT description, created_at FROM _catalog_meta").
		WithArgs("products").
		WillReturnRows(sqlmock.NewRows([]string{"description", "created_at"}))

	snap, err := NewInspector(db).Snapshot(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, snap.Len())

	users, ok := snap.Table("users")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "email"}, users.ColumnNames())
	assert.Equal(t, int64(2), users.RowCount)
	assert.Equal(t, "user accounts", users.Description)
	assert.Equal(t, "2025-01-02 10:00:00", users.CreatedAt)

	products, ok := snap.Table("products")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "status"}, products.ColumnNames())
	assert.Equal(t, int64(7), products.RowCount)
	assert.Empty(t, products.Description)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_EmptyDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WithArgs(MetaTable).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	snap, err := NewInspector(db).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
	assert.Empty(t, snap.Tables())

	assert.NoError(t, mock.ExpectationsWereMet())
}
