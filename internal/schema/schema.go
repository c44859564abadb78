// Package schema provides database schema inspection for csvcatalog.
//
// A Snapshot is a point-in-time read of table and column structure, taken once
// per command invocation. Resolution and execution work against the snapshot,
// never against the live database, so a search sees one consistent schema even
// if tables are created or dropped concurrently.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/tomashevich/csvcatalog/internal/sqlutil"
)

// MetaTable is the internal side table holding per-table descriptions and
// creation timestamps. It is excluded from listings, search, and purge.
const MetaTable = "_catalog_meta"

// Affinity is a SQLite column type affinity.
type Affinity int

const (
	AffinityText Affinity = iota
	AffinityNumeric
	AffinityInteger
	AffinityReal
	AffinityBlob
)

// TypeAffinity determines the affinity of a declared column type following
// SQLite's affinity rules.
func TypeAffinity(declared string) Affinity {
	upper := strings.ToUpper(declared)
	switch {
	case strings.Contains(upper, "INT"):
		return AffinityInteger
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		return AffinityText
	case upper == "", strings.Contains(upper, "BLOB"):
		return AffinityBlob
	case strings.Contains(upper, "REAL"), strings.Contains(upper, "FLOA"), strings.Contains(upper, "DOUB"):
		return AffinityReal
	default:
		return AffinityNumeric
	}
}

// Column describes one column of a table.
type Column struct {
	Name string
	Type string // declared type from PRAGMA table_info
}

// Affinity returns the column's type affinity.
func (c Column) Affinity() Affinity {
	return TypeAffinity(c.Type)
}

// IsText reports whether the column has TEXT affinity. Search uses
// case-insensitive substring matching on text columns and exact equality on
// everything else.
func (c Column) IsText() bool {
	return c.Affinity() == AffinityText
}

// Table describes one table: its columns in database order plus catalog
// metadata.
type Table struct {
	Name        string
	Columns     []Column
	RowCount    int64
	Description string
	CreatedAt   string
}

// ColumnNames returns the column names in database order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table has a column with the given name.
// Column names are case-sensitive, matching how they were created.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Snapshot is an ordered, read-only view of the database schema. Table order
// follows sqlite_master, which is creation order.
type Snapshot struct {
	tables *orderedmap.OrderedMap[string, *Table]
}

// NewSnapshot creates an empty Snapshot. Mainly useful in tests; production
// code obtains snapshots from an Inspector.
func NewSnapshot(tables ...*Table) *Snapshot {
	s := &Snapshot{tables: orderedmap.NewOrderedMap[string, *Table]()}
	for _, t := range tables {
		s.Add(t)
	}
	return s
}

// Add inserts a table into the snapshot, preserving insertion order.
func (s *Snapshot) Add(t *Table) {
	s.tables.Set(t.Name, t)
}

// Table returns the named table.
func (s *Snapshot) Table(name string) (*Table, bool) {
	return s.tables.Get(name)
}

// Tables returns all tables in snapshot order.
func (s *Snapshot) Tables() []*Table {
	out := make([]*Table, 0, s.tables.Len())
	for el := s.tables.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// Len returns the number of tables in the snapshot.
func (s *Snapshot) Len() int {
	return s.tables.Len()
}

// Querier is the subset of *sql.DB the inspector needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Inspector reads schema information from a SQLite database.
type Inspector struct {
	db Querier
}

// NewInspector creates an Inspector over the given database handle.
func NewInspector(db Querier) *Inspector {
	return &Inspector{db: db}
}

// Snapshot captures the current schema: user tables in creation order, each
// with its columns, row count, and catalog metadata.
func (i *Inspector) Snapshot(ctx context.Context) (*Snapshot, error) {
	names, err := i.listTableNames(ctx)
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot()
	for _, name := range names {
		table, err := i.describeTable(ctx, name)
		if err != nil {
			return nil, err
		}
		snap.Add(table)
	}
	return snap, nil
}

func (i *Inspector) listTableNames(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> ?",
		MetaTable)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table names: %w", err)
	}
	return names, nil
}

func (i *Inspector) describeTable(ctx context.Context, name string) (*Table, error) {
	quoted, err := sqlutil.QuoteIdentifierSafe(name)
	if err != nil {
		return nil, err
	}

	columns, err := i.listColumns(ctx, quoted)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", name, err)
	}

	table := &Table{Name: name, Columns: columns}

	if err := i.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&table.RowCount); err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", name, err)
	}

	// Metadata is best-effort: the meta table may not exist yet.
	var description, createdAt sql.NullString
	err = i.db.QueryRowContext(ctx,
		"SELECT description, created_at FROM "+MetaTable+" WHERE table_name = ?",
		name).Scan(&description, &createdAt)
	if err == nil {
		table.Description = description.String
		table.CreatedAt = createdAt.String
	}

	return table, nil
}

func (i *Inspector) listColumns(ctx context.Context, quotedName string) ([]Column, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA table_info("+quotedName+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			cid        int
			name       string
			typ        string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return nil, err
		}
		columns = append(columns, Column{Name: name, Type: typ})
	}
	return columns, rows.Err()
}
