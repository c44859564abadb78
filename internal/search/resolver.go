package search

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/tomashevich/csvcatalog/internal/schema"
)

// Unit is one resolved (table, column set) pair ready for query execution.
// Columns are distinct and keep the order of first mention; whole-table
// expansions contribute columns in database order.
type Unit struct {
	Table   *schema.Table
	Columns []schema.Column
}

// ColumnNames returns the names of the unit's columns.
func (u *Unit) ColumnNames() []string {
	names := make([]string, len(u.Columns))
	for i, c := range u.Columns {
		names[i] = c.Name
	}
	return names
}

// unitBuilder accumulates the distinct column set for one table.
type unitBuilder struct {
	table   *schema.Table
	columns *orderedmap.OrderedMap[string, schema.Column]
}

func (b *unitBuilder) add(col schema.Column) {
	if _, exists := b.columns.Get(col.Name); !exists {
		b.columns.Set(col.Name, col)
	}
}

func (b *unitBuilder) build() *Unit {
	unit := &Unit{Table: b.table, Columns: make([]schema.Column, 0, b.columns.Len())}
	for el := b.columns.Front(); el != nil; el = el.Next() {
		unit.Columns = append(unit.Columns, el.Value)
	}
	return unit
}

// Resolve expands parsed target specs against a schema snapshot into a
// deduplicated, ordered sequence of search units.
//
// Explicit targets fail fast: an unknown table or column aborts resolution
// before any query runs. Wildcard (*.column) targets are permissive: tables
// lacking the column are silently skipped, and a column that exists nowhere
// yields no units rather than an error.
//
// Units targeting the same table are merged; a merged unit keeps the position
// of the table's first mention.
func Resolve(specs []TargetSpec, snap *schema.Snapshot) ([]*Unit, error) {
	builders := orderedmap.NewOrderedMap[string, *unitBuilder]()

	addColumns := func(table *schema.Table, cols []schema.Column) {
		b, ok := builders.Get(table.Name)
		if !ok {
			b = &unitBuilder{table: table, columns: orderedmap.NewOrderedMap[string, schema.Column]()}
			builders.Set(table.Name, b)
		}
		for _, col := range cols {
			b.add(col)
		}
	}

	for _, spec := range specs {
		switch spec.Kind {
		case KindAllTables:
			for _, table := range snap.Tables() {
				addColumns(table, table.Columns)
			}

		case KindTable:
			table, ok := snap.Table(spec.Table)
			if !ok {
				return nil, &UnknownTableError{Table: spec.Table}
			}
			addColumns(table, table.Columns)

		case KindTableColumn:
			table, ok := snap.Table(spec.Table)
			if !ok {
				return nil, &UnknownTableError{Table: spec.Table}
			}
			col, ok := table.Column(spec.Column)
			if !ok {
				return nil, &UnknownColumnError{Table: spec.Table, Column: spec.Column}
			}
			addColumns(table, []schema.Column{col})

		case KindAnyTableColumn:
			for _, table := range snap.Tables() {
				if col, ok := table.Column(spec.Column); ok {
					addColumns(table, []schema.Column{col})
				}
			}
		}
	}

	units := make([]*Unit, 0, builders.Len())
	for el := builders.Front(); el != nil; el = el.Next() {
		units = append(units, el.Value.build())
	}
	return units, nil
}
