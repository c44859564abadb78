// Package storage manages catalog tables: creation, bulk insert, deletion,
// table metadata, and raw SQL execution.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomashevich/csvcatalog/internal/logger"
	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/sqlutil"
	"github.com/tomashevich/csvcatalog/internal/types"
)

// Store executes catalog mutations against the database.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// NewStore creates a Store over the given database handle.
func NewStore(db *sql.DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Store{db: db, log: log}
}

// CreateTable creates a table with the given columns, all typed TEXT, and
// records its creation time in the meta table. Identifiers are validated
// before being interpolated.
func (s *Store) CreateTable(ctx context.Context, name string, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("table '%s' needs at least one column", name)
	}

	quotedName, err := sqlutil.QuoteIdentifierSafe(name)
	if err != nil {
		return err
	}
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		quotedCol, err := sqlutil.QuoteIdentifierSafe(col)
		if err != nil {
			return err
		}
		defs = append(defs, quotedCol+" TEXT")
	}

	query := "CREATE TABLE IF NOT EXISTS " + quotedName + " (" + strings.Join(defs, ", ") + ")"
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	if err := s.ensureMeta(ctx); err != nil {
		return err
	}
	createdAt := time.Now().Format("2006-01-02 15:04:05")
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO "+schema.MetaTable+" (table_name, description, created_at) VALUES (?, '', ?) "+
			"ON CONFLICT(table_name) DO NOTHING",
		name, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record table metadata: %w", err)
	}

	s.log.WithTable(name).Debugw("table created", "columns", len(columns))
	return nil
}

// InsertRows bulk-inserts rows into a table inside a single transaction.
// Every row must have exactly len(columns) values.
func (s *Store) InsertRows(ctx context.Context, table string, columns []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	quotedTable, err := sqlutil.QuoteIdentifierSafe(table)
	if err != nil {
		return err
	}
	quotedCols := make([]string, 0, len(columns))
	for _, col := range columns {
		quoted, err := sqlutil.QuoteIdentifierSafe(col)
		if err != nil {
			return err
		}
		quotedCols = append(quotedCols, quoted)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := "INSERT INTO " + quotedTable + " (" + strings.Join(quotedCols, ", ") + ") VALUES (" + placeholders + ")"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			tx.Rollback()
			return fmt.Errorf("row %d has %d values, expected %d", i+1, len(row), len(columns))
		}
		args := make([]any, len(row))
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}

	s.log.WithTable(table).Infow("rows inserted", "count", len(rows))
	return nil
}

// DropTable drops a table and its metadata entry.
func (s *Store) DropTable(ctx context.Context, name string) error {
	quoted, err := sqlutil.QuoteIdentifierSafe(name)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", name, err)
	}

	// Metadata cleanup is best-effort: the meta table may never have been created.
	_, _ = s.db.ExecContext(ctx, "DELETE FROM "+schema.MetaTable+" WHERE table_name = ?", name)

	s.log.WithTable(name).Infow("table dropped")
	return nil
}

// Purge drops every given table. Tables are dropped one by one so a failure
// reports which table it hit.
func (s *Store) Purge(ctx context.Context, tables []string) error {
	for _, name := range tables {
		if err := s.DropTable(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// SetDescription sets or updates the description of a table.
func (s *Store) SetDescription(ctx context.Context, table, description string) error {
	if err := s.ensureMeta(ctx); err != nil {
		return err
	}
	createdAt := time.Now().Format("2006-01-02 15:04:05")
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+schema.MetaTable+" (table_name, description, created_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(table_name) DO UPDATE SET description = excluded.description",
		table, description, createdAt)
	if err != nil {
		return fmt.Errorf("failed to set description for %s: %w", table, err)
	}
	return nil
}

// ResultSet is the outcome of a raw SQL statement: column names and
// stringified rows. Statements without a result set yield empty columns.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// ExecSQL runs a raw SQL statement and collects any result set. SQLite
// returns an empty result set for non-SELECT statements, so a single code
// path covers both.
func (s *Store) ExecSQL(ctx context.Context, query string) (*ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sql error: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sql error: %w", err)
	}

	result := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sql error: %w", err)
		}
		row := make([]string, len(columns))
		for i := range values {
			row[i] = types.ToString(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	return result, rows.Err()
}

// QueryTable streams selected columns of a table, optionally limited.
// limit < 0 means no limit. The returned rows must be closed by the caller.
func (s *Store) QueryTable(ctx context.Context, table string, columns []string, limit int64) (*sql.Rows, error) {
	quotedTable, err := sqlutil.QuoteIdentifierSafe(table)
	if err != nil {
		return nil, err
	}
	quotedCols := make([]string, 0, len(columns))
	for _, col := range columns {
		quoted, err := sqlutil.QuoteIdentifierSafe(col)
		if err != nil {
			return nil, err
		}
		quotedCols = append(quotedCols, quoted)
	}

	query := "SELECT " + strings.Join(quotedCols, ", ") + " FROM " + quotedTable
	if limit >= 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.db.QueryContext(ctx, query)
}

func (s *Store) ensureMeta(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS "+schema.MetaTable+
			" (table_name TEXT PRIMARY KEY, description TEXT, created_at TEXT)")
	if err != nil {
		return fmt.Errorf("failed to create meta table: %w", err)
	}
	return nil
}
