package search

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tomashevich/csvcatalog/internal/logger"
	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/sqlutil"
	"github.com/tomashevich/csvcatalog/internal/types"
)

// Querier is the subset of *sql.DB the executor needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Executor runs resolved search units against the database.
type Executor struct {
	db  Querier
	log *logger.Logger
}

// NewExecutor creates an Executor over the given database handle.
func NewExecutor(db Querier, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Executor{db: db, log: log}
}

// Run executes one query per unit and aggregates the matches into a report
// ordered by resolution order. A failing unit is recorded in the report as a
// QueryExecutionError entry and does not abort the remaining units.
// Cancellation between units stops further queries; the report then carries
// the partial results and is marked interrupted.
func (e *Executor) Run(ctx context.Context, value string, units []*Unit) *Report {
	results := make([]UnitResult, 0, len(units))
	interrupted := false

	for _, unit := range units {
		if ctx.Err() != nil {
			interrupted = true
			break
		}

		result := e.runUnit(ctx, value, unit)
		if result.Err != nil && ctx.Err() != nil {
			// The unit failed because the search was interrupted, not
			// because of the unit itself. Keep what we have.
			interrupted = true
			break
		}
		results = append(results, result)
	}

	return newReport(value, results, interrupted)
}

func (e *Executor) runUnit(ctx context.Context, value string, unit *Unit) UnitResult {
	result := UnitResult{Table: unit.Table.Name, Columns: unit.ColumnNames()}
	log := e.log.WithTable(unit.Table.Name)

	query, args, err := buildUnitQuery(unit)
	if err != nil {
		result.Err = &QueryExecutionError{Table: unit.Table.Name, Err: err}
		return result
	}

	// Bind the search value once per column condition.
	bound := make([]any, len(args))
	for i := range args {
		bound[i] = value
	}

	rows, err := e.db.QueryContext(ctx, query, bound...)
	if err != nil {
		log.Debugw("unit query failed", "error", err)
		result.Err = &QueryExecutionError{Table: unit.Table.Name, Err: err}
		return result
	}
	defer rows.Close()

	matches, err := e.collectMatches(rows, value, unit)
	if err != nil {
		result.Err = &QueryExecutionError{Table: unit.Table.Name, Err: err}
		return result
	}
	result.Matches = matches

	log.Debugw("unit complete", "columns", len(unit.Columns), "matches", len(matches))
	return result
}

// collectMatches streams the matching rows and attributes each one to the
// unit columns that actually matched, using the same semantics as the SQL
// predicate. The full table is never materialized; only matching rows are
// retained.
func (e *Executor) collectMatches(rows *sql.Rows, value string, unit *Unit) ([]Match, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var matches []Match
	index := 0
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		index++
		row := Row{Index: index, Values: make(map[string]string, len(columns))}
		for i, col := range columns {
			row.Values[col] = types.ToString(values[i])
		}

		for _, col := range unit.Columns {
			cell, ok := row.Values[col.Name]
			if !ok {
				continue
			}
			if cellMatches(col, cell, value) {
				matches = append(matches, Match{
					Table:  unit.Table.Name,
					Column: col.Name,
					Row:    row,
					Value:  cell,
				})
			}
		}
	}
	return matches, rows.Err()
}

// buildUnitQuery constructs the single SELECT for a unit: one query per unit,
// OR-combining per-column conditions, with the search value parameterized.
// Text-affinity columns match case-insensitive substrings; all other columns
// require exact equality against the value's text form.
func buildUnitQuery(unit *Unit) (string, []string, error) {
	table, err := sqlutil.QuoteIdentifierSafe(unit.Table.Name)
	if err != nil {
		return "", nil, err
	}

	conditions := make([]string, 0, len(unit.Columns))
	params := make([]string, 0, len(unit.Columns))
	for _, col := range unit.Columns {
		quoted, err := sqlutil.QuoteIdentifierSafe(col.Name)
		if err != nil {
			return "", nil, err
		}
		if col.IsText() {
			conditions = append(conditions, "instr(lower("+quoted+"), lower(?)) > 0")
		} else {
			conditions = append(conditions, "CAST("+quoted+" AS TEXT) = ?")
		}
		params = append(params, col.Name)
	}

	query := "SELECT * FROM " + table + " WHERE " + strings.Join(conditions, " OR ")
	return query, params, nil
}

// cellMatches mirrors the SQL predicate on the scanned row, so match
// attribution agrees with the query that selected it.
func cellMatches(col schema.Column, cell, value string) bool {
	if col.IsText() {
		return strings.Contains(strings.ToLower(cell), strings.ToLower(value))
	}
	return cell == value
}
