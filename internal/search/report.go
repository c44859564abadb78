package search

import "sort"

// Row is one matched row: its ordinal in the unit's result stream plus the
// full row snapshot, column name to rendered value.
type Row struct {
	Index  int
	Values map[string]string
}

// Match is one result: a (table, column, row) triple whose cell matched the
// search value. Immutable once created.
type Match struct {
	Table  string
	Column string
	Row    Row
	Value  string
}

// UnitResult holds the outcome of one search unit: either its matches or the
// execution error that prevented them.
type UnitResult struct {
	Table   string
	Columns []string
	Matches []Match
	Err     error
}

// Report is the aggregated outcome of one search invocation. Units appear in
// resolution order. Interrupted is set when the search was cancelled before
// all units ran; the results gathered so far are still present.
type Report struct {
	Value       string
	Units       []UnitResult
	Interrupted bool
}

// newReport assembles per-unit results into the final report. Within each
// unit, matches are ordered by column (in unit column order) and then by row,
// so the report reads grouped by table, column, row. Identical (table,
// column, row) triples are never duplicated because each cell is checked
// once; matches in different columns of the same row are all reported.
func newReport(value string, results []UnitResult, interrupted bool) *Report {
	for i := range results {
		orderMatches(&results[i])
	}
	return &Report{Value: value, Units: results, Interrupted: interrupted}
}

func orderMatches(result *UnitResult) {
	position := make(map[string]int, len(result.Columns))
	for i, name := range result.Columns {
		position[name] = i
	}
	sort.SliceStable(result.Matches, func(a, b int) bool {
		ma, mb := result.Matches[a], result.Matches[b]
		if position[ma.Column] != position[mb.Column] {
			return position[ma.Column] < position[mb.Column]
		}
		return ma.Row.Index < mb.Row.Index
	})
}

// TotalMatches returns the number of matches across all units.
func (r *Report) TotalMatches() int {
	total := 0
	for _, unit := range r.Units {
		total += len(unit.Matches)
	}
	return total
}

// HasErrors reports whether any unit failed during execution.
func (r *Report) HasErrors() bool {
	for _, unit := range r.Units {
		if unit.Err != nil {
			return true
		}
	}
	return false
}

// Empty reports whether the search produced no matches and no errors.
func (r *Report) Empty() bool {
	return r.TotalMatches() == 0 && !r.HasErrors()
}
