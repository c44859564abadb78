package search

import "fmt"

// UnknownTableError is returned when an explicit target names a table that is
// not in the schema snapshot.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table '%s'", e.Table)
}

// UnknownColumnError is returned when an explicit TABLE.COLUMN target names a
// column the table does not have. Wildcard targets never produce this error.
type UnknownColumnError struct {
	Table  string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column '%s' in table '%s'", e.Column, e.Table)
}

// QueryExecutionError wraps a storage error raised while executing one
// search unit, for example when the unit's table was dropped between
// resolution and execution. It is reported inline for the failed unit and
// does not abort the remaining units.
type QueryExecutionError struct {
	Table string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query failed for table '%s': %v", e.Table, e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}
