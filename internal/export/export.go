// Package export writes catalog tables back out as CSV files, with optional
// column selection, row limits, and regex row filters.
package export

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/tomashevich/csvcatalog/internal/config"
	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/storage"
	"github.com/tomashevich/csvcatalog/internal/types"
)

// Filter restricts exported rows to those whose column value matches the
// pattern.
type Filter struct {
	Column  string
	Pattern *regexp.Regexp
}

// ParseFilter parses a "column=pattern" argument. The pattern part is first
// looked up as a saved filter name in settings; otherwise it is compiled as a
// regular expression directly.
func ParseFilter(arg string, settings *config.Settings) (Filter, error) {
	column, pattern, found := strings.Cut(arg, "=")
	if !found || column == "" || pattern == "" {
		return Filter{}, fmt.Errorf("invalid filter '%s': expected column=pattern", arg)
	}

	if settings != nil {
		if saved, ok := settings.FilterPattern(pattern); ok {
			pattern = saved
		}
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Filter{}, fmt.Errorf("invalid filter pattern '%s': %w", pattern, err)
	}
	return Filter{Column: column, Pattern: re}, nil
}

// Options configures one table export.
type Options struct {
	// Columns restricts the export to a subset of the table's columns.
	// Empty means all columns.
	Columns []string
	// Limit caps the number of rows read from the table before filtering.
	// Zero or negative means all rows.
	Limit int64
	// Filters keep only rows where every filter's column matches its pattern.
	Filters []Filter
}

// Table exports one table as CSV to w and returns the number of data rows
// written.
func Table(ctx context.Context, store *storage.Store, table *schema.Table, opts Options, w io.Writer) (int, error) {
	columns := opts.Columns
	if len(columns) == 0 {
		columns = table.ColumnNames()
	}
	for _, col := range columns {
		if !table.HasColumn(col) {
			return 0, fmt.Errorf("table '%s' has no column '%s'", table.Name, col)
		}
	}
	for _, f := range opts.Filters {
		if !contains(columns, f.Column) {
			return 0, fmt.Errorf("filter column '%s' is not part of the export", f.Column)
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := store.QueryTable(ctx, table.Name, columns, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to read table %s: %w", table.Name, err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	position := make(map[string]int, len(columns))
	for i, col := range columns {
		position[col] = i
	}

	written := 0
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return written, fmt.Errorf("failed to scan row: %w", err)
		}

		record := make([]string, len(columns))
		for i := range values {
			record[i] = types.ToString(values[i])
		}

		if !rowMatches(record, position, opts.Filters) {
			continue
		}
		if err := cw.Write(record); err != nil {
			return written, fmt.Errorf("failed to write row: %w", err)
		}
		written++
	}
	if err := rows.Err(); err != nil {
		return written, fmt.Errorf("failed to read table %s: %w", table.Name, err)
	}

	cw.Flush()
	return written, cw.Error()
}

// ToFile exports a table to a file, compressing the output when the path
// ends in .gz or .zst.
func ToFile(ctx context.Context, store *storage.Store, table *schema.Table, opts Options, path string) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("could not write to file '%s': %w", path, err)
	}

	var w io.Writer = file
	var finish func() error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz := gzip.NewWriter(file)
		w, finish = gz, gz.Close
	case ".zst":
		zw, err := zstd.NewWriter(file)
		if err != nil {
			file.Close()
			return 0, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		w, finish = zw, zw.Close
	}

	written, exportErr := Table(ctx, store, table, opts, w)
	if finish != nil {
		if err := finish(); err != nil && exportErr == nil {
			exportErr = err
		}
	}
	if err := file.Close(); err != nil && exportErr == nil {
		exportErr = err
	}
	return written, exportErr
}

// DefaultFileName returns the export file name for a table.
func DefaultFileName(table string) string {
	return table + ".csv"
}

func rowMatches(record []string, position map[string]int, filters []Filter) bool {
	for _, f := range filters {
		i, ok := position[f.Column]
		if !ok || !f.Pattern.MatchString(record[i]) {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
