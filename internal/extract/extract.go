// Package extract reads CSV files into memory for import into the catalog.
//
// Files compressed with gzip, bzip2, xz, or zstd are decompressed
// transparently based on their extension. A UTF-8 byte order mark is
// tolerated and stripped.
package extract

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/tomashevich/csvcatalog/internal/sqlutil"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures one extraction.
type Options struct {
	// Path is the CSV file to read.
	Path string
	// Separator is the field separator. Zero means comma.
	Separator rune
	// Renames maps raw CSV headers to database column names. Headers not in
	// the map get a sanitized version of their own name.
	Renames map[string]string
	// Columns restricts the import to a subset of (renamed) column names.
	// Empty means all columns.
	Columns []string
	// Limit caps the number of data rows read. Zero or negative means all.
	Limit int
}

// Result is the parsed content of a CSV file, mapped and filtered per the
// options, ready for table creation and bulk insert.
type Result struct {
	// Headers are the raw CSV headers in file order.
	Headers []string
	// Columns are the database column names to import, in file order.
	Columns []string
	// Rows are the data rows, one value per imported column.
	Rows [][]string
}

// DefaultTableName derives a table name from a file path: the base name
// without extensions, sanitized into a valid identifier.
func DefaultTableName(path string) string {
	base := filepath.Base(path)
	for {
		ext := filepath.Ext(base)
		if ext == "" {
			break
		}
		base = strings.TrimSuffix(base, ext)
	}
	return sqlutil.SanitizeIdentifier(base)
}

// Read parses the file according to the options.
func Read(opts Options) (*Result, error) {
	reader, closeFn, err := openReader(opts.Path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	sep := opts.Separator
	if sep == 0 {
		sep = ','
	}

	cr := csv.NewReader(reader)
	cr.Comma = sep
	cr.FieldsPerRecord = -1 // ragged rows are padded, not rejected
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file '%s' appears to be empty", opts.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	columnNames, err := mapColumns(headers, opts.Renames)
	if err != nil {
		return nil, err
	}

	keep, importCols, err := selectColumns(columnNames, opts.Columns)
	if err != nil {
		return nil, err
	}

	result := &Result{Headers: headers, Columns: importCols}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(result.Rows)+2, err)
		}

		row := make([]string, 0, len(importCols))
		for i := range columnNames {
			if !keep[i] {
				continue
			}
			if i < len(record) {
				row = append(row, record[i])
			} else {
				row = append(row, "")
			}
		}
		result.Rows = append(result.Rows, row)

		if opts.Limit > 0 && len(result.Rows) >= opts.Limit {
			break
		}
	}
	return result, nil
}

// Preview reads up to n data rows without mapping or filtering, for showing
// the user what is about to be imported.
func Preview(path string, sep rune, n int) (*Result, error) {
	return Read(Options{Path: path, Separator: sep, Limit: n})
}

// mapColumns converts raw headers to database column names, applying renames
// and sanitizing the rest. Duplicate or unusable names are an error: a
// column name collision would silently merge CSV columns.
func mapColumns(headers []string, renames map[string]string) ([]string, error) {
	names := make([]string, len(headers))
	seen := make(map[string]int, len(headers))

	for i, header := range headers {
		name, renamed := renames[header]
		if !renamed {
			name = sqlutil.SanitizeIdentifier(header)
			if name == "" {
				name = fmt.Sprintf("column_%d", i+1)
			}
		}
		if !sqlutil.IsValidIdentifier(name) {
			return nil, &sqlutil.InvalidIdentifierError{Name: name}
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("headers %d and %d both map to column '%s'", prev+1, i+1, name)
		}
		seen[name] = i
		names[i] = name
	}
	return names, nil
}

// selectColumns computes which header positions to import.
func selectColumns(columnNames, wanted []string) ([]bool, []string, error) {
	keep := make([]bool, len(columnNames))

	if len(wanted) == 0 {
		for i := range keep {
			keep[i] = true
		}
		return keep, columnNames, nil
	}

	index := make(map[string]int, len(columnNames))
	for i, name := range columnNames {
		index[name] = i
	}
	for _, name := range wanted {
		i, ok := index[name]
		if !ok {
			return nil, nil, fmt.Errorf("column '%s' not found in file (available: %s)",
				name, strings.Join(columnNames, ", "))
		}
		keep[i] = true
	}

	importCols := make([]string, 0, len(wanted))
	for i, name := range columnNames {
		if keep[i] {
			importCols = append(importCols, name)
		}
	}
	return keep, importCols, nil
}

// openReader opens the file, wrapping it with the decompressor its extension
// calls for and stripping a UTF-8 BOM.
func openReader(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read file: %w", err)
	}

	var reader io.Reader = file
	closers := []func() error{file.Close}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			file.Close()
			return nil, nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		reader = gz
		closers = append(closers, gz.Close)
	case ".bz2":
		reader = bzip2.NewReader(reader)
	case ".xz":
		xzr, err := xz.NewReader(reader)
		if err != nil {
			file.Close()
			return nil, nil, fmt.Errorf("failed to open xz stream: %w", err)
		}
		reader = xzr
	case ".zst":
		zr, err := zstd.NewReader(reader)
		if err != nil {
			file.Close()
			return nil, nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		reader = zr.IOReadCloser()
	}

	buffered := bufio.NewReader(reader)
	if lead, err := buffered.Peek(len(utf8BOM)); err == nil && bytes.Equal(lead, utf8BOM) {
		buffered.Discard(len(utf8BOM))
	}

	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return buffered, closeAll, nil
}
