// Package render formats catalog output for the terminal: aligned tables,
// search reports, and status messages.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/tomashevich/csvcatalog/internal/schema"
	"github.com/tomashevich/csvcatalog/internal/search"
)

// Renderer writes formatted output to a writer. Color is applied only when
// enabled, so piped output stays clean.
type Renderer struct {
	w       io.Writer
	colored bool
}

// New creates a renderer. Color is enabled based on the environment.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w, colored: color.SupportColor()}
}

// NewPlain creates a renderer that never emits color codes.
func NewPlain(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Successf prints a success message.
func (r *Renderer) Successf(format string, args ...any) {
	r.printTagged(color.FgGreen, format, args...)
}

// Errorf prints an error message.
func (r *Renderer) Errorf(format string, args ...any) {
	r.printTagged(color.FgRed, format, args...)
}

// Warnf prints a warning message.
func (r *Renderer) Warnf(format string, args ...any) {
	r.printTagged(color.FgYellow, format, args...)
}

// Printf prints an uncolored message.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *Renderer) printTagged(c color.Color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.colored {
		msg = c.Render(msg)
	}
	fmt.Fprintln(r.w, msg)
}

// Table prints rows as an aligned table. Column widths follow the widest
// cell, measured in display cells so wide runes line up.
func (r *Renderer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				if w := runewidth.StringWidth(cell); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	r.printRow(headers, widths, r.colored)
	separators := make([]string, len(headers))
	for i := range separators {
		separators[i] = strings.Repeat("-", widths[i])
	}
	r.printRow(separators, widths, false)
	for _, row := range rows {
		r.printRow(row, widths, false)
	}
}

func (r *Renderer) printRow(cells []string, widths []int, bold bool) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		padded := runewidth.FillRight(cell, widths[i])
		if bold {
			padded = color.Bold.Render(padded)
		}
		parts[i] = padded
	}
	fmt.Fprintln(r.w, "  "+strings.TrimRight(strings.Join(parts, "  "), " "))
}

// TableList prints the catalog overview: one line per table with row count,
// creation time, and description.
func (r *Renderer) TableList(tables []*schema.Table) {
	if len(tables) == 0 {
		r.Printf("No tables in the catalog.")
		return
	}

	rows := make([][]string, 0, len(tables))
	for _, tbl := range tables {
		rows = append(rows, []string{
			tbl.Name,
			fmt.Sprintf("%d", tbl.RowCount),
			fmt.Sprintf("%d", len(tbl.Columns)),
			tbl.CreatedAt,
			tbl.Description,
		})
	}
	r.Table([]string{"table", "rows", "columns", "created", "description"}, rows)
}

// Describe prints a single table's schema.
func (r *Renderer) Describe(table *schema.Table) {
	r.Printf("Table: %s", table.Name)
	if table.Description != "" {
		r.Printf("Description: %s", table.Description)
	}
	if table.CreatedAt != "" {
		r.Printf("Created: %s", table.CreatedAt)
	}
	r.Printf("Rows: %d", table.RowCount)
	r.Printf("")

	rows := make([][]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		rows = append(rows, []string{col.Name, col.Type})
	}
	r.Table([]string{"column", "type"}, rows)
}

// SearchReport prints the outcome of a search: matches grouped per table,
// followed by per-table errors and a summary line.
func (r *Renderer) SearchReport(report *search.Report) {
	for _, unit := range report.Units {
		if unit.Err != nil {
			r.Errorf("error searching table '%s': %v", unit.Table, unit.Err)
			continue
		}
		if len(unit.Matches) == 0 {
			continue
		}

		r.Printf("")
		header := fmt.Sprintf("%s (%d matches)", unit.Table, len(unit.Matches))
		if r.colored {
			header = color.Bold.Render(header)
		}
		fmt.Fprintln(r.w, header)

		rows := make([][]string, 0, len(unit.Matches))
		for _, m := range unit.Matches {
			rows = append(rows, []string{m.Column, fmt.Sprintf("%d", m.Row.Index), m.Value})
		}
		r.Table([]string{"column", "row", "value"}, rows)
	}

	r.Printf("")
	total := report.TotalMatches()
	switch {
	case report.Interrupted:
		r.Warnf("Search interrupted. %d matches found before cancellation.", total)
	case total == 0:
		r.Printf("No matches for '%s'.", report.Value)
	default:
		r.Successf("%d matches for '%s'.", total, report.Value)
	}
}

// ResultSet prints the outcome of a raw SQL statement.
func (r *Renderer) ResultSet(columns []string, rows [][]string) {
	if len(columns) == 0 {
		r.Printf("OK.")
		return
	}
	r.Table(columns, rows)
	r.Printf("")
	r.Printf("%d rows.", len(rows))
}

// Filters prints saved filters sorted by name.
func (r *Renderer) Filters(filters map[string]string) {
	if len(filters) == 0 {
		r.Printf("No saved filters.")
		return
	}

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, filters[name]})
	}
	r.Table([]string{"name", "pattern"}, rows)
}
