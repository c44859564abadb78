// Package search implements the value search engine: parsing search targets,
// resolving them against a schema snapshot, executing one query per resolved
// unit, and aggregating matches into an ordered report.
package search

import (
	"fmt"
	"strings"
)

// TargetKind discriminates the shapes a search target can take.
type TargetKind int

const (
	// KindAllTables searches every column of every table. Produced when no
	// targets are supplied.
	KindAllTables TargetKind = iota
	// KindTable searches every column of one named table ("users").
	KindTable
	// KindTableColumn searches one column of one table ("users.email").
	KindTableColumn
	// KindAnyTableColumn searches a named column in every table that has
	// one ("*.email").
	KindAnyTableColumn
)

// TargetSpec is one parsed search target. Raw holds the original token and is
// the ground truth for error messages.
type TargetSpec struct {
	Kind   TargetKind
	Table  string
	Column string
	Raw    string
}

// MalformedTargetError is returned when a target token does not match the
// TABLE, TABLE.COLUMN, or *.COLUMN grammar.
type MalformedTargetError struct {
	Target string
	Reason string
}

func (e *MalformedTargetError) Error() string {
	return fmt.Sprintf("malformed target '%s': %s", e.Target, e.Reason)
}

// ParseTargets classifies raw target tokens into TargetSpecs. An empty target
// list yields a single all-tables spec. Parsing is a pure function of its
// input; it never consults the schema.
func ParseTargets(targets []string) ([]TargetSpec, error) {
	if len(targets) == 0 {
		return []TargetSpec{{Kind: KindAllTables}}, nil
	}

	specs := make([]TargetSpec, 0, len(targets))
	for _, raw := range targets {
		spec, err := parseTarget(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseTarget(raw string) (TargetSpec, error) {
	if raw == "" {
		return TargetSpec{}, &MalformedTargetError{Target: raw, Reason: "empty target"}
	}

	parts := strings.Split(raw, ".")
	switch len(parts) {
	case 1:
		return TargetSpec{Kind: KindTable, Table: raw, Raw: raw}, nil
	case 2:
		table, column := parts[0], parts[1]
		if table == "" || column == "" {
			return TargetSpec{}, &MalformedTargetError{Target: raw, Reason: "empty table or column component"}
		}
		if table == "*" {
			return TargetSpec{Kind: KindAnyTableColumn, Column: column, Raw: raw}, nil
		}
		return TargetSpec{Kind: KindTableColumn, Table: table, Column: column, Raw: raw}, nil
	default:
		return TargetSpec{}, &MalformedTargetError{Target: raw, Reason: "at most one '.' allowed"}
	}
}
