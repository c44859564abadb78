package search

import (
	"context"

	"github.com/tomashevich/csvcatalog/internal/logger"
	"github.com/tomashevich/csvcatalog/internal/schema"
)

// Run performs a complete search: parse the targets, resolve them against the
// snapshot, execute the resolved units, and aggregate the report.
//
// Parse and resolution errors are returned before any query runs. Execution
// errors are carried inside the report, per unit.
func Run(ctx context.Context, db Querier, log *logger.Logger, snap *schema.Snapshot, value string, targets []string) (*Report, error) {
	specs, err := ParseTargets(targets)
	if err != nil {
		return nil, err
	}

	units, err := Resolve(specs, snap)
	if err != nil {
		return nil, err
	}

	return NewExecutor(db, log).Run(ctx, value, units), nil
}
