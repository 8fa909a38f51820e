// Package source defines the lead acquisition strategies. Each Source maps a
// query plus tenant constraints to a list of candidate leads; the workflow
// orchestrator runs the requested subset and merges the results.
package source

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Criteria carries everything a source may need for one invocation. Sources
// read only the fields relevant to their strategy.
type Criteria struct {
	// Query is the generic free-text query assembled from preferences.
	Query string
	// Location is the tenant's location constraint, when present.
	Location string
	// MaxResults caps how many leads the source may return.
	MaxResults int
	// Preferences is the tenant's full preference set.
	Preferences model.Preferences
	// TenantName and AdminNotes steer the generative source's instruction.
	TenantName string
	AdminNotes string
}

// Source is a single lead acquisition strategy.
type Source interface {
	// Method names the strategy for reporting and registry lookup.
	Method() model.Method
	// Fetch returns candidate leads for the criteria. Transient upstream
	// failures are absorbed per-query (partial results, not errors); a
	// returned error means the source itself could not run.
	Fetch(ctx context.Context, c Criteria) ([]model.Lead, error)
}

// Registry maps method names to their implementations.
type Registry map[model.Method]Source

// NewRegistry builds a Registry from the given sources.
func NewRegistry(sources ...Source) Registry {
	r := make(Registry, len(sources))
	for _, s := range sources {
		r[s.Method()] = s
	}
	return r
}
