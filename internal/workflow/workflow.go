// Package workflow orchestrates a lead generation run: it fans a tenant's
// preferences out to the enabled acquisition sources, merges and deduplicates
// the results, and persists the survivors in one batch.
package workflow

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/query"
	"github.com/sells-group/leadgen-cli/internal/source"
)

// Saver persists a deduplicated batch of leads for a tenant.
type Saver interface {
	SaveBatch(ctx context.Context, tenantID string, leads []model.Lead) (model.SaveResult, error)
}

// Request describes one lead generation run.
type Request struct {
	TenantID    string
	TenantName  string
	AdminNotes  string
	Preferences model.Preferences
	// Methods selects the acquisition strategies to run, in order. An empty
	// list runs nothing; callers decide their own defaults.
	Methods []model.Method
	// MaxPerMethod caps leads per strategy; zero uses the engine default.
	MaxPerMethod int
}

// Engine runs lead generation workflows.
type Engine struct {
	registry   source.Registry
	saver      Saver
	defaultCap int
}

// NewEngine creates an Engine. defaultCap bounds per-method results when a
// request does not set its own cap.
func NewEngine(registry source.Registry, saver Saver, defaultCap int) *Engine {
	if defaultCap <= 0 {
		defaultCap = 20
	}
	return &Engine{registry: registry, saver: saver, defaultCap: defaultCap}
}

// Source returns the registered source for a method, for callers that need to
// run one strategy outside a full workflow.
func (e *Engine) Source(method model.Method) (source.Source, bool) {
	src, ok := e.registry[method]
	return src, ok
}

// Run executes the workflow. Methods run sequentially; a method failing or
// being unknown is recorded in the result's error list with a zero count and
// never aborts the remaining methods. A persistence failure is reported the
// same way, with the result carrying whatever committed before it.
func (e *Engine) Run(ctx context.Context, req Request) (*model.WorkflowResult, error) {
	if req.TenantID == "" {
		return nil, eris.New("workflow: tenant id is required")
	}

	methods := req.Methods
	maxPerMethod := req.MaxPerMethod
	if maxPerMethod <= 0 {
		maxPerMethod = e.defaultCap
	}

	log := zap.L().With(zap.String("tenant_id", req.TenantID))
	log.Info("starting lead generation run",
		zap.Int("methods", len(methods)), zap.Int("max_per_method", maxPerMethod))

	result := &model.WorkflowResult{
		MethodResults: make(map[model.Method]int, len(methods)),
	}

	var collected []model.Lead
	for _, method := range methods {
		src, ok := e.registry[method]
		if !ok {
			result.MethodResults[method] = 0
			result.Errors = append(result.Errors, fmt.Sprintf("Error in method %s: unknown method", method))
			continue
		}

		leads, err := src.Fetch(ctx, e.criteria(req, method, maxPerMethod))
		if err != nil {
			log.Warn("method failed", zap.String("method", string(method)), zap.Error(err))
			result.MethodResults[method] = 0
			result.Errors = append(result.Errors, fmt.Sprintf("Error in method %s: %v", method, err))
			continue
		}

		result.MethodResults[method] = len(leads)
		collected = append(collected, leads...)
	}

	deduped := Deduplicate(collected)
	result.TotalLeadsFound = len(deduped)
	log.Info("collection complete",
		zap.Int("found", len(collected)), zap.Int("after_dedup", len(deduped)))

	if len(deduped) > 0 {
		saved, err := e.saver.SaveBatch(ctx, req.TenantID, deduped)
		if err != nil {
			log.Error("persist batch failed", zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("Error saving to database: %v", err))
		}
		result.LeadsCreated = saved.LeadsCreated
		result.CompaniesCreated = saved.CompaniesCreated
	}

	result.Success = result.LeadsCreated > 0
	log.Info("run finished",
		zap.Bool("success", result.Success),
		zap.Int("leads_created", result.LeadsCreated),
		zap.Int("companies_created", result.CompaniesCreated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// criteria assembles the per-method criteria. The structured business lookup
// gets its own query shape; everything else shares the generic one.
func (e *Engine) criteria(req Request, method model.Method, maxResults int) source.Criteria {
	c := source.Criteria{
		Location:    req.Preferences.Location(),
		MaxResults:  maxResults,
		Preferences: req.Preferences,
		TenantName:  req.TenantName,
		AdminNotes:  req.AdminNotes,
	}
	if method == model.MethodPlaces {
		c.Query = query.Places(req.Preferences)
	} else {
		c.Query = query.Build(req.Preferences)
	}
	return c
}
