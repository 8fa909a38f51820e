package source

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/cost"
	"github.com/sells-group/leadgen-cli/internal/extract"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/query"
	"github.com/sells-group/leadgen-cli/pkg/customsearch"
)

// LinkedInSource finds leads through profile pages surfaced by site-scoped
// web search. One query is issued per location/position pair; names, company
// names and roles are recovered heuristically from titles and snippets.
type LinkedInSource struct {
	client  customsearch.Client
	limiter *rate.Limiter
	costs   *cost.Calculator
}

// NewLinkedInSource creates a LinkedInSource backed by the same search API
// as CustomSearchSource.
func NewLinkedInSource(client customsearch.Client, limiter *rate.Limiter) *LinkedInSource {
	return &LinkedInSource{client: client, limiter: limiter, costs: cost.NewCalculator(cost.DefaultRates())}
}

// Method implements Source.
func (s *LinkedInSource) Method() model.Method { return model.MethodLinkedIn }

// Fetch implements Source. Requires both locations and positions in the
// tenant preferences; without them there is nothing sensible to search for.
// Per-pair query failures are logged and skipped.
func (s *LinkedInSource) Fetch(ctx context.Context, c Criteria) ([]model.Lead, error) {
	log := zap.L().With(zap.String("source", string(model.MethodLinkedIn)))

	if s.client == nil {
		log.Warn("custom search credentials not configured, skipping search")
		return nil, nil
	}

	locations := c.Preferences.LocationList()
	positions := c.Preferences.PositionList()
	if len(locations) == 0 || len(positions) == 0 {
		log.Warn("profile search needs both locations and positions",
			zap.Int("locations", len(locations)), zap.Int("positions", len(positions)))
		return nil, nil
	}

	operator, years := c.Preferences.Experience()

	var leads []model.Lead
	// The same profile routinely surfaces for several location/position
	// pairs; track result URLs so one invocation emits it once.
	processed := make(map[string]bool)
	queries := 0
	for _, location := range locations {
		for _, position := range positions {
			if len(leads) >= c.MaxResults {
				return leads, nil
			}

			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					return leads, nil
				}
			}

			queries++
			q := query.LinkedIn(position, location, operator, years)
			resp, err := s.client.Search(ctx, customsearch.SearchRequest{Query: q})
			if err != nil {
				log.Warn("profile query failed",
					zap.String("position", position), zap.String("location", location), zap.Error(err))
				continue
			}

			for _, item := range resp.Items {
				if len(leads) >= c.MaxResults {
					break
				}
				if item.Link == "" || processed[item.Link] {
					continue
				}
				if !strings.Contains(item.Link, "linkedin.com/in/") {
					continue
				}
				processed[item.Link] = true
				if lead, ok := profileToLead(item, position); ok {
					leads = append(leads, lead)
				}
			}
		}
	}

	log.Info("profile search complete", zap.Int("results", len(leads)),
		zap.Float64("estimated_cost_usd", s.costs.SearchQueries(queries)))
	return leads, nil
}

// profileToLead turns one profile search result into a lead. Results where
// neither a name nor a company could be recovered carry too little
// information to act on and are dropped.
func profileToLead(item customsearch.Item, position string) (model.Lead, bool) {
	name := extract.Name(item.Title, item.Snippet, item.Link)
	company := extract.Company(item.Snippet, item.Title)
	if name == model.UnknownContact && company == model.UnknownCompany {
		return model.Lead{}, false
	}

	return model.Lead{
		CompanyName:   company,
		ContactPerson: name,
		Role:          extract.Role(item.Snippet, item.Title, position),
		Website:       item.Link,
		Source:        model.MethodLinkedIn,
	}, true
}
