package source

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/cost"
	"github.com/sells-group/leadgen-cli/internal/extract"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/customsearch"
)

// CustomSearchSource finds leads through generic web search. Results are
// company-centric: the company name comes from the page title or domain, and
// contact details are whatever the snippet happens to contain.
type CustomSearchSource struct {
	client  customsearch.Client
	limiter *rate.Limiter
	costs   *cost.Calculator
}

// NewCustomSearchSource creates a CustomSearchSource. The limiter spaces out
// page requests; nil means no throttling.
func NewCustomSearchSource(client customsearch.Client, limiter *rate.Limiter) *CustomSearchSource {
	return &CustomSearchSource{client: client, limiter: limiter, costs: cost.NewCalculator(cost.DefaultRates())}
}

// Method implements Source.
func (s *CustomSearchSource) Method() model.Method { return model.MethodCustomSearch }

// Fetch implements Source. Pages through results in API-page increments until
// the cap is reached or the API runs dry. A failed page ends the pagination
// but keeps what was collected so far.
func (s *CustomSearchSource) Fetch(ctx context.Context, c Criteria) ([]model.Lead, error) {
	log := zap.L().With(zap.String("source", string(model.MethodCustomSearch)))

	if s.client == nil {
		log.Warn("custom search credentials not configured, skipping search")
		return nil, nil
	}

	pages := (c.MaxResults + customsearch.PageSize - 1) / customsearch.PageSize
	processed := make(map[string]struct{})
	var leads []model.Lead
	queries := 0

	for page := 0; page < pages && len(leads) < c.MaxResults; page++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return leads, nil
			}
		}

		queries++
		resp, err := s.client.Search(ctx, customsearch.SearchRequest{
			Query: c.Query,
			Start: page*customsearch.PageSize + 1,
		})
		if err != nil {
			log.Warn("search page failed", zap.Int("page", page+1), zap.Error(err))
			break
		}
		if len(resp.Items) == 0 {
			break
		}

		for _, item := range resp.Items {
			if len(leads) >= c.MaxResults {
				break
			}
			if _, seen := processed[item.Link]; seen {
				continue
			}
			processed[item.Link] = struct{}{}

			leads = append(leads, s.itemToLead(item, c))
		}
	}

	log.Info("custom search complete", zap.String("query", c.Query), zap.Int("results", len(leads)),
		zap.Float64("estimated_cost_usd", s.costs.SearchQueries(queries)))
	return leads, nil
}

func (s *CustomSearchSource) itemToLead(item customsearch.Item, c Criteria) model.Lead {
	contact := extract.ContactFromSnippet(item.Snippet)

	person := contact.Name
	if person == "" {
		person = "Contact"
	}

	return model.Lead{
		CompanyName:   extract.SiteCompany(item.Title, item.Link),
		ContactPerson: person,
		ContactEmail:  contact.Email,
		Phone:         contact.Phone,
		Website:       item.Link,
		Industry:      c.Preferences.TargetIndustry,
		Source:        model.MethodCustomSearch,
	}
}
