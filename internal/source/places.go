package source

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/cost"
	"github.com/sells-group/leadgen-cli/internal/extract"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// PlacesSource finds leads through the Google Places text search. Places
// never exposes a named contact, so every lead carries the "Contact"
// placeholder and an empty email.
type PlacesSource struct {
	client places.Client
	costs  *cost.Calculator
}

// NewPlacesSource creates a PlacesSource. A nil client (no API key
// configured) soft-disables the source: it logs and returns empty results
// instead of failing the run.
func NewPlacesSource(client places.Client) *PlacesSource {
	return &PlacesSource{client: client, costs: cost.NewCalculator(cost.DefaultRates())}
}

// Method implements Source.
func (s *PlacesSource) Method() model.Method { return model.MethodPlaces }

// Fetch implements Source. A request failure returns whatever was collected
// so far rather than an error: the places API being down degrades the run,
// it does not fail it.
func (s *PlacesSource) Fetch(ctx context.Context, c Criteria) ([]model.Lead, error) {
	log := zap.L().With(zap.String("source", string(model.MethodPlaces)))

	if s.client == nil {
		log.Warn("places api key not configured, skipping search")
		return nil, nil
	}

	req := places.TextSearchRequest{
		TextQuery:      c.Query,
		MaxResultCount: c.MaxResults,
	}
	// Narrow the search when the query names a type the API understands.
	if strings.Contains(strings.ToLower(c.Query), "pharmacy") {
		req.IncludedType = "pharmacy"
	}

	resp, err := s.client.TextSearch(ctx, req)
	if err != nil {
		log.Warn("places search failed", zap.String("query", c.Query), zap.Error(err))
		return nil, nil
	}

	leads := make([]model.Lead, 0, len(resp.Places))
	for _, place := range resp.Places {
		if len(leads) >= c.MaxResults {
			break
		}
		leads = append(leads, placeToLead(place))
	}

	// Only the first page is fetched. The token is logged so saturation is
	// visible; fetching further pages would hang off resp.NextPageToken here.
	if resp.NextPageToken != "" && len(leads) < c.MaxResults {
		log.Info("more places results available", zap.String("query", c.Query))
	}

	log.Info("places search complete", zap.String("query", c.Query), zap.Int("results", len(leads)),
		zap.Float64("estimated_cost_usd", s.costs.PlacesRequests(1)))
	return leads, nil
}

func placeToLead(place places.Place) model.Lead {
	name := place.DisplayName.Text
	if name == "" {
		name = "Unknown Business"
	}

	industry := "Unknown"
	if len(place.Types) > 0 {
		industry = place.Types[0]
	}

	return model.Lead{
		CompanyName:   name,
		ContactPerson: "Contact",
		ContactEmail:  "",
		Address:       extract.CityCountry(place.FormattedAddress),
		Phone:         place.NationalPhoneNumber,
		Website:       place.WebsiteURI,
		Industry:      industry,
		Source:        model.MethodPlaces,
	}
}
