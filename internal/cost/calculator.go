// Package cost estimates API spend for a lead generation run. The figures
// are logged per source so quota burn is visible without waiting for the
// monthly invoice.
package cost

// ModelRate holds per-model token pricing in USD per million tokens.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates holds per-provider pricing.
type Rates struct {
	Anthropic map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`

	// PerplexityQuery is the flat request fee; token charges come on top
	// via the model rate below.
	PerplexityQuery  float64   `yaml:"perplexity_query" mapstructure:"perplexity_query"`
	PerplexityTokens ModelRate `yaml:"perplexity_tokens" mapstructure:"perplexity_tokens"`

	// PlacesRequest is the fee per Text Search request.
	PlacesRequest float64 `yaml:"places_request" mapstructure:"places_request"`

	// SearchQuery is the fee per Custom Search query.
	SearchQuery float64 `yaml:"search_query" mapstructure:"search_query"`
}

// DefaultRates returns list pricing as of mid 2026.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		PerplexityQuery:  0.005,
		PerplexityTokens: ModelRate{Input: 3.00, Output: 15.00},
		PlacesRequest:    0.032,
		SearchQuery:      0.005,
	}
}

// Calculator computes spend estimates from request and token counts.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Anthropic returns the cost of one message call. Unknown models cost zero
// rather than guessing.
func (c *Calculator) Anthropic(model string, inputTokens, outputTokens int64) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}
	return perMTok(inputTokens, rate.Input) + perMTok(outputTokens, rate.Output)
}

// Perplexity returns the cost of one chat completion: the flat query fee
// plus token charges.
func (c *Calculator) Perplexity(promptTokens, completionTokens int) float64 {
	return c.rates.PerplexityQuery +
		perMTok(int64(promptTokens), c.rates.PerplexityTokens.Input) +
		perMTok(int64(completionTokens), c.rates.PerplexityTokens.Output)
}

// PlacesRequests returns the cost of n Text Search requests.
func (c *Calculator) PlacesRequests(n int) float64 {
	return float64(n) * c.rates.PlacesRequest
}

// SearchQueries returns the cost of n Custom Search queries.
func (c *Calculator) SearchQueries(n int) float64 {
	return float64(n) * c.rates.SearchQuery
}

func perMTok(tokens int64, rate float64) float64 {
	return float64(tokens) / 1e6 * rate
}
