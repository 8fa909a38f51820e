// Package customsearch provides a client for the Google Custom Search JSON
// API, shared by the generic web search and LinkedIn-scoped search sources.
package customsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/resilience"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// PageSize is the API's maximum results per request.
const PageSize = 10

// Client performs Custom Search API operations.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest describes a single search page.
type SearchRequest struct {
	Query string
	// Start is the 1-based index of the first result to return. Zero means
	// the first page.
	Start int
	// Num caps the results for this page; defaults to PageSize.
	Num int
}

// SearchResponse is the parsed API response.
type SearchResponse struct {
	Items []Item    `json:"items"`
	Error *APIError `json:"error,omitempty"`
}

// Item is a single search result.
type Item struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// APIError is the error object the API returns inside a 200 response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetryPolicy overrides the default retry behavior.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) {
		c.retry = p
	}
}

type httpClient struct {
	apiKey  string
	cseID   string
	baseURL string
	http    *http.Client
	retry   resilience.Policy
}

// NewClient creates a Custom Search API client. The API key and search
// engine ID are distinct credentials; passing the same value for both is a
// configuration mistake the constructor does not try to detect.
func NewClient(apiKey, cseID string, opts ...Option) Client {
	retry := resilience.DefaultPolicy()
	retry.OnRetry = resilience.Logged("customsearch")
	c := &httpClient{
		apiKey:  apiKey,
		cseID:   cseID,
		retry:   retry,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	num := req.Num
	if num <= 0 || num > PageSize {
		num = PageSize
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cseID)
	params.Set("q", req.Query)
	params.Set("num", strconv.Itoa(num))
	if req.Start > 0 {
		params.Set("start", strconv.Itoa(req.Start))
	}

	return resilience.Do(ctx, c.retry, func(ctx context.Context) (*SearchResponse, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, eris.Wrap(err, "customsearch: create request")
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, eris.Wrap(err, "customsearch: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "customsearch: read response")
		}

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("customsearch: unexpected status %d: %s", resp.StatusCode, string(respBody))
			if resilience.RetryableStatus(resp.StatusCode) {
				return nil, resilience.Transient(err, resp.StatusCode)
			}
			return nil, err
		}

		var result SearchResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, eris.Wrap(err, "customsearch: unmarshal response")
		}

		if result.Error != nil {
			return nil, eris.Errorf("customsearch: api error %d: %s", result.Error.Code, result.Error.Message)
		}

		return &result, nil
	})
}
