package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
	"github.com/sells-group/leadgen-cli/pkg/perplexity"
)

type stubAnthropic struct {
	text string
	err  error
	got  anthropic.MessageRequest
}

func (s *stubAnthropic) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.text}},
	}, nil
}

func perplexityStub(t *testing.T, handler http.HandlerFunc) perplexity.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return perplexity.NewClient("key", perplexity.WithBaseURL(srv.URL))
}

func perplexityReply(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(perplexity.ChatCompletionResponse{
			Choices: []perplexity.Choice{
				{Message: perplexity.Message{Role: "assistant", Content: content}},
			},
		})
	}
}

func TestLLMFetch(t *testing.T) {
	reasoner := &stubAnthropic{text: "Find pharmacies in Denver and their owners."}
	browser := perplexityStub(t, perplexityReply("```json\n"+
		`[{"company_name":"Mile High Pharmacy","contact_person":"Sarah Johnson","role":"Owner","website":"https://milehigh.example.com"},`+
		`{"company_name":"","contact_person":"Nobody"}]`+"\n```"))

	src := NewLLMSource(reasoner, browser, "test-model")
	leads, err := src.Fetch(context.Background(), Criteria{
		MaxResults:  20,
		TenantName:  "Acme Sales",
		AdminNotes:  "focus on independents",
		Preferences: model.Preferences{TargetIndustry: "pharmacy", Locations: "Denver"},
	})
	require.NoError(t, err)

	// The reasoning call saw the tenant profile.
	assert.Contains(t, reasoner.got.Messages[0].Content, "Acme Sales")
	assert.Contains(t, reasoner.got.Messages[0].Content, "pharmacy")

	// An empty company name falls back to the sentinel; the save path
	// filters those out later.
	require.Len(t, leads, 2)
	assert.Equal(t, "Mile High Pharmacy", leads[0].CompanyName)
	assert.Equal(t, "Sarah Johnson", leads[0].ContactPerson)
	assert.Equal(t, "Owner", leads[0].Role)
	assert.Equal(t, model.MethodLLM, leads[0].Source)
	assert.Equal(t, model.UnknownCompany, leads[1].CompanyName)
	assert.Equal(t, "Nobody", leads[1].ContactPerson)
}

func TestLLMFetchFallsBackWhenInstructionFails(t *testing.T) {
	reasoner := &stubAnthropic{err: eris.New("overloaded")}

	var prompt string
	browser := perplexityStub(t, func(w http.ResponseWriter, r *http.Request) {
		var req perplexity.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Messages[len(req.Messages)-1].Content
		perplexityReply(`[{"company_name":"Globex","contact_person":"Jane Smith"}]`)(w, r)
	})

	src := NewLLMSource(reasoner, browser, "test-model")
	leads, err := src.Fetch(context.Background(), Criteria{MaxResults: 20})
	require.NoError(t, err)

	assert.Contains(t, prompt, fallbackInstruction)
	require.Len(t, leads, 1)
}

func TestLLMFetchWithoutReasonerUsesFallback(t *testing.T) {
	var prompt string
	browser := perplexityStub(t, func(w http.ResponseWriter, r *http.Request) {
		var req perplexity.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Messages[len(req.Messages)-1].Content
		perplexityReply(`[]`)(w, r)
	})

	src := NewLLMSource(nil, browser, "test-model")
	_, err := src.Fetch(context.Background(), Criteria{MaxResults: 20})
	require.NoError(t, err)
	assert.Contains(t, prompt, fallbackInstruction)
}

func TestLLMFetchNilBrowserDisabled(t *testing.T) {
	src := NewLLMSource(&stubAnthropic{}, nil, "test-model")
	leads, err := src.Fetch(context.Background(), Criteria{MaxResults: 20})
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestLLMFetchMalformedOutput(t *testing.T) {
	browser := perplexityStub(t, perplexityReply("I could not find any leads, sorry."))

	src := NewLLMSource(nil, browser, "test-model")
	leads, err := src.Fetch(context.Background(), Criteria{MaxResults: 20})
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestLLMFetchTruncatesToLimit(t *testing.T) {
	browser := perplexityStub(t, perplexityReply(
		`[{"company_name":"A1","contact_person":"P"},{"company_name":"A2","contact_person":"P"},{"company_name":"A3","contact_person":"P"}]`))

	src := NewLLMSource(nil, browser, "test-model")
	leads, err := src.Fetch(context.Background(), Criteria{MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, leads, 2)
}

func TestParseLeads(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "bare array",
			content: `[{"company_name":"Initech","contact_person":"Jane"}]`,
			want:    1,
		},
		{
			name:    "wrapped object",
			content: `{"leads":[{"company_name":"Initech","contact_person":"Jane"}]}`,
			want:    1,
		},
		{
			name:    "single lead object",
			content: `{"company_name":"Initech","contact_person":"Jane"}`,
			want:    1,
		},
		{
			name:    "fenced array",
			content: "```json\n[{\"company_name\":\"Initech\"}]\n```",
			want:    1,
		},
		{
			name:    "fence without language tag",
			content: "```\n[{\"company_name\":\"Initech\"}]\n```",
			want:    1,
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    0,
		},
		{
			name:    "garbage",
			content: "not json at all",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, parseLeads(tt.content), tt.want)
		})
	}
}

func TestParseLeadsDefaultsContact(t *testing.T) {
	leads := parseLeads(`[{"company_name":"Initech"}]`)
	require.Len(t, leads, 1)
	assert.Equal(t, model.UnknownContact, leads[0].ContactPerson)
}

func TestParseLeadsDefaultsCompany(t *testing.T) {
	leads := parseLeads(`[{"contact_person":"Jane"}]`)
	require.Len(t, leads, 1)
	assert.Equal(t, model.UnknownCompany, leads[0].CompanyName)
}

func TestParseLeadsSingleObject(t *testing.T) {
	leads := parseLeads(`{"company_name":"Initech","contact_person":"Jane","role":"CTO"}`)
	require.Len(t, leads, 1)
	assert.Equal(t, "Initech", leads[0].CompanyName)
	assert.Equal(t, "Jane", leads[0].ContactPerson)
	assert.Equal(t, "CTO", leads[0].Role)
}
