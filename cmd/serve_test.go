package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/authstate"
	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/persist"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/internal/workflow"
)

type memStore struct {
	prefs map[string]model.Preferences
}

func newMemStore() *memStore {
	return &memStore{prefs: make(map[string]model.Preferences)}
}

func (m *memStore) UpsertCompany(ctx context.Context, tenantID string, lead model.Lead) (string, bool, error) {
	return "company-1", true, nil
}

func (m *memStore) LeadExists(ctx context.Context, tenantID, companyID, contactPerson string) (bool, error) {
	return false, nil
}

func (m *memStore) InsertLead(ctx context.Context, tenantID, companyID string, lead model.Lead, class *model.Classification) (string, bool, error) {
	return "lead-1", true, nil
}

func (m *memStore) GetPreferences(ctx context.Context, tenantID string) (*model.Preferences, error) {
	p, ok := m.prefs[tenantID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	m.prefs[prefs.TenantID] = prefs
	return nil
}

func (m *memStore) Migrate(ctx context.Context) error { return nil }
func (m *memStore) Close() error                      { return nil }

type stubSource struct {
	method model.Method
	leads  []model.Lead
}

func (s *stubSource) Method() model.Method { return s.method }

func (s *stubSource) Fetch(ctx context.Context, c source.Criteria) ([]model.Lead, error) {
	return s.leads, nil
}

func newTestServer(t *testing.T, sources ...source.Source) (*apiServer, *memStore) {
	t.Helper()
	cfg = &config.Config{}
	cfg.Server.AuthToken = "secret"
	cfg.Workflow.MaxResultsPerMethod = 20

	st := newMemStore()
	saver := persist.NewSaver(st, nil)
	engine := workflow.NewEngine(source.NewRegistry(sources...), saver, 20)
	return &apiServer{
		env:    &pipelineEnv{Store: st, Engine: engine, Saver: saver},
		states: authstate.New(authstate.DefaultTTL),
	}, st
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.routes(), http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	routes := srv.routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/generate-leads", "", generateRequest{TenantID: "t1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, routes, http.MethodPost, "/api/generate-leads", "wrong", generateRequest{TenantID: "t1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateLeads(t *testing.T) {
	srv, st := newTestServer(t, &stubSource{
		method: model.MethodPlaces,
		leads: []model.Lead{
			{CompanyName: "Initech", ContactPerson: "Contact"},
			{CompanyName: "Globex", ContactPerson: "Jane Smith"},
		},
	})
	st.prefs["t1"] = model.Preferences{
		TenantID:       "t1",
		EnabledMethods: []model.Method{model.MethodPlaces},
	}

	rec := doJSON(t, srv.routes(), http.MethodPost, "/api/generate-leads", "secret",
		generateRequest{TenantID: "t1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.WorkflowResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.LeadsCreated)
	assert.Equal(t, 2, result.MethodResults[model.MethodPlaces])
}

func TestGenerateLeadsValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	routes := srv.routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/generate-leads", "secret", generateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, routes, http.MethodPost, "/api/generate-leads", "secret",
		generateRequest{TenantID: "t1", Methods: []string{"smoke_signals"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferencesRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	routes := srv.routes()

	rec := doJSON(t, routes, http.MethodGet, "/api/preferences/t1", "secret", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, routes, http.MethodPost, "/api/preferences", "secret", model.Preferences{
		TenantID:       "t1",
		TargetIndustry: "pharmacy",
		Locations:      "Denver",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, routes, http.MethodGet, "/api/preferences/t1", "secret", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var prefs model.Preferences
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prefs))
	assert.Equal(t, "pharmacy", prefs.TargetIndustry)
}

func TestPreferencesValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	routes := srv.routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/preferences", "secret", model.Preferences{
		TenantID:           "t1",
		ExperienceOperator: ">=",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, routes, http.MethodPost, "/api/preferences", "secret", model.Preferences{
		TenantID:        "t1",
		ExperienceYears: 45,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, routes, http.MethodPost, "/api/preferences", "secret", model.Preferences{
		TenantID:       "t1",
		EnabledMethods: []model.Method{"smoke_signals"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchLinkedIn(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{
		method: model.MethodLinkedIn,
		leads: []model.Lead{
			{CompanyName: "Initech", ContactPerson: "Jane Smith", Role: "CTO"},
			{CompanyName: "Initech", ContactPerson: "Jane Smith", Role: "CTO"},
		},
	})

	rec := doJSON(t, srv.routes(), http.MethodPost, "/api/search-linkedin", "secret",
		linkedInSearchRequest{TenantID: "t1", Locations: "Boston", Positions: "CTO"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success       bool `json:"success"`
		ProfilesFound int  `json:"profiles_found"`
		LeadsCreated  int  `json:"leads_created"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.ProfilesFound)
	// The duplicate profile collapses before persistence.
	assert.Equal(t, 1, resp.LeadsCreated)
}

func TestSearchLinkedInValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{method: model.MethodLinkedIn})
	routes := srv.routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/search-linkedin", "secret",
		linkedInSearchRequest{Locations: "Boston", Positions: "CTO"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, routes, http.MethodPost, "/api/search-linkedin", "secret",
		linkedInSearchRequest{TenantID: "t1", Positions: "CTO"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, routes, http.MethodPost, "/api/search-linkedin", "secret",
		linkedInSearchRequest{TenantID: "t1", Locations: "Boston", Positions: "CTO", Operator: "between"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, routes, http.MethodPost, "/api/search-linkedin", "secret",
		linkedInSearchRequest{TenantID: "t1", Locations: "Boston", Positions: "CTO", Years: 99})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchLinkedInUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.routes(), http.MethodPost, "/api/search-linkedin", "secret",
		linkedInSearchRequest{TenantID: "t1", Locations: "Boston", Positions: "CTO"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestParseMethods(t *testing.T) {
	methods, err := parseMethods([]string{"google_places_api", "pure_llm"})
	require.NoError(t, err)
	assert.Equal(t, []model.Method{model.MethodPlaces, model.MethodLLM}, methods)

	_, err = parseMethods([]string{"smoke_signals"})
	require.Error(t, err)

	methods, err = parseMethods(nil)
	require.NoError(t, err)
	assert.Empty(t, methods)
}
