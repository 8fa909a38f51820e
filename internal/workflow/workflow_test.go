package workflow

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
)

type stubSource struct {
	method model.Method
	leads  []model.Lead
	err    error
	gotQ   string
	calls  int
}

func (s *stubSource) Method() model.Method { return s.method }

func (s *stubSource) Fetch(ctx context.Context, c source.Criteria) ([]model.Lead, error) {
	s.calls++
	s.gotQ = c.Query
	return s.leads, s.err
}

type stubSaver struct {
	got    []model.Lead
	result model.SaveResult
	err    error
}

func (s *stubSaver) SaveBatch(ctx context.Context, tenantID string, leads []model.Lead) (model.SaveResult, error) {
	s.got = leads
	return s.result, s.err
}

func TestRunRequiresTenant(t *testing.T) {
	engine := NewEngine(source.NewRegistry(), &stubSaver{}, 20)
	_, err := engine.Run(context.Background(), Request{})
	require.Error(t, err)
}

func TestRunMergesAndPersists(t *testing.T) {
	placesSrc := &stubSource{method: model.MethodPlaces, leads: []model.Lead{
		{CompanyName: "Initech", ContactPerson: "Contact", Source: model.MethodPlaces},
	}}
	llmSrc := &stubSource{method: model.MethodLLM, leads: []model.Lead{
		{CompanyName: "Globex", ContactPerson: "Jane Smith", Source: model.MethodLLM},
		{CompanyName: "Initech", ContactPerson: "Contact", Source: model.MethodLLM}, // duplicate
	}}
	saver := &stubSaver{result: model.SaveResult{LeadsCreated: 2, CompaniesCreated: 2}}

	engine := NewEngine(source.NewRegistry(placesSrc, llmSrc), saver, 20)
	result, err := engine.Run(context.Background(), Request{
		TenantID: "t1",
		Methods:  []model.Method{model.MethodPlaces, model.MethodLLM},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.LeadsCreated)
	assert.Equal(t, 2, result.CompaniesCreated)
	// Total reflects the deduplicated set, not the raw merge.
	assert.Equal(t, 2, result.TotalLeadsFound)
	assert.Equal(t, 1, result.MethodResults[model.MethodPlaces])
	assert.Equal(t, 2, result.MethodResults[model.MethodLLM])
	assert.Empty(t, result.Errors)
	// The saver receives deduplicated leads.
	assert.Len(t, saver.got, 2)
}

func TestRunIsolatesMethodFailures(t *testing.T) {
	failing := &stubSource{method: model.MethodCustomSearch, err: eris.New("quota exhausted")}
	working := &stubSource{method: model.MethodPlaces, leads: []model.Lead{
		{CompanyName: "Initech", ContactPerson: "Contact"},
	}}
	saver := &stubSaver{result: model.SaveResult{LeadsCreated: 1, CompaniesCreated: 1}}

	engine := NewEngine(source.NewRegistry(failing, working), saver, 20)
	result, err := engine.Run(context.Background(), Request{
		TenantID: "t1",
		Methods:  []model.Method{model.MethodCustomSearch, model.MethodPlaces},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.LeadsCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Error in method google_custom_search")
	assert.Contains(t, result.Errors[0], "quota exhausted")

	// The failed method still shows up, with a zero count.
	count, ok := result.MethodResults[model.MethodCustomSearch]
	require.True(t, ok)
	assert.Zero(t, count)
	assert.Equal(t, 1, result.MethodResults[model.MethodPlaces])
}

func TestRunUnknownMethod(t *testing.T) {
	saver := &stubSaver{}
	engine := NewEngine(source.NewRegistry(), saver, 20)

	result, err := engine.Run(context.Background(), Request{
		TenantID: "t1",
		Methods:  []model.Method{"smoke_signals"},
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Zero(t, result.LeadsCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "smoke_signals")
	count, ok := result.MethodResults[model.Method("smoke_signals")]
	require.True(t, ok)
	assert.Zero(t, count)
	// Nothing collected, so nothing is persisted.
	assert.Nil(t, saver.got)
}

func TestRunEmptyMethodsRunsNothing(t *testing.T) {
	src := &stubSource{method: model.MethodPlaces, leads: []model.Lead{
		{CompanyName: "Initech", ContactPerson: "Contact"},
	}}
	saver := &stubSaver{}
	engine := NewEngine(source.NewRegistry(src), saver, 20)

	result, err := engine.Run(context.Background(), Request{TenantID: "t1"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Zero(t, result.LeadsCreated)
	assert.Empty(t, result.Errors)
	assert.Zero(t, src.calls)
	assert.Nil(t, saver.got)
}

func TestRunNoLeadsIsNotSuccess(t *testing.T) {
	empty := &stubSource{method: model.MethodPlaces}
	engine := NewEngine(source.NewRegistry(empty), &stubSaver{}, 20)

	result, err := engine.Run(context.Background(), Request{
		TenantID: "t1",
		Methods:  []model.Method{model.MethodPlaces},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestRunPersistFailureIsReported(t *testing.T) {
	src := &stubSource{method: model.MethodPlaces, leads: []model.Lead{
		{CompanyName: "Initech", ContactPerson: "Contact"},
	}}
	saver := &stubSaver{err: eris.New("connection refused")}
	engine := NewEngine(source.NewRegistry(src), saver, 20)

	result, err := engine.Run(context.Background(), Request{
		TenantID: "t1",
		Methods:  []model.Method{model.MethodPlaces},
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Zero(t, result.LeadsCreated)
	assert.Zero(t, result.CompaniesCreated)
	assert.Equal(t, 1, result.MethodResults[model.MethodPlaces])
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Error saving to database")
	assert.Contains(t, result.Errors[0], "connection refused")
}

func TestRunQueryShapePerMethod(t *testing.T) {
	placesSrc := &stubSource{method: model.MethodPlaces}
	webSrc := &stubSource{method: model.MethodCustomSearch}
	engine := NewEngine(source.NewRegistry(placesSrc, webSrc), &stubSaver{}, 20)

	_, err := engine.Run(context.Background(), Request{
		TenantID: "t1",
		Preferences: model.Preferences{
			CompanyType:    "pharmacy",
			TargetIndustry: "healthcare",
			Locations:      "Denver",
			CompanySize:    "11-50",
		},
		Methods: []model.Method{model.MethodPlaces, model.MethodCustomSearch},
	})
	require.NoError(t, err)

	assert.Equal(t, "pharmacy healthcare Denver", placesSrc.gotQ)
	assert.Equal(t, "pharmacy healthcare Denver 11-50", webSrc.gotQ)
}
