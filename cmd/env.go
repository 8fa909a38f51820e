package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/classify"
	"github.com/sells-group/leadgen-cli/internal/persist"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/internal/workflow"
	anthropicpkg "github.com/sells-group/leadgen-cli/pkg/anthropic"
	"github.com/sells-group/leadgen-cli/pkg/customsearch"
	"github.com/sells-group/leadgen-cli/pkg/perplexity"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// pipelineEnv holds the initialized store, clients and workflow engine needed
// by the generate/serve/import commands.
type pipelineEnv struct {
	Store  store.Store
	Engine *workflow.Engine
	Saver  *persist.Saver
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	prefix := cfg.Store.Prefix()
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadgen.db"
		}
		return store.NewSQLite(dsn, prefix)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, prefix, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store, all API clients and the workflow engine. Missing
// API credentials disable the corresponding source instead of failing here.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var placesClient places.Client
	if cfg.Places.Key != "" {
		placesClient = places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))
		zap.L().Info("places api enabled")
	} else {
		zap.L().Debug("LEADGEN_PLACES_KEY not set, places source disabled")
	}

	var searchClient customsearch.Client
	if cfg.CustomSearch.Key != "" && cfg.CustomSearch.CSEID != "" {
		searchClient = customsearch.NewClient(cfg.CustomSearch.Key, cfg.CustomSearch.CSEID,
			customsearch.WithBaseURL(cfg.CustomSearch.BaseURL))
		zap.L().Info("custom search api enabled")
	} else {
		zap.L().Debug("custom search credentials not set, web and profile sources disabled")
	}

	var anthropicClient anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		anthropicClient = anthropicpkg.NewClient(cfg.Anthropic.Key)
	}

	var perplexityClient perplexity.Client
	if cfg.Perplexity.Key != "" {
		perplexityClient = perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model))
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.CustomSearch.RateLimit), 1)

	registry := source.NewRegistry(
		source.NewPlacesSource(placesClient),
		source.NewCustomSearchSource(searchClient, limiter),
		source.NewLinkedInSource(searchClient, limiter),
		source.NewLLMSource(anthropicClient, perplexityClient, cfg.Anthropic.Model),
	)

	var classifier classify.Classifier
	if anthropicClient != nil {
		classifier = classify.NewLLMClassifier(anthropicClient, cfg.Anthropic.Model)
		zap.L().Info("lead classification enabled")
	}

	saver := persist.NewSaver(st, classifier)
	engine := workflow.NewEngine(registry, saver, cfg.Workflow.MaxResultsPerMethod)

	return &pipelineEnv{Store: st, Engine: engine, Saver: saver}, nil
}
