package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/sells-group/leadgen-cli/internal/authstate"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/internal/workflow"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead generation API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		api := &apiServer{
			env:    env,
			states: authstate.New(authstate.DefaultTTL),
		}
		if cfg.Server.OAuthClientID != "" {
			api.oauth = &oauth2.Config{
				ClientID:     cfg.Server.OAuthClientID,
				ClientSecret: cfg.Server.OAuthClientSecret,
				RedirectURL:  cfg.Server.OAuthRedirectURL,
				Scopes:       []string{"openid", "email"},
				Endpoint:     endpoints.Google,
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type apiServer struct {
	env    *pipelineEnv
	states *authstate.Store
	oauth  *oauth2.Config
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/api/generate-leads", s.handleGenerateLeads)
		r.Get("/api/preferences/{tenantID}", s.handleGetPreferences)
		r.Post("/api/preferences", s.handleSavePreferences)
		r.Post("/api/search-linkedin", s.handleSearchLinkedIn)
	})

	if s.oauth != nil {
		r.Get("/auth/login", s.handleAuthLogin)
		r.Get("/auth/callback", s.handleAuthCallback)
	}

	return r
}

// requireAuth checks the bearer token when one is configured. Without a
// configured token the API is open; that is the local development mode.
func (s *apiServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.Server.AuthToken != "" {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token != cfg.Server.AuthToken {
				writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type generateRequest struct {
	TenantID   string   `json:"tenant_id"`
	TenantName string   `json:"tenant_name,omitempty"`
	AdminNotes string   `json:"admin_notes,omitempty"`
	Methods    []string `json:"methods,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}

func (s *apiServer) handleGenerateLeads(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	methods, err := parseMethods(req.Methods)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs, err := s.env.Store.GetPreferences(r.Context(), req.TenantID)
	if err != nil {
		zap.L().Error("load preferences failed", zap.String("tenant_id", req.TenantID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	if prefs == nil {
		prefs = &model.Preferences{TenantID: req.TenantID}
	}
	if len(methods) == 0 {
		methods = prefs.EnabledMethods
	}
	if len(methods) == 0 {
		methods = model.KnownMethods
	}

	result, err := s.env.Engine.Run(r.Context(), workflow.Request{
		TenantID:     req.TenantID,
		TenantName:   req.TenantName,
		AdminNotes:   req.AdminNotes,
		Preferences:  *prefs,
		Methods:      methods,
		MaxPerMethod: req.MaxResults,
	})
	if err != nil {
		zap.L().Error("workflow run failed", zap.String("tenant_id", req.TenantID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lead generation failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	prefs, err := s.env.Store.GetPreferences(r.Context(), tenantID)
	if err != nil {
		zap.L().Error("get preferences failed", zap.String("tenant_id", tenantID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	if prefs == nil {
		writeError(w, http.StatusNotFound, "no preferences stored for tenant")
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}

func (s *apiServer) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs model.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if prefs.TenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}
	if err := validatePreferences(prefs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.env.Store.SavePreferences(r.Context(), prefs); err != nil {
		zap.L().Error("save preferences failed", zap.String("tenant_id", prefs.TenantID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "tenant_id": prefs.TenantID})
}

type linkedInSearchRequest struct {
	TenantID   string `json:"tenant_id"`
	Locations  string `json:"locations"`
	Positions  string `json:"positions"`
	Operator   string `json:"experience_operator,omitempty"`
	Years      int    `json:"experience_years,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// handleSearchLinkedIn runs only the profile search and persists what it
// finds, bypassing the full workflow. Used by the admin UI to run a targeted
// search with ad hoc locations and positions.
func (s *apiServer) handleSearchLinkedIn(w http.ResponseWriter, r *http.Request) {
	var req linkedInSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}
	if req.Locations == "" || req.Positions == "" {
		writeError(w, http.StatusBadRequest, "locations and positions are required")
		return
	}
	switch req.Operator {
	case "", ">", "<", "=":
	default:
		writeError(w, http.StatusBadRequest, "invalid experience operator")
		return
	}
	if req.Years < 0 || req.Years > 30 {
		writeError(w, http.StatusBadRequest, "experience years out of range")
		return
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = cfg.Workflow.MaxResultsPerMethod
	}

	src, ok := s.env.Engine.Source(model.MethodLinkedIn)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "profile search is not configured")
		return
	}

	leads, err := src.Fetch(r.Context(), source.Criteria{
		MaxResults: maxResults,
		Preferences: model.Preferences{
			TenantID:                   req.TenantID,
			LinkedInLocations:          req.Locations,
			LinkedInPositions:          req.Positions,
			LinkedInExperienceOperator: req.Operator,
			LinkedInExperienceYears:    req.Years,
		},
	})
	if err != nil {
		zap.L().Error("profile search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "profile search failed")
		return
	}

	var saved model.SaveResult
	if len(leads) > 0 {
		saved, err = s.env.Saver.SaveBatch(r.Context(), req.TenantID, workflow.Deduplicate(leads))
		if err != nil {
			zap.L().Error("persist profile search failed", zap.String("tenant_id", req.TenantID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save leads")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        saved.LeadsCreated > 0,
		"profiles_found": len(leads),
		"leads_created":  saved.LeadsCreated,
	})
}

func (s *apiServer) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	state, err := s.states.Issue(r.URL.Query().Get("redirect_to"))
	if err != nil {
		zap.L().Error("issue oauth state failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start login")
		return
	}
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

func (s *apiServer) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if _, ok := s.states.Consume(state); !ok {
		writeError(w, http.StatusBadRequest, "invalid or expired state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		zap.L().Warn("oauth exchange failed", zap.Error(err))
		writeError(w, http.StatusUnauthorized, "authorization failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
		"expiry":       token.Expiry,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
