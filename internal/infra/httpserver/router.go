package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalyses "github.com/vinay9977/CodeCritic/internal/application/analyses"
	appauth "github.com/vinay9977/CodeCritic/internal/application/auth"
	apprepos "github.com/vinay9977/CodeCritic/internal/application/repos"
	domai "github.com/vinay9977/CodeCritic/internal/domain/ai"
	domain "github.com/vinay9977/CodeCritic/internal/domain/analyses"
	"github.com/vinay9977/CodeCritic/internal/domain/repos"
	"github.com/vinay9977/CodeCritic/internal/domain/users"
	"github.com/vinay9977/CodeCritic/internal/middleware"
)

type Router struct {
	authSvc     *appauth.Service
	reposSvc    *apprepos.Service
	analysesSvc *appanalyses.Service
	jwt         *middleware.JWTManager
}

type Options struct {
	AllowedOrigins []string
	HealthCheckers map[string]middleware.HealthChecker
	RateCapacity   int // requests burst per user+ip
	RateRefill     int // requests per second
}

func NewRouter(authSvc *appauth.Service, reposSvc *apprepos.Service, analysesSvc *appanalyses.Service, jwt *middleware.JWTManager, opts Options) http.Handler {
	r := &Router{authSvc: authSvc, reposSvc: reposSvc, analysesSvc: analysesSvc, jwt: jwt}
	mux := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	capacity, refill := opts.RateCapacity, opts.RateRefill
	if capacity <= 0 {
		capacity = 60
	}
	if refill <= 0 {
		refill = 10
	}

	mux.Route("/api/v1", func(rt chi.Router) {
		rt.Use(middleware.RateLimitMiddleware(capacity, refill))

		rt.Get("/auth/github/login", r.wrap(r.handleLogin))
		rt.Get("/auth/github/callback", r.wrap(r.handleCallback))

		rt.Group(func(p chi.Router) {
			p.Use(middleware.JWTAuth(r.jwt))

			p.Get("/auth/me", r.wrap(r.handleMe))

			p.Post("/repositories/sync", r.wrap(r.handleRepoSync))
			p.Get("/repositories/list", r.wrap(r.handleRepoList))

			p.Post("/analysis/analyze/{repositoryID}", r.wrap(r.handleAnalyze))
			p.Get("/analysis/list", r.wrap(r.handleAnalysisList))
			p.Get("/analysis/repository/{repositoryID}", r.wrap(r.handleAnalysesForRepo))
			p.Get("/analysis/repository/{repositoryID}/latest", r.wrap(r.handleLatestForRepo))
			p.Get("/analysis/{analysisID}", r.wrap(r.handleAnalysisGet))
			p.Get("/analysis/{analysisID}/issues", r.wrap(r.handleIssues))
			p.Delete("/analysis/{analysisID}", r.wrap(r.handleAnalysisDelete))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks client input problems for the 400 mapping in wrap.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequestError
			switch {
			case errors.As(err, &br):
				http.Error(w, br.msg, http.StatusBadRequest)
			case errors.Is(err, domain.ErrNotFound),
				errors.Is(err, users.ErrNotFound),
				errors.Is(err, repos.ErrNotFound),
				errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrAccessDenied):
				http.Error(w, "access denied", http.StatusForbidden)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// GET /api/v1/auth/github/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	state := middleware.SanitizeString(req.URL.Query().Get("state"))
	if err := middleware.ValidateState(state); err != nil {
		return badRequest("%v", err)
	}
	return writeJSON(w, http.StatusOK, map[string]string{
		"authorization_url": r.authSvc.LoginURL(state),
	})
}

// GET /api/v1/auth/github/callback?code=...&state=...
func (r *Router) handleCallback(w http.ResponseWriter, req *http.Request) error {
	code := req.URL.Query().Get("code")
	if code == "" {
		return badRequest("code is required")
	}
	res, err := r.authSvc.HandleCallback(req.Context(), code)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /api/v1/auth/me
func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	u, err := r.authSvc.Me(req.Context(), userID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, u)
}

// POST /api/v1/repositories/sync
func (r *Router) handleRepoSync(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	res, err := r.reposSvc.Sync(req.Context(), userID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /api/v1/repositories/list?skip=&limit=
func (r *Router) handleRepoList(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	skip, limit := pagination(req)
	list, err := r.reposSvc.List(req.Context(), userID, skip, limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*repos.Repository{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /api/v1/analysis/analyze/{repositoryID}
// Creates the processing row, starts the pipeline in the background and
// returns the row immediately.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	repositoryID := chi.URLParam(req, "repositoryID")
	if err := middleware.ValidateID(repositoryID); err != nil {
		return badRequest("%v", err)
	}

	a, err := r.analysesSvc.StartAnalysis(req.Context(), userID, repositoryID)
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	go func() {
		middleware.IncrementAnalysesRunning()
		defer middleware.DecrementAnalysesRunning()
		if err := r.analysesSvc.RunUntilDone(a.ID); err != nil {
			middleware.IncrementAnalysesFailed()
		}
	}()

	return writeJSON(w, http.StatusAccepted, a)
}

// GET /api/v1/analysis/list?skip=&limit=
func (r *Router) handleAnalysisList(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	skip, limit := pagination(req)
	list, err := r.analysesSvc.ListForUser(req.Context(), userID, skip, limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Analysis{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /api/v1/analysis/repository/{repositoryID}?skip=&limit=
func (r *Router) handleAnalysesForRepo(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	repositoryID := chi.URLParam(req, "repositoryID")
	if err := middleware.ValidateID(repositoryID); err != nil {
		return badRequest("%v", err)
	}
	skip, limit := pagination(req)
	list, err := r.analysesSvc.ListForRepository(req.Context(), userID, repositoryID, skip, limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Analysis{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /api/v1/analysis/repository/{repositoryID}/latest
func (r *Router) handleLatestForRepo(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	repositoryID := chi.URLParam(req, "repositoryID")
	if err := middleware.ValidateID(repositoryID); err != nil {
		return badRequest("%v", err)
	}
	a, err := r.analysesSvc.LatestForRepository(req.Context(), userID, repositoryID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /api/v1/analysis/{analysisID}
func (r *Router) handleAnalysisGet(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	analysisID := chi.URLParam(req, "analysisID")
	if err := middleware.ValidateID(analysisID); err != nil {
		return badRequest("%v", err)
	}
	a, err := r.analysesSvc.Get(req.Context(), userID, analysisID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /api/v1/analysis/{analysisID}/issues?severity=
func (r *Router) handleIssues(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	analysisID := chi.URLParam(req, "analysisID")
	if err := middleware.ValidateID(analysisID); err != nil {
		return badRequest("%v", err)
	}
	severity := strings.ToLower(req.URL.Query().Get("severity"))
	if err := middleware.ValidateSeverity(severity); err != nil {
		return badRequest("%v", err)
	}
	list, err := r.analysesSvc.Issues(req.Context(), userID, analysisID, domain.Severity(severity))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.CodeIssue{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// DELETE /api/v1/analysis/{analysisID}
func (r *Router) handleAnalysisDelete(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.UserIDFromContext(req.Context())
	analysisID := chi.URLParam(req, "analysisID")
	if err := middleware.ValidateID(analysisID); err != nil {
		return badRequest("%v", err)
	}
	if err := r.analysesSvc.Delete(req.Context(), userID, analysisID); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func pagination(req *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(req.URL.Query().Get("skip"))
	limit, _ = strconv.Atoi(req.URL.Query().Get("limit"))
	return middleware.ValidateSkip(skip), middleware.ValidateLimit(limit)
}
