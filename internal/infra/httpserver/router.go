package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/adiwira-dev/sniffgate/internal/application/analysis"
	domain "github.com/adiwira-dev/sniffgate/internal/domain/analysis"
	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
	"github.com/adiwira-dev/sniffgate/internal/middleware"
)

type Router struct {
	svc *appanalysis.Service
}

// NewRouter wires the analysis endpoints. healthCheckers may be nil.
func NewRouter(svc *appanalysis.Service, corsOrigins []string, healthCheckers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	if len(corsOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	mux.Get("/health", middleware.HealthHandler(healthCheckers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, domain.ErrInvalidRequest) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// POST /v1/analyze
// Body: {"code": "...", "language": "go", "options": {"detectors": ["static"]}}
// Responds 200 for every outcome that is not a malformed request, including
// total backend failure.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Code     string         `json:"code"`
		Language string         `json:"language"`
		Options  domain.Options `json:"options"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errors.Join(domain.ErrInvalidRequest, err)
	}

	result, err := r.svc.Analyze(req.Context(), domain.Request{
		Code:     body.Code,
		Language: middleware.SanitizeString(body.Language),
		Options:  body.Options,
	})
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	partial := false
	for _, rep := range result.Backends {
		switch rep.Status {
		case findings.StatusFailed:
			middleware.IncrementBackendFailures()
			partial = true
		case findings.StatusTimeout:
			middleware.IncrementBackendTimeouts()
			partial = true
		}
	}
	if partial {
		middleware.IncrementAnalysesPartial()
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/analyses/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.svc.Latest(req.Context(), limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRequestID(id); err != nil {
		return errors.Join(domain.ErrInvalidRequest, err)
	}

	result, err := r.svc.Get(req.Context(), domain.ID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.Paginate(req.Context(), page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	days = middleware.ValidateDays(days)

	summary, err := r.svc.Summary(req.Context(), days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}
