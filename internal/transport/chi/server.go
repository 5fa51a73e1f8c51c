// Package chi implements the HTTP API on the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/corpusd/internal/domain"
	domset "github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
	corporauc "github.com/kailas-cloud/corpusd/internal/usecase/corpora"
	coverageuc "github.com/kailas-cloud/corpusd/internal/usecase/coverage"
	healthuc "github.com/kailas-cloud/corpusd/internal/usecase/health"
	setopsuc "github.com/kailas-cloud/corpusd/internal/usecase/setops"
	termtestuc "github.com/kailas-cloud/corpusd/internal/usecase/termtest"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	corpora       *corporauc.Service
	ops           *setopsuc.Service
	coverage      *coverageuc.Service
	termtest      *termtestuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	defThreshold  float64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaultThreshold is applied to
// coverage runs that omit one.
func NewServer(
	corpora *corporauc.Service,
	ops *setopsuc.Service,
	coverage *coverageuc.Service,
	termtest *termtestuc.Service,
	health *healthuc.Service,
	defaultThreshold float64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		corpora:      corpora,
		ops:          ops,
		coverage:     coverage,
		termtest:     termtest,
		health:       health,
		logger:       logger,
		defThreshold: defaultThreshold,
	}
	s.errorHandlers = []errorHandler{
		setsNotFoundHandler,
		sentinelHandler(domain.ErrCorpusNotFound, http.StatusNotFound, codeCorpusNotFound),
		sentinelHandler(domain.ErrSetNotFound, http.StatusNotFound, codeSetNotFound),
		sentinelHandler(domain.ErrRunNotFound, http.StatusNotFound, codeRunNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrEmptyQueryText, http.StatusBadRequest, codeEmptyQueryText),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNoTermLibrary, http.StatusConflict, codeNoTermLibrary),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusBadGateway, codeBackendUnavailable),
	}
	return s
}

// Routes registers every endpoint on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.Health)
	r.Get("/metrics", s.Metrics)

	r.Route("/corpora", func(r chi.Router) {
		r.Post("/", s.CreateCorpus)
		r.Route("/{corpus}", func(r chi.Router) {
			r.Get("/", s.GetCorpus)
			r.Put("/documents", s.IngestDocuments)
			r.Post("/operations", s.RunOperation)
			r.Get("/sets/{set}", s.GetSet)
			r.Get("/sets/{set}/members", s.GetSetMembers)
			r.Post("/term-tests", s.RunTermTests)
			r.Post("/coverage", s.RunCoverage)
			r.Get("/coverage/{id}", s.GetCoverage)
		})
	})
}

// CreateCorpus handles POST /corpora.
func (s *Server) CreateCorpus(w http.ResponseWriter, r *http.Request) {
	var req createCorpusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Corpus name is required")
		return
	}

	c, err := s.corpora.Create(r.Context(), req.Name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, corpusToResponse(c, 0))
}

// GetCorpus handles GET /corpora/{corpus}.
func (s *Server) GetCorpus(w http.ResponseWriter, r *http.Request) {
	c, count, err := s.corpora.Get(r.Context(), chi.URLParam(r, "corpus"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, corpusToResponse(c, count))
}

// IngestDocuments handles PUT /corpora/{corpus}/documents.
func (s *Server) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	inputs := make([]corporauc.DocumentInput, len(req.Documents))
	for i, d := range req.Documents {
		inputs[i] = corporauc.DocumentInput{ID: d.ID, Content: d.Content}
	}

	stored, err := s.corpora.Ingest(r.Context(), chi.URLParam(r, "corpus"), inputs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ingestResponse{Stored: stored})
}

// RunOperation handles POST /corpora/{corpus}/operations.
func (s *Server) RunOperation(w http.ResponseWriter, r *http.Request) {
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	kind, err := domset.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if kind == domset.KindExhaustive {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"exhaustive sets are produced by coverage runs")
		return
	}

	set, err := s.ops.Run(r.Context(), chi.URLParam(r, "corpus"), setopsuc.Params{
		Kind:        kind,
		Name:        req.Name,
		OperandText: req.Text,
		Delimiter:   req.Delimiter,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, setToResponse(set))
}

// GetSet handles GET /corpora/{corpus}/sets/{set}.
func (s *Server) GetSet(w http.ResponseWriter, r *http.Request) {
	set, m, count, err := s.ops.Describe(r.Context(), chi.URLParam(r, "corpus"), chi.URLParam(r, "set"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := setToResponse(set)
	resp.Count = &count
	resp.Metrics = metricsToResponse(m)
	writeJSON(w, http.StatusOK, resp)
}

// GetSetMembers handles GET /corpora/{corpus}/sets/{set}/members.
func (s *Server) GetSetMembers(w http.ResponseWriter, r *http.Request) {
	ids, err := s.ops.SetMembers(r.Context(), chi.URLParam(r, "corpus"), chi.URLParam(r, "set"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, membersResponse{Members: ids})
}

// RunTermTests handles POST /corpora/{corpus}/term-tests.
func (s *Server) RunTermTests(w http.ResponseWriter, r *http.Request) {
	var req termTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	report, err := s.termtest.Run(r.Context(), chi.URLParam(r, "corpus"), req.Terms)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, termReportToResponse(report))
}

// RunCoverage handles POST /corpora/{corpus}/coverage.
func (s *Server) RunCoverage(w http.ResponseWriter, r *http.Request) {
	var req coverageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	selection, err := exhaustive.ParseSelectionMode(req.SelectionMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	eval, err := exhaustive.ParseEvalMode(req.EvalMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	threshold := s.defThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	spec, err := s.coverage.Run(r.Context(), chi.URLParam(r, "corpus"), coverageuc.RunParams{
		TargetSet: req.TargetSet,
		Selection: selection,
		Eval:      eval,
		TermCount: req.TermCount,
		Threshold: threshold,
		Name:      req.Name,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, specToResponse(spec))
}

// GetCoverage handles GET /corpora/{corpus}/coverage/{id}.
func (s *Server) GetCoverage(w http.ResponseWriter, r *http.Request) {
	spec, err := s.coverage.Get(r.Context(), chi.URLParam(r, "corpus"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, specToResponse(spec))
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCorpusNotFound,
		domain.ErrSetNotFound,
		domain.ErrRunNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidQuery,
		domain.ErrEmptyQueryText,
		domain.ErrInvalidArgument,
		domain.ErrNoTermLibrary,
		domain.ErrBackendUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// setsNotFoundHandler handles SetsNotFoundError with the full missing list.
func setsNotFoundHandler(w http.ResponseWriter, err error, msg string) bool {
	var snf *domain.SetsNotFoundError
	if !errors.As(err, &snf) {
		return false
	}
	writeJSON(w, http.StatusNotFound, map[string]any{
		"code":         codeSetNotFound,
		"message":      msg,
		"missing_sets": snf.Missing,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
