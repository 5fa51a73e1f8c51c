package chi

import (
	"time"

	domcorpus "github.com/kailas-cloud/corpusd/internal/domain/corpus"
	domset "github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
	healthuc "github.com/kailas-cloud/corpusd/internal/usecase/health"
	termtestuc "github.com/kailas-cloud/corpusd/internal/usecase/termtest"
)

// Machine-readable error codes.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeCorpusNotFound     = "corpus_not_found"
	codeSetNotFound        = "set_not_found"
	codeRunNotFound        = "run_not_found"
	codeAlreadyExists      = "already_exists"
	codeInvalidQuery       = "invalid_query"
	codeEmptyQueryText     = "empty_query_text"
	codeNoTermLibrary      = "no_term_library"
	codeBackendUnavailable = "backend_unavailable"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createCorpusRequest struct {
	Name string `json:"name"`
}

type corpusResponse struct {
	Name          string    `json:"name"`
	IndexName     string    `json:"index_name"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func corpusToResponse(c domcorpus.Corpus, docCount int) corpusResponse {
	return corpusResponse{
		Name:          c.Name(),
		IndexName:     c.IndexName(),
		DocumentCount: docCount,
		CreatedAt:     time.UnixMilli(c.CreatedAt()).UTC(),
	}
}

type documentInput struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}

type ingestRequest struct {
	Documents []documentInput `json:"documents"`
}

type ingestResponse struct {
	Stored int `json:"stored"`
}

type operationRequest struct {
	Kind      string `json:"kind"`
	Name      string `json:"name,omitempty"`
	Text      string `json:"text,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
}

type operationInfo struct {
	Kind      string `json:"kind"`
	Text      string `json:"text,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
}

type setResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Corpus    string           `json:"corpus"`
	Operation operationInfo    `json:"operation"`
	CreatedAt time.Time        `json:"created_at"`
	Count     *int             `json:"member_count,omitempty"`
	Metrics   *metricsResponse `json:"metrics,omitempty"`
}

type metricsResponse struct {
	DocumentCount          int     `json:"document_count"`
	TotalWordCount         int     `json:"total_word_count"`
	AvgWordCount           float64 `json:"avg_word_count"`
	TotalDocLength         int     `json:"total_doc_length"`
	AvgDocLength           float64 `json:"avg_doc_length"`
	TotalDistinctWordCount int     `json:"total_distinct_word_count"`
	AvgDistinctWordCount   float64 `json:"avg_distinct_word_count"`
	AvgWordLength          float64 `json:"avg_word_length"`
}

func setToResponse(s domset.DocumentSet) setResponse {
	op := s.Operation()
	return setResponse{
		ID:     s.ID(),
		Name:   s.Name(),
		Corpus: s.Corpus(),
		Operation: operationInfo{
			Kind:      string(op.Kind()),
			Text:      op.Text(),
			Delimiter: op.Delimiter(),
		},
		CreatedAt: time.UnixMilli(s.CreatedAt()).UTC(),
	}
}

func metricsToResponse(m domset.Metrics) *metricsResponse {
	return &metricsResponse{
		DocumentCount:          m.DocumentCount,
		TotalWordCount:         m.TotalWordCount,
		AvgWordCount:           m.AvgWordCount,
		TotalDocLength:         m.TotalDocLength,
		AvgDocLength:           m.AvgDocLength,
		TotalDistinctWordCount: m.TotalDistinctWordCount,
		AvgDistinctWordCount:   m.AvgDistinctWordCount,
		AvgWordLength:          m.AvgWordLength,
	}
}

type membersResponse struct {
	Members []string `json:"members"`
}

type termTestRequest struct {
	Terms []string `json:"terms"`
}

type termTestResponse struct {
	Requested int              `json:"requested"`
	Succeeded int              `json:"succeeded"`
	Results   []termTestResult `json:"results"`
}

type termTestResult struct {
	Term    string `json:"term"`
	SetName string `json:"set_name,omitempty"`
	Hits    int    `json:"hits"`
	Error   string `json:"error,omitempty"`
}

func termReportToResponse(r termtestuc.Report) termTestResponse {
	results := make([]termTestResult, len(r.Results))
	for i, tr := range r.Results {
		results[i] = termTestResult{Term: tr.Term, SetName: tr.SetName, Hits: tr.Hits, Error: tr.Err}
	}
	return termTestResponse{Requested: r.Requested, Succeeded: r.Succeeded, Results: results}
}

type coverageRequest struct {
	TargetSet     string   `json:"target_set"`
	SelectionMode string   `json:"selection_mode"`
	EvalMode      string   `json:"eval_mode"`
	TermCount     int      `json:"term_count,omitempty"`
	Threshold     *float64 `json:"threshold,omitempty"`
	Name          string   `json:"name,omitempty"`
}

type coverageResponse struct {
	ID            string    `json:"id"`
	Corpus        string    `json:"corpus"`
	TargetSet     string    `json:"target_set"`
	SelectionMode string    `json:"selection_mode"`
	EvalMode      string    `json:"eval_mode"`
	TermCount     int       `json:"term_count"`
	Threshold     float64   `json:"threshold"`
	CreatedAt     time.Time `json:"created_at"`
	Completed     bool      `json:"completed"`
	SearchText    string    `json:"search_text,omitempty"`
	ResultSet     string    `json:"result_set,omitempty"`
	Selected      []string  `json:"selected,omitempty"`
	CoveredCount  int       `json:"covered_count"`
	TargetSize    int       `json:"target_size"`
}

func specToResponse(s exhaustive.Spec) coverageResponse {
	return coverageResponse{
		ID:            s.ID(),
		Corpus:        s.Corpus(),
		TargetSet:     s.TargetSet(),
		SelectionMode: string(s.Selection()),
		EvalMode:      string(s.Eval()),
		TermCount:     s.TermCount(),
		Threshold:     s.Threshold(),
		CreatedAt:     time.UnixMilli(s.CreatedAt()).UTC(),
		Completed:     s.Completed(),
		SearchText:    s.SearchText(),
		ResultSet:     s.ResultSet(),
		Selected:      s.Selected(),
		CoveredCount:  s.CoveredCount(),
		TargetSize:    s.TargetSize(),
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func healthToResponse(r healthuc.Report) healthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return healthResponse{Status: string(r.Status), Checks: checks}
}
