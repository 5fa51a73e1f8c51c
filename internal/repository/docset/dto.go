package docset

import (
	"encoding/json"
	"fmt"
	"strconv"

	domset "github.com/kailas-cloud/corpusd/internal/domain/docset"
	"github.com/kailas-cloud/corpusd/internal/domain/exhaustive"
)

// setToHash converts a domain DocumentSet to a map for HSET.
func setToHash(s domset.DocumentSet) map[string]string {
	op := s.Operation()
	return map[string]string{
		"id":           s.ID(),
		"name":         s.Name(),
		"corpus":       s.Corpus(),
		"op_kind":      string(op.Kind()),
		"op_text":      op.Text(),
		"op_delimiter": op.Delimiter(),
		"created_at":   strconv.FormatInt(s.CreatedAt(), 10),
	}
}

// setFromHash hydrates a domain DocumentSet from an HGETALL result map.
func setFromHash(m map[string]string) domset.DocumentSet {
	createdAt, _ := strconv.ParseInt(m["created_at"], 10, 64)
	op := domset.NewOperation(domset.Kind(m["op_kind"]), m["op_text"], m["op_delimiter"])
	return domset.Reconstruct(m["id"], m["name"], m["corpus"], op, createdAt)
}

func metricsToHash(m domset.Metrics) map[string]string {
	return map[string]string{
		"document_count":            strconv.Itoa(m.DocumentCount),
		"total_word_count":          strconv.Itoa(m.TotalWordCount),
		"avg_word_count":            formatFloat(m.AvgWordCount),
		"total_doc_length":          strconv.Itoa(m.TotalDocLength),
		"avg_doc_length":            formatFloat(m.AvgDocLength),
		"total_distinct_word_count": strconv.Itoa(m.TotalDistinctWordCount),
		"avg_distinct_word_count":   formatFloat(m.AvgDistinctWordCount),
		"avg_word_length":           formatFloat(m.AvgWordLength),
	}
}

func metricsFromHash(row map[string]string) domset.Metrics {
	return domset.Metrics{
		DocumentCount:          parseInt(row["document_count"]),
		TotalWordCount:         parseInt(row["total_word_count"]),
		AvgWordCount:           parseFloat(row["avg_word_count"]),
		TotalDocLength:         parseInt(row["total_doc_length"]),
		AvgDocLength:           parseFloat(row["avg_doc_length"]),
		TotalDistinctWordCount: parseInt(row["total_distinct_word_count"]),
		AvgDistinctWordCount:   parseFloat(row["avg_distinct_word_count"]),
		AvgWordLength:          parseFloat(row["avg_word_length"]),
	}
}

func queryMetricsToHash(m domset.QueryMetrics) map[string]string {
	return map[string]string{
		"word_count":     strconv.Itoa(m.WordCount),
		"term_count":     strconv.Itoa(m.TermCount),
		"complexity":     strconv.Itoa(m.Complexity),
		"hits_per_word":  formatFloat(m.HitsPerWord),
		"hits_per_term":  formatFloat(m.HitsPerTerm),
		"hits_per_query": strconv.Itoa(m.HitsPerQuery),
	}
}

// specToHash converts a coverage run spec to a map for HSET.
func specToHash(s *exhaustive.Spec) map[string]string {
	selectedJSON, _ := json.Marshal(s.Selected())
	return map[string]string{
		"id":             s.ID(),
		"corpus":         s.Corpus(),
		"target_set":     s.TargetSet(),
		"selection_mode": string(s.Selection()),
		"eval_mode":      string(s.Eval()),
		"term_count":     strconv.Itoa(s.TermCount()),
		"threshold":      formatFloat(s.Threshold()),
		"created_at":     strconv.FormatInt(s.CreatedAt(), 10),
		"completed":      strconv.FormatBool(s.Completed()),
		"search_text":    s.SearchText(),
		"result_set":     s.ResultSet(),
		"selected":       string(selectedJSON),
		"covered_count":  strconv.Itoa(s.CoveredCount()),
		"target_size":    strconv.Itoa(s.TargetSize()),
	}
}

// specFromHash hydrates a coverage run spec from an HGETALL result map.
func specFromHash(row map[string]string) (exhaustive.Spec, error) {
	createdAt, err := strconv.ParseInt(row["created_at"], 10, 64)
	if err != nil {
		return exhaustive.Spec{}, fmt.Errorf("invalid created_at: %w", err)
	}

	var selected []string
	if row["selected"] != "" {
		if err := json.Unmarshal([]byte(row["selected"]), &selected); err != nil {
			return exhaustive.Spec{}, fmt.Errorf("unmarshal selected terms: %w", err)
		}
	}

	return exhaustive.Reconstruct(
		row["id"], row["corpus"], row["target_set"],
		exhaustive.SelectionMode(row["selection_mode"]), exhaustive.EvalMode(row["eval_mode"]),
		parseInt(row["term_count"]), parseFloat(row["threshold"]), createdAt,
		row["completed"] == "true", row["search_text"], row["result_set"],
		selected, parseInt(row["covered_count"]), parseInt(row["target_size"]),
	), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
