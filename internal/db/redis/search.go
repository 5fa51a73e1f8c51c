package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/corpusd/internal/db"
)

// Search runs a full-text query via FT.SEARCH, returning keys and BM25
// scores in backend rank order.
func (s *Store) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.Size <= 0 {
		return nil, fmt.Errorf("size must be positive")
	}

	args := []string{
		q.IndexName, q.Query,
		"NOCONTENT",
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.Size),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") {
			return nil, db.ErrIndexNotFound
		}
		if isRedisErr(err, "syntax error") {
			return nil, fmt.Errorf("%w: %s", db.ErrBadQuery, err)
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchResult(raw)
}

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{Total: 0}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride with NOCONTENT WITHSCORES: [total, key1, score1, key2, score2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{Key: key, Score: score})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}
