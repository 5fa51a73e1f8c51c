package redis

import (
	"context"

	"github.com/kailas-cloud/corpusd/internal/db"
)

// SAdd adds members to a set. A no-op for an empty member list.
func (s *Store) SAdd(ctx context.Context, key string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Sadd().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSAdd, Err: err}
	}
	return nil
}

// SMembers returns all members of a set.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	cmd := s.b().Smembers().Key(key).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	return members, nil
}

// SCard returns the cardinality of a set.
func (s *Store) SCard(ctx context.Context, key string) (int, error) {
	cmd := s.b().Scard().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpSCard, Err: err}
	}
	return int(n), nil
}
