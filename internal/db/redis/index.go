package redis

import (
	"context"

	"github.com/kailas-cloud/corpusd/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	args := append([]string{def.Name}, def.Args()...)
	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an FT index by name.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// IndexFields returns the field identifiers of an index schema via FT.INFO.
func (s *Store) IndexFields(ctx context.Context, name string) ([]string, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}

	// FT.INFO replies with a flat key-value array; "attributes" holds one
	// nested array per field, itself key-value with an "identifier" entry.
	for i := 0; i+1 < len(raw); i += 2 {
		section, err := raw[i].ToString()
		if err != nil || section != "attributes" {
			continue
		}
		attrs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		fields := make([]string, 0, len(attrs))
		for _, attr := range attrs {
			pairs, err := attr.ToArray()
			if err != nil {
				continue
			}
			for j := 0; j+1 < len(pairs); j += 2 {
				k, err := pairs[j].ToString()
				if err != nil || k != "identifier" {
					continue
				}
				if v, err := pairs[j+1].ToString(); err == nil {
					fields = append(fields, v)
				}
			}
		}
		return fields, nil
	}

	return nil, nil
}
