package db

import "fmt"

// IndexFieldType is the indexing type of a field.
type IndexFieldType string

// Supported index field types.
const (
	IndexFieldText    IndexFieldType = "TEXT"
	IndexFieldTag     IndexFieldType = "TAG"
	IndexFieldNumeric IndexFieldType = "NUMERIC"
)

// IndexField describes one field of an FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType
}

// IndexDefinition describes an FT index over hash keys with a common prefix.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks the definition for completeness.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return fmt.Errorf("index name is required")
	}
	if len(idx.Fields) == 0 {
		return fmt.Errorf("index %s: at least one field is required", idx.Name)
	}
	for _, f := range idx.Fields {
		if f.Name == "" {
			return fmt.Errorf("index %s: field name is required", idx.Name)
		}
		switch f.Type {
		case IndexFieldText, IndexFieldTag, IndexFieldNumeric:
		default:
			return fmt.Errorf("index %s: unsupported field type %q", idx.Name, f.Type)
		}
	}
	return nil
}

// Args renders the definition as FT.CREATE arguments (after the index name).
func (idx *IndexDefinition) Args() []string {
	args := []string{"ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", fmt.Sprintf("%d", len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for _, f := range idx.Fields {
		args = append(args, f.Name, string(f.Type))
	}
	return args
}
