package render

// This file holds the data half of table placeholder expansion: recognising an anchor and
// deriving the header list and cell matrix from the bound value.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-slides/pkg/slides/content"
)

var (
	// ErrNoData means the placeholder name is unbound, not an array, or an empty array.
	ErrNoData = errors.New("no valid array found")
	// ErrNotRecord means the first array element is not an object with at least one key.
	ErrNotRecord = errors.New("invalid array format")
	// ErrSchemaMismatch means a later element does not share the first element's keys.
	ErrSchemaMismatch = errors.New("array elements do not share one schema")
)

// ParseTableAnchor extracts the placeholder name from an anchor cell's text. It reports false
// when the text does not start with prefix and end with suffix.
func ParseTableAnchor(text, prefix, suffix string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(text, prefix) || !strings.HasSuffix(text, suffix) {
		return "", false
	}
	return strings.TrimSpace(text[len(prefix) : len(text)-len(suffix)]), true
}

// Schema is the inferred shape of a table placeholder's data.
type Schema struct {
	Headers []string
	// Rows holds one string slice per array element, aligned with Headers.
	Rows [][]string
}

// Dims returns the rendered table size: one header row plus one row per element.
func (s Schema) Dims() (rows, cols int) {
	return len(s.Rows) + 1, len(s.Headers)
}

// Cell returns the text for a rendered cell; row 0 is the header row.
func (s Schema) Cell(row, col int) string {
	if row == 0 {
		return s.Headers[col]
	}
	return s.Rows[row-1][col]
}

// InferSchema derives headers from the first element of v and renders every element against
// them. A key missing from a later element becomes an empty cell. With strict set, elements
// must be records over exactly the first element's keys.
func InferSchema(v content.Value, found bool, strict bool) (Schema, error) {
	list, ok := v.(content.List)
	if !found || !ok || len(list) == 0 {
		return Schema{}, ErrNoData
	}

	first, ok := list[0].(*content.Record)
	if !ok || first.Len() == 0 {
		return Schema{}, ErrNotRecord
	}

	headers := first.Keys()
	schema := Schema{
		Headers: headers,
		Rows:    make([][]string, 0, len(list)),
	}

	for i, item := range list {
		rec, ok := item.(*content.Record)
		if strict {
			if !ok {
				return Schema{}, fmt.Errorf("%w: element %d is not an object", ErrSchemaMismatch, i)
			}
			if !sameKeys(headers, rec) {
				return Schema{}, fmt.Errorf("%w: element %d has keys %v, want %v", ErrSchemaMismatch, i, rec.Keys(), headers)
			}
		}

		row := make([]string, len(headers))
		for col, header := range headers {
			if cell, ok := rec.Get(header); ok {
				row[col] = cell.String()
			}
		}
		schema.Rows = append(schema.Rows, row)
	}

	return schema, nil
}

func sameKeys(headers []string, rec *content.Record) bool {
	if rec.Len() != len(headers) {
		return false
	}
	for _, h := range headers {
		if _, ok := rec.Get(h); !ok {
			return false
		}
	}
	return true
}
