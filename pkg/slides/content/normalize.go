package content

import (
	"errors"
	"fmt"
)

// Default names used by the normalizer.
const (
	DefaultField      = "jeschro_content"
	DefaultJobIDKey   = "jobid"
	DefaultJobDateKey = "jobdate"
)

// ErrMalformed marks a row whose embedded content cannot be turned into a Content Map.
var ErrMalformed = errors.New("malformed content")

// MalformedError reports why a row's content field was rejected.
type MalformedError struct {
	Field string
	Cause error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed content in field %q: %v", e.Field, e.Cause)
}

func (e *MalformedError) Unwrap() error { return e.Cause }

// Is reports ErrMalformed as a match so callers need not know the concrete type.
func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

// Row is one record as delivered by a data source.
type Row map[string]any

// Job carries the run-level values injected into every Content Map.
type Job struct {
	ID   string
	Date string
}

// Map is the read-only placeholder lookup for one row.
type Map struct {
	rec *Record
}

// NewMap copies rec into a Map.
func NewMap(rec *Record) *Map {
	m := &Map{rec: NewRecord()}
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		m.rec.Set(key, v)
	}
	return m
}

// Lookup returns the value bound to name.
func (m *Map) Lookup(name string) (Value, bool) {
	return m.rec.Get(name)
}

// Keys returns the placeholder names in map order.
func (m *Map) Keys() []string {
	return m.rec.Keys()
}

// Len returns the number of names.
func (m *Map) Len() int {
	return m.rec.Len()
}

// Each calls fn for every entry in map order.
func (m *Map) Each(fn func(name string, v Value)) {
	for _, key := range m.rec.keys {
		fn(key, m.rec.values[key])
	}
}

// Normalizer builds Content Maps from rows.
type Normalizer struct {
	// Field names the row field holding the serialized JSON content.
	Field string
	// JobIDKey and JobDateKey name the injected keys.
	JobIDKey   string
	JobDateKey string
}

// DefaultNormalizer returns a Normalizer using the default field and key names.
func DefaultNormalizer() Normalizer {
	return Normalizer{
		Field:      DefaultField,
		JobIDKey:   DefaultJobIDKey,
		JobDateKey: DefaultJobDateKey,
	}
}

// Normalize turns row into a Content Map. A missing or null content field yields a map holding
// only the job keys. Content that is not a JSON object string returns a *MalformedError.
// The job keys always win over same-named keys in the content.
func (n Normalizer) Normalize(row Row, job Job) (*Map, error) {
	rec := NewRecord()

	if raw, ok := row[n.Field]; ok && raw != nil {
		text, ok := raw.(string)
		if !ok {
			return nil, &MalformedError{Field: n.Field, Cause: fmt.Errorf("expected string, got %T", raw)}
		}
		parsed, err := Parse(text)
		if err != nil {
			return nil, &MalformedError{Field: n.Field, Cause: err}
		}
		obj, ok := parsed.(*Record)
		if !ok {
			return nil, &MalformedError{Field: n.Field, Cause: fmt.Errorf("expected JSON object, got %s", kindOf(parsed))}
		}
		rec = obj
	}

	rec.Set(n.JobIDKey, String(job.ID))
	rec.Set(n.JobDateKey, String(job.Date))

	return &Map{rec: rec}, nil
}

func kindOf(v Value) string {
	switch v.(type) {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case Null:
		return "null"
	case List:
		return "array"
	default:
		return "object"
	}
}
