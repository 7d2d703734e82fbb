// Package content holds the data side of a render: the tagged values decoded from a row's
// embedded JSON and the per-row Content Map built from them.
package content

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Value is one piece of placeholder content. The concrete types are String, Number, Bool,
// Null, List and *Record; use a type switch to dispatch on them.
type Value interface {
	// String returns the text written into a slide for this value.
	String() string
	isValue()
}

// String is a JSON string.
type String string

// Number is a JSON number kept as its literal text so "1" stays "1" and "2.50" stays "2.50".
type Number string

// Bool is a JSON boolean.
type Bool bool

// Null is a JSON null. It renders as the empty string.
type Null struct{}

// List is a JSON array.
type List []Value

func (String) isValue()  {}
func (Number) isValue()  {}
func (Bool) isValue()    {}
func (Null) isValue()    {}
func (List) isValue()    {}
func (*Record) isValue() {}

func (s String) String() string { return string(s) }
func (n Number) String() string { return string(n) }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (Null) String() string     { return "" }

// Float64 parses the number literal.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// String renders the list as compact JSON.
func (l List) String() string {
	var b strings.Builder
	writeJSON(&b, l)
	return b.String()
}

// Record is a JSON object that remembers the order its keys were first seen in.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores v under key. A key that already exists keeps its position.
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// String renders the record as compact JSON with keys in insertion order.
func (r *Record) String() string {
	var b strings.Builder
	writeJSON(&b, r)
	return b.String()
}

func writeJSON(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case String:
		quoted, _ := json.Marshal(string(val))
		b.Write(quoted)
	case Number:
		b.WriteString(string(val))
	case Bool:
		b.WriteString(val.String())
	case Null, nil:
		b.WriteString("null")
	case List:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSON(b, item)
		}
		b.WriteByte(']')
	case *Record:
		b.WriteByte('{')
		for i, key := range val.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			quoted, _ := json.Marshal(key)
			b.Write(quoted)
			b.WriteByte(':')
			writeJSON(b, val.values[key])
		}
		b.WriteByte('}')
	}
}

// FromJSON converts a parsed gjson result into a Value, keeping object key order.
func FromJSON(res gjson.Result) Value {
	switch res.Type {
	case gjson.String:
		return String(res.Str)
	case gjson.Number:
		return numberLiteral(strings.TrimSpace(res.Raw))
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Null:
		return Null{}
	}

	if res.IsArray() {
		list := List{}
		res.ForEach(func(_, item gjson.Result) bool {
			list = append(list, FromJSON(item))
			return true
		})
		return list
	}

	rec := NewRecord()
	res.ForEach(func(key, item gjson.Result) bool {
		rec.Set(key.String(), FromJSON(item))
		return true
	})
	return rec
}

// numberLiteral keeps the JSON text of a number, except that exponent forms are
// expanded to plain decimals ("1e2" becomes "100.0").
func numberLiteral(raw string) Number {
	if !strings.ContainsAny(raw, "eE") {
		return Number(raw)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Number(raw)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return Number(s)
}

// Parse decodes a JSON document into a Value.
func Parse(data string) (Value, error) {
	var probe json.RawMessage
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return nil, err
	}
	return FromJSON(gjson.Parse(data)), nil
}
