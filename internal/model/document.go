// Package model holds the parcel domain types.
//
// A parcel is schema-free: clients decide which fields it carries. Document
// keeps those fields in the order the client sent them while still giving
// typed access to the few fields the service relies on (created_by and
// createdAt).
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Well-known field names.
const (
	FieldID        = "_id"
	FieldCreatedBy = "created_by"
	FieldCreatedAt = "createdAt"
)

// ErrNotAnObject is returned when a document payload is not a JSON object.
var ErrNotAnObject = errors.New("parcel document must be a JSON object")

// Field is a single key/value pair of a Document.
//
// Value is one of: nil, string, bool, int64, float64, time.Time,
// Document or []any (whose elements follow the same rules).
type Field struct {
	Key   string
	Value any
}

// Document is an ordered, loosely-typed record.
type Document []Field

// Get returns the value stored under key.
func (d Document) Get(key string) (any, bool) {
	for _, f := range d {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of key in place, or appends it.
func (d *Document) Set(key string, value any) {
	for i := range *d {
		if (*d)[i].Key == key {
			(*d)[i].Value = value
			return
		}
	}
	*d = append(*d, Field{Key: key, Value: value})
}

// Without returns a copy of d minus key.
func (d Document) Without(key string) Document {
	out := make(Document, 0, len(d))
	for _, f := range d {
		if f.Key != key {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for i, f := range d {
		out[i] = Field{Key: f.Key, Value: cloneValue(f.Value)}
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Keys lists the field names in order.
func (d Document) Keys() []string {
	keys := make([]string, len(d))
	for i, f := range d {
		keys[i] = f.Key
	}
	return keys
}

// CreatedBy returns the creator field when it is a string.
func (d Document) CreatedBy() (string, bool) {
	v, ok := d.Get(FieldCreatedBy)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// CreatedAt returns the raw creation timestamp value used for ordering.
func (d Document) CreatedAt() (any, bool) {
	return d.Get(FieldCreatedAt)
}

// MarshalJSON writes the fields as a JSON object in document order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order. A repeated key
// keeps its first position and its last value.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotAnObject
	}

	doc, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

func decodeObject(dec *json.Decoder) (Document, error) {
	doc := Document{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}

		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		doc.Set(key, value)
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := []any{}
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}

	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case json.Number:
		return numberValue(t)
	default:
		// string, bool or nil
		return t, nil
	}
}

// numberValue keeps integers exact and falls back to float64.
func numberValue(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return f, nil
}

// Canonical type order used when comparing values of different types,
// matching the document store's sort order.
const (
	orderNull = iota + 1
	orderNumber
	orderString
	orderDocument
	orderArray
	orderBool
	orderTime
	orderOther
)

func typeOrder(v any) int {
	switch v.(type) {
	case nil:
		return orderNull
	case int, int32, int64, float32, float64:
		return orderNumber
	case string:
		return orderString
	case Document:
		return orderDocument
	case []any:
		return orderArray
	case bool:
		return orderBool
	case time.Time:
		return orderTime
	default:
		return orderOther
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return math.NaN()
}

// CompareValues orders two field values: first by type, then by value
// within numbers, strings, booleans and times. Documents and arrays of the
// same type compare equal.
func CompareValues(a, b any) int {
	oa, ob := typeOrder(a), typeOrder(b)
	if oa != ob {
		if oa < ob {
			return -1
		}
		return 1
	}

	switch oa {
	case orderNumber:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	case orderString:
		sa, sb := a.(string), b.(string)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
	case orderBool:
		ba, bb := a.(bool), b.(bool)
		if ba != bb {
			if !ba {
				return -1
			}
			return 1
		}
	case orderTime:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return 0
}

// SortByCreatedAtDesc sorts parcels newest first. Missing timestamps sort
// last and ties keep their input order.
func SortByCreatedAtDesc(parcels []Parcel) {
	sort.SliceStable(parcels, func(i, j int) bool {
		a, _ := parcels[i].Fields.CreatedAt()
		b, _ := parcels[j].Fields.CreatedAt()
		return CompareValues(a, b) > 0
	})
}
