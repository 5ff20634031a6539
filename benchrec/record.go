// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchrec reads benchmark records written by the stream
// processing benchmarks.
//
// Each record is one JSON object describing one measurement run: its
// configuration (parallelism, batch size, chaining, rates) and the
// statistics computed over the run (mean and percentiles). Records
// from different benchmark versions do not share a schema, so a Record
// is a schema-agnostic mapping with typed accessors. Accessors fail
// with a *FieldError rather than guessing.
package benchrec

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// A Record is a single benchmark measurement run.
//
// Records are immutable once read. Callers that need a derived value
// (for example, chaining coerced to an integer) compute it rather than
// storing it back.
type Record struct {
	fields map[string]interface{}

	// source is the storage unit the record was read from.
	source string
}

// NewRecord returns a Record with the given fields. The map is
// copied. source names the record in error messages.
func NewRecord(source string, fields map[string]interface{}) *Record {
	m := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return &Record{fields: m, source: source}
}

// Source returns the name of the storage unit r was read from.
func (r *Record) Source() string {
	return r.source
}

// Keys returns the record's keys in sorted order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether r has a value for key.
func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Get returns the raw value of key.
func (r *Record) Get(key string) (interface{}, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Lookup returns the first of keys present in r and its value. It is
// used for fields that have more than one legal spelling.
func (r *Record) Lookup(keys ...string) (key string, val interface{}, ok bool) {
	for _, k := range keys {
		if v, ok := r.fields[k]; ok {
			return k, v, true
		}
	}
	return "", nil, false
}

// A FieldError reports a field that is missing from a record or that
// holds a value of the wrong type.
type FieldError struct {
	Source string // storage unit of the record
	Field  string
	Msg    string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", e.Source, e.Field, e.Msg)
}

// IsMissing reports whether the error is for an absent field.
func (e *FieldError) IsMissing() bool {
	return e.Msg == msgMissing
}

const msgMissing = "missing"

func (r *Record) missing(key string) error {
	return &FieldError{r.source, key, msgMissing}
}

func (r *Record) wrongType(key string, v interface{}, want string) error {
	return &FieldError{r.source, key, fmt.Sprintf("have %T, want %s", v, want)}
}

// Text returns the string value of key.
func (r *Record) Text(key string) (string, error) {
	v, ok := r.fields[key]
	if !ok {
		return "", r.missing(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", r.wrongType(key, v, "string")
	}
	return s, nil
}

// Float returns the numeric value of key.
func (r *Record) Float(key string) (float64, error) {
	v, ok := r.fields[key]
	if !ok {
		return 0, r.missing(key)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, r.wrongType(key, v, "number")
	}
	return f, nil
}

// Bool returns the boolean value of key.
func (r *Record) Bool(key string) (bool, error) {
	v, ok := r.fields[key]
	if !ok {
		return false, r.missing(key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, r.wrongType(key, v, "bool")
	}
	return b, nil
}

// First returns the first element of the numeric sequence stored at
// key. Fields like "parallelism" hold one entry per operator of the
// benchmark, and only the first is meaningful for grouping.
func (r *Record) First(key string) (float64, error) {
	v, ok := r.fields[key]
	if !ok {
		return 0, r.missing(key)
	}
	var first interface{}
	switch s := v.(type) {
	case []interface{}:
		if len(s) == 0 {
			return 0, &FieldError{r.source, key, "empty sequence"}
		}
		first = s[0]
	case []float64:
		if len(s) == 0 {
			return 0, &FieldError{r.source, key, "empty sequence"}
		}
		return s[0], nil
	case []int:
		if len(s) == 0 {
			return 0, &FieldError{r.source, key, "empty sequence"}
		}
		return float64(s[0]), nil
	default:
		return 0, r.wrongType(key, v, "sequence")
	}
	f, ok := toFloat(first)
	if !ok {
		return 0, r.wrongType(key, first, "number")
	}
	return f, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && !math.IsInf(f, 0)
	}
	return 0, false
}

// Pos returns the storage unit r was read from. It implements Entry.
func (r *Record) Pos() string {
	return r.source
}
