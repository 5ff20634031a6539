// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
)

// A SyntaxError reports a storage unit that could not be parsed into
// a record. It is per-unit: other units are still read.
type SyntaxError struct {
	Source string
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Msg)
}

// Recognized storage unit suffixes.
const (
	jsonSuffix   = ".json"
	snappySuffix = ".json.sz"
)

// IsRecordName reports whether name looks like a storage unit holding
// a record: a .json file, or a snappy-compressed .json.sz file.
func IsRecordName(name string) bool {
	return strings.HasSuffix(name, jsonSuffix) || strings.HasSuffix(name, snappySuffix)
}

// ParseRecord decodes a single record from r. source names the storage
// unit in the Record and in any error. If source ends in ".json.sz",
// r is decompressed with snappy first.
//
// Anything that is not a single JSON object is reported as a
// *SyntaxError.
func ParseRecord(r io.Reader, source string) (*Record, error) {
	if strings.HasSuffix(source, snappySuffix) {
		r = snappy.NewReader(r)
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		var ute *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return nil, &SyntaxError{source, "empty record"}
		case errors.As(err, &ute):
			return nil, &SyntaxError{source, "record is not a JSON object"}
		}
		return nil, &SyntaxError{source, err.Error()}
	}
	if fields == nil {
		return nil, &SyntaxError{source, "record is null"}
	}
	if dec.More() {
		return nil, &SyntaxError{source, "trailing data after record"}
	}
	return &Record{fields: fields, source: source}, nil
}

// Pos returns the storage unit that failed to parse. It implements
// Entry.
func (e *SyntaxError) Pos() string {
	return e.Source
}
