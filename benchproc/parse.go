// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// A SyntaxError is an error produced by parsing a malformed filter
// expression.
type SyntaxError struct {
	Query string // The original query string
	Off   int    // Byte offset of the error in Query
	Msg   string // Error message
}

func (e *SyntaxError) Error() string {
	// Translate byte offset to a rune offset.
	pos := 0
	for i, r := range e.Query {
		if i >= e.Off {
			break
		}
		if unicode.IsGraphic(r) {
			pos++
		}
	}
	return fmt.Sprintf("syntax error: %s\n\t%s\n\t%*s^", e.Msg, e.Query, pos, "")
}

// ParseFilter parses a filter expression into a Filter.
//
// An expression is a space-separated conjunction of key:value terms,
// for example
//
//	name:latency parallelism:4 chaining:false tuple-rate:0
//
// Keys are "name" (suffix match, see MatchName), "exact-name" and
// the dimension keys accepted by ParseDimension. A dimension value of
// "none" matches records lacking the dimension. Values may be
// double-quoted to include spaces. "*" matches everything.
func ParseFilter(query string) (*Filter, error) {
	var terms []*Filter
	off := 0
	rest := query
	for {
		// Skip spaces.
		trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
		off += len(rest) - len(trimmed)
		rest = trimmed
		if rest == "" {
			break
		}
		if rest == "*" || strings.HasPrefix(rest, "* ") {
			off++
			rest = rest[1:]
			continue
		}

		colon := strings.IndexByte(rest, ':')
		if colon <= 0 || strings.IndexFunc(rest[:colon], unicode.IsSpace) >= 0 {
			return nil, &SyntaxError{query, off, "expected key:value"}
		}
		key := rest[:colon]
		valOff := off + colon + 1
		val, n, err := scanValue(rest[colon+1:])
		if err != nil {
			return nil, &SyntaxError{query, valOff, err.Error()}
		}

		f, err := newTerm(key, val)
		if err != nil {
			return nil, &SyntaxError{query, off, err.Error()}
		}
		terms = append(terms, f)
		off = valOff + n
		rest = rest[colon+1+n:]
	}
	return And(terms...), nil
}

// scanValue scans a plain or double-quoted word and returns it
// together with the number of bytes consumed.
func scanValue(s string) (string, int, error) {
	if strings.HasPrefix(s, `"`) {
		prefix, err := strconv.QuotedPrefix(s)
		if err != nil {
			return "", 0, fmt.Errorf("bad quoted value")
		}
		v, _ := strconv.Unquote(prefix)
		return v, len(prefix), nil
	}
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		end = len(s)
	}
	if end == 0 {
		return "", 0, fmt.Errorf("missing value")
	}
	return s[:end], end, nil
}

func newTerm(key, val string) (*Filter, error) {
	switch key {
	case FieldName, ".name":
		return NameIs(val), nil
	case "exact-name":
		return NameEquals(val), nil
	}
	d, err := ParseDimension(key)
	if err != nil {
		return nil, err
	}
	if val == absentValue {
		return DimensionAbsent(d), nil
	}
	if d == Chaining {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("chaining must be true or false, got %q", val)
		}
		v := 0.0
		if b {
			v = 1
		}
		return DimensionIs(d, v), nil
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number, got %q", key, val)
	}
	return DimensionIs(d, v), nil
}
