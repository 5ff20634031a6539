// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"strconv"
	"strings"

	"github.com/wfbench/streamperf/benchrec"
)

// A Filter is a conjunction of predicates over records. Each predicate
// inspects a single field, so the order in which predicates are
// combined never changes the result.
//
// The zero Filter matches every record.
type Filter struct {
	preds []pred
}

type pred struct {
	desc  string
	match func(rec *benchrec.Record) bool
}

// NameIs returns a Filter matching records whose name ends with name,
// after separator normalization. See MatchName.
func NameIs(name string) *Filter {
	return &Filter{[]pred{{
		desc: FieldName + ":" + quoteValue(name),
		match: func(rec *benchrec.Record) bool {
			got, err := rec.Text(FieldName)
			return err == nil && MatchName(got, name)
		},
	}}}
}

// NameEquals returns a Filter matching records named exactly name.
func NameEquals(name string) *Filter {
	return &Filter{[]pred{{
		desc: "exact-name:" + quoteValue(name),
		match: func(rec *benchrec.Record) bool {
			got, err := rec.Text(FieldName)
			return err == nil && got == name
		},
	}}}
}

// DimensionIs returns a Filter matching records whose dimension d
// resolves to v. Records that lack d do not match, except that a tuple
// rate of 0 also matches records with no tuple rate at all: 0 is the
// sentinel for an unlimited generation rate. A rate stored under more
// than one spelling matches if any spelling holds v.
func DimensionIs(d Dimension, v float64) *Filter {
	return &Filter{[]pred{{
		desc: d.Key() + ":" + d.FormatValue(v),
		match: func(rec *benchrec.Record) bool {
			if d == SamplingRate || d == TupleRate {
				return rateIs(rec, d, v)
			}
			got, err := d.Value(rec)
			return err == nil && got == v
		},
	}}}
}

func rateIs(rec *benchrec.Record, d Dimension, v float64) bool {
	present := false
	for _, key := range Aliases(d.String()) {
		if !rec.Has(key) {
			continue
		}
		present = true
		if got, err := rec.Float(key); err == nil && got == v {
			return true
		}
	}
	return !present && d == TupleRate && v == 0
}

// DimensionAbsent returns a Filter matching records that store d under
// none of its spellings.
func DimensionAbsent(d Dimension) *Filter {
	return &Filter{[]pred{{
		desc: d.Key() + ":" + absentValue,
		match: func(rec *benchrec.Record) bool {
			_, ok := Resolve(rec, d.String())
			return !ok
		},
	}}}
}

// absentValue is the filter syntax value of DimensionAbsent.
const absentValue = "none"

// And returns the conjunction of fs. And() matches everything.
func And(fs ...*Filter) *Filter {
	var preds []pred
	for _, f := range fs {
		if f != nil {
			preds = append(preds, f.preds...)
		}
	}
	return &Filter{preds}
}

// Match reports whether rec satisfies every predicate of f.
func (f *Filter) Match(rec *benchrec.Record) bool {
	if f == nil {
		return true
	}
	for _, p := range f.preds {
		if !p.match(rec) {
			return false
		}
	}
	return true
}

// Apply returns the records matching f, in their original relative
// order. recs is not modified.
func (f *Filter) Apply(recs []*benchrec.Record) []*benchrec.Record {
	var out []*benchrec.Record
	for _, rec := range recs {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// String returns f in filter syntax. The result parses back to an
// equivalent Filter with ParseFilter.
func (f *Filter) String() string {
	if f == nil || len(f.preds) == 0 {
		return "*"
	}
	descs := make([]string, len(f.preds))
	for i, p := range f.preds {
		descs[i] = p.desc
	}
	return strings.Join(descs, " ")
}

func quoteValue(v string) string {
	if v == "" || strings.ContainsAny(v, " \t\n\"") {
		return strconv.Quote(v)
	}
	return v
}
