// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"math"
	"sort"

	"github.com/wfbench/streamperf/benchrec"
)

// SortBy returns the records of recs that have dimension d, stably
// sorted by ascending value of d: records with equal values keep their
// input order. Records whose d does not resolve are dropped and
// reported in errs. recs is not modified.
func SortBy(recs []*benchrec.Record, d Dimension) (sorted []*benchrec.Record, errs []error) {
	type keyed struct {
		v   float64
		rec *benchrec.Record
	}
	ks := make([]keyed, 0, len(recs))
	for _, rec := range recs {
		v, err := d.Value(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ks = append(ks, keyed{v, rec})
	}
	sort.SliceStable(ks, func(i, j int) bool {
		return less(ks[i].v, ks[j].v)
	})
	sorted = make([]*benchrec.Record, len(ks))
	for i, k := range ks {
		sorted[i] = k.rec
	}
	return sorted, errs
}

// less orders numbers ascending with NaNs after everything else.
func less(a, b float64) bool {
	return a < b || (!math.IsNaN(a) && math.IsNaN(b))
}

// Distinct returns the distinct values of dimension d among recs, in
// ascending order. Records without d are ignored.
func Distinct(recs []*benchrec.Record, d Dimension) []float64 {
	seen := make(map[float64]bool)
	var vals []float64
	for _, rec := range recs {
		v, err := d.Value(rec)
		if err != nil || math.IsNaN(v) || seen[v] {
			continue
		}
		seen[v] = true
		vals = append(vals, v)
	}
	sort.Float64s(vals)
	return vals
}
