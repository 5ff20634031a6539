// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"math"
	"reflect"
	"testing"

	"github.com/wfbench/streamperf/benchrec"
)

func parRec(source string, p float64) *benchrec.Record {
	return rec(source, "parallelism", []interface{}{p})
}

func TestSortBy(t *testing.T) {
	in := []*benchrec.Record{
		parRec("p4", 4), parRec("p1a", 1), parRec("p2", 2), parRec("p1b", 1), parRec("nan", math.NaN()),
		rec("bad", "parallelism", "four"),
	}

	sorted, errs := SortBy(in, Parallelism)
	if got, want := sources(sorted), []string{"p1a", "p1b", "p2", "p4", "nan"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if len(errs) != 1 {
		t.Errorf("want 1 error, got %v", errs)
	}
	if in[0].Source() != "p4" {
		t.Errorf("input was modified")
	}
}

func TestDistinct(t *testing.T) {
	in := []*benchrec.Record{parRec("a", 4), parRec("b", 1), parRec("c", 4), parRec("d", 2), parRec("e", math.NaN())}
	if got, want := Distinct(in, Parallelism), []float64{1, 2, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := Distinct(in, BatchSize); got != nil {
		t.Errorf("missing dimension: got %v, want nil", got)
	}
}
