// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPercentileKey(t *testing.T) {
	for _, test := range []struct {
		sel  interface{}
		want string
	}{
		{50, "50th percentile"},
		{"50", "50th percentile"},
		{"50th", "50th percentile"},
		{0, "0th percentile"},
		{"100th", "100th percentile"},
		{"mean", "mean"},
		{"50th percentile", "50th percentile"},
		{"42", "42"},
		{42, "42"},
		{"050", "050"},
		{50.0, "50th percentile"},
		{float32(95), "95th percentile"},
		{int64(50), "50th percentile"},
		{int32(5), "5th percentile"},
		{uint8(100), "100th percentile"},
		{uint64(25), "25th percentile"},
		{50.5, "50.5"},
		{int64(42), "42"},
	} {
		if got := PercentileKey(test.sel); got != test.want {
			t.Errorf("PercentileKey(%#v) = %q, want %q", test.sel, got, test.want)
		}
	}
}

func TestPercentileKeySpellings(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("all percentile spellings agree", prop.ForAll(
		func(p int) bool {
			want := PercentileKey(p)
			return PercentileKey(strconv.Itoa(p)) == want && PercentileKey(strconv.Itoa(p)+"th") == want
		},
		gen.OneConstOf(0, 5, 25, 50, 75, 95, 100),
	))
	properties.TestingRun(t)
}

func TestMatchName(t *testing.T) {
	for _, test := range []struct {
		name, want string
		match      bool
	}{
		{"per-node-latency", "latency", true},
		{"latency-variance-report", "latency", false},
		{"latency", "latency", true},
		{"per-node-latency", "node latency", true},
		{"per node latency", "node-latency", true},
		{"throughput", "latency", false},
		{"service-time", "service-time", true},
		{"service time", "service-time", true},
	} {
		if got := MatchName(test.name, test.want); got != test.match {
			t.Errorf("MatchName(%q, %q) = %v, want %v", test.name, test.want, got, test.match)
		}
	}
}

func TestResolve(t *testing.T) {
	r1 := rec("r1", "sampling rate", 100.0)
	r2 := rec("r2", "sampling_rate", 100.0, "tuple_rate", 10.0)
	r3 := rec("r3", "sampling rate", 50.0, "sampling_rate", 100.0)

	if key, ok := Resolve(r1, FieldSamplingRate); !ok || key != "sampling rate" {
		t.Errorf("r1: got %q, %v", key, ok)
	}
	if key, ok := Resolve(r2, FieldSamplingRate); !ok || key != "sampling_rate" {
		t.Errorf("r2: got %q, %v", key, ok)
	}
	if key, ok := Resolve(r2, FieldTupleRate); !ok || key != "tuple_rate" {
		t.Errorf("r2 tuple rate: got %q, %v", key, ok)
	}
	if _, ok := Resolve(r1, FieldTupleRate); ok {
		t.Errorf("r1 tuple rate: want not found")
	}
	// The canonical spelling wins when both are present.
	if key, _ := Resolve(r3, FieldSamplingRate); key != "sampling rate" {
		t.Errorf("r3: got %q", key)
	}
	if got := Aliases(FieldMean); len(got) != 1 || got[0] != FieldMean {
		t.Errorf("Aliases(mean) = %v", got)
	}
}
