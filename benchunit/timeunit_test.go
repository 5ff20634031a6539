// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAbbrev(t *testing.T) {
	test := func(unit, want string) {
		t.Helper()
		if got := Abbrev(unit); got != want {
			t.Errorf("Abbrev(%q) = %q, want %q", unit, got, want)
		}
	}
	test("nanoseconds", "ns")
	test("nanosecond", "ns")
	test("microseconds", "us")
	test("us", "us")
	test("milliseconds", "ms")
	test("millisecnod", "ms")
	test("second", "s")
	test("s", "s")
	test("time units", UnknownUnit)
	test("", UnknownUnit)
	test("Nanoseconds", UnknownUnit)
}

func TestScaleFactor(t *testing.T) {
	for unit, want := range map[string]float64{
		"nanoseconds":  1e9,
		"microseconds": 1e6,
		"ms":           1e3,
		"seconds":      1,
	} {
		got, err := ScaleFactor(unit)
		if err != nil || got != want {
			t.Errorf("ScaleFactor(%q) = %v, %v; want %v, nil", unit, got, err, want)
		}
	}

	_, err := ScaleFactor("fortnights")
	var ue *UnitError
	if !errors.As(err, &ue) || ue.Unit != "fortnights" {
		t.Errorf("ScaleFactor(fortnights) error = %v, want *UnitError", err)
	}
}

func TestLabel(t *testing.T) {
	test := func(metric, unit, want string) {
		t.Helper()
		if got := AxisLabel(metric, unit); got != want {
			t.Errorf("AxisLabel(%q, %q) = %q, want %q", metric, unit, got, want)
		}
	}
	test("throughput", "nanoseconds", "Throughput (tuples per second)")
	test("Throughput", "bogus", "Throughput (tuples per second)")
	test("service-time", "microseconds", "Service time (us)")
	test("latency", "bogus", "Latency (unknown unit)")
}

func TestTidy(t *testing.T) {
	got, err := Tidy(2.0, "throughput", "ms")
	if err != nil || got != 2000 {
		t.Errorf("Tidy throughput ms = %v, %v; want 2000, nil", got, err)
	}
	got, err = Tidy(2.0, "latency", "bogus")
	if err != nil || got != 2 {
		t.Errorf("Tidy latency = %v, %v; want 2, nil", got, err)
	}
	if _, err := Tidy(2.0, "per-node-throughput", "bogus"); err == nil {
		t.Errorf("Tidy with unresolvable unit succeeded, want *UnitError")
	}
}

func TestTidyRoundTrip(t *testing.T) {
	units := make([]interface{}, 0, len(abbrevs))
	for u := range abbrevs {
		units = append(units, u)
	}

	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	properties.Property("per-second conversion divided by the scale factor recovers the raw value", prop.ForAll(
		func(raw float64, unit string) bool {
			tidied, err := Tidy(raw, "throughput", unit)
			if err != nil {
				return false
			}
			back, err := Untidy(tidied, "throughput", unit)
			if err != nil {
				return false
			}
			return math.Abs(back-raw) <= 1e-12*math.Max(1, math.Abs(raw))
		},
		gen.Float64Range(0, 1e6),
		gen.OneConstOf(units...),
	))
	properties.TestingRun(t)
}
