// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit resolves the time units recorded by the stream
// benchmarks and formats numbers in those units.
//
// Every record carries a "time unit" string such as "nanoseconds" or
// "us". Abbrev maps the spellings seen in the wild onto one of the
// canonical abbreviations ns, us, ms and s. ScaleFactor gives the
// number of those units in one second, which is what turns a
// throughput measured in events per time unit into events per second.
package benchunit

import (
	"fmt"
	"strings"
)

// UnknownUnit is the display marker for a time unit outside the
// known vocabulary. It is never used for arithmetic.
const UnknownUnit = "unknown unit"

// abbrevs maps every accepted spelling to its canonical abbreviation.
// "millisecnod" is a misspelling emitted by older benchmark builds.
var abbrevs = map[string]string{
	"nanoseconds":  "ns",
	"nanosecond":   "ns",
	"ns":           "ns",
	"microseconds": "us",
	"microsecond":  "us",
	"us":           "us",
	"milliseconds": "ms",
	"millisecond":  "ms",
	"millisecnod":  "ms",
	"ms":           "ms",
	"seconds":      "s",
	"second":       "s",
	"s":            "s",
}

var factors = map[string]float64{
	"ns": 1e9,
	"us": 1e6,
	"ms": 1e3,
	"s":  1,
}

// A UnitError reports a time unit that cannot be resolved against the
// known vocabulary.
type UnitError struct {
	Unit string
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unresolvable time unit %q", e.Unit)
}

func lookup(unit string) (string, bool) {
	abbrev, ok := abbrevs[unit]
	return abbrev, ok
}

// Abbrev returns the canonical abbreviation (ns, us, ms or s) for
// unit, or UnknownUnit.
func Abbrev(unit string) string {
	if abbrev, ok := lookup(unit); ok {
		return abbrev
	}
	return UnknownUnit
}

// Known reports whether unit is in the time unit vocabulary.
func Known(unit string) bool {
	_, ok := lookup(unit)
	return ok
}

// ScaleFactor returns how many of unit make up one second. For
// example, ScaleFactor("ms") is 1000. If unit is not in the
// vocabulary, it returns a *UnitError.
func ScaleFactor(unit string) (float64, error) {
	abbrev, ok := lookup(unit)
	if !ok {
		return 0, &UnitError{unit}
	}
	return factors[abbrev], nil
}

// IsThroughput reports whether metric names a throughput-like
// measurement. Matching is case-insensitive.
func IsThroughput(metric string) bool {
	return strings.Contains(strings.ToLower(metric), "throughput")
}

// Label returns the unit label for values of metric recorded in unit.
// Throughput is always reported in tuples per second; every other
// metric is reported in the abbreviated time unit.
func Label(metric, unit string) string {
	if IsThroughput(metric) {
		return "tuples per second"
	}
	return Abbrev(unit)
}

// AxisLabel returns a human-readable axis label for metric, such as
// "Service time (us)".
func AxisLabel(metric, unit string) string {
	name := strings.ReplaceAll(metric, "-", " ")
	if name != "" {
		name = strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
	}
	return name + " (" + Label(metric, unit) + ")"
}
