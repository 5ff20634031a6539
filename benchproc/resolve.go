// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wfbench/streamperf/benchrec"
)

// Canonical record field names.
const (
	FieldName         = "name"
	FieldParallelism  = "parallelism"
	FieldBatchSize    = "batch size"
	FieldChaining     = "chaining enabled"
	FieldSamplingRate = "sampling rate"
	FieldTupleRate    = "tuple rate"
	FieldTimeUnit     = "time unit"
	FieldMean         = "mean"
)

// aliases lists, for each canonical field with more than one legal
// spelling, every spelling in lookup order. This is the only place
// alternative spellings are known.
var aliases = map[string][]string{
	FieldSamplingRate: {"sampling rate", "sampling_rate"},
	FieldTupleRate:    {"tuple rate", "tuple_rate"},
}

// Aliases returns the spellings under which field may be stored.
func Aliases(field string) []string {
	if a, ok := aliases[field]; ok {
		return a
	}
	return []string{field}
}

// Resolve returns the key under which rec stores field, trying every
// alias of field.
func Resolve(rec *benchrec.Record, field string) (key string, ok bool) {
	key, _, ok = rec.Lookup(Aliases(field)...)
	return key, ok
}

// Percentiles are the percentile statistics stored in a record.
var Percentiles = []int{0, 5, 25, 50, 75, 95, 100}

func isPercentile(n int) bool {
	for _, p := range Percentiles {
		if p == n {
			return true
		}
	}
	return false
}

// PercentileKey returns the record key holding the statistic named by
// sel. The percentile selectors "50th", "50", 50 and 50.0 all map to
// "50th percentile". Any other selector, such as "mean", is returned
// unchanged, so a bad selector surfaces as a missing field when the
// key is used.
func PercentileKey(sel interface{}) string {
	if s, ok := sel.(string); ok {
		num := strings.TrimSuffix(s, "th")
		if n, err := strconv.Atoi(num); err == nil && isPercentile(n) && strconv.Itoa(n) == num {
			return num + "th percentile"
		}
		return s
	}
	if n, ok := integral(sel); ok && isPercentile(n) {
		return strconv.Itoa(n) + "th percentile"
	}
	return fmt.Sprint(sel)
}

// integral returns v as an int if it is a number with an integral
// value.
func integral(v interface{}) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	default:
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > 1e9 {
		return 0, false
	}
	return int(f), true
}

var separatorSwap = strings.NewReplacer("-", " ", " ", "-")

// MatchName reports whether a record named name is a measurement of
// the metric want. Producers are inconsistent about separators and
// prefixes, so this is a suffix match on name, or on name with hyphens
// and spaces interchanged. For example, "per-node-latency" matches
// "latency" but "latency-variance-report" does not.
func MatchName(name, want string) bool {
	return strings.HasSuffix(name, want) || strings.HasSuffix(separatorSwap.Replace(name), want)
}
