// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfbench/streamperf/benchproc"
	"github.com/wfbench/streamperf/benchrec"
)

// rec returns a record from alternating key/value pairs.
func rec(source string, kv ...interface{}) *benchrec.Record {
	fields := make(map[string]interface{})
	for i := 0; i < len(kv); i += 2 {
		fields[kv[i].(string)] = kv[i+1]
	}
	return benchrec.NewRecord(source, fields)
}

// run returns a typical record of metric name.
func run(source, name string, par, batch int, chaining bool, unit string, kv ...interface{}) *benchrec.Record {
	base := []interface{}{
		"name", name,
		"parallelism", []interface{}{float64(par), float64(par)},
		"batch size", []interface{}{float64(batch), float64(batch)},
		"chaining enabled", chaining,
		"time unit", unit,
	}
	return rec(source, append(base, kv...)...)
}

type warnings []string

func (w *warnings) opts() *BuilderOptions {
	return &BuilderOptions{Warn: func(format string, args ...interface{}) {
		*w = append(*w, fmt.Sprintf(format, args...))
	}}
}

func TestBuildThroughput(t *testing.T) {
	recs := []*benchrec.Record{
		run("b", "throughput", 2, 0, false, "milliseconds", "mean", 3.5),
		run("a", "throughput", 1, 0, false, "milliseconds", "mean", 2.0),
	}
	var w warnings
	s, err := NewBuilder(w.opts()).Build(recs, benchproc.Parallelism, "throughput", "mean")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, s.Xs())
	require.Equal(t, []float64{2000, 3500}, s.Ys())
	require.Equal(t, "tuples per second", s.Unit)
	require.Equal(t, "Throughput (tuples per second)", s.YLabel)
	require.Equal(t, "a", s.Points[0].Source)
	require.Empty(t, w)
}

func TestBuildLatencyUnconverted(t *testing.T) {
	recs := []*benchrec.Record{
		run("a", "per-node-latency", 1, 8, true, "microseconds", "95th percentile", 12.5),
		run("b", "per-node-latency", 1, 4, true, "microseconds", "95th percentile", 10.0),
	}
	s, err := NewBuilder(new(warnings).opts()).Build(recs, benchproc.BatchSize, "latency", 95)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 8}, s.Xs())
	require.Equal(t, []float64{10, 12.5}, s.Ys())
	require.Equal(t, "us", s.Unit)
	require.Equal(t, "95th percentile", s.Stat)
}

func TestBuildExcludesBadRecords(t *testing.T) {
	recs := []*benchrec.Record{
		run("ok", "throughput", 1, 0, false, "ns", "mean", 1.0),
		run("nomean", "throughput", 2, 0, false, "ns"),
		run("badunit", "throughput", 3, 0, false, "fortnights", "mean", 1.0),
		rec("nounit", "name", "throughput", "parallelism", []interface{}{4.0}, "mean", 1.0),
		rec("nopar", "name", "throughput", "time unit", "ns", "mean", 1.0),
	}
	var w warnings
	s, err := NewBuilder(w.opts()).Build(recs, benchproc.Parallelism, "throughput", "mean")
	require.NoError(t, err)
	require.Equal(t, []float64{1}, s.Xs())
	require.Equal(t, []float64{1e9}, s.Ys())
	require.Len(t, w, 4)
	for _, src := range []string{"nomean", "badunit", "nounit", "nopar"} {
		found := false
		for _, msg := range w {
			if strings.Contains(msg, src) {
				found = true
			}
		}
		require.True(t, found, "no warning names %s: %q", src, w)
	}
}

func TestBuildUnknownUnitForLatency(t *testing.T) {
	// Non-throughput values are never scaled, so an unknown unit only
	// affects the label.
	recs := []*benchrec.Record{run("a", "latency", 1, 0, false, "fortnights", "mean", 7.0)}
	s, err := NewBuilder(new(warnings).opts()).Build(recs, benchproc.Parallelism, "latency", "mean")
	require.NoError(t, err)
	require.Equal(t, []float64{7}, s.Ys())
	require.Equal(t, "unknown unit", s.Unit)
}

func TestBuildNoData(t *testing.T) {
	b := NewBuilder(new(warnings).opts())
	_, err := b.Build(nil, benchproc.Parallelism, "throughput", "mean")
	require.ErrorIs(t, err, ErrNoData)

	// All records excluded.
	recs := []*benchrec.Record{run("a", "throughput", 1, 0, false, "ns")}
	_, err = b.Build(recs, benchproc.Parallelism, "throughput", "mean")
	require.True(t, errors.Is(err, ErrNoData))
}

func TestBuildDoesNotMutate(t *testing.T) {
	r := run("a", "latency", 1, 0, true, "ns", "mean", 1.0)
	s, err := NewBuilder(nil).Build([]*benchrec.Record{r}, benchproc.Chaining, "latency", "mean")
	require.NoError(t, err)
	require.Equal(t, []float64{1}, s.Xs())
	v, _ := r.Get("chaining enabled")
	require.Equal(t, true, v)
}

func TestBuildBoxes(t *testing.T) {
	pcts := func(lo, q1, med, q3, hi float64) []interface{} {
		return []interface{}{
			"0th percentile", lo, "25th percentile", q1, "50th percentile", med,
			"75th percentile", q3, "100th percentile", hi,
		}
	}
	recs := []*benchrec.Record{
		run("p2", "throughput", 2, 0, false, "us", pcts(1, 2, 3, 4, 5)...),
		run("p1", "throughput", 1, 0, false, "us", pcts(0.5, 1, 1.5, 2, 2.5)...),
		run("meanonly", "throughput", 4, 0, false, "us", "mean", 1.0),
	}
	var w warnings
	boxes := NewBuilder(w.opts()).BuildBoxes(recs, benchproc.Parallelism, "throughput")
	require.Equal(t, []Box{
		{X: 1, Min: 5e5, Q1: 1e6, Median: 1.5e6, Q3: 2e6, Max: 2.5e6, Source: "p1"},
		{X: 2, Min: 1e6, Q1: 2e6, Median: 3e6, Q3: 4e6, Max: 5e6, Source: "p2"},
	}, boxes)
	require.Empty(t, w)
}
