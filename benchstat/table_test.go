// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchstat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfbench/streamperf/benchproc"
	"github.com/wfbench/streamperf/benchrec"
	"github.com/wfbench/streamperf/benchseries"
)

func record(source string, par int, chaining bool, mean float64) *benchrec.Record {
	return benchrec.NewRecord(source, map[string]interface{}{
		"name":             "throughput",
		"parallelism":      []interface{}{float64(par)},
		"batch size":       []interface{}{0.0},
		"chaining enabled": chaining,
		"time unit":        "ms",
		"mean":             mean,
	})
}

func engine() *benchseries.Engine {
	st := benchrec.NewStore(
		record("a", 1, false, 2.0),
		record("b", 2, false, 3.5),
		record("c", 4, false, 4.0),
		record("d", 1, true, 2.5),
		record("e", 2, true, 4.0),
	)
	return benchseries.NewEngine(st, &benchseries.BuilderOptions{})
}

func TestFromResult(t *testing.T) {
	r, err := engine().ByParallelism(benchseries.Query{Metric: "throughput", Chaining: benchseries.Bool(false)})
	require.NoError(t, err)
	tab := FromResult(r)
	require.Equal(t, "parallelism", tab.Dim)
	require.Equal(t, []string{"mean (tuples per second)", "speed-up", "efficiency"}, tab.Columns)
	require.Len(t, tab.Rows, 3)
	require.Equal(t, "4", tab.Rows[2].Label)
	require.Equal(t, "2.000k", tab.Rows[0].Cells[0].String())
	require.Equal(t, "1.75", tab.Rows[1].Cells[1].String())
	require.Equal(t, "0.67", tab.Rows[2].Cells[2].String())
	require.NotNil(t, tab.GeoMean)
	require.Equal(t, "3.037k", tab.GeoMean.Cells[0].String())
}

func TestFromComparison(t *testing.T) {
	c, err := engine().Compare(benchseries.Query{Metric: "throughput"}, benchproc.Parallelism, benchproc.Chaining, nil)
	require.NoError(t, err)
	tab := FromComparison(c)
	require.Equal(t, []string{"chaining enabled: false", "chaining enabled: true"}, tab.Columns)
	require.Len(t, tab.Rows, 3)
	require.Equal(t, "", tab.Rows[2].Cells[1].String())
	require.Equal(t, "4.000k", tab.Rows[2].Cells[0].String())
}

func TestFormatText(t *testing.T) {
	r, err := engine().ByParallelism(benchseries.Query{Metric: "throughput", Chaining: benchseries.Bool(true)})
	require.NoError(t, err)
	var buf strings.Builder
	require.NoError(t, FormatText(&buf, []*Table{FromResult(r)}))
	want := `Throughput(mean) (chaining enabled: true)
parallelism  mean (tuples per second)  speed-up  efficiency
1                              2.500k      1.00        1.00
2                              4.000k      1.60        0.80
geomean                        3.162k      1.26        0.89
`
	require.Equal(t, want, buf.String())
}

func TestFormatHTML(t *testing.T) {
	r, err := engine().ByParallelism(benchseries.Query{Metric: "throughput", Chaining: benchseries.Bool(false)})
	require.NoError(t, err)
	var buf strings.Builder
	require.NoError(t, FormatHTML(&buf, "<report>", []*Table{FromResult(r)}))
	out := buf.String()
	require.Contains(t, out, "<title>&lt;report&gt;</title>")
	require.Contains(t, out, "<td class=\"num\">3.500k")
	require.Contains(t, out, "<tr class=\"geomean\">")
}
