// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfbench/streamperf/storage/db"
)

// writeRuns writes a throughput record per parallelism degree into a
// new directory, plus a unit that does not parse.
func writeRuns(t *testing.T) string {
	dir := t.TempDir()
	for i, par := range []int{1, 2, 4} {
		rec := fmt.Sprintf(`{
			"name": "throughput",
			"parallelism": [%d, 1],
			"batch size": [0, 0],
			"chaining enabled": false,
			"time unit": "ms",
			"mean": %g,
			"50th percentile": %g,
			"95th percentile": %g
		}`, par, float64(par)*2, float64(par)*2, float64(par)*3)
		name := filepath.Join(dir, fmt.Sprintf("metric-throughput-%d.json", 1700000000+i))
		require.NoError(t, os.WriteFile(name, []byte(rec), 0o666))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metric-broken-1.json"), []byte("{"), 0o666))
	return dir
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "info")
	var out, errOut bytes.Buffer
	err = streamperf(context.Background(), &out, &errOut, args)
	return out.String(), errOut.String(), err
}

func TestUsage(t *testing.T) {
	_, stderr, err := run(t)
	require.ErrorIs(t, err, errUsage)
	require.Contains(t, stderr, "usage: streamperf")

	_, _, err = run(t, "-no-such-flag", "dir")
	require.ErrorIs(t, err, errUsage)
}

func TestMissingSource(t *testing.T) {
	_, _, err := run(t, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.NotErrorIs(t, err, errUsage)
}

func TestDefaultPlan(t *testing.T) {
	src := writeRuns(t)
	out := t.TempDir()
	stdout, stderr, err := run(t, "-csv", "-svg", out, "-j", "2", src)
	require.NoError(t, err)

	require.Contains(t, stderr, "metric-broken-1.json")
	require.Contains(t, stderr, "loaded 3 records")
	require.Contains(t, stdout, "Throughput(mean) (batch size: 0) (chaining enabled: false) (sampling rate: none) (tuple rate: 0)")
	require.Contains(t, stdout, "Throughput(95th) ")

	base := filepath.Join(out, "throughput-mean-by-parallelism-batch-size-0-chaining-false-sampling-rate-none-tuple-rate-0")
	csv, err := os.ReadFile(base + ".csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	require.Equal(t, "parallelism,mean (tuples per second),speed-up,efficiency,source", lines[0])
	require.Equal(t, "1,2000,1,1,metric-throughput-1700000000.json", lines[1])
	require.Len(t, lines, 4)

	_, err = os.Stat(base + "-plot.svg")
	require.NoError(t, err)
}

func TestPlanFile(t *testing.T) {
	src := writeRuns(t)
	dir := t.TempDir()
	planFile := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planFile, []byte(`
queries:
  - metric: throughput
    selector: "50th"
    vary: parallelism
    chaining: false
  - metric: latency
    vary: parallelism
`), 0o666))
	dbFile := filepath.Join(dir, "results.db")
	html := filepath.Join(dir, "report.html")

	stdout, _, err := run(t, "-plan", planFile, "-filter", "parallelism:1", "-db", "sqlite3:"+dbFile, "-html", html, src)
	require.NoError(t, err)
	require.Contains(t, stdout, "Throughput(50th) (chaining enabled: false)")
	require.NotContains(t, stdout, "Latency")

	report, err := os.ReadFile(html)
	require.NoError(t, err)
	require.Contains(t, string(report), "Throughput(50th)")

	archive, err := db.OpenSQL("sqlite3", dbFile)
	require.NoError(t, err)
	defer archive.Close()
	sessions, err := archive.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	points, err := archive.Points(context.Background(), sessions[0].ID, "throughput-50th-by-parallelism-chaining-false")
	require.NoError(t, err)
	require.Len(t, points, 1)
}

func TestBadArchive(t *testing.T) {
	_, _, err := run(t, "-db", "postgres:whatever", writeRuns(t))
	require.ErrorContains(t, err, "unsupported driver")
}
