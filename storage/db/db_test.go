// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/wfbench/streamperf/benchproc"
	"github.com/wfbench/streamperf/benchseries"
	. "github.com/wfbench/streamperf/storage/db"
	"github.com/wfbench/streamperf/storage/db/dbtest"
)

func testResult(metric string, ys ...float64) *benchseries.Result {
	s := &benchseries.Series{Metric: metric, Stat: "mean", Dim: benchproc.Parallelism, Unit: "tuples per second"}
	for i, y := range ys {
		s.Points = append(s.Points, benchseries.Point{X: float64(i + 1), Y: y, Source: "rec"})
	}
	return &benchseries.Result{
		Title:       benchseries.Title{Metric: metric, Selector: "mean", Vary: benchproc.Parallelism},
		Series:      s,
		Scalability: benchseries.Scalability(s),
		Efficiency:  benchseries.Efficiency(s),
	}
}

func TestNewSession(t *testing.T) {
	SetNow(time.Unix(0, 0))
	defer SetNow(time.Time{})
	db := dbtest.NewDB(t)
	ctx := context.Background()

	s1, err := db.NewSession(ctx, "testdata/run")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s2, err := db.NewSession(ctx, "gs://bucket/run")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s1.ID == s2.ID || len(s1.ID) != 36 {
		t.Errorf("bad session IDs %q, %q", s1.ID, s2.ID)
	}
	if err := s1.InsertResult(ctx, testResult("throughput", 10, 20)); err != nil {
		t.Fatalf("InsertResult: %v", err)
	}

	sessions, err := db.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	for _, info := range sessions {
		if !info.Created.Equal(time.Unix(0, 0)) {
			t.Errorf("session %s created %v", info.ID, info.Created)
		}
		want := 0
		if info.ID == s1.ID {
			want = 1
		}
		if info.Results != want {
			t.Errorf("session %s has %d results, want %d", info.ID, info.Results, want)
		}
	}
}

func TestInsertResult(t *testing.T) {
	db := dbtest.NewDB(t)
	ctx := context.Background()
	s, err := db.NewSession(ctx, "testdata/run")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	r := testResult("throughput", 0, 20, 30)
	if err := s.InsertResult(ctx, r); err != nil {
		t.Fatalf("InsertResult: %v", err)
	}

	pts, err := db.Points(ctx, s.ID, r.Title.FileBase())
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(pts) != 3 {
		t.Fatalf("got %d points, want 3", len(pts))
	}
	for i, p := range pts {
		if p.X != float64(i+1) || p.Source != "rec" {
			t.Errorf("point %d = %+v", i, p)
		}
	}
	if pts[1].Y != 20 || pts[2].Y != 30 {
		t.Errorf("wrong y values: %+v", pts)
	}
	// A zero baseline makes every ratio NaN, which round-trips
	// through NULL.
	if !math.IsNaN(pts[1].Speedup) || !math.IsNaN(pts[2].Efficiency) {
		t.Errorf("want NaN ratios, got %+v", pts)
	}

	if _, err := db.Points(ctx, s.ID, "no-such-result"); !errors.Is(err, benchseries.ErrNoData) {
		t.Errorf("Points(missing) = %v, want ErrNoData", err)
	}
}

func TestConcurrentInserts(t *testing.T) {
	db := dbtest.NewDB(t)
	ctx := context.Background()
	s, err := db.NewSession(ctx, "dir")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.InsertResult(ctx, testResult("latency", 1, 2))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("InsertResult: %v", err)
		}
	}
	sessions, err := db.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Results != 8 {
		t.Errorf("got sessions %+v, want one with 8 results", sessions)
	}
	pts, err := db.Points(ctx, s.ID, testResult("latency").Title.FileBase())
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 2 {
		t.Errorf("got %d points, want 2", len(pts))
	}
}

func TestPointsLatestResult(t *testing.T) {
	db := dbtest.NewDB(t)
	ctx := context.Background()
	s, err := db.NewSession(ctx, "dir")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	for _, r := range []*benchseries.Result{
		testResult("throughput", 10, 20, 30),
		testResult("latency", 5),
		testResult("throughput", 40, 50),
	} {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("InsertResult: %v", err)
		}
	}
	pts, err := db.Points(ctx, s.ID, testResult("throughput").Title.FileBase())
	if err != nil {
		t.Fatal(err)
	}
	var ys []float64
	for _, p := range pts {
		ys = append(ys, p.Y)
	}
	if len(ys) != 2 || ys[0] != 40 || ys[1] != 50 {
		t.Errorf("Points = %v, want [40 50] from the last result", ys)
	}

	// Another session's results are not visible.
	s2, err := db.NewSession(ctx, "dir")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := db.Points(ctx, s2.ID, testResult("throughput").Title.FileBase()); !errors.Is(err, benchseries.ErrNoData) {
		t.Errorf("Points(other session) = %v, want ErrNoData", err)
	}
}

func TestDeleteSession(t *testing.T) {
	db := dbtest.NewDB(t)
	ctx := context.Background()
	s, err := db.NewSession(ctx, "dir")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InsertResult(ctx, testResult("throughput", 1, 2)); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	n, err := db.CountSessions(ctx)
	if err != nil || n != 0 {
		t.Errorf("CountSessions = %d, %v; want 0", n, err)
	}
	var points int
	if err := DBSQL(db).QueryRow("SELECT COUNT(*) FROM Points").Scan(&points); err != nil || points != 0 {
		t.Errorf("Points rows = %d, %v; want 0", points, err)
	}
}

func TestOpen(t *testing.T) {
	for _, name := range []string{
		"results.db",
		"sqlite3:",
		"postgres:host=localhost",
		"mysql:no-slash",
	} {
		if d, err := Open(name); err == nil {
			d.Close()
			t.Errorf("Open(%q) succeeded, want error", name)
		}
	}

	d, err := Open("sqlite3::memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()
	if n, err := d.CountSessions(context.Background()); err != nil || n != 0 {
		t.Errorf("CountSessions = %d, %v; want 0, nil", n, err)
	}
}
