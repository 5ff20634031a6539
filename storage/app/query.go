// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"encoding/csv"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/wfbench/streamperf/benchseries"
)

// points writes the archived points of one result as CSV. The
// "session" parameter names the session and "result" the result's
// file base.
func (a *App) points(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	session, result := r.Form.Get("session"), r.Form.Get("result")
	if session == "" || result == "" {
		http.Error(w, "missing session or result parameter", 400)
		return
	}

	pts, err := a.DB.Points(r.Context(), session, result)
	if errors.Is(err, benchseries.ErrNoData) {
		http.Error(w, err.Error(), 404)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	cw := csv.NewWriter(w)
	cw.Write([]string{"x", "y", benchseries.UnitSpeedup, benchseries.UnitEfficiency, "source"})
	for _, p := range pts {
		cw.Write([]string{num(p.X), num(p.Y), num(p.Speedup), num(p.Efficiency), p.Source})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func num(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
