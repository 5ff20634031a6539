// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchstat summarizes query results as tables for text and
// HTML reports.
package benchstat

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/wfbench/streamperf/benchseries"
	"github.com/wfbench/streamperf/benchunit"
)

// A Table summarizes one query result: one row per value of the
// varying dimension and one column per measure.
type Table struct {
	Title   string
	Dim     string   // header of the row label column
	Columns []string // headers of the value columns
	Rows    []*Row

	// GeoMean is the geometric mean of each column, or nil if no
	// column has one.
	GeoMean *Row
}

// A Row is one labeled row of a Table.
type Row struct {
	Label string
	Cells []Cell
}

// A Cell is one value of a Table. A missing Cell prints as empty.
type Cell struct {
	Value   float64
	Present bool
	Scaler  benchunit.Scaler
}

func (c Cell) String() string {
	if !c.Present {
		return ""
	}
	return c.Scaler.Format(c.Value)
}

// ratioScaler formats ratios, which are always close to 1.
var ratioScaler = benchunit.Scaler{Prec: 2, Factor: 1}

// FromResult returns the table of r, with columns for the statistic,
// its speed-up and its efficiency.
func FromResult(r *benchseries.Result) *Table {
	s := r.Series
	t := &Table{
		Title:   r.Title.String(),
		Dim:     s.Dim.String(),
		Columns: []string{s.Stat + " (" + s.Unit + ")", benchseries.UnitSpeedup, benchseries.UnitEfficiency},
	}
	scaler := benchunit.CommonScale(s.Ys())
	for i, p := range s.Points {
		t.Rows = append(t.Rows, &Row{
			Label: s.Dim.FormatValue(p.X),
			Cells: []Cell{
				cell(p.Y, scaler),
				cell(r.Scalability.Points[i].Y, ratioScaler),
				cell(r.Efficiency.Points[i].Y, ratioScaler),
			},
		})
	}
	t.addGeoMean([]benchunit.Scaler{scaler, ratioScaler, ratioScaler})
	return t
}

// FromComparison returns the table of c, with one column per compared
// value. All columns share a scale.
func FromComparison(c *benchseries.Comparison) *Table {
	t := &Table{
		Title: c.Title.String(),
		Dim:   c.Title.Vary.String(),
	}
	var all []float64
	var xs []float64
	seen := make(map[float64]bool)
	for i, r := range c.Results {
		t.Columns = append(t.Columns, c.Title.Across.String()+": "+c.Title.Across.FormatValue(c.Values[i]))
		for _, p := range r.Series.Points {
			all = append(all, p.Y)
			if !seen[p.X] {
				seen[p.X] = true
				xs = append(xs, p.X)
			}
		}
	}
	sort.Float64s(xs)
	scaler := benchunit.CommonScale(all)
	for _, x := range xs {
		row := &Row{Label: c.Title.Vary.FormatValue(x), Cells: make([]Cell, len(c.Results))}
		for j, r := range c.Results {
			for _, p := range r.Series.Points {
				if p.X == x {
					row.Cells[j] = cell(p.Y, scaler)
					break
				}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	scalers := make([]benchunit.Scaler, len(c.Results))
	for i := range scalers {
		scalers[i] = scaler
	}
	t.addGeoMean(scalers)
	return t
}

func cell(v float64, scaler benchunit.Scaler) Cell {
	return Cell{Value: v, Present: true, Scaler: scaler}
}

// addGeoMean computes the geometric mean of every column whose
// present values are all positive and finite.
func (t *Table) addGeoMean(scalers []benchunit.Scaler) {
	if len(t.Rows) < 2 {
		return
	}
	gm := &Row{Label: "geomean", Cells: make([]Cell, len(t.Columns))}
	found := false
	for col := range t.Columns {
		var vals []float64
		ok := true
		for _, row := range t.Rows {
			c := row.Cells[col]
			if !c.Present {
				continue
			}
			if !(c.Value > 0) || math.IsInf(c.Value, 0) {
				ok = false
				break
			}
			vals = append(vals, c.Value)
		}
		if !ok || len(vals) == 0 {
			continue
		}
		gm.Cells[col] = cell(stats.GeoMean(vals), scalers[col])
		found = true
	}
	if found {
		t.GeoMean = gm
	}
}
