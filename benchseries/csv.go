// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"encoding/csv"
	"io"
	"math"
	"sort"

	"github.com/wfbench/streamperf/benchunit"
)

// CSVOptions select the optional columns of WriteCSV.
type CSVOptions int

const (
	CSVPlain   CSVOptions = 0
	CSVDerived CSVOptions = 1 // speed-up and efficiency columns
	CSVSource  CSVOptions = 2 // storage unit of each point
)

// WriteCSV writes the series of r as CSV, one row per point. The
// header names the varying dimension and the statistic with its unit.
func WriteCSV(out io.Writer, r *Result, options CSVOptions) error {
	s := r.Series
	hdr := []string{s.Dim.String(), s.Stat + " (" + s.Unit + ")"}
	if options&CSVDerived != 0 {
		hdr = append(hdr, UnitSpeedup, UnitEfficiency)
	}
	if options&CSVSource != 0 {
		hdr = append(hdr, "source")
	}
	tab := [][]string{hdr}
	for i, p := range s.Points {
		row := []string{strof(p.X), strof(p.Y)}
		if options&CSVDerived != 0 {
			row = append(row, strof(r.Scalability.Points[i].Y), strof(r.Efficiency.Points[i].Y))
		}
		if options&CSVSource != 0 {
			row = append(row, p.Source)
		}
		tab = append(tab, row)
	}
	return writeAll(out, tab)
}

// WriteComparisonCSV writes c as a table with one row per x value
// and one column per compared value. Cells for x values missing from a
// series are empty.
func WriteComparisonCSV(out io.Writer, c *Comparison) error {
	hdr := []string{c.Title.Vary.String()}
	for _, v := range c.Values {
		hdr = append(hdr, c.Title.Across.String()+"="+c.Title.Across.FormatValue(v))
	}

	var xs []float64
	seen := make(map[float64]bool)
	for _, r := range c.Results {
		for _, p := range r.Series.Points {
			if !seen[p.X] {
				seen[p.X] = true
				xs = append(xs, p.X)
			}
		}
	}
	sort.Float64s(xs)

	tab := [][]string{hdr}
	entries := make([]string, len(c.Results))
	for _, x := range xs {
		clear(entries)
		for j, r := range c.Results {
			for _, p := range r.Series.Points {
				if p.X == x {
					entries[j] = strof(p.Y)
					break
				}
			}
		}
		tab = append(tab, append([]string{strof(x)}, entries...))
	}
	return writeAll(out, tab)
}

func writeAll(out io.Writer, tab [][]string) error {
	csvw := csv.NewWriter(out)
	if err := csvw.WriteAll(tab); err != nil {
		return err
	}
	csvw.Flush()
	return csvw.Error()
}

func strof(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return benchunit.NoOpScaler.Format(x)
}
