// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/wfbench/streamperf/benchunit"
)

// Units of derived series.
const (
	UnitSpeedup    = "speed-up"
	UnitEfficiency = "efficiency"
)

// Scalability returns the speed-up of every point of s relative to
// the baseline, point 0, oriented so that higher is better: y/base
// for throughput metrics and base/y for everything else. The baseline
// ratio is exactly 1. A zero divisor yields NaN for that point.
func Scalability(s *Series) *Series {
	out := derive(s, UnitSpeedup, "Scalability")
	if len(s.Points) == 0 {
		return out
	}
	base := s.Points[0].Y
	higherIsBetter := benchunit.IsThroughput(s.Metric)
	for i, p := range s.Points {
		if higherIsBetter {
			out.Points[i].Y = ratio(p.Y, base)
		} else {
			out.Points[i].Y = ratio(base, p.Y)
		}
	}
	return out
}

// Efficiency returns the scalability of s divided by the 1-based
// position of each point, approximating the return on each added
// resource. The baseline efficiency is exactly 1.
func Efficiency(s *Series) *Series {
	sc := Scalability(s)
	out := derive(s, UnitEfficiency, "Efficiency")
	for i, p := range sc.Points {
		out.Points[i].Y = p.Y / float64(i+1)
	}
	return out
}

func derive(s *Series, unit, label string) *Series {
	out := &Series{
		Metric: s.Metric,
		Stat:   s.Stat,
		Dim:    s.Dim,
		Unit:   unit,
		YLabel: label,
		Points: make([]Point, len(s.Points)),
	}
	copy(out.Points, s.Points)
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// GeoMean returns the geometric mean of the finite, positive y values
// of s, and false if there are none. It summarizes a derived series
// in a single number.
func GeoMean(s *Series) (float64, bool) {
	var ys []float64
	for _, p := range s.Points {
		if p.Y > 0 && !math.IsInf(p.Y, 0) {
			ys = append(ys, p.Y)
		}
	}
	if len(ys) == 0 {
		return 0, false
	}
	return stats.GeoMean(ys), true
}
