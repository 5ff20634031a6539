// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchseries turns filtered benchmark records into ordered
// numeric series, derives scalability and efficiency from them, and
// answers the standard query shapes over a record store.
package benchseries

import (
	"errors"
	"fmt"
	"os"

	"github.com/wfbench/streamperf/benchproc"
	"github.com/wfbench/streamperf/benchrec"
	"github.com/wfbench/streamperf/benchunit"
)

// ErrNoData is returned when a query matches no usable records. It is
// informational: the query is well-formed, there is just nothing to
// show.
var ErrNoData = errors.New("no data found with the specified parameters")

// A Point is one (x, y) pair of a Series.
type Point struct {
	X, Y float64

	// Source is the storage unit of the record the point came from.
	Source string
}

// A Series is the ordered sequence of values of one statistic of one
// metric as a single dimension varies.
type Series struct {
	Metric string              // metric name as queried, e.g. "latency"
	Stat   string              // record key of the statistic, e.g. "95th percentile"
	Dim    benchproc.Dimension // the varying dimension (x)
	Unit   string              // unit label of y, e.g. "us" or "tuples per second"
	YLabel string              // axis label of y

	// Points are sorted by ascending X. Points with equal X keep the
	// order of the records they came from.
	Points []Point
}

// Len returns the number of points in s.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Xs returns the x coordinates of s.
func (s *Series) Xs() []float64 {
	xs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = p.X
	}
	return xs
}

// Ys returns the y coordinates of s.
func (s *Series) Ys() []float64 {
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		ys[i] = p.Y
	}
	return ys
}

// A Box is the five-number summary of a metric at one x, taken from
// the percentile fields of a record.
type Box struct {
	X                        float64
	Min, Q1, Median, Q3, Max float64
	Source                   string
}

// BuilderOptions configure a Builder.
type BuilderOptions struct {
	// Warn is called for every record excluded from a series, with
	// the record and field at fault. If nil, warnings are dropped.
	Warn func(format string, args ...interface{})
}

// DefaultBuilderOptions returns options that print warnings to
// standard error.
func DefaultBuilderOptions() *BuilderOptions {
	return &BuilderOptions{
		Warn: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format, args...)
		},
	}
}

// A Builder extracts series from records.
type Builder struct {
	warn func(format string, args ...interface{})
}

// NewBuilder returns a Builder configured by opts. A nil opts is the
// same as DefaultBuilderOptions.
func NewBuilder(opts *BuilderOptions) *Builder {
	if opts == nil {
		opts = DefaultBuilderOptions()
	}
	warn := opts.Warn
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}
	return &Builder{warn: warn}
}

// Build extracts the statistic named by selector (see
// benchproc.PercentileKey) from recs and orders it by dim.
//
// recs are expected to be already filtered to a single metric and
// fixed parameter set. Throughput values are converted to tuples per
// second. A record that lacks the varying dimension, the statistic or
// a usable time unit is reported through the Warn option and left out.
// If no record survives, Build returns ErrNoData.
func (b *Builder) Build(recs []*benchrec.Record, dim benchproc.Dimension, metric string, selector interface{}) (*Series, error) {
	if len(recs) == 0 {
		return nil, ErrNoData
	}
	key := benchproc.PercentileKey(selector)
	s := &Series{Metric: metric, Stat: key, Dim: dim}
	for _, rec := range b.sorted(recs, dim) {
		x, _ := dim.Value(rec)
		unit, err := rec.Text(benchproc.FieldTimeUnit)
		if err != nil {
			b.exclude(rec, err)
			continue
		}
		y, err := value(rec, key, metric, unit)
		if err != nil {
			b.exclude(rec, err)
			continue
		}
		if len(s.Points) == 0 {
			s.Unit = benchunit.Label(metric, unit)
			s.YLabel = benchunit.AxisLabel(metric, unit)
		}
		s.Points = append(s.Points, Point{X: x, Y: y, Source: rec.Source()})
	}
	if len(s.Points) == 0 {
		return nil, ErrNoData
	}
	return s, nil
}

// boxKeys are the percentile fields making up a Box, in Box field
// order.
var boxKeys = []string{
	benchproc.PercentileKey(0),
	benchproc.PercentileKey(25),
	benchproc.PercentileKey(50),
	benchproc.PercentileKey(75),
	benchproc.PercentileKey(100),
}

// BuildBoxes returns one Box per record of recs, ordered by dim.
// Records without the full set of quartile fields are skipped
// silently, since most producers only record a mean for some metrics.
// Unit errors are still reported through Warn.
func (b *Builder) BuildBoxes(recs []*benchrec.Record, dim benchproc.Dimension, metric string) []Box {
	var boxes []Box
recLoop:
	for _, rec := range b.sorted(recs, dim) {
		x, _ := dim.Value(rec)
		unit, err := rec.Text(benchproc.FieldTimeUnit)
		if err != nil {
			continue
		}
		var v [5]float64
		for i, key := range boxKeys {
			if !rec.Has(key) {
				continue recLoop
			}
			if v[i], err = value(rec, key, metric, unit); err != nil {
				b.exclude(rec, err)
				continue recLoop
			}
		}
		boxes = append(boxes, Box{X: x, Min: v[0], Q1: v[1], Median: v[2], Q3: v[3], Max: v[4], Source: rec.Source()})
	}
	return boxes
}

// sorted orders recs by dim, warning about records without it.
func (b *Builder) sorted(recs []*benchrec.Record, dim benchproc.Dimension) []*benchrec.Record {
	sorted, errs := benchproc.SortBy(recs, dim)
	for _, err := range errs {
		b.warn("%v; record excluded\n", err)
	}
	return sorted
}

func (b *Builder) exclude(rec *benchrec.Record, err error) {
	var fe *benchrec.FieldError
	if errors.As(err, &fe) {
		b.warn("%v; record excluded\n", err)
		return
	}
	b.warn("%s: %v; record excluded\n", rec.Source(), err)
}

// value returns the normalized value of key in rec.
func value(rec *benchrec.Record, key, metric, unit string) (float64, error) {
	v, err := rec.Float(key)
	if err != nil {
		return 0, err
	}
	return benchunit.Tidy(v, metric, unit)
}
