// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/wfbench/streamperf/benchproc"
	"github.com/wfbench/streamperf/benchrec"
)

// A Query selects a metric statistic and the dimensions held fixed
// while another varies.
//
// Nil dimension fields are not supplied and do not filter. A query
// never inherits values from an earlier one.
type Query struct {
	Metric   string      // metric name, matched with benchproc.MatchName
	Selector interface{} // statistic, e.g. "mean", "95th", 50

	// ExactName selects only records named exactly Metric.
	ExactName bool

	Parallelism  *int
	BatchSize    *int
	Chaining     *bool
	SamplingRate *float64
	TupleRate    *float64 // 0 means unlimited and matches records without a rate

	// Lacking lists dimensions the selected records must not store.
	// A dimension in Lacking that also has a value above is fixed to
	// that value instead.
	Lacking []benchproc.Dimension
}

// Int returns a pointer to v, for Query fields.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for Query fields.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v, for Query fields.
func Float(v float64) *float64 { return &v }

// Get returns the fixed value of dimension d and whether q supplies
// one.
func (q Query) Get(d benchproc.Dimension) (float64, bool) {
	switch d {
	case benchproc.Parallelism:
		if q.Parallelism != nil {
			return float64(*q.Parallelism), true
		}
	case benchproc.BatchSize:
		if q.BatchSize != nil {
			return float64(*q.BatchSize), true
		}
	case benchproc.Chaining:
		if q.Chaining != nil {
			if *q.Chaining {
				return 1, true
			}
			return 0, true
		}
	case benchproc.SamplingRate:
		if q.SamplingRate != nil {
			return *q.SamplingRate, true
		}
	case benchproc.TupleRate:
		if q.TupleRate != nil {
			return *q.TupleRate, true
		}
	}
	return 0, false
}

// With returns a copy of q with dimension d fixed to v.
func (q Query) With(d benchproc.Dimension, v float64) Query {
	q.Lacking = without(q.Lacking, d)
	switch d {
	case benchproc.Parallelism:
		q.Parallelism = Int(int(v))
	case benchproc.BatchSize:
		q.BatchSize = Int(int(v))
	case benchproc.Chaining:
		q.Chaining = Bool(v != 0)
	case benchproc.SamplingRate:
		q.SamplingRate = Float(v)
	case benchproc.TupleRate:
		q.TupleRate = Float(v)
	}
	return q
}

// Without returns a copy of q with dimension d not supplied.
func (q Query) Without(d benchproc.Dimension) Query {
	q.Lacking = without(q.Lacking, d)
	switch d {
	case benchproc.Parallelism:
		q.Parallelism = nil
	case benchproc.BatchSize:
		q.BatchSize = nil
	case benchproc.Chaining:
		q.Chaining = nil
	case benchproc.SamplingRate:
		q.SamplingRate = nil
	case benchproc.TupleRate:
		q.TupleRate = nil
	}
	return q
}

func without(dims []benchproc.Dimension, d benchproc.Dimension) []benchproc.Dimension {
	var out []benchproc.Dimension
	for _, x := range dims {
		if x != d {
			out = append(out, x)
		}
	}
	return out
}

func (q Query) lacks(d benchproc.Dimension) bool {
	for _, x := range q.Lacking {
		if x == d {
			return true
		}
	}
	return false
}

// Filter returns the filter selecting the records of q's metric with
// every supplied dimension other than vary held fixed.
func (q Query) Filter(vary benchproc.Dimension) *benchproc.Filter {
	name := benchproc.NameIs(q.Metric)
	if q.ExactName {
		name = benchproc.NameEquals(q.Metric)
	}
	fs := []*benchproc.Filter{name}
	for _, f := range q.fixed(vary) {
		if f.Absent {
			fs = append(fs, benchproc.DimensionAbsent(f.Dim))
		} else {
			fs = append(fs, benchproc.DimensionIs(f.Dim, f.Value))
		}
	}
	return benchproc.And(fs...)
}

func (q Query) fixed(vary benchproc.Dimension) []Fixed {
	var fixed []Fixed
	for _, d := range benchproc.Dimensions {
		if d == vary {
			continue
		}
		if v, ok := q.Get(d); ok {
			fixed = append(fixed, Fixed{Dim: d, Value: v})
		} else if q.lacks(d) {
			fixed = append(fixed, Fixed{Dim: d, Absent: true})
		}
	}
	return fixed
}

func (q Query) selector() string {
	if q.Selector == nil {
		return "mean"
	}
	return fmt.Sprint(q.Selector)
}

// Fixed is a dimension held at a single value by a query, or held
// absent.
type Fixed struct {
	Dim    benchproc.Dimension
	Value  float64
	Absent bool
}

func (f Fixed) format() string {
	if f.Absent {
		return "none"
	}
	return f.Dim.FormatValue(f.Value)
}

// A Title describes a query result: the metric and statistic, the
// varying dimension and every fixed parameter. Equal queries produce
// equal titles.
type Title struct {
	Metric   string
	Selector string
	Vary     benchproc.Dimension
	Fixed    []Fixed

	// Across is the dimension a comparison draws one series per
	// value of. It is meaningful only if Compared is set.
	Across   benchproc.Dimension
	Compared bool
}

// String formats t for chart titles, for example
//
//	Throughput(mean) (batch size: 0) (chaining enabled: false)
func (t Title) String() string {
	var b strings.Builder
	b.WriteString(capitalize(t.Metric))
	fmt.Fprintf(&b, "(%s)", t.Selector)
	for _, f := range t.Fixed {
		fmt.Fprintf(&b, " (%s: %s)", f.Dim, f.format())
	}
	if t.Compared {
		fmt.Fprintf(&b, " (per %s)", t.Across)
	}
	return b.String()
}

// FileBase returns t as a file name without extension, for example
// "throughput-mean-by-parallelism-batch-size-0-chaining-false".
func (t Title) FileBase() string {
	parts := []string{t.Metric, t.Selector, "by", t.Vary.Key()}
	for _, f := range t.Fixed {
		parts = append(parts, f.Dim.Key(), f.format())
	}
	if t.Compared {
		parts = append(parts, "per", t.Across.Key())
	}
	return sanitize(strings.Join(parts, "-"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// sanitize lower-cases s and replaces every run of characters other
// than letters, digits and dots with a single hyphen.
func sanitize(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// A Result is the answer to a single-series query.
type Result struct {
	Title       Title
	Series      *Series
	Scalability *Series
	Efficiency  *Series
	Boxes       []Box // may be empty
}

// A Comparison is the answer to a comparison query: one Result per
// value of the Across dimension of its title, in ascending order.
type Comparison struct {
	Title   Title
	Values  []float64
	Results []*Result
}

// An Engine answers queries over a record store. The store is never
// modified, so an Engine may be shared by concurrent queries.
type Engine struct {
	store   *benchrec.Store
	builder *Builder
	warn    func(format string, args ...interface{})
}

// NewEngine returns an Engine over store. opts configures the
// underlying Builder.
func NewEngine(store *benchrec.Store, opts *BuilderOptions) *Engine {
	b := NewBuilder(opts)
	return &Engine{store: store, builder: b, warn: b.warn}
}

// ByParallelism varies parallelism with q's other dimensions fixed.
func (e *Engine) ByParallelism(q Query) (*Result, error) {
	return e.Vary(q, benchproc.Parallelism)
}

// ByBatchSize varies batch size with q's other dimensions fixed.
func (e *Engine) ByBatchSize(q Query) (*Result, error) {
	return e.Vary(q, benchproc.BatchSize)
}

// ByChaining varies chaining, as 0 and 1, with q's other dimensions
// fixed.
func (e *Engine) ByChaining(q Query) (*Result, error) {
	return e.Vary(q, benchproc.Chaining)
}

// Vary answers q with dimension vary as the independent variable. A
// value q supplies for vary is ignored. If nothing matches, the
// error wraps ErrNoData and names the query.
func (e *Engine) Vary(q Query, vary benchproc.Dimension) (*Result, error) {
	if q.Metric == "" {
		return nil, errors.New("query has no metric")
	}
	title := Title{
		Metric:   q.Metric,
		Selector: q.selector(),
		Vary:     vary,
		Fixed:    q.fixed(vary),
	}
	recs := q.Filter(vary).Apply(e.store.Records())
	s, err := e.builder.Build(recs, vary, q.Metric, q.selector())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", title, err)
	}
	return &Result{
		Title:       title,
		Series:      s,
		Scalability: Scalability(s),
		Efficiency:  Efficiency(s),
		Boxes:       e.builder.BuildBoxes(recs, vary, q.Metric),
	}, nil
}

// Compare answers q once per value of dimension across, varying vary.
// If values is nil, every value of across present among the records
// of q's metric is used. Values with no data are skipped with a
// warning; if every value is skipped, the error wraps ErrNoData.
func (e *Engine) Compare(q Query, vary, across benchproc.Dimension, values []float64) (*Comparison, error) {
	if vary == across {
		return nil, fmt.Errorf("cannot compare %s across itself", vary)
	}
	base := q.Without(across)
	c := &Comparison{
		Title: Title{
			Metric:   q.Metric,
			Selector: q.selector(),
			Vary:     vary,
			Fixed:    base.fixed(vary),
			Across:   across,
			Compared: true,
		},
	}
	if values == nil {
		values = benchproc.Distinct(base.Filter(vary).Apply(e.store.Records()), across)
	}
	for _, v := range values {
		r, err := e.Vary(base.With(across, v), vary)
		if errors.Is(err, ErrNoData) {
			e.warn("%v\n", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		c.Values = append(c.Values, v)
		c.Results = append(c.Results, r)
	}
	if len(c.Results) == 0 {
		return nil, fmt.Errorf("%s: %w", c.Title, ErrNoData)
	}
	return c, nil
}
