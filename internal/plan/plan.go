// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package plan reads the query plan that drives the streamperf
// command: which queries to answer and where to write the results.
//
// A plan file is YAML:
//
//	output:
//	  dir: plots
//	  formats: [png, svg]
//	  csv: true
//	queries:
//	  - metric: throughput
//	    selector: mean
//	    vary: parallelism
//	    batch_size: 0
//	    chaining: false
//	  - metric: latency
//	    selector: 95th
//	    vary: parallelism
//	    across: batch-size
//
// Without a plan file the command uses Default.
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/wfbench/streamperf/benchproc"
	"github.com/wfbench/streamperf/benchrec"
	"github.com/wfbench/streamperf/benchseries"
)

// A Plan is a list of queries and the output options shared by them.
type Plan struct {
	Output  Output  `yaml:"output"`
	Queries []Query `yaml:"queries"`
}

// Output configures where results go. Empty fields produce no output
// of that kind.
type Output struct {
	Dir     string   `yaml:"dir"`     // chart and CSV directory
	Formats []string `yaml:"formats"` // chart formats: png, svg, pdf
	CSV     bool     `yaml:"csv"`     // write a CSV file per result
	HTML    string   `yaml:"html"`    // HTML report file
	DB      string   `yaml:"db"`      // archive, as driver:dsn
	Jobs    int      `yaml:"jobs"`    // parallel renderers
}

// A Query is one entry of a plan.
type Query struct {
	Metric   string `yaml:"metric"`
	Selector string `yaml:"selector"`

	// ExactName matches only records named exactly Metric, instead of
	// any name ending in it.
	ExactName bool `yaml:"exact_name,omitempty"`

	// Vary is the independent variable. Across, if set, makes the
	// query a comparison with one series per value of Across, or per
	// entry of Values if given.
	Vary   string    `yaml:"vary"`
	Across string    `yaml:"across,omitempty"`
	Values []float64 `yaml:"values,omitempty"`

	Parallelism  *int     `yaml:"parallelism,omitempty"`
	BatchSize    *int     `yaml:"batch_size,omitempty"`
	Chaining     *bool    `yaml:"chaining,omitempty"`
	SamplingRate *float64 `yaml:"sampling_rate,omitempty"`
	TupleRate    *float64 `yaml:"tuple_rate,omitempty"`

	// Lacking names dimensions the selected records must not store.
	Lacking []string `yaml:"lacking,omitempty"`
}

// A Request is a validated Query, ready for a benchseries.Engine.
type Request struct {
	Query   benchseries.Query
	Vary    benchproc.Dimension
	Across  benchproc.Dimension
	Compare bool
	Values  []float64
}

// Request validates q and converts it to a Request.
func (q Query) Request() (Request, error) {
	if q.Metric == "" {
		return Request{}, errors.New("query has no metric")
	}
	if q.Vary == "" {
		return Request{}, fmt.Errorf("query for %s: missing vary", q.Metric)
	}
	vary, err := benchproc.ParseDimension(q.Vary)
	if err != nil {
		return Request{}, fmt.Errorf("query for %s: %w", q.Metric, err)
	}
	req := Request{
		Query: benchseries.Query{
			Metric:       q.Metric,
			ExactName:    q.ExactName,
			Parallelism:  q.Parallelism,
			BatchSize:    q.BatchSize,
			Chaining:     q.Chaining,
			SamplingRate: q.SamplingRate,
			TupleRate:    q.TupleRate,
		},
		Vary:   vary,
		Values: q.Values,
	}
	if q.Selector != "" {
		req.Query.Selector = q.Selector
	}
	for _, name := range q.Lacking {
		d, err := benchproc.ParseDimension(name)
		if err != nil {
			return Request{}, fmt.Errorf("query for %s: lacking: %w", q.Metric, err)
		}
		if _, ok := req.Query.Get(d); ok {
			return Request{}, fmt.Errorf("query for %s: %s both given and lacking", q.Metric, d)
		}
		req.Query.Lacking = append(req.Query.Lacking, d)
	}
	if q.Across != "" {
		across, err := benchproc.ParseDimension(q.Across)
		if err != nil {
			return Request{}, fmt.Errorf("query for %s: %w", q.Metric, err)
		}
		if across == vary {
			return Request{}, fmt.Errorf("query for %s: cannot compare %s across itself", q.Metric, vary)
		}
		req.Across, req.Compare = across, true
	} else if q.Values != nil {
		return Request{}, fmt.Errorf("query for %s: values given without across", q.Metric)
	}
	return req, nil
}

// Requests validates every query of p.
func (p *Plan) Requests() ([]Request, error) {
	reqs := make([]Request, 0, len(p.Queries))
	for i, q := range p.Queries {
		req, err := q.Request()
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i+1, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Parse decodes a plan. Unknown keys are errors.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	p := new(Plan)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if _, err := p.Requests(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads and parses the plan file at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Marshal encodes p as YAML.
func (p *Plan) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// DefaultSelectors are the statistics the default plan queries.
var DefaultSelectors = []string{"mean", "50th", "95th"}

// varying are the dimensions the default plan varies. Each query holds
// the other two fixed, together with both rates.
var varying = []benchproc.Dimension{benchproc.Parallelism, benchproc.BatchSize, benchproc.Chaining}

// Default returns the plan answering, for every metric in store and
// every selector in DefaultSelectors, one query per varying dimension
// and per combination of fixed dimension values observed in the
// metric's records. Records without a sampling rate form their own
// combinations, queried as lacking one.
func Default(store *benchrec.Store) *Plan {
	p := new(Plan)
	recs := store.Records()
	for _, metric := range store.Names() {
		mrecs := benchproc.NameEquals(metric).Apply(recs)
		for _, vary := range varying {
			fixed := fixedDims(vary)
			for _, combo := range combinations(mrecs, fixed) {
				for _, sel := range DefaultSelectors {
					q := Query{Metric: metric, Selector: sel, Vary: vary.Key(), ExactName: true}
					for i, d := range fixed {
						if math.IsNaN(combo[i]) {
							q.Lacking = append(q.Lacking, d.Key())
							continue
						}
						q.set(d, combo[i])
					}
					p.Queries = append(p.Queries, q)
				}
			}
		}
	}
	return p
}

func fixedDims(vary benchproc.Dimension) []benchproc.Dimension {
	var dims []benchproc.Dimension
	for _, d := range varying {
		if d != vary {
			dims = append(dims, d)
		}
	}
	return append(dims, benchproc.SamplingRate, benchproc.TupleRate)
}

// combinations returns the distinct tuples of dims values among recs,
// in ascending order. An absent sampling rate is NaN and sorts first.
// Records lacking any other of dims are skipped.
func combinations(recs []*benchrec.Record, dims []benchproc.Dimension) [][]float64 {
	seen := make(map[string]bool)
	var out [][]float64
	for _, rec := range recs {
		combo := make([]float64, len(dims))
		var key strings.Builder
		ok := true
		for i, d := range dims {
			v, err := d.Value(rec)
			var fe *benchrec.FieldError
			if d == benchproc.SamplingRate && errors.As(err, &fe) && fe.IsMissing() {
				v, err = math.NaN(), nil
			}
			if err != nil {
				ok = false
				break
			}
			combo[i] = v
			key.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			key.WriteByte(',')
		}
		if !ok || seen[key.String()] {
			continue
		}
		seen[key.String()] = true
		out = append(out, combo)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for k := range a {
			an, bn := math.IsNaN(a[k]), math.IsNaN(b[k])
			switch {
			case an && bn:
				continue
			case an || bn:
				return an
			case a[k] != b[k]:
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}

func (q *Query) set(d benchproc.Dimension, v float64) {
	switch d {
	case benchproc.Parallelism:
		q.Parallelism = benchseries.Int(int(v))
	case benchproc.BatchSize:
		q.BatchSize = benchseries.Int(int(v))
	case benchproc.Chaining:
		q.Chaining = benchseries.Bool(v != 0)
	case benchproc.SamplingRate:
		q.SamplingRate = benchseries.Float(v)
	case benchproc.TupleRate:
		q.TupleRate = benchseries.Float(v)
	}
}

// Environment variables overriding plan output options.
const (
	EnvOutput = "STREAMPERF_OUTPUT"
	EnvJobs   = "STREAMPERF_JOBS"
	EnvDB     = "STREAMPERF_DB"
)

// LoadDotEnv loads the named .env files into the process environment,
// without overriding variables already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides p's output options from the STREAMPERF_*
// variables found by lookup, typically os.LookupEnv.
func (p *Plan) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvOutput); ok && v != "" {
		p.Output.Dir = v
	}
	if v, ok := lookup(EnvDB); ok && v != "" {
		p.Output.DB = v
	}
	if v, ok := lookup(EnvJobs); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%s=%q: want a positive integer", EnvJobs, v)
		}
		p.Output.Jobs = n
	}
	return nil
}
