// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"
	"strings"

	"github.com/wfbench/streamperf/benchrec"
)

// A Dimension is an independent configuration variable of a benchmark
// run.
type Dimension int

const (
	Parallelism Dimension = iota
	BatchSize
	Chaining
	SamplingRate
	TupleRate
)

// Dimensions lists every Dimension in declaration order.
var Dimensions = []Dimension{Parallelism, BatchSize, Chaining, SamplingRate, TupleRate}

var dimInfo = [...]struct {
	field string // canonical record field
	key   string // filter syntax key
	label string // axis label
}{
	Parallelism:  {FieldParallelism, "parallelism", "Parallelism degree for each node"},
	BatchSize:    {FieldBatchSize, "batch-size", "Batch size for each node"},
	Chaining:     {FieldChaining, "chaining", "Chaining enabled ?"},
	SamplingRate: {FieldSamplingRate, "sampling-rate", "Sampling rate"},
	TupleRate:    {FieldTupleRate, "tuple-rate", "Generation rate (tuples per second)"},
}

func (d Dimension) valid() bool {
	return d >= 0 && int(d) < len(dimInfo)
}

// String returns the record field name of d, such as "batch size".
// Titles use this form.
func (d Dimension) String() string {
	if !d.valid() {
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
	return dimInfo[d].field
}

// Key returns the name of d in filter expressions, such as
// "batch-size".
func (d Dimension) Key() string {
	if !d.valid() {
		return d.String()
	}
	return dimInfo[d].key
}

// Label returns an axis label for d.
func (d Dimension) Label() string {
	if !d.valid() {
		return d.String()
	}
	return dimInfo[d].label
}

// ParseDimension returns the Dimension named s. It accepts the filter
// key ("batch-size"), the record field ("batch size"), and the
// underscore spelling ("batch_size").
func ParseDimension(s string) (Dimension, error) {
	norm := strings.NewReplacer("_", "-", " ", "-").Replace(strings.ToLower(s))
	for _, d := range Dimensions {
		if norm == dimInfo[d].key {
			return d, nil
		}
	}
	switch norm {
	case "batch", "batchsize":
		return BatchSize, nil
	case "rate", "generation-rate":
		return TupleRate, nil
	}
	return 0, fmt.Errorf("unknown dimension %q", s)
}

// Value resolves dimension d of rec to a number.
//
// Parallelism and batch size use the first element of their sequence.
// Chaining is 0 or 1. Either spelling of the rate fields is accepted,
// and an absent tuple rate resolves to 0, meaning unlimited. Any other
// absent or malformed field is a *benchrec.FieldError.
func (d Dimension) Value(rec *benchrec.Record) (float64, error) {
	switch d {
	case Parallelism, BatchSize:
		return rec.First(dimInfo[d].field)
	case Chaining:
		b, err := rec.Bool(FieldChaining)
		if err != nil {
			return 0, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case SamplingRate, TupleRate:
		key, ok := Resolve(rec, dimInfo[d].field)
		if !ok {
			if d == TupleRate {
				return 0, nil
			}
			return 0, &benchrec.FieldError{Source: rec.Source(), Field: dimInfo[d].field, Msg: "missing"}
		}
		return rec.Float(key)
	}
	panic(fmt.Sprintf("unknown dimension %v", d))
}

// FormatValue formats a value of d for titles: chaining as true or
// false, everything else as a plain number.
func (d Dimension) FormatValue(v float64) string {
	if d == Chaining {
		if v != 0 {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v)
}
