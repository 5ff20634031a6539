// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wfbench/streamperf/benchseries"
	"github.com/wfbench/streamperf/benchstat"
	"github.com/wfbench/streamperf/internal/plan"
	"github.com/wfbench/streamperf/storage/db"
)

// A renderer answers plan requests and writes their outputs. It is
// safe for concurrent use.
type renderer struct {
	log     *zap.SugaredLogger
	engine  *benchseries.Engine
	charts  []benchseries.ChartOptions
	csvDir  string      // "" for no CSV output
	session *db.Session // nil for no archive
}

// render answers req and writes its charts, CSV and archive entries.
// It returns the result's table, or nil if req matched no data.
func (r *renderer) render(ctx context.Context, req plan.Request) (*benchstat.Table, error) {
	if req.Compare {
		c, err := r.engine.Compare(req.Query, req.Vary, req.Across, req.Values)
		if errors.Is(err, benchseries.ErrNoData) {
			r.log.Debug(err)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return benchstat.FromComparison(c), r.comparison(ctx, c)
	}
	res, err := r.engine.Vary(req.Query, req.Vary)
	if errors.Is(err, benchseries.ErrNoData) {
		r.log.Debug(err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return benchstat.FromResult(res), r.result(ctx, res)
}

func (r *renderer) result(ctx context.Context, res *benchseries.Result) error {
	for _, opts := range r.charts {
		files, err := benchseries.Chart(res, opts)
		if err != nil {
			return err
		}
		r.log.Debugf("wrote %v", files)
	}
	if r.csvDir != "" {
		err := r.writeCSV(res.Title.FileBase(), func(w io.Writer) error {
			return benchseries.WriteCSV(w, res, benchseries.CSVDerived|benchseries.CSVSource)
		})
		if err != nil {
			return err
		}
	}
	if r.session != nil {
		return r.session.InsertResult(ctx, res)
	}
	return nil
}

func (r *renderer) comparison(ctx context.Context, c *benchseries.Comparison) error {
	for _, opts := range r.charts {
		files, err := benchseries.ChartComparison(c, opts)
		if err != nil {
			return err
		}
		r.log.Debugf("wrote %v", files)
	}
	if r.csvDir != "" {
		err := r.writeCSV(c.Title.FileBase(), func(w io.Writer) error {
			return benchseries.WriteComparisonCSV(w, c)
		})
		if err != nil {
			return err
		}
	}
	if r.session != nil {
		for _, res := range c.Results {
			if err := r.session.InsertResult(ctx, res); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) writeCSV(base string, write func(io.Writer) error) error {
	if err := os.MkdirAll(r.csvDir, 0o777); err != nil {
		return err
	}
	name := filepath.Join(r.csvDir, base+".csv")
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.log.Debugf("wrote %s", name)
	return nil
}
