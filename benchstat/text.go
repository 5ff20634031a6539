// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchstat

import (
	"fmt"
	"io"

	"github.com/wfbench/streamperf/internal/texttab"
)

// FormatText writes a fixed-width text rendering of tables to w,
// separated by blank lines.
func FormatText(w io.Writer, tables []*Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, t.Title); err != nil {
			return err
		}
		var tab texttab.Table
		tab.Row().Cell(t.Dim)
		for _, col := range t.Columns {
			tab.Cell(col, texttab.LeftMargin("  "))
		}
		rows := t.Rows
		if t.GeoMean != nil {
			rows = append(rows[:len(rows):len(rows)], t.GeoMean)
		}
		for _, row := range rows {
			tab.Row().Cell(row.Label)
			for _, c := range row.Cells {
				tab.Cell(c.String(), texttab.Right)
			}
		}
		if err := tab.Format(w); err != nil {
			return err
		}
	}
	return nil
}
