// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out fixed-width text tables.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table does layout of text-based tables.
//
// Row and Cell return the Table so callers can chain them to build up
// a row at once.
type Table struct {
	rows [][]textCell
	cols int
}

type textCell struct {
	value      string
	leftMargin string
	alignment  align
}

// A CellOption changes the layout of a single cell.
type CellOption func(c *textCell)

// LeftMargin sets the space printed before the cell.
func LeftMargin(x string) CellOption {
	return func(c *textCell) {
		c.leftMargin = x
	}
}

var (
	Left  CellOption = func(c *textCell) { c.alignment = alignLeft }
	Right CellOption = func(c *textCell) { c.alignment = alignRight }
)

type align int

const (
	alignLeft align = iota
	alignRight
)

func (a align) pad(s string, w int) string {
	if a == alignRight {
		return fmt.Sprintf("%*s", w, s)
	}
	return s + strings.Repeat(" ", w-utf8.RuneCountInString(s))
}

// Row starts a new row in table t.
func (t *Table) Row() *Table {
	t.rows = append(t.rows, nil)
	return t
}

// Cell adds a cell at the end of the current row. Cells other than the
// first of a row default to a one-space left margin.
func (t *Table) Cell(value string, opts ...CellOption) *Table {
	if len(t.rows) == 0 {
		t.Row()
	}
	row := &t.rows[len(t.rows)-1]
	c := textCell{value: value}
	if len(*row) > 0 {
		c.leftMargin = " "
	}
	for _, o := range opts {
		o(&c)
	}
	*row = append(*row, c)
	if len(*row) > t.cols {
		t.cols = len(*row)
	}
	return t
}

// Format lays out table t and writes it to w. Trailing spaces are
// never printed.
func (t *Table) Format(w io.Writer) error {
	// Column widths, excluding margins, and margin widths.
	ws := make([]int, t.cols)
	ms := make([]int, t.cols)
	for _, row := range t.rows {
		for col, c := range row {
			ws[col] = max(ws[col], utf8.RuneCountInString(c.value))
			ms[col] = max(ms[col], utf8.RuneCountInString(c.leftMargin))
		}
	}

	var line strings.Builder
	for _, row := range t.rows {
		line.Reset()
		for col, c := range row {
			fmt.Fprintf(&line, "%*s", ms[col], c.leftMargin)
			line.WriteString(c.alignment.pad(c.value, ws[col]))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
