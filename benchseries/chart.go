// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ChartOptions control where and how charts are written.
type ChartOptions struct {
	Dir     string   // output directory, created if needed
	Formats []string // file extensions: "png", "svg", "pdf"

	// Width and Height of each chart. Zero means 6x4 inches.
	Width, Height vg.Length
}

func (o ChartOptions) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w == 0 {
		w = 6 * vg.Inch
	}
	if h == 0 {
		h = 4 * vg.Inch
	}
	return w, h
}

var maroon = color.RGBA{0x80, 0, 0, 0xff}

const pointRad = 3

type chartKind struct {
	sfx string
	mk  func(*Result) (*plot.Plot, error)
}

// Chart writes the charts of r in every requested format: a line plot
// and a bar chart of the series, a plot of scalability and
// efficiency, and a box plot if r has quartile data. It returns the
// names of the files written.
func Chart(r *Result, opts ChartOptions) ([]string, error) {
	charts := []chartKind{
		{"plot", LinePlot},
		{"bar", BarPlot},
		{"scaling", ScalingPlot},
	}
	if len(r.Boxes) > 0 {
		charts = append(charts, chartKind{"box", BoxPlot})
	}
	var files []string
	for _, c := range charts {
		p, err := c.mk(r)
		if err != nil {
			return files, fmt.Errorf("%s: %w", r.Title, err)
		}
		fs, err := save(p, r.Title.FileBase()+"-"+c.sfx, opts)
		files = append(files, fs...)
		if err != nil {
			return files, err
		}
	}
	return files, nil
}

// ChartComparison writes a multi-line plot of c in every requested
// format and returns the names of the files written.
func ChartComparison(c *Comparison, opts ChartOptions) ([]string, error) {
	p, err := ComparisonPlot(c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Title, err)
	}
	return save(p, c.Title.FileBase()+"-plot", opts)
}

func save(p *plot.Plot, base string, opts ChartOptions) ([]string, error) {
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0777); err != nil {
			return nil, err
		}
	}
	w, h := opts.size()
	var files []string
	for _, ext := range opts.Formats {
		file := filepath.Join(opts.Dir, base+"."+ext)
		if err := p.Save(w, h, file); err != nil {
			return files, err
		}
		files = append(files, file)
	}
	return files, nil
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	return p
}

// xys returns the finite points of s.
func xys(s *Series) plotter.XYs {
	pts := make(plotter.XYs, 0, len(s.Points))
	for _, p := range s.Points {
		if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: p.X, Y: p.Y})
	}
	return pts
}

// LinePlot plots the series of r as a line with point markers.
func LinePlot(r *Result) (*plot.Plot, error) {
	s := r.Series
	p := newPlot(r.Title.String(), s.Dim.Label(), s.YLabel)
	p.Add(plotter.NewGrid())
	l, sc, err := plotter.NewLinePoints(xys(s))
	if err != nil {
		return nil, err
	}
	l.Color = maroon
	sc.Color = maroon
	sc.Shape = draw.CircleGlyph{}
	sc.Radius = vg.Points(pointRad)
	p.Add(l, sc)
	return p, nil
}

// BarPlot plots the series of r as a bar chart with one bar per x.
func BarPlot(r *Result) (*plot.Plot, error) {
	s := r.Series
	p := newPlot(r.Title.String(), s.Dim.Label(), s.YLabel)
	bars, err := plotter.NewBarChart(plotter.Values(s.Ys()), vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = maroon
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(nominal(s)...)
	return p, nil
}

func nominal(s *Series) []string {
	names := make([]string, len(s.Points))
	for i, pt := range s.Points {
		names[i] = s.Dim.FormatValue(pt.X)
	}
	return names
}

// ScalingPlot plots the scalability and efficiency of r.
func ScalingPlot(r *Result) (*plot.Plot, error) {
	p := newPlot(r.Title.String(), r.Series.Dim.Label(), "Relative to baseline")
	return p, addLines(p, []string{UnitSpeedup, UnitEfficiency}, []*Series{r.Scalability, r.Efficiency})
}

// ComparisonPlot plots one line per compared value of c.
func ComparisonPlot(c *Comparison) (*plot.Plot, error) {
	if len(c.Results) == 0 {
		return nil, ErrNoData
	}
	s0 := c.Results[0].Series
	p := newPlot(c.Title.String(), s0.Dim.Label(), s0.YLabel)
	names := make([]string, len(c.Results))
	series := make([]*Series, len(c.Results))
	for i, r := range c.Results {
		names[i] = fmt.Sprintf("%s: %s", c.Title.Across, c.Title.Across.FormatValue(c.Values[i]))
		series[i] = r.Series
	}
	return p, addLines(p, names, series)
}

// addLines adds one colored line per series to p, with a legend.
func addLines(p *plot.Plot, names []string, series []*Series) error {
	p.Add(plotter.NewGrid())
	colors, err := lineColors(len(series))
	if err != nil {
		return err
	}
	for i, s := range series {
		pts := xys(s)
		if len(pts) == 0 {
			continue
		}
		l, sc, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		clr := colors[i%len(colors)]
		l.Color = clr
		sc.Color = clr
		sc.Shape = draw.CircleGlyph{}
		sc.Radius = vg.Points(pointRad)
		p.Add(l, sc)
		p.Legend.Add(names[i], l, sc)
	}
	p.Legend.Top = true
	return nil
}

// lineColors returns a qualitative palette for n lines. Palettes hold
// between 3 and 9 colors; beyond that colors repeat.
func lineColors(n int) ([]color.Color, error) {
	if n < 3 {
		n = 3
	}
	if n > 9 {
		n = 9
	}
	pal, err := brewer.GetPalette(brewer.TypeQualitative, "Set1", n)
	if err != nil {
		return nil, err
	}
	return pal.Colors(), nil
}

// BoxPlot plots the quartile boxes of r, one per x.
func BoxPlot(r *Result) (*plot.Plot, error) {
	if len(r.Boxes) == 0 {
		return nil, ErrNoData
	}
	s := r.Series
	p := newPlot(r.Title.String(), s.Dim.Label(), s.YLabel)
	p.Add(plotter.NewGrid())
	names := make([]string, len(r.Boxes))
	for i, b := range r.Boxes {
		p.Add(newSummaryBox(float64(i), b))
		names[i] = s.Dim.FormatValue(b.X)
	}
	p.NominalX(names...)
	return p, nil
}

// A summaryBox draws a box plot from a precomputed five-number
// summary; whiskers reach the minimum and maximum.
type summaryBox struct {
	loc   float64
	box   Box
	width vg.Length

	BoxStyle    draw.LineStyle
	MedianStyle draw.LineStyle
	FillColor   color.Color
}

func newSummaryBox(loc float64, b Box) *summaryBox {
	return &summaryBox{
		loc:         loc,
		box:         b,
		width:       vg.Points(20),
		BoxStyle:    draw.LineStyle{Color: color.Black, Width: vg.Points(1)},
		MedianStyle: draw.LineStyle{Color: maroon, Width: vg.Points(2)},
		FillColor:   color.NRGBA{0x80, 0, 0, 0x30},
	}
}

// Plot draws the box on Canvas c and Plot plt.
func (b *summaryBox) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	x := trX(b.loc)
	if !c.ContainsX(x) {
		return
	}

	med := trY(b.box.Median)
	q1 := trY(b.box.Q1)
	q3 := trY(b.box.Q3)
	lo := trY(b.box.Min)
	hi := trY(b.box.Max)

	pts := []vg.Point{
		{X: x - b.width/2, Y: q1},
		{X: x - b.width/2, Y: q3},
		{X: x + b.width/2, Y: q3},
		{X: x + b.width/2, Y: q1},
		{X: x - b.width/2 - b.BoxStyle.Width/2, Y: q1},
	}
	if b.FillColor != nil {
		c.FillPolygon(b.FillColor, c.ClipPolygonY(pts))
	}
	c.StrokeLines(b.BoxStyle, c.ClipLinesY(pts)...)

	c.StrokeLines(b.MedianStyle, c.ClipLinesY([]vg.Point{
		{X: x - b.width/2, Y: med},
		{X: x + b.width/2, Y: med},
	})...)

	cap := b.width / 4
	whisks := c.ClipLinesY(
		[]vg.Point{{X: x, Y: q3}, {X: x, Y: hi}},
		[]vg.Point{{X: x - cap, Y: hi}, {X: x + cap, Y: hi}},
		[]vg.Point{{X: x, Y: q1}, {X: x, Y: lo}},
		[]vg.Point{{X: x - cap, Y: lo}, {X: x + cap, Y: lo}},
	)
	c.StrokeLines(b.BoxStyle, whisks...)
}

// DataRange implements plot.DataRanger.
func (b *summaryBox) DataRange() (xmin, xmax, ymin, ymax float64) {
	return b.loc - 0.5, b.loc + 0.5, b.box.Min, b.box.Max
}
