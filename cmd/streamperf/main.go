// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Streamperf answers metric queries over the result records of the
// stream processing benchmarks and renders the answers as charts,
// tables and CSV files.
//
// Usage:
//
//	streamperf [flags] <dir | gs://bucket/prefix | s3://bucket/prefix>
//
// The argument names a directory or bucket prefix holding one record
// per file, named metric-<name>-<unixsecs>.json (or .json.sz for
// snappy-compressed records). Other files are ignored, and records
// that cannot be parsed are reported and skipped.
//
// The queries come from the YAML file named by -plan (see package
// internal/plan for its format). Without -plan, streamperf queries
// the mean, median and 95th percentile of every metric in the source,
// varying each of parallelism, batch size and chaining in turn and
// holding the other dimensions at each combination of values that
// occurs in the records.
//
// A table of each answer is printed to standard output. The -png,
// -svg and -pdf flags write charts into the named directory, -csv
// writes a CSV file per answer next to the charts, and -html writes
// every table into a single HTML report. With -db, answers are also
// archived in a SQL database, as sqlite3:<file> or mysql:<dsn>.
//
// The -filter flag restricts the records considered, for example
//
//	streamperf -filter 'chaining:false tuple-rate:0' results/
//
// The STREAMPERF_OUTPUT, STREAMPERF_JOBS and STREAMPERF_DB
// environment variables override the plan's output directory, number
// of parallel renderers and archive; flags override both. Variables
// may also be set in a .env file in the current directory. LOG_LEVEL
// sets the logging level (default INFO).
//
// For gs:// sources STREAMPERF_GCS_TOKEN may hold an OAuth2 access
// token; otherwise application default credentials are used. For s3://
// sources the usual AWS configuration applies, and
// STREAMPERF_S3_ENDPOINT selects an S3-compatible endpoint with
// path-style addressing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wfbench/streamperf/benchproc"
	"github.com/wfbench/streamperf/benchrec"
	"github.com/wfbench/streamperf/benchseries"
	"github.com/wfbench/streamperf/benchstat"
	"github.com/wfbench/streamperf/internal/logging"
	"github.com/wfbench/streamperf/internal/plan"
	"github.com/wfbench/streamperf/storage/db"
	_ "github.com/wfbench/streamperf/storage/db/sqlite3"
	"github.com/wfbench/streamperf/storage/gcs"
	"github.com/wfbench/streamperf/storage/s3"
)

var exit = os.Exit // replaced during testing

// errUsage reports a command line that could not be parsed. The
// usage message has already been printed.
var errUsage = errors.New("usage")

func main() {
	err := streamperf(context.Background(), os.Stdout, os.Stderr, os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		exit(2)
	default:
		fmt.Fprintf(os.Stderr, "streamperf: %v\n", err)
		exit(1)
	}
}

type flags struct {
	plan   string
	png    string
	svg    string
	pdf    string
	csv    bool
	html   string
	db     string
	jobs   int
	filter string
}

func parseFlags(stderr io.Writer, args []string) (*flags, string, error) {
	var f flags
	fs := flag.NewFlagSet("streamperf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: streamperf [flags] <dir | gs://bucket/prefix | s3://bucket/prefix>\n")
		fmt.Fprintf(stderr, "flags:\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&f.plan, "plan", "", "read queries and output options from the YAML `file`")
	fs.StringVar(&f.png, "png", "", "write png charts into `dir`")
	fs.StringVar(&f.svg, "svg", "", "write svg charts into `dir`")
	fs.StringVar(&f.pdf, "pdf", "", "write pdf charts into `dir`")
	fs.BoolVar(&f.csv, "csv", false, "write a CSV file per result into the output directory")
	fs.StringVar(&f.html, "html", "", "write an HTML report to `file`")
	fs.StringVar(&f.db, "db", "", "archive results in `driver:dsn` (sqlite3 or mysql)")
	fs.IntVar(&f.jobs, "j", 0, "render at most `n` results in parallel (default GOMAXPROCS)")
	fs.StringVar(&f.filter, "filter", "", "consider only records matching `expr`")
	if err := fs.Parse(args); err != nil {
		return nil, "", errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, "", errUsage
	}
	return &f, fs.Arg(0), nil
}

func streamperf(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	if err := plan.LoadDotEnv(".env"); err != nil {
		return err
	}
	f, srcName, err := parseFlags(stderr, args)
	if err != nil {
		return err
	}
	log, lerr := logging.New(stderr, os.Getenv("LOG_LEVEL"))
	if lerr != nil {
		log.Warn(lerr)
	}
	defer log.Sync()

	var filter *benchproc.Filter
	if f.filter != "" {
		if filter, err = benchproc.ParseFilter(f.filter); err != nil {
			return err
		}
	}
	var p *plan.Plan
	if f.plan != "" {
		if p, err = plan.Load(f.plan); err != nil {
			return err
		}
	}

	store, err := load(ctx, log, srcName)
	if err != nil {
		return err
	}
	if filter != nil {
		store = benchrec.NewStore(filter.Apply(store.Records())...)
		log.Infof("%d records match %s", store.Len(), filter)
	}
	if p == nil {
		p = plan.Default(store)
	}
	if err := p.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	out := output(p.Output, f)
	reqs, err := p.Requests()
	if err != nil {
		return err
	}

	var session *db.Session
	if out.DB != "" {
		archive, err := db.Open(out.DB)
		if err != nil {
			return err
		}
		defer archive.Close()
		if session, err = archive.NewSession(ctx, srcName); err != nil {
			return fmt.Errorf("starting session: %w", err)
		}
		log.Infof("archiving results in session %s", session.ID)
	}

	r := &renderer{
		log:     log,
		engine:  benchseries.NewEngine(store, &benchseries.BuilderOptions{Warn: logging.Warnf(log)}),
		charts:  chartOptions(out, f),
		session: session,
	}
	if out.CSV {
		r.csvDir = csvDir(out, r.charts)
	}

	tables := make([]*benchstat.Table, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(out.Jobs)
	for i, req := range reqs {
		g.Go(func() error {
			t, err := r.render(gctx, req)
			tables[i] = t
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var found []*benchstat.Table
	for _, t := range tables {
		if t != nil {
			found = append(found, t)
		}
	}
	if len(found) == 0 {
		log.Warnf("no query over %s produced data", srcName)
		return nil
	}
	if err := benchstat.FormatText(stdout, found); err != nil {
		return err
	}
	if out.HTML != "" {
		if err := writeHTML(out.HTML, srcName, found); err != nil {
			return err
		}
		log.Infof("wrote %s", out.HTML)
	}
	return nil
}

// load reads every record of the named source, warning about units
// that could not be parsed.
func load(ctx context.Context, log *zap.SugaredLogger, name string) (*benchrec.Store, error) {
	src, closeSrc, err := openSource(ctx, name)
	if err != nil {
		return nil, err
	}
	defer closeSrc()
	store, bad, err := benchrec.Load(ctx, src)
	for _, err := range bad {
		log.Warnf("%v; skipped", err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	log.Infof("loaded %d records from %s", store.Len(), name)
	return store, nil
}

func openSource(ctx context.Context, name string) (benchrec.Source, func() error, error) {
	switch {
	case strings.HasPrefix(name, "gs://"):
		src, err := gcs.Open(ctx, name, gcs.Options{
			Token:    os.Getenv("STREAMPERF_GCS_TOKEN"),
			Endpoint: os.Getenv("STREAMPERF_GCS_ENDPOINT"),
		})
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	case strings.HasPrefix(name, "s3://"):
		endpoint := os.Getenv("STREAMPERF_S3_ENDPOINT")
		src, err := s3.Open(ctx, name, s3.Options{
			Region:       os.Getenv("AWS_REGION"),
			Endpoint:     endpoint,
			UsePathStyle: endpoint != "",
		})
		if err != nil {
			return nil, nil, err
		}
		return src, func() error { return nil }, nil
	}
	fi, err := os.Stat(name)
	if err != nil {
		return nil, nil, err
	}
	if !fi.IsDir() {
		return nil, nil, fmt.Errorf("%s is not a directory", name)
	}
	return benchrec.DirSource(name), func() error { return nil }, nil
}

// output merges the plan's output options with the command line.
func output(o plan.Output, f *flags) plan.Output {
	if f.csv {
		o.CSV = true
	}
	if f.html != "" {
		o.HTML = f.html
	}
	if f.db != "" {
		o.DB = f.db
	}
	if f.jobs > 0 {
		o.Jobs = f.jobs
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	return o
}

// chartOptions returns one ChartOptions per chart directory, in
// directory order. A format given by flag goes to the flag's
// directory; the plan's other formats go to the plan's directory.
func chartOptions(o plan.Output, f *flags) []benchseries.ChartOptions {
	dirs := make(map[string][]string)
	flagDirs := map[string]string{"png": f.png, "svg": f.svg, "pdf": f.pdf}
	for _, format := range o.Formats {
		if flagDirs[format] == "" {
			dir := o.Dir
			if dir == "" {
				dir = "."
			}
			dirs[dir] = append(dirs[dir], format)
		}
	}
	for _, format := range []string{"png", "svg", "pdf"} {
		if dir := flagDirs[format]; dir != "" {
			dirs[dir] = append(dirs[dir], format)
		}
	}
	var opts []benchseries.ChartOptions
	for dir, formats := range dirs {
		sort.Strings(formats)
		opts = append(opts, benchseries.ChartOptions{Dir: dir, Formats: formats})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Dir < opts[j].Dir })
	return opts
}

// csvDir returns the directory CSV files are written to: the output
// directory, or else the first chart directory.
func csvDir(o plan.Output, charts []benchseries.ChartOptions) string {
	switch {
	case o.Dir != "":
		return o.Dir
	case len(charts) > 0:
		return charts[0].Dir
	}
	return "."
}

func writeHTML(path, title string, tables []*benchstat.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := benchstat.FormatHTML(f, "streamperf: "+title, tables); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
