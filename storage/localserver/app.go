// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Localserver runs an HTTP server over a streamperf result archive.
//
// Usage:
//
//	localserver [-addr address] [-db driver:dsn] [-readonly]
//
// GET /sessions lists the archived sessions as JSON, DELETE
// /sessions?session=id removes one, and
// GET /points?session=id&result=filebase returns the points of one
// archived result as CSV.
package main

import (
	"flag"
	"net/http"
	"os"

	_ "github.com/go-sql-driver/mysql"

	"github.com/wfbench/streamperf/internal/logging"
	"github.com/wfbench/streamperf/storage/app"
	"github.com/wfbench/streamperf/storage/db"
	_ "github.com/wfbench/streamperf/storage/db/sqlite3"
)

var (
	addr     = flag.String("addr", ":8080", "serve HTTP on `address`")
	archive  = flag.String("db", "sqlite3:streamperf.db", "archive `driver:dsn`")
	readOnly = flag.Bool("readonly", false, "reject session deletion")
)

func main() {
	flag.Parse()

	log, err := logging.New(os.Stderr, os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Warn(err)
	}

	d, err := db.Open(*archive)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	app := &app.App{DB: d, ReadOnly: *readOnly}
	app.RegisterOnMux(http.DefaultServeMux)

	log.Infof("Listening on %s", *addr)

	log.Fatal(http.ListenAndServe(*addr, nil))
}
