// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite3 provides the sqlite3 driver for
// github.com/wfbench/streamperf/storage/db.OpenSQL. It must be
// imported instead of go-sqlite3 to ensure foreign keys are properly
// honored.
package sqlite3

import (
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/wfbench/streamperf/storage/db"
)

// DriverName is the name under which the driver is registered with
// database/sql.
const DriverName = "sqlite3"

func init() {
	db.RegisterOpenHook(DriverName, func(db *sql.DB) error {
		// Serialize all queries. An in-memory database exists
		// only on the connection that created it.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return err
		}
		return nil
	})
}

// Version returns the version of the linked SQLite library.
func Version() string {
	v, _, _ := sqlite3.Version()
	return v
}
