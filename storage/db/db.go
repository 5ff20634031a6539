// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db archives query results in a SQL database, so that series
// from different benchmark sessions can be compared later.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/wfbench/streamperf/benchseries"
)

// DB is a high-level interface to a result archive. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertSession *sql.Stmt
	insertResult  *sql.Stmt
	insertPoint   *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Open opens an archive given as "driver:dsn",
// for example "sqlite3:results.db" or
// "mysql:user:pass@tcp(host:3306)/perf". The driver must be
// registered, typically by importing storage/db/sqlite3 or
// github.com/go-sql-driver/mysql.
func Open(name string) (*DB, error) {
	driverName, dsn, ok := strings.Cut(name, ":")
	if !ok || dsn == "" {
		return nil, fmt.Errorf("bad archive %q: want driver:dsn", name)
	}
	switch driverName {
	case "sqlite3":
	case "mysql":
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("bad archive %q: %w", name, err)
		}
		dsn = cfg.FormatDSN()
	default:
		return nil, fmt.Errorf("bad archive %q: unsupported driver %q", name, driverName)
	}
	return OpenSQL(driverName, dsn)
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Sessions (
	SessionID VARCHAR(36) PRIMARY KEY,
	Created VARCHAR(64),
	Source VARCHAR(1024)
);
CREATE TABLE IF NOT EXISTS Results (
	SessionID VARCHAR(36),
	ResultID BIGINT,
	Title VARCHAR(1024),
	FileBase VARCHAR(255),
	Metric VARCHAR(255),
	Stat VARCHAR(255),
	Dim VARCHAR(255),
	Unit VARCHAR(255),
	PRIMARY KEY (SessionID, ResultID),
{{if not .sqlite3}}
	Index (FileBase(100)),
{{end}}
	FOREIGN KEY (SessionID) REFERENCES Sessions(SessionID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Points (
	SessionID VARCHAR(36),
	ResultID BIGINT,
	Idx BIGINT,
	X DOUBLE,
	Y DOUBLE,
	Speedup DOUBLE,
	Efficiency DOUBLE,
	Source VARCHAR(1024),
	PRIMARY KEY (SessionID, ResultID, Idx),
	FOREIGN KEY (SessionID, ResultID) REFERENCES Results(SessionID, ResultID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS ResultsFileBase ON Results(FileBase);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertSession, err = db.sql.Prepare("INSERT INTO Sessions(SessionID, Created, Source) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertResult, err = db.sql.Prepare("INSERT INTO Results(SessionID, ResultID, Title, FileBase, Metric, Stat, Dim, Unit) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertPoint, err = db.sql.Prepare("INSERT INTO Points(SessionID, ResultID, Idx, X, Y, Speedup, Efficiency, Source) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// A Session is one run of the tool over one record source. Every
// result archived in a session shares its ID.
type Session struct {
	// ID is a random UUID.
	ID string

	db *DB

	mu sync.Mutex
	// resultid is the index of the next result to insert.
	resultid int64
}

// NewSession starts a session for results computed from source, a
// directory or bucket URL.
func (db *DB) NewSession(ctx context.Context, source string) (*Session, error) {
	id := uuid.NewString()
	created := now().UTC().Format(time.RFC3339)
	if _, err := db.insertSession.ExecContext(ctx, id, created, source); err != nil {
		return nil, err
	}
	return &Session{ID: id, db: db}, nil
}

// InsertResult archives r in session s, in a single transaction. The
// derived series are stored alongside each point. NaN values are
// stored as NULL.
func (s *Session) InsertResult(ctx context.Context, r *benchseries.Result) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	ser := r.Series
	if _, err = tx.StmtContext(ctx, s.db.insertResult).ExecContext(ctx, s.ID, s.resultid,
		r.Title.String(), r.Title.FileBase(), ser.Metric, ser.Stat, ser.Dim.String(), ser.Unit); err != nil {
		return err
	}
	insertPoint := tx.StmtContext(ctx, s.db.insertPoint)
	for i, p := range ser.Points {
		var speedup, eff sql.NullFloat64
		if r.Scalability != nil {
			speedup = nullFloat(r.Scalability.Points[i].Y)
		}
		if r.Efficiency != nil {
			eff = nullFloat(r.Efficiency.Points[i].Y)
		}
		if _, err = insertPoint.ExecContext(ctx, s.ID, s.resultid, i, p.X, nullFloat(p.Y), speedup, eff, p.Source); err != nil {
			return err
		}
	}
	s.resultid++
	return nil
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// SessionInfo describes an archived session.
type SessionInfo struct {
	ID      string
	Created time.Time
	Source  string
	Results int
}

// Sessions returns every archived session, oldest first.
func (db *DB) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := db.sql.QueryContext(ctx, `
SELECT s.SessionID, s.Created, s.Source, COUNT(r.ResultID)
FROM Sessions s LEFT JOIN Results r ON s.SessionID = r.SessionID
GROUP BY s.SessionID, s.Created, s.Source
ORDER BY s.Created, s.SessionID`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var created string
		if err := rows.Scan(&info.ID, &created, &info.Source, &info.Results); err != nil {
			return nil, err
		}
		if info.Created, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("session %s: bad creation time: %v", info.ID, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// CountSessions returns the number of archived sessions.
func (db *DB) CountSessions(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Sessions").Scan(&n)
	return n, err
}

// A StoredPoint is a point of an archived series with its derived
// values.
type StoredPoint struct {
	benchseries.Point
	Speedup, Efficiency float64 // NaN if not archived
}

// Points returns the points of the result with the given file base
// (see benchseries.Title.FileBase) in session, in archive order. If
// session archived the file base more than once, the last result
// wins. If session archived no such result, Points returns
// benchseries.ErrNoData.
func (db *DB) Points(ctx context.Context, session, fileBase string) ([]StoredPoint, error) {
	rows, err := db.sql.QueryContext(ctx, `
SELECT p.X, p.Y, p.Speedup, p.Efficiency, p.Source
FROM Points p
WHERE p.SessionID = ? AND p.ResultID = (
	SELECT MAX(r.ResultID) FROM Results r WHERE r.SessionID = ? AND r.FileBase = ?)
ORDER BY p.Idx`, session, session, fileBase)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StoredPoint
	for rows.Next() {
		var p StoredPoint
		var y, speedup, eff sql.NullFloat64
		if err := rows.Scan(&p.X, &y, &speedup, &eff, &p.Source); err != nil {
			return nil, err
		}
		p.Y, p.Speedup, p.Efficiency = floatOrNaN(y), floatOrNaN(speedup), floatOrNaN(eff)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("session %s: %s: %w", session, fileBase, benchseries.ErrNoData)
	}
	return out, nil
}

// DeleteSession removes session and everything archived in it.
func (db *DB) DeleteSession(ctx context.Context, session string) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	for _, table := range []string{"Points", "Results", "Sessions"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE SessionID = ?", session); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertSession, db.insertResult, db.insertPoint} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
