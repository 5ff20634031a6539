// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrec

import (
	"context"
	"fmt"
)

// An Entry is one item produced by Files: either a *Record or a
// *SyntaxError for a unit that could not be read.
type Entry interface {
	Pos() string
}

// Files reads the records of a Source one storage unit at a time.
//
// A unit that cannot be opened or parsed is returned as a
// *SyntaxError entry and does not stop the scan. Only a failure to
// list the source stops Scan early; Err reports it.
type Files struct {
	Source Source

	// names is the queue of units still to read, or nil if Scan
	// has not been called yet.
	names   []string
	started bool

	cur Entry
	err error
}

// Scan advances to the next storage unit and reports whether there is
// one. The caller should use Result to get it. When Scan returns
// false, the caller should check Err.
func (f *Files) Scan(ctx context.Context) bool {
	if f.err != nil {
		return false
	}
	if !f.started {
		f.started = true
		names, err := f.Source.List(ctx)
		if err != nil {
			f.err = fmt.Errorf("listing records: %w", err)
			return false
		}
		f.names = names
	}
	if len(f.names) == 0 {
		f.cur = nil
		return false
	}
	if err := ctx.Err(); err != nil {
		f.err = err
		return false
	}

	name := f.names[0]
	f.names = f.names[1:]
	f.cur = f.read(ctx, name)
	return true
}

func (f *Files) read(ctx context.Context, name string) Entry {
	rc, err := f.Source.Open(ctx, name)
	if err != nil {
		return &SyntaxError{name, err.Error()}
	}
	defer rc.Close()
	rec, err := ParseRecord(rc, name)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			return se
		}
		return &SyntaxError{name, err.Error()}
	}
	return rec
}

// Result returns the entry read by the last call to Scan.
func (f *Files) Result() Entry {
	return f.cur
}

// Err returns the error that stopped Scan, if any.
func (f *Files) Err() error {
	return f.err
}
