// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrec

import (
	"context"
	"sort"
)

// A Store is an in-memory, read-only collection of records. A Store
// is loaded once per session and may serve any number of queries.
type Store struct {
	records []*Record
}

// NewStore returns a Store holding records in the given order.
func NewStore(records ...*Record) *Store {
	return &Store{records: append([]*Record(nil), records...)}
}

// Load reads every record in src into a new Store.
//
// Units that fail to parse are skipped and returned in bad, in
// listing order. The returned error is non-nil only if src itself
// could not be read, in which case the Store is nil.
func Load(ctx context.Context, src Source) (st *Store, bad []error, err error) {
	files := Files{Source: src}
	var records []*Record
	for files.Scan(ctx) {
		switch e := files.Result().(type) {
		case *Record:
			records = append(records, e)
		case *SyntaxError:
			bad = append(bad, e)
		}
	}
	if err := files.Err(); err != nil {
		return nil, bad, err
	}
	return &Store{records: records}, bad, nil
}

// Len returns the number of records in s.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns the records of s. The slice is a copy and may be
// reordered by the caller; the records themselves are shared.
func (s *Store) Records() []*Record {
	return append([]*Record(nil), s.records...)
}

// Names returns the distinct metric names in s, sorted.
func (s *Store) Names() []string {
	seen := make(map[string]struct{})
	for _, r := range s.records {
		if name, err := r.Text("name"); err == nil {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
