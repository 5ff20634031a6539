// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrec

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// A Source is a collection of storage units, each holding one record.
// Implementations exist for local directories (DirSource) and for
// cloud buckets (see the storage/gcs and storage/s3 packages).
type Source interface {
	// List returns the names of the units in the source that
	// IsRecordName accepts, in a deterministic order.
	List(ctx context.Context) ([]string, error)

	// Open opens the named unit for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource is a Source reading the record files in a local
// directory. Subdirectories are not descended into.
type DirSource string

// List implements Source.
func (d DirSource) List(ctx context.Context) ([]string, error) {
	ents, err := os.ReadDir(string(d))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ent := range ents {
		if ent.IsDir() || !IsRecordName(ent.Name()) {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Open implements Source.
func (d DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), name))
}

// ObjectNames selects, from the keys of a bucket listing under prefix,
// the record units directly under prefix. It returns their names
// relative to prefix, sorted. Keys in deeper "directories" are
// skipped, matching DirSource.
func ObjectNames(prefix string, keys []string) []string {
	var names []string
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		name := key[len(prefix):]
		if strings.Contains(name, "/") || !IsRecordName(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
