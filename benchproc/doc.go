// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchproc provides tools for filtering, resolving, and
// sorting benchmark records.
//
// The typical steps for answering a query over a benchrec.Store are:
//
// 1. Build a Filter for the dimensions held fixed, either from
// NameIs and DimensionIs or from a user-provided expression parsed by
// ParseFilter, and Apply it to the store's records. Filters are
// pure and order-preserving, and their predicates commute.
//
// 2. Resolve the statistic to extract with PercentileKey, which
// accepts percentile selectors in any of their usual spellings.
//
// 3. Order the matching records by the varying Dimension with SortBy.
package benchproc
