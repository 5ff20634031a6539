// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

// Tidy normalizes a value of metric recorded in the given time unit.
// Throughput metrics record events per time unit and are re-scaled to
// events per second; this requires unit to resolve, and fails with a
// *UnitError otherwise. All other metrics are returned unchanged,
// whatever their unit.
func Tidy(value float64, metric, unit string) (float64, error) {
	if !IsThroughput(metric) {
		return value, nil
	}
	factor, err := ScaleFactor(unit)
	if err != nil {
		return 0, err
	}
	return value * factor, nil
}

// Untidy reverses Tidy.
func Untidy(value float64, metric, unit string) (float64, error) {
	if !IsThroughput(metric) {
		return value, nil
	}
	factor, err := ScaleFactor(unit)
	if err != nil {
		return 0, err
	}
	return value / factor, nil
}
