// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

// Package view implements the stats aggregation engine: user-declared
// views over measures, per-kind accumulators, and cumulative and
// sliding-window aggregation state.
package view

import "sort"

// AggType identifies an aggregation kind.
type AggType int

// The aggregation kinds.
const (
	AggTypeSum AggType = iota
	AggTypeCount
	AggTypeHistogram
	AggTypeRange
	AggTypeMean
	AggTypeStdDev
)

func (t AggType) String() string {
	switch t {
	case AggTypeSum:
		return "Sum"
	case AggTypeCount:
		return "Count"
	case AggTypeHistogram:
		return "Histogram"
	case AggTypeRange:
		return "Range"
	case AggTypeMean:
		return "Mean"
	case AggTypeStdDev:
		return "StdDev"
	default:
		return "Unknown"
	}
}

// Aggregation describes one summary statistic a view maintains per tag
// vector. Construct aggregations with the functions below.
type Aggregation struct {
	Type AggType

	// Buckets holds the histogram bucket bounds; only set for
	// AggTypeHistogram. A value x lands in the first bucket i with
	// x < Buckets[i], or in the final overflow bucket.
	Buckets []float64
}

// Sum aggregates the sum of recorded values.
func Sum() *Aggregation { return &Aggregation{Type: AggTypeSum} }

// Count aggregates the number of recorded values.
func Count() *Aggregation { return &Aggregation{Type: AggTypeCount} }

// Histogram aggregates a bucketed distribution of recorded values. The
// bounds are sorted and deduplicated; len(bounds)+1 buckets result.
func Histogram(bounds ...float64) *Aggregation {
	sorted := append([]float64(nil), bounds...)
	sort.Float64s(sorted)
	dedup := sorted[:0]
	for i, b := range sorted {
		if i == 0 || b != sorted[i-1] {
			dedup = append(dedup, b)
		}
	}
	return &Aggregation{Type: AggTypeHistogram, Buckets: dedup}
}

// Range aggregates the minimum and maximum of recorded values.
func Range() *Aggregation { return &Aggregation{Type: AggTypeRange} }

// Mean aggregates the arithmetic mean and count of recorded values.
func Mean() *Aggregation { return &Aggregation{Type: AggTypeMean} }

// StdDev aggregates the population standard deviation of recorded values.
func StdDev() *Aggregation { return &Aggregation{Type: AggTypeStdDev} }

// newMutable returns a zeroed accumulator for the aggregation.
func (a *Aggregation) newMutable() mutableAggregation {
	switch a.Type {
	case AggTypeSum:
		return &mutableSum{}
	case AggTypeCount:
		return &mutableCount{}
	case AggTypeHistogram:
		return newMutableHistogram(a.Buckets)
	case AggTypeRange:
		return newMutableRange()
	case AggTypeMean:
		return &mutableMean{}
	case AggTypeStdDev:
		return &mutableStdDev{}
	default:
		panic("unknown aggregation type")
	}
}

// supportsFractionalCombine reports whether the kind can be blended with
// a non-unit fraction, which sliding windows require for their partial
// head bucket.
func (a *Aggregation) supportsFractionalCombine() bool {
	switch a.Type {
	case AggTypeRange, AggTypeStdDev:
		return false
	default:
		return true
	}
}

func (a *Aggregation) equal(o *Aggregation) bool {
	if a.Type != o.Type || len(a.Buckets) != len(o.Buckets) {
		return false
	}
	for i := range a.Buckets {
		if a.Buckets[i] != o.Buckets[i] {
			return false
		}
	}
	return true
}
