// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package view

// AggregationData is a snapshot of one accumulator. The concrete type
// matches the Aggregation that produced it.
type AggregationData interface {
	isAggregationData()
}

// SumData is the snapshot of a Sum aggregation.
type SumData struct {
	Sum float64
}

// CountData is the snapshot of a Count aggregation.
type CountData struct {
	Count int64
}

// HistogramData is the snapshot of a Histogram aggregation. Counts has
// one entry per bucket, len(Buckets)+1 in total; the last is the overflow
// bucket.
type HistogramData struct {
	Buckets []float64
	Counts  []int64
}

// RangeData is the snapshot of a Range aggregation. Min and Max hold
// +Inf and -Inf respectively while no value has been recorded.
type RangeData struct {
	Min float64
	Max float64
}

// MeanData is the snapshot of a Mean aggregation. Mean is zero when Count
// is zero.
type MeanData struct {
	Mean  float64
	Count int64
}

// StdDevData is the snapshot of a StdDev aggregation; zero when nothing
// was recorded.
type StdDevData struct {
	StdDev float64
}

func (SumData) isAggregationData()       {}
func (CountData) isAggregationData()     {}
func (HistogramData) isAggregationData() {}
func (RangeData) isAggregationData()     {}
func (MeanData) isAggregationData()      {}
func (StdDevData) isAggregationData()    {}
