// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package view

import "math"

// mutableAggregation is a running accumulator for one aggregation kind.
// Not safe for concurrent use; the owning view state's lock guards it.
//
// combine folds a fraction of other's state into the receiver; sliding
// windows use it to blend the partially-expired head bucket. Kinds whose
// state cannot be meaningfully scaled (Range, StdDev) reject non-unit
// fractions.
type mutableAggregation interface {
	add(v float64)
	combine(other mutableAggregation, fraction float64) error
	snapshot() AggregationData
}

type mutableSum struct {
	sum float64
}

func (m *mutableSum) add(v float64) { m.sum += v }

func (m *mutableSum) combine(other mutableAggregation, fraction float64) error {
	o, ok := other.(*mutableSum)
	if !ok {
		return errInvalidArgumentf("cannot combine Sum with %T", other)
	}
	m.sum += fraction * o.sum
	return nil
}

func (m *mutableSum) snapshot() AggregationData { return SumData{Sum: m.sum} }

type mutableCount struct {
	count int64
}

func (m *mutableCount) add(float64) { m.count++ }

func (m *mutableCount) combine(other mutableAggregation, fraction float64) error {
	o, ok := other.(*mutableCount)
	if !ok {
		return errInvalidArgumentf("cannot combine Count with %T", other)
	}
	m.count += int64(math.RoundToEven(fraction * float64(o.count)))
	return nil
}

func (m *mutableCount) snapshot() AggregationData { return CountData{Count: m.count} }

type mutableHistogram struct {
	bounds []float64
	counts []int64
}

func newMutableHistogram(bounds []float64) *mutableHistogram {
	return &mutableHistogram{bounds: bounds, counts: make([]int64, len(bounds)+1)}
}

// add locates the first bucket whose bound is strictly greater than v. A
// value equal to a bound lands in the bucket above it, and NaN, which
// compares false against everything, lands in the overflow bucket.
func (m *mutableHistogram) add(v float64) {
	i := 0
	for i < len(m.bounds) && !(v < m.bounds[i]) {
		i++
	}
	m.counts[i]++
}

func (m *mutableHistogram) combine(other mutableAggregation, fraction float64) error {
	o, ok := other.(*mutableHistogram)
	if !ok {
		return errInvalidArgumentf("cannot combine Histogram with %T", other)
	}
	if len(o.bounds) != len(m.bounds) {
		return errInvalidArgumentf("cannot combine histograms with different bucket bounds")
	}
	for i, b := range m.bounds {
		if o.bounds[i] != b {
			return errInvalidArgumentf("cannot combine histograms with different bucket bounds")
		}
	}
	for i, c := range o.counts {
		m.counts[i] += int64(math.RoundToEven(fraction * float64(c)))
	}
	return nil
}

func (m *mutableHistogram) snapshot() AggregationData {
	return HistogramData{
		Buckets: append([]float64(nil), m.bounds...),
		Counts:  append([]int64(nil), m.counts...),
	}
}

type mutableRange struct {
	min float64
	max float64
}

func newMutableRange() *mutableRange {
	return &mutableRange{min: math.Inf(1), max: math.Inf(-1)}
}

func (m *mutableRange) add(v float64) {
	if v < m.min {
		m.min = v
	}
	if v > m.max {
		m.max = v
	}
}

func (m *mutableRange) combine(other mutableAggregation, fraction float64) error {
	o, ok := other.(*mutableRange)
	if !ok {
		return errInvalidArgumentf("cannot combine Range with %T", other)
	}
	if fraction != 1 {
		return errUnsupportedf("Range does not support fractional combine")
	}
	if o.min < m.min {
		m.min = o.min
	}
	if o.max > m.max {
		m.max = o.max
	}
	return nil
}

func (m *mutableRange) snapshot() AggregationData { return RangeData{Min: m.min, Max: m.max} }

type mutableMean struct {
	sum   float64
	count int64
}

func (m *mutableMean) add(v float64) {
	m.sum += v
	m.count++
}

func (m *mutableMean) combine(other mutableAggregation, fraction float64) error {
	o, ok := other.(*mutableMean)
	if !ok {
		return errInvalidArgumentf("cannot combine Mean with %T", other)
	}
	m.sum += fraction * o.sum
	m.count += int64(math.RoundToEven(fraction * float64(o.count)))
	return nil
}

func (m *mutableMean) snapshot() AggregationData {
	d := MeanData{Count: m.count}
	if m.count > 0 {
		d.Mean = m.sum / float64(m.count)
	}
	return d
}

// mutableStdDev accumulates with Welford's method: count, running mean,
// and the sum of squared deviations from it.
type mutableStdDev struct {
	count int64
	mean  float64
	m2    float64
}

func (m *mutableStdDev) add(v float64) {
	m.count++
	delta := v - m.mean
	m.mean += delta / float64(m.count)
	m.m2 += delta * (v - m.mean)
}

func (m *mutableStdDev) combine(other mutableAggregation, fraction float64) error {
	o, ok := other.(*mutableStdDev)
	if !ok {
		return errInvalidArgumentf("cannot combine StdDev with %T", other)
	}
	if fraction != 1 {
		return errUnsupportedf("StdDev does not support fractional combine")
	}
	if o.count == 0 {
		return nil
	}
	if m.count == 0 {
		*m = *o
		return nil
	}
	// parallel Welford merge
	n := m.count + o.count
	delta := o.mean - m.mean
	m.m2 += o.m2 + delta*delta*float64(m.count)*float64(o.count)/float64(n)
	m.mean += delta * float64(o.count) / float64(n)
	m.count = n
	return nil
}

func (m *mutableStdDev) snapshot() AggregationData {
	d := StdDevData{}
	if m.count > 0 {
		d.StdDev = math.Sqrt(m.m2 / float64(m.count))
	}
	return d
}
