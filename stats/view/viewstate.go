// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package view

import (
	"sort"
	"time"
)

// viewState is the mutable aggregation state behind one registered view.
// Implementations are not safe for concurrent use; the manager guards
// each with a per-view lock.
type viewState interface {
	// record folds v into the cell identified by values.
	record(values []string, v float64, now time.Time) error

	// snapshot returns the current rows plus the window's start time
	// (zero for windows that have none). It never resets state.
	snapshot(now time.Time) ([]*Row, time.Time, error)
}

// row is a live aggregation cell.
type row struct {
	values []string
	aggs   []mutableAggregation
}

func newRow(values []string, aggs []*Aggregation) *row {
	r := &row{values: append([]string(nil), values...)}
	r.aggs = make([]mutableAggregation, len(aggs))
	for i, a := range aggs {
		r.aggs[i] = a.newMutable()
	}
	return r
}

func (r *row) add(v float64) {
	for _, m := range r.aggs {
		m.add(v)
	}
}

func (r *row) snapshot() *Row {
	out := &Row{Values: append([]string(nil), r.values...)}
	out.Data = make([]AggregationData, len(r.aggs))
	for i, m := range r.aggs {
		out.Data[i] = m.snapshot()
	}
	return out
}

// cumulativeState aggregates from registration onwards in a single map of
// cells.
type cumulativeState struct {
	aggs  []*Aggregation
	start time.Time
	rows  map[string]*row
}

func newCumulativeState(aggs []*Aggregation, start time.Time) *cumulativeState {
	return &cumulativeState{aggs: aggs, start: start, rows: make(map[string]*row)}
}

func (s *cumulativeState) record(values []string, v float64, _ time.Time) error {
	k := rowKey(values)
	r, ok := s.rows[k]
	if !ok {
		r = newRow(values, s.aggs)
		s.rows[k] = r
	}
	r.add(v)
	return nil
}

func (s *cumulativeState) snapshot(_ time.Time) ([]*Row, time.Time, error) {
	rows := make([]*Row, 0, len(s.rows))
	for _, k := range sortedKeys(s.rows) {
		rows = append(rows, s.rows[k].snapshot())
	}
	return rows, s.start, nil
}

// intervalState aggregates over a sliding window kept as n+1 time
// buckets of duration window/n each. The newest bucket always contains
// the current time; on snapshot the oldest bucket is blended in with the
// fraction of it still inside the window.
type intervalBucket struct {
	start time.Time
	rows  map[string]*row
}

func newIntervalBucket(start time.Time) *intervalBucket {
	return &intervalBucket{start: start, rows: make(map[string]*row)}
}

type intervalState struct {
	aggs           []*Aggregation
	n              int
	bucketDuration time.Duration
	buckets        []*intervalBucket // oldest first, always n+1 of them
}

func newIntervalState(aggs []*Aggregation, w Interval, now time.Time) *intervalState {
	n := w.subintervals()
	s := &intervalState{
		aggs:           aggs,
		n:              n,
		bucketDuration: w.Duration / time.Duration(n),
	}
	s.rebuild(now)
	return s
}

// rebuild replaces all buckets with fresh ones, the newest starting at
// now.
func (s *intervalState) rebuild(now time.Time) {
	s.buckets = s.buckets[:0]
	for i := s.n; i >= 0; i-- {
		s.buckets = append(s.buckets, newIntervalBucket(now.Add(-time.Duration(i)*s.bucketDuration)))
	}
}

func (s *intervalState) newest() *intervalBucket { return s.buckets[len(s.buckets)-1] }

// refresh shifts buckets forward so that the newest one contains now.
// Time moving backwards is rejected, never silently reordered.
func (s *intervalState) refresh(now time.Time) error {
	newest := s.newest()
	if now.Before(newest.start) {
		return errInvalidArgumentf("time went backwards: %v is before bucket start %v", now, newest.start)
	}
	elapsed := now.Sub(newest.start)
	if elapsed < s.bucketDuration {
		return nil
	}
	shift := int(elapsed / s.bucketDuration)
	if shift > s.n {
		// everything expired; start over anchored at now
		s.rebuild(now)
		return nil
	}
	for i := 0; i < shift; i++ {
		s.buckets = append(s.buckets, newIntervalBucket(s.newest().start.Add(s.bucketDuration)))
	}
	s.buckets = s.buckets[shift:]
	return nil
}

func (s *intervalState) record(values []string, v float64, now time.Time) error {
	if err := s.refresh(now); err != nil {
		return err
	}
	b := s.newest()
	k := rowKey(values)
	r, ok := b.rows[k]
	if !ok {
		r = newRow(values, s.aggs)
		b.rows[k] = r
	}
	r.add(v)
	return nil
}

// snapshot folds the buckets into fresh accumulators per tag vector: the
// head bucket weighted by the fraction of it still covered by the window,
// every other bucket whole. The tail bucket's partial progress is already
// reflected in that head fraction.
func (s *intervalState) snapshot(now time.Time) ([]*Row, time.Time, error) {
	if err := s.refresh(now); err != nil {
		return nil, time.Time{}, err
	}
	tailFraction := float64(now.Sub(s.newest().start)) / float64(s.bucketDuration)
	headFraction := 1 - tailFraction

	// union of tag vectors across all buckets
	union := make(map[string][]string)
	for _, b := range s.buckets {
		for k, r := range b.rows {
			if _, ok := union[k]; !ok {
				union[k] = r.values
			}
		}
	}

	rows := make([]*Row, 0, len(union))
	for _, k := range sortedKeys(union) {
		combined := newRow(union[k], s.aggs)
		for bi, b := range s.buckets {
			r, ok := b.rows[k]
			if !ok {
				continue
			}
			fraction := 1.0
			if bi == 0 {
				fraction = headFraction
			}
			for ai, m := range combined.aggs {
				if err := m.combine(r.aggs[ai], fraction); err != nil {
					return nil, time.Time{}, err
				}
			}
		}
		rows = append(rows, combined.snapshot())
	}
	return rows, time.Time{}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
