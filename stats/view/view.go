// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package view

import (
	"time"

	"github.com/DataDog/census-go/stats"
	"github.com/DataDog/census-go/tags"
)

// maxNameLength bounds view names.
const maxNameLength = 256

// Window selects the time semantics of a view's aggregation.
type Window interface {
	isWindow()
	validate() error
}

// Cumulative aggregates from view registration onwards; snapshots never
// reset the accumulated state.
type Cumulative struct{}

func (Cumulative) isWindow()       {}
func (Cumulative) validate() error { return nil }

// Interval bounds of the subinterval count.
const (
	DefaultSubintervals = 4
	minSubintervals     = 2
	maxSubintervals     = 20
)

// Interval aggregates over a sliding window of the given duration,
// tracked as Subintervals+1 time buckets. A zero Subintervals means
// DefaultSubintervals.
type Interval struct {
	Duration     time.Duration
	Subintervals int
}

func (Interval) isWindow() {}

func (w Interval) validate() error {
	if w.Duration <= 0 {
		return errInvalidArgumentf("interval duration must be positive, got %v", w.Duration)
	}
	n := w.subintervals()
	if n < minSubintervals || n > maxSubintervals {
		return errInvalidArgumentf("interval subintervals must be in [%d, %d], got %d", minSubintervals, maxSubintervals, n)
	}
	return nil
}

func (w Interval) subintervals() int {
	if w.Subintervals == 0 {
		return DefaultSubintervals
	}
	return w.Subintervals
}

// View declares how one measure is aggregated: which summary statistics
// to keep, which tag keys partition the data into cells, and over what
// time window.
type View struct {
	Name        string
	Description string

	// Measure is the measure this view subscribes to.
	Measure stats.Measure

	// Aggregations are the statistics maintained per tag vector. Each
	// cell holds one accumulator per aggregation, in this order.
	Aggregations []*Aggregation

	// TagKeys are the columns: the tag keys whose values partition
	// recorded values into cells. A key missing from a recorded tag map
	// is represented by UnsetTagValue.
	TagKeys []tags.Key

	// Window defaults to Cumulative when nil.
	Window Window
}

func (v *View) window() Window {
	if v.Window == nil {
		return Cumulative{}
	}
	return v.Window
}

func (v *View) validate() error {
	if !validViewName(v.Name) {
		return errInvalidArgumentf("view name %q must be 1-%d printable ASCII characters", v.Name, maxNameLength)
	}
	if v.Measure == nil {
		return errInvalidArgumentf("view %q has no measure", v.Name)
	}
	if len(v.Aggregations) == 0 {
		return errInvalidArgumentf("view %q has no aggregations", v.Name)
	}
	seen := make(map[string]bool, len(v.TagKeys))
	for _, k := range v.TagKeys {
		if k == (tags.Key{}) {
			return errInvalidArgumentf("view %q has a zero tag key", v.Name)
		}
		if seen[k.Name()] {
			return errInvalidArgumentf("view %q repeats tag key %q", v.Name, k.Name())
		}
		seen[k.Name()] = true
	}
	if err := v.window().validate(); err != nil {
		return err
	}
	if _, ok := v.window().(Interval); ok {
		for _, a := range v.Aggregations {
			if !a.supportsFractionalCombine() {
				return errUnsupportedf("aggregation %s cannot be used with an interval window", a.Type)
			}
		}
	}
	return nil
}

// equal reports whether two views are semantically identical, which makes
// re-registration a no-op.
func (v *View) equal(o *View) bool {
	if v.Name != o.Name || v.Description != o.Description {
		return false
	}
	if v.Measure == nil || o.Measure == nil || v.Measure.Name() != o.Measure.Name() {
		return false
	}
	if len(v.Aggregations) != len(o.Aggregations) || len(v.TagKeys) != len(o.TagKeys) {
		return false
	}
	for i := range v.Aggregations {
		if !v.Aggregations[i].equal(o.Aggregations[i]) {
			return false
		}
	}
	for i := range v.TagKeys {
		if v.TagKeys[i] != o.TagKeys[i] {
			return false
		}
	}
	return v.window() == o.window()
}

func validViewName(s string) bool {
	if len(s) == 0 || len(s) > maxNameLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] > 126 {
			return false
		}
	}
	return true
}
