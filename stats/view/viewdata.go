// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package view

import (
	"strings"
	"time"
)

// UnsetTagValue is the sentinel cell coordinate used when a recorded tag
// map lacks one of the view's columns.
const UnsetTagValue = "unknown/not set"

// Row is one aggregation cell of a view snapshot: the tag values that
// identify it, aligned with the view's TagKeys, and one AggregationData
// per declared aggregation.
type Row struct {
	Values []string
	Data   []AggregationData
}

// Data is a snapshot of one view.
type Data struct {
	View *View
	Rows []*Row

	// Start is when the view started accumulating; zero for interval
	// windows, which only have an end.
	Start time.Time
	End   time.Time
}

// Row returns the row with the given tag values, or nil.
func (d *Data) Row(values ...string) *Row {
	for _, r := range d.Rows {
		if len(r.Values) != len(values) {
			continue
		}
		match := true
		for i := range values {
			if r.Values[i] != values[i] {
				match = false
				break
			}
		}
		if match {
			return r
		}
	}
	return nil
}

// rowKey encodes a tag vector as a map key. Tag values are printable
// ASCII, so NUL never collides with value bytes.
func rowKey(values []string) string {
	return strings.Join(values, "\x00")
}
