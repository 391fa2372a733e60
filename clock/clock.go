// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

// Package clock provides the time sources used by the census runtime: a
// wall clock, a monotonic nanosecond counter, and a converter that maps
// monotonic readings back to wall-clock timestamps.
package clock

import (
	"sync"
	"time"
)

// Clock produces wall-clock timestamps and monotonic nanosecond readings.
// The two are intentionally separate: wall time may jump, monotonic time
// may not, and recorded events order by the latter.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// NowNanos returns a monotonic nanosecond reading. Values are only
	// comparable to other readings from the same Clock.
	NowNanos() int64
}

// New returns a Clock backed by the system clock.
func New() Clock {
	return &systemClock{epoch: time.Now()}
}

type systemClock struct {
	epoch time.Time
}

func (c *systemClock) Now() time.Time { return time.Now() }

func (c *systemClock) NowNanos() int64 { return time.Since(c.epoch).Nanoseconds() }

// Converter maps monotonic readings from a Clock to wall-clock timestamps.
// It anchors the pair (wall, monotonic) once at creation; every conversion
// is an offset from that anchor, so timestamps derived through the same
// Converter preserve the monotonic order of the readings even if the wall
// clock is adjusted in between.
type Converter struct {
	wall  time.Time
	nanos int64
}

// NewConverter anchors a Converter against c.
func NewConverter(c Clock) *Converter {
	return &Converter{wall: c.Now(), nanos: c.NowNanos()}
}

// ToTime converts the monotonic reading nanos to a wall-clock timestamp.
func (tc *Converter) ToTime(nanos int64) time.Time {
	return tc.wall.Add(time.Duration(nanos - tc.nanos))
}

// Manual is a Clock whose time only moves when told to. Intended for tests.
type Manual struct {
	mu    sync.Mutex
	wall  time.Time
	nanos int64
}

var _ Clock = (*Manual)(nil)

// NewManual returns a Manual clock starting at the given wall time.
func NewManual(start time.Time) *Manual {
	return &Manual{wall: start}
}

// Now returns the current wall time of the manual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wall
}

// NowNanos returns the manual clock's monotonic reading.
func (m *Manual) NowNanos() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nanos
}

// Advance moves both the wall and monotonic readings forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = m.wall.Add(d)
	m.nanos += d.Nanoseconds()
}

// AdjustWall shifts only the wall clock, simulating an NTP step. The
// monotonic reading is unaffected.
func (m *Manual) AdjustWall(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = m.wall.Add(d)
}
