// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/census-go/clock"
	"github.com/DataDog/census-go/internal/eventqueue"
	"github.com/DataDog/census-go/tags"
)

type captureSink struct {
	mu      sync.Mutex
	batches [][]Measurement
	tags    []*tags.Map
	times   []time.Time
}

func (s *captureSink) Record(tm *tags.Map, ms []Measurement, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, ms)
	s.tags = append(s.tags, tm)
	s.times = append(s.times, now)
}

func (s *captureSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func TestRecorderDeliversBatch(t *testing.T) {
	m, err := Float64("census.io/recorder/m1", "d", UnitDimensionless)
	require.NoError(t, err)
	key := tags.MustNewKey("k")
	tm, err := tags.NewBuilder(nil).Put(key, "v").Build()
	require.NoError(t, err)

	sink := &captureSink{}
	mc := clock.NewManual(time.Unix(100, 0))
	w := eventqueue.NewWorker(eventqueue.NewSimple(16))
	r := NewRecorder(w, sink, mc)

	r.Record(tm, m.M(1), m.M(2))
	mc.Advance(time.Second)
	w.Start()
	w.Stop()

	require.Equal(t, 1, sink.len())
	require.Len(t, sink.batches[0], 2)
	assert.Equal(t, 1.0, sink.batches[0][0].Value())
	assert.Equal(t, 2.0, sink.batches[0][1].Value())
	assert.True(t, tm.Equal(sink.tags[0]))
	// the record time is captured at enqueue, not at processing
	assert.Equal(t, time.Unix(100, 0), sink.times[0])
}

func TestRecorderEmptyBatchIsNoop(t *testing.T) {
	sink := &captureSink{}
	w := eventqueue.NewWorker(eventqueue.NewSimple(16))
	r := NewRecorder(w, sink, nil)
	r.Record(tags.Empty())
	w.Start()
	w.Stop()
	assert.Equal(t, 0, sink.len())
	assert.Equal(t, uint64(0), w.Enqueued())
}

func TestRecorderNilTagsBecomeEmpty(t *testing.T) {
	m, err := Float64("census.io/recorder/m2", "d", UnitDimensionless)
	require.NoError(t, err)
	sink := &captureSink{}
	w := eventqueue.NewWorker(eventqueue.NewSimple(16))
	r := NewRecorder(w, sink, nil)
	r.Record(nil, m.M(1))
	w.Start()
	w.Stop()
	require.Equal(t, 1, sink.len())
	assert.True(t, sink.tags[0].Equal(tags.Empty()))
}

func TestRecorderBatchCapturedByValue(t *testing.T) {
	m, err := Float64("census.io/recorder/m3", "d", UnitDimensionless)
	require.NoError(t, err)
	sink := &captureSink{}
	w := eventqueue.NewWorker(eventqueue.NewSimple(16))
	r := NewRecorder(w, sink, nil)

	ms := []Measurement{m.M(1)}
	r.Record(tags.Empty(), ms...)
	ms[0] = m.M(999) // mutating the caller's slice must not affect the entry
	w.Start()
	w.Stop()
	require.Equal(t, 1, sink.len())
	assert.Equal(t, 1.0, sink.batches[0][0].Value())
}

func TestRecorderOrderingAcrossRecords(t *testing.T) {
	m, err := Float64("census.io/recorder/m4", "d", UnitDimensionless)
	require.NoError(t, err)
	sink := &captureSink{}
	w := eventqueue.NewWorker(eventqueue.NewRing(64))
	w.Start()
	r := NewRecorder(w, sink, nil)
	for i := 0; i < 20; i++ {
		r.Record(tags.Empty(), m.M(float64(i)))
	}
	w.Stop()
	require.Equal(t, 20, sink.len())
	for i, b := range sink.batches {
		assert.Equal(t, float64(i), b[0].Value())
	}
}
