// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package stats

import (
	"time"

	"github.com/DataDog/census-go/clock"
	"github.com/DataDog/census-go/internal/eventqueue"
	"github.com/DataDog/census-go/tags"
)

// Sink consumes measurement batches on the event-queue worker goroutine.
// The aggregation engine implements it.
type Sink interface {
	Record(tm *tags.Map, ms []Measurement, now time.Time)
}

// Recorder packages a tag map and a measurement batch into an event-queue
// entry. Record never blocks on aggregation: the heavy lifting happens on
// the queue's worker goroutine.
type Recorder struct {
	worker *eventqueue.Worker
	sink   Sink
	clock  clock.Clock
}

// NewRecorder returns a Recorder feeding sink through worker.
func NewRecorder(worker *eventqueue.Worker, sink Sink, c clock.Clock) *Recorder {
	if c == nil {
		c = clock.New()
	}
	return &Recorder{worker: worker, sink: sink, clock: c}
}

// recordEntry captures the tag map by reference (maps are immutable) and
// the batch by value.
type recordEntry struct {
	sink Sink
	tm   *tags.Map
	ms   []Measurement
	now  time.Time
}

func (e *recordEntry) Process() {
	e.sink.Record(e.tm, e.ms, e.now)
}

// Record enqueues the batch of measurements against tm. The record time
// is captured here, so aggregation reflects when the measurement was
// taken, not when the worker got to it. An empty batch is a no-op.
func (r *Recorder) Record(tm *tags.Map, ms ...Measurement) {
	if len(ms) == 0 {
		return
	}
	if tm == nil {
		tm = tags.Empty()
	}
	r.worker.Enqueue(&recordEntry{
		sink: r.sink,
		tm:   tm,
		ms:   append([]Measurement(nil), ms...),
		now:  r.clock.Now(),
	})
}
