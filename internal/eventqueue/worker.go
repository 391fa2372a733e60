// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package eventqueue

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/DataDog/census-go/internal/log"
	"github.com/DataDog/datadog-go/v5/statsd"
)

// defaultFlushInterval is how often the worker reports its health counters
// and fires the periodic callback.
const defaultFlushInterval = time.Second

// Worker owns the single consumer goroutine of a Queue. Entries are
// processed in dequeue order; a panic inside an entry handler is recovered
// and counted, never propagated to producers. On Stop the worker drains
// every pending entry before exiting.
type Worker struct {
	q    Queue
	wake chan struct{}
	exit chan struct{}
	wg   sync.WaitGroup

	statsd        statsd.ClientInterface
	statsTags     []string
	flushInterval time.Duration
	onTick        func()

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	panics   atomic.Uint64

	flushedEnqueued uint64
	flushedDropped  uint64
	flushedPanics   uint64

	startOnce sync.Once
	stopOnce  sync.Once
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithStatsd sets the client used to report queue health metrics, tagged
// with the given tags.
func WithStatsd(client statsd.ClientInterface, tags ...string) WorkerOption {
	return func(w *Worker) {
		w.statsd = client
		w.statsTags = tags
	}
}

// WithTick installs fn to run on the worker goroutine every interval.
func WithTick(interval time.Duration, fn func()) WorkerOption {
	return func(w *Worker) {
		if interval > 0 {
			w.flushInterval = interval
		}
		w.onTick = fn
	}
}

// NewWorker returns a Worker consuming from q. Call Start to begin
// processing.
func NewWorker(q Queue, opts ...WorkerOption) *Worker {
	w := &Worker{
		q:             q,
		wake:          make(chan struct{}, 1),
		exit:          make(chan struct{}),
		statsd:        &statsd.NoOpClient{},
		flushInterval: defaultFlushInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enqueue hands e to the worker. It never blocks; if the queue is full the
// oldest pending entry is discarded and counted as dropped.
func (w *Worker) Enqueue(e Entry) {
	w.enqueued.Add(1)
	if n := w.q.Enqueue(e); n > 0 {
		w.dropped.Add(uint64(n))
	}
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Dropped returns the number of entries discarded due to overflow.
func (w *Worker) Dropped() uint64 { return w.dropped.Load() }

// Enqueued returns the number of entries handed to the worker.
func (w *Worker) Enqueued() uint64 { return w.enqueued.Load() }

// HandlerPanics returns the number of entry handlers that panicked.
func (w *Worker) HandlerPanics() uint64 { return w.panics.Load() }

// Start launches the consumer goroutine. Start is idempotent.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		w.wg.Add(1)
		go w.run()
	})
}

// Stop signals the consumer to drain pending entries and exit, then waits
// for it. Stop is idempotent.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.exit)
	})
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()
	for {
		w.drain()
		select {
		case <-w.wake:
		case <-ticker.C:
			w.flushMetrics()
			if w.onTick != nil {
				w.safeCall(w.onTick)
			}
		case <-w.exit:
			w.drain()
			w.flushMetrics()
			return
		}
	}
}

func (w *Worker) drain() {
	for {
		e := w.q.Dequeue()
		if e == nil {
			return
		}
		w.safeCall(e.Process)
	}
}

func (w *Worker) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.panics.Add(1)
			log.Error("event queue handler panic: %v", r)
		}
	}()
	fn()
}

// flushMetrics reports counter deltas since the previous flush. Only ever
// called from the worker goroutine.
func (w *Worker) flushMetrics() {
	report := func(name string, total uint64, flushed *uint64) {
		if delta := total - *flushed; delta > 0 {
			_ = w.statsd.Count(name, int64(delta), w.statsTags, 1)
			*flushed = total
		}
	}
	report("census.queue.enqueued", w.enqueued.Load(), &w.flushedEnqueued)
	report("census.queue.dropped", w.dropped.Load(), &w.flushedDropped)
	report("census.queue.handler_panics", w.panics.Load(), &w.flushedPanics)
}
