// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package eventqueue

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcEntry func()

func (f funcEntry) Process() { f() }

func queues(capacity int) map[string]Queue {
	return map[string]Queue{
		"simple": NewSimple(capacity),
		"ring":   NewRing(capacity),
	}
}

func TestQueueFIFO(t *testing.T) {
	for name, q := range queues(8) {
		t.Run(name, func(t *testing.T) {
			var got []int
			for i := 0; i < 5; i++ {
				i := i
				dropped := q.Enqueue(funcEntry(func() { got = append(got, i) }))
				assert.Equal(t, 0, dropped)
			}
			assert.Equal(t, 5, q.Len())
			for {
				e := q.Dequeue()
				if e == nil {
					break
				}
				e.Process()
			}
			assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	for name, q := range queues(4) {
		t.Run(name, func(t *testing.T) {
			var got []int
			dropped := 0
			for i := 0; i < 10; i++ {
				i := i
				dropped += q.Enqueue(funcEntry(func() { got = append(got, i) }))
			}
			assert.Equal(t, 6, dropped)
			assert.Equal(t, 4, q.Len())
			for e := q.Dequeue(); e != nil; e = q.Dequeue() {
				e.Process()
			}
			// the oldest six were evicted
			assert.Equal(t, []int{6, 7, 8, 9}, got)
		})
	}
}

func TestQueueDequeueEmpty(t *testing.T) {
	for name, q := range queues(4) {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, q.Dequeue())
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestRingCapacityRounding(t *testing.T) {
	r := NewRing(100)
	assert.Equal(t, 128, len(r.slots))
	r = NewRing(0)
	assert.Equal(t, DefaultCapacity, len(r.slots))
}

type taggedEntry struct {
	producer int
	seq      int
	sink     func(taggedEntry)
}

func (e taggedEntry) Process() { e.sink(e) }

func TestWorkerPerProducerOrdering(t *testing.T) {
	const producers = 2
	const perProducer = 1000

	var mu sync.Mutex
	received := make(map[int][]int)
	done := make(chan struct{})
	total := 0
	sink := func(e taggedEntry) {
		mu.Lock()
		received[e.producer] = append(received[e.producer], e.seq)
		total++
		if total == producers*perProducer {
			close(done)
		}
		mu.Unlock()
	}

	w := NewWorker(NewRing(producers * perProducer))
	w.Start()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				w.Enqueue(taggedEntry{producer: p, seq: i, sink: sink})
			}
		}(p)
	}
	wg.Wait()
	<-done
	w.Stop()

	assert.Equal(t, uint64(producers*perProducer), w.Enqueued())
	assert.Equal(t, uint64(0), w.Dropped())
	for p := 0; p < producers; p++ {
		seqs := received[p]
		require.Len(t, seqs, perProducer, "producer %d", p)
		for i, s := range seqs {
			require.Equal(t, i, s, "producer %d out of order at %d", p, i)
		}
	}
}

func TestWorkerDrainsOnStop(t *testing.T) {
	var mu sync.Mutex
	var processed int

	w := NewWorker(NewSimple(64))
	for i := 0; i < 50; i++ {
		w.Enqueue(funcEntry(func() {
			mu.Lock()
			processed++
			mu.Unlock()
		}))
	}
	// the worker starts after everything is queued; Stop must still drain
	w.Start()
	w.Stop()
	assert.Equal(t, 50, processed)
}

func TestWorkerRecoversHandlerPanic(t *testing.T) {
	var processed int
	w := NewWorker(NewSimple(8))
	w.Start()
	w.Enqueue(funcEntry(func() { panic("bad handler") }))
	w.Enqueue(funcEntry(func() { processed++ }))
	w.Stop()
	assert.Equal(t, 1, processed)
	assert.Equal(t, uint64(1), w.HandlerPanics())
}

func TestWorkerDropCounter(t *testing.T) {
	w := NewWorker(NewSimple(4))
	for i := 0; i < 10; i++ {
		w.Enqueue(funcEntry(func() {}))
	}
	assert.Equal(t, uint64(10), w.Enqueued())
	assert.Equal(t, uint64(6), w.Dropped())
	w.Start()
	w.Stop()
}

func TestWorkerStopIdempotent(t *testing.T) {
	w := NewWorker(NewSimple(4))
	w.Start()
	w.Stop()
	w.Stop()
}

func BenchmarkRingEnqueue(b *testing.B) {
	q := NewRing(1 << 16)
	e := funcEntry(func() {})
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q.Enqueue(e)
		}
	})
}

func BenchmarkWorkerEnqueue(b *testing.B) {
	w := NewWorker(NewRing(1 << 16))
	w.Start()
	defer w.Stop()
	e := funcEntry(func() {})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Enqueue(e)
	}
}

func ExampleWorker() {
	w := NewWorker(NewSimple(16))
	w.Start()
	done := make(chan struct{})
	w.Enqueue(funcEntry(func() {
		fmt.Println("processed")
		close(done)
	}))
	<-done
	w.Stop()
	// Output: processed
}
