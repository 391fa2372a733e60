// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package eventqueue

import "sync/atomic"

// DefaultCapacity is the queue capacity used when none is configured.
const DefaultCapacity = 4096

// Ring is a lock-free bounded MPSC queue. Producers claim slots by CAS on
// a head sequence; the single consumer releases them through a tail
// sequence. Each slot carries its own sequence number so that publication
// of the entry happens-before the consumer reads it.
//
// Slot states, for a ring of capacity c at sequence number n:
//
//	seq == n     free, writable by the producer that claims n
//	seq == n+1   published, readable by the consumer
//	seq == n+c   consumed, free again for sequence n+c
//
// When the ring is full a producer advances the tail itself, dropping the
// oldest pending entry, so Enqueue never blocks and never fails.
type Ring struct {
	slots []ringSlot
	mask  uint64
	head  atomic.Uint64
	tail  atomic.Uint64
}

type ringSlot struct {
	seq atomic.Uint64
	e   Entry
}

var _ Queue = (*Ring)(nil)

// NewRing returns a Ring with the given capacity rounded up to a power of
// two.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := 1
	for c < capacity {
		c <<= 1
	}
	r := &Ring{slots: make([]ringSlot, c), mask: uint64(c - 1)}
	for i := range r.slots {
		r.slots[i].seq.Store(uint64(i))
	}
	return r
}

// Enqueue implements Queue.
func (r *Ring) Enqueue(e Entry) (dropped int) {
	c := uint64(len(r.slots))
	for {
		h := r.head.Load()
		s := &r.slots[h&r.mask]
		seq := s.seq.Load()
		switch {
		case seq == h:
			if r.head.CompareAndSwap(h, h+1) {
				s.e = e
				s.seq.Store(h + 1)
				return dropped
			}
		case seq < h:
			// slot still holds sequence h-c: the ring is full. Make
			// room by retiring the oldest pending entry ourselves.
			t := r.tail.Load()
			if t+c <= h && r.tail.CompareAndSwap(t, t+1) {
				ds := &r.slots[t&r.mask]
				ds.e = nil
				ds.seq.Store(t + c)
				dropped++
			}
		default:
			// another producer published past us; reload head
		}
	}
}

// Dequeue implements Queue.
func (r *Ring) Dequeue() Entry {
	c := uint64(len(r.slots))
	for {
		t := r.tail.Load()
		s := &r.slots[t&r.mask]
		seq := s.seq.Load()
		if seq == t {
			return nil
		}
		if seq == t+1 {
			e := s.e
			if r.tail.CompareAndSwap(t, t+1) {
				s.e = nil
				s.seq.Store(t + c)
				return e
			}
			// lost the slot to a producer dropping the oldest entry
			continue
		}
		// tail moved underneath us; retry with a fresh view
	}
}

// Len implements Queue.
func (r *Ring) Len() int {
	h := r.head.Load()
	t := r.tail.Load()
	if h < t {
		return 0
	}
	if n := h - t; n <= uint64(len(r.slots)) {
		return int(n)
	}
	return len(r.slots)
}
