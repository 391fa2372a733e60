// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package trace

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"sync/atomic"
)

// IDGenerator produces trace and span identifiers. Implementations must be
// safe for concurrent use and must never return an all-zero ID.
type IDGenerator interface {
	NewTraceID() TraceID
	NewSpanID() SpanID
}

// defaultIDGenerator derives span IDs from an odd-increment counter and
// trace IDs from a seeded PRNG, both randomized once from crypto/rand.
type defaultIDGenerator struct {
	nextSpanID atomic.Uint64
	spanIDInc  uint64

	mu          sync.Mutex
	traceIDAdd  [2]uint64
	traceIDRand *rand.Rand
}

func newDefaultIDGenerator() *defaultIDGenerator {
	gen := &defaultIDGenerator{}
	var rngSeed int64
	var next uint64
	for _, p := range []interface{}{&rngSeed, &gen.traceIDAdd, &next, &gen.spanIDInc} {
		_ = binary.Read(crand.Reader, binary.LittleEndian, p)
	}
	gen.nextSpanID.Store(next)
	gen.traceIDRand = rand.New(rand.NewSource(rngSeed))
	gen.spanIDInc |= 1
	return gen
}

// NewSpanID returns a nonzero span ID from a randomly-seeded sequence.
func (gen *defaultIDGenerator) NewSpanID() SpanID {
	var id uint64
	for id == 0 {
		id = gen.nextSpanID.Add(gen.spanIDInc)
	}
	var sid SpanID
	binary.LittleEndian.PutUint64(sid[:], id)
	return sid
}

// NewTraceID returns a nonzero trace ID built from two PRNG outputs, each
// offset by a constant for extra entropy.
func (gen *defaultIDGenerator) NewTraceID() TraceID {
	var tid TraceID
	gen.mu.Lock()
	binary.LittleEndian.PutUint64(tid[0:8], gen.traceIDRand.Uint64()+gen.traceIDAdd[0])
	binary.LittleEndian.PutUint64(tid[8:16], gen.traceIDRand.Uint64()+gen.traceIDAdd[1])
	gen.mu.Unlock()
	for !tid.IsValid() {
		// astronomically unlikely; draw again rather than hand out an
		// invalid ID
		gen.mu.Lock()
		binary.LittleEndian.PutUint64(tid[0:8], gen.traceIDRand.Uint64())
		binary.LittleEndian.PutUint64(tid[8:16], gen.traceIDRand.Uint64())
		gen.mu.Unlock()
	}
	return tid
}
