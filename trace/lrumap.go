// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package trace

import (
	lru "github.com/hashicorp/golang-lru/v2/simplelru"
)

// lruMap is the bounded attribute store of a span. Capacity is fixed;
// when exceeded, the least-recently-touched key is evicted. Both writes
// and reads refresh a key's recency. Not safe for concurrent use; the
// owning span's lock guards it.
type lruMap struct {
	cache      *lru.LRU[string, AttributeValue]
	totalAdded int
}

func newLruMap(capacity int) *lruMap {
	c, err := lru.NewLRU[string, AttributeValue](capacity, nil)
	if err != nil {
		// only reachable with capacity < 1, which TraceParams validation
		// already rejects
		panic(err)
	}
	return &lruMap{cache: c}
}

// add inserts or overwrites key. Every call counts toward totalAdded, so
// droppedCount() stays totalAdded - len even when an overwrite replaces a
// live entry.
func (lm *lruMap) add(key string, value AttributeValue) {
	lm.totalAdded++
	lm.cache.Add(key, value)
}

// get returns the value of key and refreshes its recency.
func (lm *lruMap) get(key string) (AttributeValue, bool) {
	return lm.cache.Get(key)
}

func (lm *lruMap) len() int { return lm.cache.Len() }

func (lm *lruMap) droppedCount() int { return lm.totalAdded - lm.cache.Len() }

// toMap copies the current contents without disturbing recency order.
func (lm *lruMap) toMap() map[string]AttributeValue {
	m := make(map[string]AttributeValue, lm.cache.Len())
	for _, k := range lm.cache.Keys() {
		if v, ok := lm.cache.Peek(k); ok {
			m[k] = v
		}
	}
	return m
}
