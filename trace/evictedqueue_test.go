// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvictedQueue(t *testing.T) {
	assert := assert.New(t)
	q := newEvictedQueue[int](3)
	for i := 0; i < 5; i++ {
		q.add(i)
	}
	assert.Equal(3, q.len())
	assert.Equal(2, q.droppedCount())
	assert.Equal([]int{2, 3, 4}, q.items())
}

func TestEvictedQueueNoEviction(t *testing.T) {
	q := newEvictedQueue[string](4)
	q.add("a")
	q.add("b")
	assert.Equal(t, 2, q.len())
	assert.Equal(t, 0, q.droppedCount())
	assert.Equal(t, []string{"a", "b"}, q.items())
}

func TestEvictedQueueItemsIsACopy(t *testing.T) {
	q := newEvictedQueue[int](2)
	q.add(1)
	items := q.items()
	q.add(2)
	q.add(3)
	assert.Equal(t, []int{1}, items)
}
