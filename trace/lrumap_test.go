// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package trace

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLruMapEviction(t *testing.T) {
	assert := assert.New(t)
	lm := newLruMap(32)
	for i := 0; i < 40; i++ {
		lm.add(fmt.Sprintf("k%d", i), Int64Attribute(int64(i)))
	}
	assert.Equal(32, lm.len())
	assert.Equal(8, lm.droppedCount())

	// k0..k7 were evicted, k8..k39 survive
	_, ok := lm.get("k7")
	assert.False(ok)
	_, ok = lm.get("k8")
	assert.True(ok)
}

func TestLruMapAccessRefreshesRecency(t *testing.T) {
	assert := assert.New(t)
	lm := newLruMap(32)
	for i := 0; i < 40; i++ {
		lm.add(fmt.Sprintf("k%d", i), Int64Attribute(int64(i)))
	}
	// touch k39, then overflow once more: the eviction victim is the
	// oldest untouched key (k8), not k39
	_, ok := lm.get("k39")
	assert.True(ok)
	lm.add("k40", Int64Attribute(40))

	_, ok = lm.get("k8")
	assert.False(ok)
	_, ok = lm.get("k39")
	assert.True(ok)
	assert.Equal(32, lm.len())
	assert.Equal(9, lm.droppedCount())
}

func TestLruMapOverwriteCountsTowardDropped(t *testing.T) {
	lm := newLruMap(4)
	lm.add("k", StringAttribute("a"))
	lm.add("k", StringAttribute("b"))
	assert.Equal(t, 1, lm.len())
	assert.Equal(t, 1, lm.droppedCount())
	v, ok := lm.get("k")
	assert.True(t, ok)
	assert.Equal(t, "b", v.StringValue())
}

func TestLruMapToMap(t *testing.T) {
	lm := newLruMap(4)
	lm.add("a", StringAttribute("x"))
	lm.add("b", BoolAttribute(true))
	m := lm.toMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "x", m["a"].StringValue())
	assert.Equal(t, true, m["b"].BoolValue())
}
