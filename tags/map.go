// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package tags

import (
	"fmt"
	"sort"
	"strings"
)

// Map is an immutable set of tags. The zero value is not valid; use Empty
// or a Builder. Once built, a Map is safe to share across goroutines and
// to capture by reference.
type Map struct {
	m map[Key]string
}

var emptyMap = &Map{m: map[Key]string{}}

// Empty returns the empty tag map.
func Empty() *Map { return emptyMap }

// Value returns the value of k and whether the map contains it.
func (m *Map) Value(k Key) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.m[k]
	return v, ok
}

// Len returns the number of tags in the map.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.m)
}

// Equal reports whether both maps hold the same tags, regardless of how
// they were built.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	if m == nil || other == nil {
		return true
	}
	for k, v := range m.m {
		if ov, ok := other.m[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Tags returns the map's tags. The order is unspecified.
func (m *Map) Tags() []Tag {
	if m == nil {
		return nil
	}
	ts := make([]Tag, 0, len(m.m))
	for k, v := range m.m {
		ts = append(ts, Tag{Key: k, Value: v})
	}
	return ts
}

// String returns a stable, sorted rendering of the map.
func (m *Map) String() string {
	ts := m.Tags()
	sort.Slice(ts, func(i, j int) bool { return ts[i].Key.Name() < ts[j].Key.Name() })
	var sb strings.Builder
	sb.WriteByte('{')
	for i, t := range ts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "{%s %s}", t.Key.Name(), t.Value)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Builder accumulates tag mutations and produces an immutable Map. Builds
// copy the parent map, so building is O(n) and the produced maps never
// alias each other.
type Builder struct {
	m   map[Key]string
	err error
}

// NewBuilder returns a Builder seeded with the tags of parent. A nil
// parent starts empty.
func NewBuilder(parent *Map) *Builder {
	b := &Builder{m: make(map[Key]string, parent.Len())}
	if parent != nil {
		for k, v := range parent.m {
			b.m[k] = v
		}
	}
	return b
}

// Put sets the value of k, replacing any previous value. An invalid value
// fails the final Build.
func (b *Builder) Put(k Key, value string) *Builder {
	if b.err != nil {
		return b
	}
	if k == (Key{}) {
		b.err = fmt.Errorf("%w: zero tag key", ErrInvalidArgument)
		return b
	}
	if !validValue(value) {
		b.err = fmt.Errorf("%w: tag value %q must be at most 255 printable ASCII characters", ErrInvalidArgument, value)
		return b
	}
	b.m[k] = value
	return b
}

// Remove deletes k from the map being built. Removing an absent key is a
// no-op.
func (b *Builder) Remove(k Key) *Builder {
	if b.err != nil {
		return b
	}
	delete(b.m, k)
	return b
}

// Build returns the accumulated Map, or the first error recorded by Put.
// The builder must not be reused afterwards.
func (b *Builder) Build() (*Map, error) {
	if b.err != nil {
		return nil, b.err
	}
	m := b.m
	b.m = nil
	return &Map{m: m}, nil
}
