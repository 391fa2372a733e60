// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package tags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	for _, tt := range []struct {
		name string
		in   string
		ok   bool
	}{
		{"simple", "method", true},
		{"max length", strings.Repeat("k", 255), true},
		{"empty", "", false},
		{"too long", strings.Repeat("k", 256), false},
		{"non printable", "a\tb", false},
		{"non ascii", "clé", false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewKey(tt.in)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.in, k.Name())
			} else {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			}
		})
	}
}

func TestBuilderPutRemove(t *testing.T) {
	assert := assert.New(t)
	k1 := MustNewKey("k1")
	k2 := MustNewKey("k2")

	m, err := NewBuilder(nil).Put(k1, "v1").Put(k2, "v2").Build()
	require.NoError(t, err)
	assert.Equal(2, m.Len())

	v, ok := m.Value(k1)
	assert.True(ok)
	assert.Equal("v1", v)

	m2, err := NewBuilder(m).Remove(k1).Put(k2, "v2b").Build()
	require.NoError(t, err)
	_, ok = m2.Value(k1)
	assert.False(ok)
	v, _ = m2.Value(k2)
	assert.Equal("v2b", v)

	// the parent map is untouched
	v, _ = m.Value(k2)
	assert.Equal("v2", v)
}

func TestBuilderRoundTrip(t *testing.T) {
	k1 := MustNewKey("k1")
	k2 := MustNewKey("k2")
	m, err := NewBuilder(nil).Put(k1, "a").Put(k2, "b").Build()
	require.NoError(t, err)

	copied, err := NewBuilder(m).Build()
	require.NoError(t, err)
	assert.True(t, m.Equal(copied))
	assert.True(t, copied.Equal(m))
}

func TestMapEqualityIgnoresOrder(t *testing.T) {
	k1 := MustNewKey("k1")
	k2 := MustNewKey("k2")
	a, err := NewBuilder(nil).Put(k1, "x").Put(k2, "y").Build()
	require.NoError(t, err)
	b, err := NewBuilder(nil).Put(k2, "y").Put(k1, "x").Build()
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.String(), b.String())
}

func TestBuilderInvalidValue(t *testing.T) {
	k := MustNewKey("k")
	_, err := NewBuilder(nil).Put(k, strings.Repeat("v", 256)).Build()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewBuilder(nil).Put(k, "bad\x00value").Build()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// empty values are permitted
	m, err := NewBuilder(nil).Put(k, "").Build()
	require.NoError(t, err)
	v, ok := m.Value(k)
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, 0, Empty().Len())
	m, err := NewBuilder(Empty()).Build()
	require.NoError(t, err)
	assert.True(t, m.Equal(Empty()))
}
