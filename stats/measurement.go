// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package stats

// Measurement is a single recorded value against a measure. Construct
// measurements with Float64Measure.M or Int64Measure.M.
type Measurement struct {
	m Measure
	v float64
}

// Measure returns the measure the value was recorded against.
func (m Measurement) Measure() Measure { return m.m }

// Value returns the recorded value. Int64 measurements are carried as the
// exact float64 representation of their value.
func (m Measurement) Value() float64 { return m.v }
