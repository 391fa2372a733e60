// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package trace

import (
	"encoding/binary"

	"golang.org/x/time/rate"
)

// SamplingParameters is the information a Sampler may consult when
// deciding whether to sample a new span.
type SamplingParameters struct {
	ParentContext   *SpanContext
	TraceID         TraceID
	SpanID          SpanID
	Name            string
	HasRemoteParent bool
}

// SamplingDecision is the value returned by a Sampler.
type SamplingDecision struct {
	Sample bool
}

// Sampler decides whether a new span should be sampled for export.
type Sampler func(SamplingParameters) SamplingDecision

// AlwaysSample returns a Sampler that samples every span.
func AlwaysSample() Sampler {
	return func(SamplingParameters) SamplingDecision {
		return SamplingDecision{Sample: true}
	}
}

// NeverSample returns a Sampler that samples no span.
func NeverSample() Sampler {
	return func(SamplingParameters) SamplingDecision {
		return SamplingDecision{Sample: false}
	}
}

// ProbabilitySampler returns a Sampler that samples the given fraction of
// traces. The decision is a deterministic function of the trace ID, so all
// spans of a trace get the same verdict and samplers with a larger
// fraction sample a superset of those with a smaller one. Fractions are
// clamped to [0, 1].
func ProbabilitySampler(fraction float64) Sampler {
	if fraction >= 1 {
		return AlwaysSample()
	}
	if fraction <= 0 {
		return NeverSample()
	}
	bound := uint64(fraction * float64(1<<63))
	return func(p SamplingParameters) SamplingDecision {
		if p.ParentContext != nil && p.ParentContext.IsSampled() {
			return SamplingDecision{Sample: true}
		}
		x := binary.BigEndian.Uint64(p.TraceID[8:16]) >> 1
		return SamplingDecision{Sample: x < bound}
	}
}

// RateLimitedSampler returns a Sampler that admits at most spansPerSecond
// new sampled traces per second, using a token bucket with a burst of one
// second's worth of tokens. Spans with a sampled parent are always kept so
// traces are not torn apart by the limiter.
func RateLimitedSampler(spansPerSecond float64) Sampler {
	if spansPerSecond <= 0 {
		return NeverSample()
	}
	burst := int(spansPerSecond)
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(spansPerSecond), burst)
	return func(p SamplingParameters) SamplingDecision {
		if p.ParentContext != nil && p.ParentContext.IsSampled() {
			return SamplingDecision{Sample: true}
		}
		return SamplingDecision{Sample: limiter.Allow()}
	}
}
