// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package trace

// Default per-span storage limits.
const (
	DefaultMaxAttributes    = 32
	DefaultMaxAnnotations   = 32
	DefaultMaxMessageEvents = 128
	DefaultMaxLinks         = 128
)

// TraceParams bounds the per-span storage and carries the sampler used
// when a span is started without an explicit one.
type TraceParams struct {
	MaxAttributes    int
	MaxAnnotations   int
	MaxMessageEvents int
	MaxLinks         int
	DefaultSampler   Sampler
}

// DefaultTraceParams returns the limits used when none are configured.
// The default sampler keeps nothing; sampling is opt-in.
func DefaultTraceParams() TraceParams {
	return TraceParams{
		MaxAttributes:    DefaultMaxAttributes,
		MaxAnnotations:   DefaultMaxAnnotations,
		MaxMessageEvents: DefaultMaxMessageEvents,
		MaxLinks:         DefaultMaxLinks,
		DefaultSampler:   NeverSample(),
	}
}

func (p TraceParams) validate() error {
	for _, l := range []struct {
		name string
		v    int
	}{
		{"MaxAttributes", p.MaxAttributes},
		{"MaxAnnotations", p.MaxAnnotations},
		{"MaxMessageEvents", p.MaxMessageEvents},
		{"MaxLinks", p.MaxLinks},
	} {
		if l.v <= 0 {
			return errInvalidArgumentf("%s must be positive, got %d", l.name, l.v)
		}
	}
	if p.DefaultSampler == nil {
		return errInvalidArgumentf("DefaultSampler must not be nil")
	}
	return nil
}

// StartOptions control how a span is started.
type StartOptions struct {
	// Parent is the parent span context, if any.
	Parent *SpanContext

	// HasRemoteParent marks the parent as originating in another
	// process.
	HasRemoteParent bool

	// Sampler overrides the sampling decision for this span. When nil,
	// a local parent's decision is inherited and the tracer's default
	// sampler decides for root and remote-parent spans.
	Sampler Sampler

	// RecordEvents forces event recording even for unsampled spans.
	// Sampled spans and spans whose name is registered with the sampled
	// span store always record.
	RecordEvents bool
}

// StartOption applies a change to StartOptions.
type StartOption func(*StartOptions)

// WithParent starts the span as a local child of parent.
func WithParent(parent SpanContext) StartOption {
	return func(o *StartOptions) {
		o.Parent = &parent
		o.HasRemoteParent = false
	}
}

// WithRemoteParent starts the span as a child of a parent propagated from
// another process.
func WithRemoteParent(parent SpanContext) StartOption {
	return func(o *StartOptions) {
		o.Parent = &parent
		o.HasRemoteParent = true
	}
}

// WithSampler makes the span consult the given sampler regardless of the
// parent's decision.
func WithSampler(s Sampler) StartOption {
	return func(o *StartOptions) { o.Sampler = s }
}

// WithRecordEvents makes the span record events even when unsampled.
func WithRecordEvents() StartOption {
	return func(o *StartOptions) { o.RecordEvents = true }
}

// EndOptions control how a span is ended.
type EndOptions struct {
	// Status overrides the span's status. When nil, a status set via
	// SetStatus is kept, and OK is used otherwise.
	Status *Status
}

// EndOption applies a change to EndOptions.
type EndOption func(*EndOptions)

// WithStatus ends the span with the given status.
func WithStatus(s Status) EndOption {
	return func(o *EndOptions) { o.Status = &s }
}
