// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

// Package trace implements span recording: bounded in-memory capture of
// attributes, annotations, message events and links on live spans, span
// snapshots for exporters, and the sampled span store used for in-process
// debugging.
package trace

import (
	"context"
	"sync"
	"time"

	"github.com/DataDog/census-go/clock"
	"github.com/DataDog/census-go/internal/log"
)

// StartEndHandler receives callbacks when spans start and end. Both
// methods run on the goroutine driving the span, so implementations must
// be fast and safe for concurrent use.
type StartEndHandler interface {
	OnStart(s *Span)
	OnEnd(s *Span)
}

// Tracer creates spans and owns the pieces shared by all of them: limits,
// the ID generator, the sampled span store and the exporter set.
type Tracer struct {
	mu     sync.RWMutex
	params TraceParams

	clock   clock.Clock
	idGen   IDGenerator
	store   *SampledSpanStore
	handler StartEndHandler

	exporterMu sync.RWMutex
	exporters  map[Exporter]struct{}
}

// TracerOption configures a Tracer.
type TracerOption func(*Tracer)

// WithClock sets the tracer's time source.
func WithClock(c clock.Clock) TracerOption {
	return func(t *Tracer) { t.clock = c }
}

// WithIDGenerator sets the source of trace and span IDs.
func WithIDGenerator(gen IDGenerator) TracerOption {
	return func(t *Tracer) { t.idGen = gen }
}

// WithTraceParams sets the per-span limits and the default sampler.
func WithTraceParams(p TraceParams) TracerOption {
	return func(t *Tracer) { t.params = p }
}

// WithStartEndHandler installs an additional handler invoked after the
// tracer's own span-store and exporter processing.
func WithStartEndHandler(h StartEndHandler) TracerOption {
	return func(t *Tracer) { t.handler = h }
}

// NewTracer returns a Tracer, or an error if the configured trace
// parameters are invalid.
func NewTracer(opts ...TracerOption) (*Tracer, error) {
	t := &Tracer{
		params:    DefaultTraceParams(),
		clock:     clock.New(),
		idGen:     newDefaultIDGenerator(),
		exporters: make(map[Exporter]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.params.validate(); err != nil {
		return nil, err
	}
	t.store = newSampledSpanStore()
	return t, nil
}

// ApplyTraceParams replaces the tracer's limits and default sampler.
// Spans already started keep the limits they were created with.
func (t *Tracer) ApplyTraceParams(p TraceParams) error {
	if err := p.validate(); err != nil {
		return err
	}
	t.mu.Lock()
	t.params = p
	t.mu.Unlock()
	return nil
}

// TraceParams returns the current limits and default sampler.
func (t *Tracer) TraceParams() TraceParams {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.params
}

// SampledSpanStore returns the tracer's sampled span store.
func (t *Tracer) SampledSpanStore() *SampledSpanStore { return t.store }

// StartSpan starts a new span. The name must be nonempty; parentage is
// set through WithParent or WithRemoteParent, and the sampling decision
// follows the rules documented on StartOptions.
func (t *Tracer) StartSpan(name string, opts ...StartOption) (*Span, error) {
	if name == "" {
		return nil, errInvalidArgumentf("span name must not be empty")
	}
	var o StartOptions
	for _, opt := range opts {
		opt(&o)
	}
	params := t.TraceParams()

	sc := SpanContext{SpanID: t.idGen.NewSpanID()}
	if o.Parent != nil {
		sc.TraceID = o.Parent.TraceID
		sc.TraceOptions = o.Parent.TraceOptions
	} else {
		sc.TraceID = t.idGen.NewTraceID()
	}

	// A local parent's decision is inherited unless a sampler is forced;
	// root spans and remote parents always get a fresh decision.
	if o.Parent == nil || o.HasRemoteParent || o.Sampler != nil {
		sampler := params.DefaultSampler
		if o.Sampler != nil {
			sampler = o.Sampler
		}
		d := sampler(SamplingParameters{
			ParentContext:   o.Parent,
			TraceID:         sc.TraceID,
			SpanID:          sc.SpanID,
			Name:            name,
			HasRemoteParent: o.HasRemoteParent,
		})
		sc.TraceOptions = sc.TraceOptions.WithSampled(d.Sample)
	}

	s := &Span{
		tracer:          t,
		context:         sc,
		name:            name,
		hasRemoteParent: o.HasRemoteParent,
		clock:           t.clock,
		startNanos:      t.clock.NowNanos(),
	}
	if o.Parent != nil {
		s.parentSpanID = o.Parent.SpanID
		s.hasParent = true
	}
	recording := o.RecordEvents || sc.IsSampled() || t.store.isRegistered(name)
	if recording {
		s.converter = clock.NewConverter(t.clock)
		s.attributes = newLruMap(params.MaxAttributes)
		s.annotations = newEvictedQueue[timedAnnotation](params.MaxAnnotations)
		s.messageEvents = newEvictedQueue[timedMessageEvent](params.MaxMessageEvents)
		s.links = newEvictedQueue[Link](params.MaxLinks)
	}

	t.store.onStart(s)
	if h := t.handler; h != nil {
		h.OnStart(s)
	}
	return s, nil
}

// StartChild starts a local child of s, inheriting its sampling decision
// unless a sampler option overrides it.
func (s *Span) StartChild(name string, opts ...StartOption) (*Span, error) {
	if s == nil || s.tracer == nil {
		return nil, errInvalidStatef("span has no tracer")
	}
	child, err := s.tracer.StartSpan(name, append(opts, WithParent(s.context))...)
	if err != nil {
		return nil, err
	}
	s.addChild()
	return child, nil
}

type contextKey struct{}

// NewContext returns a context carrying s as the ambient span. This is a
// convenience for plumbing; the explicit StartSpan options remain the
// primary way to express parentage.
func NewContext(parent context.Context, s *Span) context.Context {
	return context.WithValue(parent, contextKey{}, s)
}

// FromContext returns the span stored in ctx, or nil.
func FromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(contextKey{}).(*Span)
	return s
}

// timedAnnotation pairs an annotation with the monotonic reading at which
// it was recorded.
type timedAnnotation struct {
	nanos      int64
	annotation Annotation
}

type timedMessageEvent struct {
	nanos int64
	event MessageEvent
}

// Span is a live recording of one named, timed operation. All mutators
// are safe for concurrent use; a single lock per span serializes them.
// After End, mutators become no-ops.
type Span struct {
	tracer *Tracer

	// immutable identity
	context         SpanContext
	parentSpanID    SpanID
	hasParent       bool
	hasRemoteParent bool
	name            string
	clock           clock.Clock
	converter       *clock.Converter
	startNanos      int64

	mu            sync.Mutex
	attributes    *lruMap
	annotations   *evictedQueue[timedAnnotation]
	messageEvents *evictedQueue[timedMessageEvent]
	links         *evictedQueue[Link]
	status        Status
	hasStatus     bool
	endNanos      int64
	ended         bool
	childCount    int
}

// Context returns the span's SpanContext. It remains valid after End.
func (s *Span) Context() SpanContext {
	if s == nil {
		return SpanContext{}
	}
	return s.context
}

// Name returns the span's name.
func (s *Span) Name() string { return s.name }

// IsRecordingEvents reports whether the span stores recorded events. When
// false, all mutators are no-ops; use this to skip computing expensive
// attributes.
func (s *Span) IsRecordingEvents() bool {
	return s != nil && s.attributes != nil
}

// HasEnded reports whether End has been called.
func (s *Span) HasEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// AddAttributes merges the given attributes into the span's bounded
// attribute map. When the map is over capacity the least-recently-touched
// key is evicted.
func (s *Span) AddAttributes(attrs map[string]AttributeValue) {
	if !s.IsRecordingEvents() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		log.Debug("AddAttributes on ended span %q", s.name)
		return
	}
	for k, v := range attrs {
		s.attributes.add(k, v)
	}
}

// Attribute returns the current value of key, refreshing its recency in
// the bounded map.
func (s *Span) Attribute(key string) (AttributeValue, bool) {
	if !s.IsRecordingEvents() {
		return AttributeValue{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attributes.get(key)
}

// AddAnnotation appends a text annotation with optional attributes.
func (s *Span) AddAnnotation(message string, attrs map[string]AttributeValue) {
	if !s.IsRecordingEvents() {
		return
	}
	nanos := s.clock.NowNanos()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		log.Debug("AddAnnotation on ended span %q", s.name)
		return
	}
	s.annotations.add(timedAnnotation{
		nanos:      nanos,
		annotation: Annotation{Message: message, Attributes: attrs},
	})
}

// AddMessageEvent appends a message event. The event's Time field is
// ignored; the span stamps the event itself.
func (s *Span) AddMessageEvent(ev MessageEvent) {
	if !s.IsRecordingEvents() {
		return
	}
	nanos := s.clock.NowNanos()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		log.Debug("AddMessageEvent on ended span %q", s.name)
		return
	}
	s.messageEvents.add(timedMessageEvent{nanos: nanos, event: ev})
}

// AddMessageSendEvent appends a SENT message event.
func (s *Span) AddMessageSendEvent(messageID, uncompressedByteSize, compressedByteSize int64) {
	s.AddMessageEvent(MessageEvent{
		Type:                 MessageEventTypeSent,
		MessageID:            messageID,
		UncompressedByteSize: uncompressedByteSize,
		CompressedByteSize:   compressedByteSize,
	})
}

// AddMessageReceiveEvent appends a RECEIVED message event.
func (s *Span) AddMessageReceiveEvent(messageID, uncompressedByteSize, compressedByteSize int64) {
	s.AddMessageEvent(MessageEvent{
		Type:                 MessageEventTypeReceived,
		MessageID:            messageID,
		UncompressedByteSize: uncompressedByteSize,
		CompressedByteSize:   compressedByteSize,
	})
}

// AddLink appends a link to another span.
func (s *Span) AddLink(l Link) {
	if !s.IsRecordingEvents() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		log.Debug("AddLink on ended span %q", s.name)
		return
	}
	s.links.add(l)
}

// SetStatus sets the status the span will end with, unless End overrides
// it.
func (s *Span) SetStatus(st Status) {
	if !s.IsRecordingEvents() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		log.Debug("SetStatus on ended span %q", s.name)
		return
	}
	s.status = st
	s.hasStatus = true
}

// addChild bumps the child span counter.
func (s *Span) addChild() {
	if !s.IsRecordingEvents() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		s.childCount++
	}
}

// End freezes the span: it resolves the final status (explicit option,
// then SetStatus value, then OK), stamps the end time, and hands the span
// to the sampled span store and the registered exporters. Only the first
// call has any effect.
func (s *Span) End(opts ...EndOption) {
	if s == nil {
		return
	}
	var o EndOptions
	for _, opt := range opts {
		opt(&o)
	}
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		log.Debug("End on ended span %q", s.name)
		return
	}
	if o.Status != nil {
		s.status = *o.Status
		s.hasStatus = true
	} else if !s.hasStatus {
		s.status = Status{Code: StatusCodeOK}
		s.hasStatus = true
	}
	s.endNanos = s.clock.NowNanos()
	if s.endNanos < s.startNanos {
		s.endNanos = s.startNanos
	}
	s.ended = true
	s.mu.Unlock()

	t := s.tracer
	if t == nil {
		return
	}
	t.store.onEnd(s)
	if s.IsRecordingEvents() && s.context.IsSampled() {
		if sd, err := s.SpanData(); err == nil {
			t.exportSpan(sd)
		}
	}
	if h := t.handler; h != nil {
		h.OnEnd(s)
	}
}

// latency returns the monotonic duration of an ended span.
func (s *Span) latency() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.endNanos - s.startNanos)
}

// finalStatus returns the status of an ended span.
func (s *Span) finalStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SpanData returns a frozen snapshot of the span. Monotonic readings are
// converted to wall-clock timestamps through the span's converter, so the
// snapshot's event times order exactly as they were recorded. Calling it
// on a span that does not record events is a state error.
func (s *Span) SpanData() (*SpanData, error) {
	if s == nil || !s.IsRecordingEvents() {
		return nil, errInvalidStatef("span is not recording events")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sd := &SpanData{
		SpanContext:     s.context,
		HasRemoteParent: s.hasRemoteParent,
		Name:            s.name,
		StartTime:       s.converter.ToTime(s.startNanos),
		ChildSpanCount:  s.childCount,
	}
	if s.hasParent {
		sd.ParentSpanID = s.parentSpanID
	}
	if s.attributes.len() > 0 {
		sd.Attributes = s.attributes.toMap()
	}
	sd.DroppedAttributeCount = s.attributes.droppedCount()
	for _, ta := range s.annotations.items() {
		a := ta.annotation
		a.Time = s.converter.ToTime(ta.nanos)
		sd.Annotations = append(sd.Annotations, a)
	}
	sd.DroppedAnnotationCount = s.annotations.droppedCount()
	for _, te := range s.messageEvents.items() {
		ev := te.event
		ev.Time = s.converter.ToTime(te.nanos)
		sd.MessageEvents = append(sd.MessageEvents, ev)
	}
	sd.DroppedMessageEventCount = s.messageEvents.droppedCount()
	sd.Links = s.links.items()
	sd.DroppedLinkCount = s.links.droppedCount()
	if s.ended {
		sd.EndTime = s.converter.ToTime(s.endNanos)
		st := s.status
		sd.Status = &st
	}
	return sd, nil
}
