// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

// Package census wires the telemetry runtime together: one clock, one
// event queue, one stats component and one trace component per
// Component, created in that order. A process-wide default Component can
// be installed once with Start.
package census

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/google/uuid"

	"github.com/DataDog/census-go/clock"
	"github.com/DataDog/census-go/internal/eventqueue"
	"github.com/DataDog/census-go/internal/log"
	"github.com/DataDog/census-go/stats"
	"github.com/DataDog/census-go/stats/view"
	"github.com/DataDog/census-go/trace"
)

// defaultReportingPeriod is how often view snapshots are delivered to
// registered view exporters.
const defaultReportingPeriod = 10 * time.Second

type config struct {
	clock           clock.Clock
	statsd          statsd.ClientInterface
	queueCapacity   int
	simpleQueue     bool
	traceParams     *trace.TraceParams
	intervalViews   bool
	reportingPeriod time.Duration
}

// Option configures a Component.
type Option func(*config)

// WithClock sets the time source shared by all subsystems.
func WithClock(c clock.Clock) Option {
	return func(cfg *config) { cfg.clock = c }
}

// WithStatsdClient sets the client used to report the runtime's own
// health metrics.
func WithStatsdClient(client statsd.ClientInterface) Option {
	return func(cfg *config) { cfg.statsd = client }
}

// WithQueueCapacity bounds the event queue. The default is
// eventqueue.DefaultCapacity.
func WithQueueCapacity(n int) Option {
	return func(cfg *config) { cfg.queueCapacity = n }
}

// WithSimpleQueue swaps the lock-free ring for the coarse-locked queue
// implementation. Intended for tests and debugging.
func WithSimpleQueue() Option {
	return func(cfg *config) { cfg.simpleQueue = true }
}

// WithTraceParams sets the per-span limits and default sampler.
func WithTraceParams(p trace.TraceParams) Option {
	return func(cfg *config) { cfg.traceParams = &p }
}

// WithIntervalViews enables interval-window view registration.
func WithIntervalViews() Option {
	return func(cfg *config) { cfg.intervalViews = true }
}

// WithReportingPeriod sets how often view snapshots are pushed to view
// exporters.
func WithReportingPeriod(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.reportingPeriod = d
		}
	}
}

// Component bundles one fully-wired telemetry runtime. Construction
// order is fixed: clock, then the event queue, then the stats component,
// then the trace component.
type Component struct {
	clock     clock.Clock
	worker    *eventqueue.Worker
	views     *view.Manager
	recorder  *stats.Recorder
	tracer    *trace.Tracer
	runtimeID string

	stopOnce sync.Once
}

// New builds a Component.
func New(opts ...Option) (*Component, error) {
	if v := os.Getenv("CENSUS_DEBUG"); v == "1" || v == "true" {
		log.SetLevel(log.LevelDebug)
	}
	cfg := config{
		clock:           clock.New(),
		statsd:          &statsd.NoOpClient{},
		queueCapacity:   eventqueue.DefaultCapacity,
		reportingPeriod: defaultReportingPeriod,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Component{
		clock:     cfg.clock,
		runtimeID: uuid.New().String(),
	}

	var q eventqueue.Queue
	if cfg.simpleQueue {
		q = eventqueue.NewSimple(cfg.queueCapacity)
	} else {
		q = eventqueue.NewRing(cfg.queueCapacity)
	}

	viewOpts := []view.ManagerOption{view.WithClock(cfg.clock)}
	if cfg.intervalViews {
		viewOpts = append(viewOpts, view.WithIntervalViews())
	}
	c.views = view.NewManager(viewOpts...)

	// the worker's ticker drives both health metric flushes and the
	// periodic snapshot delivery to view exporters
	ticksPerReport := int(cfg.reportingPeriod / time.Second)
	if ticksPerReport < 1 {
		ticksPerReport = 1
	}
	ticks := 0
	c.worker = eventqueue.NewWorker(q,
		eventqueue.WithStatsd(cfg.statsd, "runtime_id:"+c.runtimeID),
		eventqueue.WithTick(time.Second, func() {
			ticks++
			if ticks%ticksPerReport == 0 {
				c.views.PublishSnapshots()
			}
		}),
	)

	c.recorder = stats.NewRecorder(c.worker, c.views, cfg.clock)

	traceOpts := []trace.TracerOption{trace.WithClock(cfg.clock)}
	if cfg.traceParams != nil {
		traceOpts = append(traceOpts, trace.WithTraceParams(*cfg.traceParams))
	}
	tracer, err := trace.NewTracer(traceOpts...)
	if err != nil {
		return nil, err
	}
	c.tracer = tracer

	c.worker.Start()
	log.Debug("census component started, runtime_id=%s", c.runtimeID)
	return c, nil
}

// Stop shuts the component down: the event queue worker drains every
// pending entry, pushes a final round of view snapshots, and exits.
// Stop is idempotent.
func (c *Component) Stop() {
	c.stopOnce.Do(func() {
		c.worker.Stop()
		c.views.PublishSnapshots()
		log.Debug("census component stopped, runtime_id=%s", c.runtimeID)
	})
}

// Tracer returns the trace component.
func (c *Component) Tracer() *trace.Tracer { return c.tracer }

// Recorder returns the stats recorder façade.
func (c *Component) Recorder() *stats.Recorder { return c.recorder }

// Views returns the view aggregation engine.
func (c *Component) Views() *view.Manager { return c.views }

// RuntimeID returns the component's process-unique identifier, also
// attached to its health metrics.
func (c *Component) RuntimeID() string { return c.runtimeID }

var (
	defaultMu        sync.Mutex
	defaultComponent *Component
)

// ErrAlreadyStarted is returned by Start when a default component is
// already installed.
var ErrAlreadyStarted = errors.New("census: already started")

// Start builds a Component and installs it as the process-wide default.
func Start(opts ...Option) (*Component, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultComponent != nil {
		return nil, ErrAlreadyStarted
	}
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defaultComponent = c
	return c, nil
}

// Stop tears down the process-wide default component, if any.
func Stop() {
	defaultMu.Lock()
	c := defaultComponent
	defaultComponent = nil
	defaultMu.Unlock()
	if c != nil {
		c.Stop()
	}
}

// Default returns the process-wide default component, or nil before
// Start.
func Default() *Component {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultComponent
}
