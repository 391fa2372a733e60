// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package view

import (
	"sync"
	"time"

	"github.com/DataDog/census-go/clock"
	"github.com/DataDog/census-go/internal/log"
	"github.com/DataDog/census-go/stats"
	"github.com/DataDog/census-go/tags"
)

// Exporter receives view snapshots from PublishSnapshots.
type Exporter interface {
	ExportView(d *Data)
}

// Manager routes recorded measurements to registered views and answers
// snapshot queries. Registration takes the manager-wide lock; the record
// path holds it only for reading while it copies the subscribed views,
// then takes the per-view lock of each of them.
type Manager struct {
	clock         clock.Clock
	intervalViews bool

	mu        sync.RWMutex
	views     map[string]*viewEntry
	byMeasure map[string][]*viewEntry

	exporterMu sync.RWMutex
	exporters  map[Exporter]struct{}
}

type viewEntry struct {
	view *View

	mu    sync.Mutex
	state viewState
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock sets the manager's time source.
func WithClock(c clock.Clock) ManagerOption {
	return func(m *Manager) { m.clock = c }
}

// WithIntervalViews enables registration of interval-window views. The
// base profile rejects them.
func WithIntervalViews() ManagerOption {
	return func(m *Manager) { m.intervalViews = true }
}

// NewManager returns a Manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		clock:     clock.New(),
		views:     make(map[string]*viewEntry),
		byMeasure: make(map[string][]*viewEntry),
		exporters: make(map[Exporter]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ stats.Sink = (*Manager)(nil)

// RegisterView subscribes v to its measure. Registering a view identical
// to an already-registered one is a no-op; reusing a name for a different
// view is an error.
func (m *Manager) RegisterView(v *View) error {
	if v == nil {
		return errInvalidArgumentf("view must not be nil")
	}
	if err := v.validate(); err != nil {
		return err
	}
	if _, ok := v.window().(Interval); ok && !m.intervalViews {
		return errUnsupportedf("interval views are not supported by this profile")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.views[v.Name]; ok {
		if prev.view.equal(v) {
			return nil
		}
		return errInvalidArgumentf("a different view named %q is already registered", v.Name)
	}
	now := m.clock.Now()
	entry := &viewEntry{view: v}
	switch w := v.window().(type) {
	case Interval:
		entry.state = newIntervalState(v.Aggregations, w, now)
	default:
		entry.state = newCumulativeState(v.Aggregations, now)
	}
	m.views[v.Name] = entry
	mn := v.Measure.Name()
	m.byMeasure[mn] = append(m.byMeasure[mn], entry)
	return nil
}

// UnregisterView removes the view with the given name and releases its
// state. Unregistering an unknown name is a no-op.
func (m *Manager) UnregisterView(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.views[name]
	if !ok {
		return
	}
	delete(m.views, name)
	mn := entry.view.Measure.Name()
	subs := m.byMeasure[mn]
	for i, e := range subs {
		if e == entry {
			m.byMeasure[mn] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(m.byMeasure[mn]) == 0 {
		delete(m.byMeasure, mn)
	}
}

// Views returns the currently registered views.
func (m *Manager) Views() []*View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*View, 0, len(m.views))
	for _, e := range m.views {
		out = append(out, e.view)
	}
	return out
}

// Record implements stats.Sink: it applies each measurement in the batch
// to every view subscribed to its measure, projecting the tag map onto
// the view's columns. Measurements against measures with no subscribed
// views are silently ignored.
func (m *Manager) Record(tm *tags.Map, ms []stats.Measurement, now time.Time) {
	for _, measurement := range ms {
		m.mu.RLock()
		subs := append([]*viewEntry(nil), m.byMeasure[measurement.Measure().Name()]...)
		m.mu.RUnlock()
		if len(subs) == 0 {
			log.Debug("no views subscribed to measure %q", measurement.Measure().Name())
			continue
		}
		for _, entry := range subs {
			values := projectTags(tm, entry.view.TagKeys)
			entry.mu.Lock()
			err := entry.state.record(values, measurement.Value(), now)
			entry.mu.Unlock()
			if err != nil {
				log.Error("dropping measurement for view %q: %v", entry.view.Name, err)
			}
		}
	}
}

// projectTags maps tm onto the view columns; missing columns become the
// UnsetTagValue sentinel.
func projectTags(tm *tags.Map, keys []tags.Key) []string {
	values := make([]string, len(keys))
	for i, k := range keys {
		if v, ok := tm.Value(k); ok {
			values[i] = v
		} else {
			values[i] = UnsetTagValue
		}
	}
	return values
}

// RetrieveData snapshots the view with the given name. Snapshotting does
// not reset any state.
func (m *Manager) RetrieveData(name string) (*Data, error) {
	m.mu.RLock()
	entry, ok := m.views[name]
	m.mu.RUnlock()
	if !ok {
		return nil, errInvalidArgumentf("no view named %q", name)
	}
	return m.snapshotEntry(entry, m.clock.Now())
}

func (m *Manager) snapshotEntry(entry *viewEntry, now time.Time) (*Data, error) {
	entry.mu.Lock()
	rows, start, err := entry.state.snapshot(now)
	entry.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &Data{View: entry.view, Rows: rows, Start: start, End: now}, nil
}

// RegisterExporter adds e to the set receiving periodic view snapshots.
func (m *Manager) RegisterExporter(e Exporter) {
	m.exporterMu.Lock()
	m.exporters[e] = struct{}{}
	m.exporterMu.Unlock()
}

// UnregisterExporter removes e from the exporter set.
func (m *Manager) UnregisterExporter(e Exporter) {
	m.exporterMu.Lock()
	delete(m.exporters, e)
	m.exporterMu.Unlock()
}

// PublishSnapshots snapshots every registered view and delivers the data
// to all registered exporters. It is a no-op without exporters.
func (m *Manager) PublishSnapshots() {
	m.exporterMu.RLock()
	n := len(m.exporters)
	m.exporterMu.RUnlock()
	if n == 0 {
		return
	}

	m.mu.RLock()
	entries := make([]*viewEntry, 0, len(m.views))
	for _, e := range m.views {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	now := m.clock.Now()
	for _, entry := range entries {
		d, err := m.snapshotEntry(entry, now)
		if err != nil {
			log.Error("snapshot of view %q failed: %v", entry.view.Name, err)
			continue
		}
		m.exporterMu.RLock()
		for e := range m.exporters {
			e.ExportView(d)
		}
		m.exporterMu.RUnlock()
	}
}
