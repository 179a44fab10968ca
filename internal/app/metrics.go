package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks pipeline activity.
type Metrics struct {
	renderCount   atomic.Uint64
	renderErrors  atomic.Uint64
	renderTotalNs atomic.Int64
	renderMinNs   atomic.Int64
	renderMaxNs   atomic.Int64
	lastRenderNs  atomic.Int64

	saves        atomic.Uint64
	autoSaves    atomic.Uint64
	saveFailures atomic.Uint64

	injections atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.renderMinNs.Store(1<<63 - 1)
	return m
}

// RecordRender records one finished compile.
func (m *Metrics) RecordRender(duration time.Duration, failed bool) {
	ns := duration.Nanoseconds()

	m.renderCount.Add(1)
	if failed {
		m.renderErrors.Add(1)
	}
	m.renderTotalNs.Add(ns)
	m.lastRenderNs.Store(ns)

	for {
		old := m.renderMinNs.Load()
		if ns >= old || m.renderMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.renderMaxNs.Load()
		if ns <= old || m.renderMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordSave records a successful save.
func (m *Metrics) RecordSave(auto bool) {
	m.saves.Add(1)
	if auto {
		m.autoSaves.Add(1)
	}
}

// RecordSaveFailure records a failed save.
func (m *Metrics) RecordSaveFailure() {
	m.saveFailures.Add(1)
}

// RecordInjection records externally injected content.
func (m *Metrics) RecordInjection() {
	m.injections.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.renderCount.Load()

	var avg int64
	if count > 0 {
		avg = m.renderTotalNs.Load() / int64(count)
	}
	minNs := m.renderMinNs.Load()
	if minNs == 1<<63-1 {
		minNs = 0
	}

	return MetricsSnapshot{
		Uptime:       time.Since(m.startTime),
		RenderCount:  count,
		RenderErrors: m.renderErrors.Load(),
		AvgRenderNs:  avg,
		MinRenderNs:  minNs,
		MaxRenderNs:  m.renderMaxNs.Load(),
		LastRenderNs: m.lastRenderNs.Load(),
		Saves:        m.saves.Load(),
		AutoSaves:    m.autoSaves.Load(),
		SaveFailures: m.saveFailures.Load(),
		Injections:   m.injections.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime       time.Duration `json:"uptime"`
	RenderCount  uint64        `json:"render_count"`
	RenderErrors uint64        `json:"render_errors"`
	AvgRenderNs  int64         `json:"avg_render_ns"`
	MinRenderNs  int64         `json:"min_render_ns"`
	MaxRenderNs  int64         `json:"max_render_ns"`
	LastRenderNs int64         `json:"last_render_ns"`
	Saves        uint64        `json:"saves"`
	AutoSaves    uint64        `json:"auto_saves"`
	SaveFailures uint64        `json:"save_failures"`
	Injections   uint64        `json:"injections"`
}

// ErrorRate returns the percentage of failed renders.
func (s MetricsSnapshot) ErrorRate() float64 {
	if s.RenderCount == 0 {
		return 0
	}
	return float64(s.RenderErrors) / float64(s.RenderCount) * 100
}
