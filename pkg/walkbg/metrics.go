package walkbg

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics provides application-level metrics collection for walkbg.
// It uses Go's expvar package for exposition, which can be accessed via the
// /debug/vars HTTP endpoint when an HTTP server is running.
//
// Thread-safe for concurrent use.
//
// Example usage:
//
//	metrics := walkbg.NewMetrics()
//	metrics.IncrementConfigReloads()
//	metrics.RecordRenderLatency(3 * time.Millisecond)
//
//	// For HTTP exposition, import expvar's HTTP handler:
//	// import _ "expvar"
//	// This registers /debug/vars automatically.
type Metrics struct {
	// Counters
	starts          atomic.Int64
	stops           atomic.Int64
	restarts        atomic.Int64
	configReloads   atomic.Int64
	framesPresented atomic.Int64
	framesCompleted atomic.Int64
	droppedFrames   atomic.Int64
	steps           atomic.Int64
	errorsTotal     atomic.Int64
	eventsEmitted   atomic.Int64

	// Latency tracking (stored as nanoseconds)
	renderLatencyNs     atomic.Int64
	renderLatencyCount  atomic.Int64
	presentLatencyNs    atomic.Int64
	presentLatencyCount atomic.Int64

	// Current state gauges
	currentlyRunning atomic.Int32
	activeSurfaces   atomic.Int32

	// Registration tracking to prevent duplicate expvar registration
	registered atomic.Bool
}

// NewMetrics creates a new Metrics instance.
// Call RegisterExpvar() to expose metrics via the /debug/vars endpoint.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar registers all metrics with Go's expvar package.
// This makes metrics available at /debug/vars when an HTTP server is running.
// Safe to call multiple times; subsequent calls are no-ops.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return // Already registered
	}

	// Counters
	expvar.Publish("walkbg_starts_total", expvar.Func(func() any { return m.starts.Load() }))
	expvar.Publish("walkbg_stops_total", expvar.Func(func() any { return m.stops.Load() }))
	expvar.Publish("walkbg_restarts_total", expvar.Func(func() any { return m.restarts.Load() }))
	expvar.Publish("walkbg_config_reloads_total", expvar.Func(func() any { return m.configReloads.Load() }))
	expvar.Publish("walkbg_frames_presented_total", expvar.Func(func() any { return m.framesPresented.Load() }))
	expvar.Publish("walkbg_frames_completed_total", expvar.Func(func() any { return m.framesCompleted.Load() }))
	expvar.Publish("walkbg_dropped_frames_total", expvar.Func(func() any { return m.droppedFrames.Load() }))
	expvar.Publish("walkbg_steps_total", expvar.Func(func() any { return m.steps.Load() }))
	expvar.Publish("walkbg_errors_total", expvar.Func(func() any { return m.errorsTotal.Load() }))
	expvar.Publish("walkbg_events_emitted_total", expvar.Func(func() any { return m.eventsEmitted.Load() }))

	// Gauges
	expvar.Publish("walkbg_running", expvar.Func(func() any { return m.currentlyRunning.Load() }))
	expvar.Publish("walkbg_active_surfaces", expvar.Func(func() any { return m.activeSurfaces.Load() }))

	// Latency averages (milliseconds)
	expvar.Publish("walkbg_render_latency_avg_ms", expvar.Func(func() any {
		count := m.renderLatencyCount.Load()
		if count == 0 {
			return float64(0)
		}
		return float64(m.renderLatencyNs.Load()) / float64(count) / 1e6
	}))
	expvar.Publish("walkbg_present_latency_avg_ms", expvar.Func(func() any {
		count := m.presentLatencyCount.Load()
		if count == 0 {
			return float64(0)
		}
		return float64(m.presentLatencyNs.Load()) / float64(count) / 1e6
	}))
}

// Snapshot returns a point-in-time copy of all metrics.
// Useful for testing or custom metric exposition.
func (m *Metrics) Snapshot() MetricsSnapshot {
	renderCount := m.renderLatencyCount.Load()
	presentCount := m.presentLatencyCount.Load()

	return MetricsSnapshot{
		Starts:          m.starts.Load(),
		Stops:           m.stops.Load(),
		Restarts:        m.restarts.Load(),
		ConfigReloads:   m.configReloads.Load(),
		FramesPresented: m.framesPresented.Load(),
		FramesCompleted: m.framesCompleted.Load(),
		DroppedFrames:   m.droppedFrames.Load(),
		Steps:           m.steps.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
		EventsEmitted:   m.eventsEmitted.Load(),

		Running:        m.currentlyRunning.Load() > 0,
		ActiveSurfaces: int(m.activeSurfaces.Load()),

		RenderLatencyAvg:  safeDivide(m.renderLatencyNs.Load(), renderCount),
		PresentLatencyAvg: safeDivide(m.presentLatencyNs.Load(), presentCount),
	}
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	// Counters
	Starts          int64
	Stops           int64
	Restarts        int64
	ConfigReloads   int64
	FramesPresented int64
	FramesCompleted int64
	DroppedFrames   int64
	Steps           int64
	ErrorsTotal     int64
	EventsEmitted   int64

	// Gauges
	Running        bool
	ActiveSurfaces int

	// Latency averages
	RenderLatencyAvg  time.Duration
	PresentLatencyAvg time.Duration
}

// Counter increment methods

// IncrementStarts records a start operation.
func (m *Metrics) IncrementStarts() {
	m.starts.Add(1)
}

// IncrementStops records a stop operation.
func (m *Metrics) IncrementStops() {
	m.stops.Add(1)
}

// IncrementRestarts records a restart operation.
func (m *Metrics) IncrementRestarts() {
	m.restarts.Add(1)
}

// IncrementConfigReloads records a configuration reload.
func (m *Metrics) IncrementConfigReloads() {
	m.configReloads.Add(1)
}

// IncrementFramesPresented records a frame committed to the server.
func (m *Metrics) IncrementFramesPresented() {
	m.framesPresented.Add(1)
}

// IncrementFramesCompleted records a server completion for a presented frame.
func (m *Metrics) IncrementFramesCompleted() {
	m.framesCompleted.Add(1)
}

// IncrementDroppedFrames records a walk tick whose frame could not be
// presented because the previous one was still in flight.
func (m *Metrics) IncrementDroppedFrames() {
	m.droppedFrames.Add(1)
}

// AddSteps records n completed walker steps.
func (m *Metrics) AddSteps(n int64) {
	m.steps.Add(n)
}

// IncrementErrors records an error occurrence.
func (m *Metrics) IncrementErrors() {
	m.errorsTotal.Add(1)
}

// IncrementEventsEmitted records an event emission.
func (m *Metrics) IncrementEventsEmitted() {
	m.eventsEmitted.Add(1)
}

// Gauge methods

// SetRunning updates the running state gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.currentlyRunning.Store(1)
	} else {
		m.currentlyRunning.Store(0)
	}
}

// SetActiveSurfaces updates the active surfaces gauge.
func (m *Metrics) SetActiveSurfaces(count int) {
	m.activeSurfaces.Store(int32(count))
}

// Latency recording methods

// RecordRenderLatency records the duration of drawing one frame.
func (m *Metrics) RecordRenderLatency(d time.Duration) {
	m.renderLatencyNs.Add(d.Nanoseconds())
	m.renderLatencyCount.Add(1)
}

// RecordPresentLatency records the duration of committing one frame.
func (m *Metrics) RecordPresentLatency(d time.Duration) {
	m.presentLatencyNs.Add(d.Nanoseconds())
	m.presentLatencyCount.Add(1)
}

// Reset clears all metrics. Useful for testing.
func (m *Metrics) Reset() {
	m.starts.Store(0)
	m.stops.Store(0)
	m.restarts.Store(0)
	m.configReloads.Store(0)
	m.framesPresented.Store(0)
	m.framesCompleted.Store(0)
	m.droppedFrames.Store(0)
	m.steps.Store(0)
	m.errorsTotal.Store(0)
	m.eventsEmitted.Store(0)

	m.renderLatencyNs.Store(0)
	m.renderLatencyCount.Store(0)
	m.presentLatencyNs.Store(0)
	m.presentLatencyCount.Store(0)

	m.currentlyRunning.Store(0)
	m.activeSurfaces.Store(0)
}

// safeDivide performs safe division, returning 0 for divide by zero.
func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

// defaultMetrics is a global metrics instance for convenience.
var defaultMetrics = NewMetrics()

// DefaultMetrics returns the global default Metrics instance.
// This can be used when a single application-wide metrics collector is sufficient.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
