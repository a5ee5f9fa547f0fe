// Package profiling provides CPU and memory profiling support for walkbg.
// This file implements a lightweight runtime memory watcher. A wallpaper
// daemon sits in the session for days; steady heap or goroutine growth
// that would pass unnoticed in a short process surfaces here.
package profiling

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Byte size constants for memory formatting
const (
	KB = 1024
	MB = KB * 1024
	GB = MB * 1024
)

// Sample represents a point-in-time runtime memory measurement.
type Sample struct {
	Timestamp   time.Time
	HeapAlloc   uint64 // Bytes of allocated heap objects
	HeapObjects uint64 // Number of allocated heap objects
	Goroutines  int    // Number of active goroutines
	NumGC       uint32 // Number of GCs completed
}

// TakeSample captures the current runtime memory state without storing it.
func TakeSample() Sample {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return Sample{
		Timestamp:   time.Now(),
		HeapAlloc:   memStats.HeapAlloc,
		HeapObjects: memStats.HeapObjects,
		Goroutines:  runtime.NumGoroutine(),
		NumGC:       memStats.NumGC,
	}
}

// Growth summarizes the change between the oldest and newest samples in
// the watcher's window.
type Growth struct {
	Duration       time.Duration
	HeapAllocDelta int64 // Positive means growth, negative means shrink
	GoroutineDelta int
	BytesPerSec    float64
	Suspicious     bool   // Sustained growth beyond the configured thresholds
	Reason         string // Explanation when Suspicious is true
}

// String returns a human-readable summary of the growth analysis.
func (g Growth) String() string {
	direction := "grew"
	if g.HeapAllocDelta < 0 {
		direction = "shrank"
	}
	status := "steady"
	if g.Suspicious {
		status = g.Reason
	}
	return fmt.Sprintf("heap %s %s over %s (%.2f KB/s), goroutines %+d: %s",
		direction,
		FormatBytes(uint64(abs(g.HeapAllocDelta))),
		g.Duration.Round(time.Second),
		g.BytesPerSec/KB,
		g.GoroutineDelta,
		status)
}

// MemWatchConfig configures the memory watcher.
type MemWatchConfig struct {
	// SampleInterval is the interval between samples.
	SampleInterval time.Duration
	// MaxSamples bounds the window; older samples are dropped.
	MaxSamples int
	// GrowthThreshold is the minimum sustained growth in bytes per
	// second to flag.
	GrowthThreshold int64
	// GoroutineThreshold is the net goroutine increase to flag.
	GoroutineThreshold int
}

// DefaultMemWatchConfig returns a MemWatchConfig tuned for a daemon:
// one sample per minute over a one hour window.
func DefaultMemWatchConfig() MemWatchConfig {
	return MemWatchConfig{
		SampleInterval:     time.Minute,
		MaxSamples:         60,
		GrowthThreshold:    64 * KB,
		GoroutineThreshold: 8,
	}
}

// MemWatcher samples runtime memory on an interval and flags sustained
// growth across its window.
type MemWatcher struct {
	cfg      MemWatchConfig
	samples  []Sample
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	onGrowth func(Growth)
	mu       sync.RWMutex
}

// NewMemWatcher creates a MemWatcher. Zero or negative config values fall
// back to the defaults.
func NewMemWatcher(cfg MemWatchConfig) *MemWatcher {
	def := DefaultMemWatchConfig()
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = def.SampleInterval
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = def.MaxSamples
	}
	if cfg.GrowthThreshold <= 0 {
		cfg.GrowthThreshold = def.GrowthThreshold
	}
	if cfg.GoroutineThreshold <= 0 {
		cfg.GoroutineThreshold = def.GoroutineThreshold
	}

	return &MemWatcher{
		cfg:     cfg,
		samples: make([]Sample, 0, cfg.MaxSamples),
	}
}

// Record takes a sample and appends it to the window.
func (w *MemWatcher) Record() Sample {
	s := TakeSample()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples = append(w.samples, s)
	if len(w.samples) > w.cfg.MaxSamples {
		w.samples = w.samples[1:]
	}
	return s
}

// SampleCount returns the number of samples in the window.
func (w *MemWatcher) SampleCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.samples)
}

// Analyze compares the oldest and newest samples in the window.
// Returns nil when fewer than two samples exist.
func (w *MemWatcher) Analyze() *Growth {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if len(w.samples) < 2 {
		return nil
	}
	return w.analyzeBetween(w.samples[0], w.samples[len(w.samples)-1])
}

// analyzeBetween calculates growth between two samples.
func (w *MemWatcher) analyzeBetween(first, last Sample) *Growth {
	duration := last.Timestamp.Sub(first.Timestamp)
	if duration <= 0 {
		return nil
	}

	heapDelta := int64(last.HeapAlloc) - int64(first.HeapAlloc)
	goroutineDelta := last.Goroutines - first.Goroutines
	rate := float64(heapDelta) / duration.Seconds()

	growth := &Growth{
		Duration:       duration,
		HeapAllocDelta: heapDelta,
		GoroutineDelta: goroutineDelta,
		BytesPerSec:    rate,
	}

	if rate > float64(w.cfg.GrowthThreshold) {
		growth.Suspicious = true
		growth.Reason = fmt.Sprintf("sustained heap growth of %.2f KB/s exceeds %.2f KB/s",
			rate/KB, float64(w.cfg.GrowthThreshold)/KB)
	} else if goroutineDelta > w.cfg.GoroutineThreshold {
		growth.Suspicious = true
		growth.Reason = fmt.Sprintf("goroutine count increased by %d (threshold %d)",
			goroutineDelta, w.cfg.GoroutineThreshold)
	}

	return growth
}

// OnGrowth sets a function called from the sampling goroutine whenever a
// suspicious growth is detected. Set to nil to disable.
func (w *MemWatcher) OnGrowth(fn func(Growth)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onGrowth = fn
}

// Start begins automatic sampling at the configured interval.
// Returns an error if the watcher is already running.
func (w *MemWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("memory watcher is already running")
	}

	w.stopChan = make(chan struct{})
	w.doneChan = make(chan struct{})
	w.running = true

	go w.sampleLoop()

	return nil
}

// Stop halts automatic sampling and waits for the goroutine to exit.
// Returns an error if the watcher is not running.
func (w *MemWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("memory watcher is not running")
	}
	close(w.stopChan)
	w.running = false
	w.mu.Unlock()

	<-w.doneChan
	return nil
}

// IsRunning returns true if the watcher is actively sampling.
func (w *MemWatcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// sampleLoop runs the periodic sampling.
func (w *MemWatcher) sampleLoop() {
	defer close(w.doneChan)

	ticker := time.NewTicker(w.cfg.SampleInterval)
	defer ticker.Stop()

	w.Record()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.Record()

			if growth := w.Analyze(); growth != nil && growth.Suspicious {
				w.mu.RLock()
				callback := w.onGrowth
				w.mu.RUnlock()

				if callback != nil {
					callback(*growth)
				}
			}
		}
	}
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(bytes uint64) string {
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// abs returns the absolute value of an int64.
func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
