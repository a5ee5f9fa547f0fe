// Package profiling provides CPU and memory profiling support for walkbg.
// It wraps runtime/pprof so the daemon can capture profiles over a full
// run, from startup to shutdown.
package profiling

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
)

// Config holds configuration for the profiler.
type Config struct {
	// CPUProfilePath is the file path for CPU profile output.
	// If empty, CPU profiling is disabled.
	CPUProfilePath string

	// MemProfilePath is the file path for memory profile output.
	// If empty, memory profiling is disabled.
	MemProfilePath string
}

// Enabled returns true if any profiling is configured.
func (c Config) Enabled() bool {
	return c.CPUProfilePath != "" || c.MemProfilePath != ""
}

// Profiler manages CPU and memory profiling for the daemon. CPU profiling
// covers the span between Start and Stop; the heap profile is written at
// Stop time.
type Profiler struct {
	cfg     Config
	cpuFile *os.File
	running bool
	mu      sync.Mutex
}

// New creates a new Profiler with the given configuration.
// The profiler is not started automatically; call Start to begin profiling.
func New(cfg Config) *Profiler {
	return &Profiler{cfg: cfg}
}

// Start begins CPU profiling if a CPU profile path was configured.
// It returns an error if profiling is already running or if the profile
// file cannot be created.
func (p *Profiler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return errors.New("profiler is already running")
	}

	if p.cfg.CPUProfilePath == "" {
		p.running = true
		return nil
	}

	f, err := os.Create(p.cfg.CPUProfilePath)
	if err != nil {
		return fmt.Errorf("failed to create CPU profile file: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}

	p.cpuFile = f
	p.running = true
	return nil
}

// Stop stops CPU profiling and writes the memory profile if configured.
// It returns an error if profiling is not running or if writing either
// profile fails.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return errors.New("profiler is not running")
	}

	var errs []error

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close CPU profile file: %w", err))
		}
		p.cpuFile = nil
	}

	if p.cfg.MemProfilePath != "" {
		if err := writeHeapProfile(p.cfg.MemProfilePath); err != nil {
			errs = append(errs, err)
		}
	}

	p.running = false

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// IsRunning returns true if the profiler is currently running.
func (p *Profiler) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// writeHeapProfile writes a heap profile to the given path. A garbage
// collection runs first so the profile reflects live objects only.
func writeHeapProfile(path string) error {
	runtime.GC()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile file: %w", err)
	}
	defer f.Close()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}

	return nil
}
