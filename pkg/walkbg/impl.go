package walkbg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-walkbg/internal/config"
	"github.com/opd-ai/go-walkbg/internal/x11"
)

// wallpaperImpl is the private implementation of the Wallpaper interface.
type wallpaperImpl struct {
	// Configuration
	cfg          *config.Config
	opts         Options
	configSource string
	configLoader func() (*config.Config, error)

	// Components
	loop    *frameLoop
	watcher *configWatcher
	breaker *CircuitBreaker // guards watcher-triggered reloads
	metrics *Metrics
	tracker *ErrorTracker

	// State
	running    atomic.Bool
	startTime  time.Time
	frameCount atomic.Uint64
	lastError  atomic.Value // stores error
	runError   atomic.Value // stores errBox, the frame loop's exit cause

	// Handlers
	errorHandler ErrorHandler
	eventHandler EventHandler

	// Synchronization
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

// Verify interface implementation at compile time.
var _ Wallpaper = (*wallpaperImpl)(nil)

// Start connects to the display server and begins the frame loop.
func (w *wallpaperImpl) Start() error {
	w.mu.Lock()

	if w.running.Load() {
		w.mu.Unlock()
		return fmt.Errorf("walkbg instance already running")
	}

	// Create cancellable context
	w.ctx, w.cancel = context.WithCancel(context.Background())

	if err := w.initComponents(); err != nil {
		w.cancel()
		w.mu.Unlock()
		return fmt.Errorf("failed to initialize: %w", err)
	}

	// Connect and create surfaces synchronously, so a session that cannot
	// host walkbg fails right here with the error's exit-code mapping
	// intact instead of surfacing through the error handler later.
	client, err := x11.Connect(w.opts.Display)
	if err != nil {
		w.cancel()
		w.mu.Unlock()
		return fmt.Errorf("connect to display server: %w", err)
	}

	loop, err := newFrameLoop(client, w.cfg, frameLoopDeps{
		logger:   w.logger(),
		metrics:  w.metrics,
		frames:   &w.frameCount,
		override: w.opts.WalkInterval,
	})
	if err != nil {
		// Close destroys any surfaces created before the failure.
		client.Close()
		w.cancel()
		w.mu.Unlock()
		return fmt.Errorf("create surfaces: %w", err)
	}
	w.loop = loop

	// Set running state BEFORE starting the goroutine to avoid a race
	w.running.Store(true)
	w.startTime = time.Now()
	w.frameCount.Store(0)
	w.runError.Store(errBox{})
	w.done = make(chan struct{})

	w.metrics.IncrementStarts()
	w.metrics.SetRunning(true)
	w.metrics.SetActiveSurfaces(loop.surfaceCount())

	ctx := w.ctx
	cancel := w.cancel
	done := w.done

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(done)
		defer w.running.Store(false)
		defer w.metrics.SetRunning(false)
		defer w.metrics.SetActiveSurfaces(0)

		if err := loop.run(ctx); err != nil {
			w.runError.Store(errBox{err})
			w.notifyError(err)
		}

		// The loop can exit on its own, on a fatal error or when every
		// surface was destroyed. Cancelling here keeps Stop from waiting
		// on anything and lets Done observers see a consistent state.
		cancel()

		w.emitEvent(EventStopped, "instance stopped")
	}()

	if w.watchEnabled() {
		w.startWatcher()
	}

	// Release lock before emitting event to avoid deadlock
	w.mu.Unlock()

	w.emitEvent(EventStarted, "instance started")

	return nil
}

// Stop gracefully shuts down the walkbg instance.
func (w *wallpaperImpl) Stop() error {
	if !w.running.Load() {
		return nil // Already stopped
	}

	// Detach the watcher first so no reload races the shutdown.
	w.mu.Lock()
	watcher := w.watcher
	w.watcher = nil
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}

	// Wait for goroutines with timeout
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	// Use configured timeout or default
	timeout := w.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	select {
	case <-done:
		w.metrics.IncrementStops()
		return nil
	case <-time.After(timeout):
		err := fmt.Errorf("shutdown timeout after %v: some goroutines did not stop", timeout)
		w.notifyError(err)
		return err
	}
}

// Restart performs a stop followed by a start.
func (w *wallpaperImpl) Restart() error {
	clog := NewCorrelatedLogger(EnsureCorrelationID(context.Background()), w.logger())
	clog.Info("restarting", "source", w.configSource)

	// Stop if running
	if err := w.Stop(); err != nil {
		wrappedErr := fmt.Errorf("stop failed: %w", err)
		w.notifyError(wrappedErr)
		return wrappedErr
	}

	// Reload configuration
	if w.configLoader != nil {
		cfg, err := w.configLoader()
		if err != nil {
			wrappedErr := fmt.Errorf("config reload failed: %w", err)
			w.notifyErrorAs(wrappedErr, ErrorCategoryConfig, SeverityError)
			return wrappedErr
		}
		w.mu.Lock()
		w.cfg = cfg
		w.mu.Unlock()
		w.emitEvent(EventConfigReloaded, "configuration reloaded")
	}

	// Start again
	if err := w.Start(); err != nil {
		wrappedErr := fmt.Errorf("start failed: %w", err)
		w.notifyError(wrappedErr)
		return wrappedErr
	}

	w.metrics.IncrementRestarts()
	w.emitEvent(EventRestarted, "instance restarted")
	clog.Info("restart complete")
	return nil
}

// ReloadConfig reloads the configuration in-place without stopping.
// The frame loop applies the new snapshot between frames, so the walk
// continues uninterrupted while changes take effect.
func (w *wallpaperImpl) ReloadConfig() error {
	if !w.running.Load() {
		return fmt.Errorf("walkbg instance not running")
	}

	if w.configLoader == nil {
		return fmt.Errorf("no config loader available")
	}

	clog := NewCorrelatedLogger(EnsureCorrelationID(context.Background()), w.logger())
	clog.Info("reloading configuration", "source", w.configSource)

	// Load the new configuration
	newCfg, err := w.configLoader()
	if err != nil {
		wrappedErr := fmt.Errorf("config reload failed: %w", err)
		w.notifyErrorAs(wrappedErr, ErrorCategoryConfig, SeverityError)
		return wrappedErr
	}

	w.mu.Lock()
	w.cfg = newCfg
	loop := w.loop
	done := w.done
	w.mu.Unlock()

	if loop == nil {
		return fmt.Errorf("walkbg instance not running")
	}

	// Hand the snapshot to the frame loop, which applies it between frames.
	select {
	case loop.reload <- newCfg:
	case <-done:
		return fmt.Errorf("walkbg instance not running")
	}

	w.metrics.IncrementConfigReloads()
	w.emitEvent(EventConfigReloaded, "configuration reloaded in-place")
	clog.Info("configuration reloaded",
		"walks_per_minute", newCfg.WalksPerMinute,
		"step_set", newCfg.StepSet,
		"palette", newCfg.Palette)
	return nil
}

// IsRunning returns true if the walkbg instance is currently running.
func (w *wallpaperImpl) IsRunning() bool {
	return w.running.Load()
}

// Status returns detailed status information about the instance.
func (w *wallpaperImpl) Status() Status {
	w.mu.RLock()
	startTime := w.startTime
	configSource := w.configSource
	w.mu.RUnlock()

	return Status{
		Running:       w.running.Load(),
		StartTime:     startTime,
		FrameCount:    w.frameCount.Load(),
		LastError:     w.getError(),
		TerminalError: w.getRunError(),
		ConfigSource:  configSource,
	}
}

// SetErrorHandler registers a callback for runtime errors.
func (w *wallpaperImpl) SetErrorHandler(handler ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errorHandler = handler
}

// SetEventHandler registers a callback for lifecycle events.
func (w *wallpaperImpl) SetEventHandler(handler EventHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.eventHandler = handler
}

// Done returns the channel closed when the frame loop exits.
func (w *wallpaperImpl) Done() <-chan struct{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.done
}

// initComponents wires up metrics, error tracking and the reload circuit
// breaker. Each is created once and kept across restarts.
func (w *wallpaperImpl) initComponents() error {
	// Validate config is not nil (should be guaranteed by factory functions)
	if w.cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if w.metrics == nil {
		if w.opts.Metrics != nil {
			w.metrics = w.opts.Metrics
		} else {
			w.metrics = DefaultMetrics()
		}
	}

	if w.tracker == nil {
		if w.opts.ErrorTracker != nil {
			w.tracker = w.opts.ErrorTracker
		} else {
			w.tracker = DefaultErrorTracker()
		}
	}

	if w.breaker == nil {
		logger := w.logger()
		w.breaker = NewCircuitBreaker(CircuitBreakerConfig{
			OnStateChange: func(from, to CircuitState) {
				logger.Warn("config reload circuit state changed",
					"from", from.String(), "to", to.String())
			},
		})
	}

	return nil
}

// logger returns the configured logger or a no-op one.
func (w *wallpaperImpl) logger() Logger {
	if w.opts.Logger != nil {
		return w.opts.Logger
	}
	return NopLogger()
}

// watchEnabled reports whether config watching applies: it was requested
// via options or the config file, and the config source is a disk path.
func (w *wallpaperImpl) watchEnabled() bool {
	if !w.opts.WatchConfig && !w.cfg.WatchConfig {
		return false
	}
	return w.sourceIsFile()
}

// sourceIsFile reports whether the config source is a path on disk.
// Embedded and reader-based sources cannot change under us.
func (w *wallpaperImpl) sourceIsFile() bool {
	switch {
	case w.configSource == "", w.configSource == "defaults", w.configSource == "reader":
		return false
	case strings.HasPrefix(w.configSource, "embedded:"):
		return false
	}
	return true
}

// startWatcher wires the file watcher to ReloadConfig through the circuit
// breaker, so a config file stuck in a broken state stops triggering parse
// attempts on every save. Called with mu held.
func (w *wallpaperImpl) startWatcher() {
	logger := w.logger()
	watcher, err := newConfigWatcher(w.configSource, w.opts.WatchDebounce,
		func() error {
			err := w.breaker.Execute(w.ReloadConfig)
			if errors.Is(err, ErrCircuitOpen) {
				logger.Debug("config reload suppressed while circuit open")
				return nil
			}
			return err
		},
		func(err error) {
			// Reload failures were already reported through ReloadConfig;
			// this also covers the watcher's own I/O errors.
			logger.Warn("config watch", "error", err)
		})
	if err != nil {
		logger.Warn("config watching unavailable", "error", err)
		return
	}
	w.watcher = watcher
	watcher.Start()
	logger.Info("watching config file", "path", w.configSource)
}

// errBox wraps an error so a nil one can still pass through atomic.Value.
type errBox struct {
	err error
}

// getError retrieves the last error.
func (w *wallpaperImpl) getError() error {
	if v := w.lastError.Load(); v != nil {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// getRunError retrieves the error that ended the last run, if any.
func (w *wallpaperImpl) getRunError() error {
	if v := w.runError.Load(); v != nil {
		return v.(errBox).err
	}
	return nil
}

// notifyError stores an error and invokes the error handler if registered,
// deriving category and severity from the error's type.
func (w *wallpaperImpl) notifyError(err error) {
	cat, sev := classify(err)
	w.notifyErrorAs(err, cat, sev)
}

// notifyErrorAs records err with an explicit category and severity, stores
// it for Status retrieval and invokes the error handler.
func (w *wallpaperImpl) notifyErrorAs(err error, cat ErrorCategory, sev ErrorSeverity) {
	// Store the error for Status() retrieval
	w.lastError.Store(err)

	// Update metrics and the error tracker
	if w.metrics != nil {
		w.metrics.IncrementErrors()
	}
	if w.tracker != nil {
		w.tracker.Record(NewCategorizedError(err, cat, sev).WithContext("source", w.configSource))
	}

	w.mu.RLock()
	handler := w.errorHandler
	logger := w.opts.Logger
	w.mu.RUnlock()

	if handler != nil {
		go func() {
			defer func() {
				// Recover from panics in error handler to prevent crashing
				if r := recover(); r != nil {
					if logger != nil {
						logger.Error("error handler panicked", "panic", r, "original_error", err)
					}
				}
			}()
			handler(err)
		}()
	}

	// Also emit an error event
	w.emitEvent(EventError, err.Error())
}

// emitEvent sends an event to the event handler if configured.
func (w *wallpaperImpl) emitEvent(eventType EventType, message string) {
	// Update metrics
	if w.metrics != nil {
		w.metrics.IncrementEventsEmitted()
	}

	w.mu.RLock()
	handler := w.eventHandler
	w.mu.RUnlock()

	if handler != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					// Recover from panics in the handler to avoid crashing the embedding application.
					w.mu.RLock()
					errHandler := w.errorHandler
					w.mu.RUnlock()
					if errHandler != nil {
						if err, ok := r.(error); ok {
							errHandler(fmt.Errorf("panic in event handler: %w", err))
						} else {
							errHandler(fmt.Errorf("panic in event handler: %v", r))
						}
					}
				}
			}()

			handler(Event{
				Type:      eventType,
				Timestamp: time.Now(),
				Message:   message,
			})
		}()
	}
}

// Health returns a health check result for the walkbg instance.
func (w *wallpaperImpl) Health() HealthCheck {
	now := time.Now()
	components := make(map[string]ComponentHealth)

	// Check running state
	running := w.running.Load()

	// Calculate uptime
	var uptime time.Duration
	w.mu.RLock()
	if running && !w.startTime.IsZero() {
		uptime = now.Sub(w.startTime)
	}
	w.mu.RUnlock()

	// Check instance component
	if running {
		components["instance"] = ComponentHealth{
			Status:      HealthOK,
			Message:     "Instance is running",
			LastUpdated: now,
		}
	} else {
		components["instance"] = ComponentHealth{
			Status:      HealthUnhealthy,
			Message:     "Instance is not running",
			LastUpdated: now,
		}
	}

	// Check surfaces; the frame loop keeps the gauge current.
	var active int
	if w.metrics != nil {
		active = w.metrics.Snapshot().ActiveSurfaces
	}
	switch {
	case running && active > 0:
		components["surfaces"] = ComponentHealth{
			Status:      HealthOK,
			Message:     fmt.Sprintf("%d surfaces active, %d frames presented", active, w.frameCount.Load()),
			LastUpdated: now,
		}
	case running:
		components["surfaces"] = ComponentHealth{
			Status:      HealthDegraded,
			Message:     "Connected but no active surfaces",
			LastUpdated: now,
		}
	default:
		components["surfaces"] = ComponentHealth{
			Status:      HealthUnhealthy,
			Message:     "No surfaces (instance stopped)",
			LastUpdated: now,
		}
	}

	// Check for errors
	lastErr := w.getError()
	if lastErr != nil {
		components["errors"] = ComponentHealth{
			Status:      HealthDegraded,
			Message:     lastErr.Error(),
			LastUpdated: now,
		}
	} else {
		components["errors"] = ComponentHealth{
			Status:      HealthOK,
			Message:     "No recent errors",
			LastUpdated: now,
		}
	}

	// Determine overall status
	overallStatus := HealthOK
	var message string

	switch {
	case !running:
		overallStatus = HealthUnhealthy
		message = "Instance is not running"
	case lastErr != nil:
		overallStatus = HealthDegraded
		message = "Running with recent errors"
	default:
		message = "All components healthy"
	}

	return HealthCheck{
		Status:     overallStatus,
		Timestamp:  now,
		Uptime:     uptime,
		Components: components,
		Message:    message,
	}
}

// Metrics returns the metrics collector for this instance.
func (w *wallpaperImpl) Metrics() *Metrics {
	return w.metrics
}
