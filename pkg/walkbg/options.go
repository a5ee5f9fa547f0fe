package walkbg

import "time"

// DefaultShutdownTimeout is the default timeout for graceful shutdown.
// This can be overridden via Options.ShutdownTimeout.
const DefaultShutdownTimeout = 5 * time.Second

// Options configures the Wallpaper instance behavior.
type Options struct {
	// Display selects the X display to connect to, in the same syntax as
	// the DISPLAY environment variable. Empty means use the environment.
	Display string

	// WalkInterval overrides the configuration file's walks_per_minute
	// cadence. Zero means use the configuration file's value.
	WalkInterval time.Duration

	// ShutdownTimeout sets the maximum time to wait for graceful shutdown.
	// Zero means use DefaultShutdownTimeout (5 seconds).
	ShutdownTimeout time.Duration

	// Logger sets a custom logger for debug/info messages.
	// If nil, no logging is performed.
	Logger Logger

	// Metrics sets a custom metrics collector for operational metrics.
	// If nil, DefaultMetrics() is used.
	// Metrics can be exposed via /debug/vars by calling Metrics.RegisterExpvar().
	Metrics *Metrics

	// ErrorTracker sets a custom error tracker for error aggregation and alerting.
	// If nil, DefaultErrorTracker() is used.
	// Use ErrorTracker.AddCondition() to set up alerts.
	// Use ErrorTracker.SetAlertHandler() to receive alert notifications.
	ErrorTracker *ErrorTracker

	// WatchConfig enables automatic configuration hot-reloading when the
	// configuration file changes on disk. Watching also turns on when the
	// configuration file itself sets watch_config. It only applies to
	// instances created with New from a disk path.
	WatchConfig bool

	// WatchDebounce sets the debounce interval for file change events.
	// Multiple rapid file modifications within this window trigger only
	// a single reload. Zero means use the default (500ms).
	WatchDebounce time.Duration
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Display:         "", // Use DISPLAY environment variable
		WalkInterval:    0,  // Use config file value
		ShutdownTimeout: 0,  // Use DefaultShutdownTimeout
	}
}

// Logger interface for custom logging.
// It follows the slog-style signature for compatibility with Go's structured logging.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}
