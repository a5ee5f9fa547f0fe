package walkbg

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/opd-ai/go-walkbg/internal/config"
)

// Wallpaper represents an embedded walkbg instance with full lifecycle control.
// It is safe for concurrent use from multiple goroutines.
type Wallpaper interface {
	// Start connects to the display server, creates one background surface
	// per output and begins the frame loop. It returns immediately after
	// starting; rendering runs in background goroutines. A session missing a
	// required capability fails here, before any goroutine starts.
	// Returns an error if already running or if initialization fails.
	Start() error

	// Stop gracefully shuts down the walkbg instance.
	// It waits for all goroutines to complete before returning.
	// Safe to call multiple times; subsequent calls are no-ops.
	Stop() error

	// Restart performs a stop followed by a start.
	// Configuration is reloaded from the original source.
	// Returns an error if restart fails; the instance will be in a stopped state.
	Restart() error

	// ReloadConfig reloads the configuration in-place without stopping.
	// This provides seamless hot-reload capability: the walk continues
	// uninterrupted while configuration changes take effect.
	// Returns an error if configuration reload fails; the previous config remains active.
	ReloadConfig() error

	// IsRunning returns true if the walkbg instance is currently running.
	IsRunning() bool

	// Status returns detailed status information about the instance.
	Status() Status

	// SetErrorHandler registers a callback for runtime errors.
	// The handler is invoked asynchronously; do not block in the handler.
	// Implementations of Wallpaper MUST recover from panics in the handler so
	// that a buggy handler cannot crash the embedding application.
	SetErrorHandler(handler ErrorHandler)

	// SetEventHandler registers a callback for lifecycle events.
	SetEventHandler(handler EventHandler)

	// Health returns a health check result for the walkbg instance.
	// This can be used for monitoring, alerting, and debugging.
	Health() HealthCheck

	// Metrics returns the metrics collector for this instance.
	// Use Metrics().Snapshot() for a point-in-time copy of all metrics.
	// Use Metrics().RegisterExpvar() to expose metrics via /debug/vars.
	Metrics() *Metrics

	// Done returns a channel that is closed when the instance stops for any
	// reason, including fatal display-server errors. Embedders select on it
	// alongside their own signals; Status().TerminalError reports why, and
	// is nil when the stop was clean.
	// Before the first Start the channel is nil and never ready.
	Done() <-chan struct{}
}

// New creates a new Wallpaper instance from a TOML configuration file on disk.
// An empty configPath runs with built-in defaults, which is how the walkbg-go
// binary behaves when no config file exists yet.
// The instance is created but not started; call Start() to begin operation.
//
// Example:
//
//	w, err := walkbg.New("/home/user/.config/walkbg/config.toml", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
func New(configPath string, opts *Options) (Wallpaper, error) {
	if opts == nil {
		defaultOpts := DefaultOptions()
		opts = &defaultOpts
	}

	if configPath == "" {
		cfg := config.DefaultConfig()
		return &wallpaperImpl{
			cfg:          &cfg,
			opts:         *opts,
			configSource: "defaults",
			configLoader: func() (*config.Config, error) {
				c := config.DefaultConfig()
				return &c, nil
			},
		}, nil
	}

	loader := func() (*config.Config, error) {
		cfg, warnings, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if err := vetConfig(cfg, warnings, opts.Logger); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg, err := loader()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &wallpaperImpl{
		cfg:          cfg,
		opts:         *opts,
		configSource: configPath,
		configLoader: loader,
	}, nil
}

// NewFromFS creates a new Wallpaper instance using configuration from an
// embedded filesystem. This enables bundling a configuration file within the
// application binary using Go's embed package.
//
// The fsys parameter should contain the configuration file, and configPath is
// the path within the filesystem to it.
//
// Example:
//
//	//go:embed configs/*
//	var configFS embed.FS
//
//	w, err := walkbg.NewFromFS(configFS, "configs/walkbg.toml", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
func NewFromFS(fsys fs.FS, configPath string, opts *Options) (Wallpaper, error) {
	if opts == nil {
		defaultOpts := DefaultOptions()
		opts = &defaultOpts
	}

	loader := func() (*config.Config, error) {
		content, err := fs.ReadFile(fsys, configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		return parseAndVet(content, opts.Logger)
	}

	cfg, err := loader()
	if err != nil {
		return nil, fmt.Errorf("parse config from FS: %w", err)
	}

	return &wallpaperImpl{
		cfg:          cfg,
		opts:         *opts,
		configSource: "embedded:" + configPath,
		configLoader: loader,
	}, nil
}

// NewFromReader creates a new Wallpaper instance from TOML configuration
// content provided as an io.Reader. This is useful for dynamically generated
// configurations.
//
// Example:
//
//	cfg := strings.NewReader(`
//		walks_per_minute = 60.0
//		palette = "random"
//	`)
//	w, err := walkbg.NewFromReader(cfg, nil)
func NewFromReader(r io.Reader, opts *Options) (Wallpaper, error) {
	if opts == nil {
		defaultOpts := DefaultOptions()
		opts = &defaultOpts
	}

	// Read content once (can't re-read a Reader)
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	loader := func() (*config.Config, error) {
		return parseAndVet(content, opts.Logger)
	}

	cfg, err := loader()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &wallpaperImpl{
		cfg:          cfg,
		opts:         *opts,
		configSource: "reader",
		configLoader: loader,
	}, nil
}

// parseAndVet parses raw TOML content, expands environment references and
// validates the result. Disk files go through config.Load instead, which
// does the same before vetConfig.
func parseAndVet(content []byte, logger Logger) (*config.Config, error) {
	cfg, warnings, err := config.Parse(content)
	if err != nil {
		return nil, err
	}
	config.ExpandEnvConfig(cfg)
	if err := vetConfig(cfg, warnings, logger); err != nil {
		return nil, err
	}
	return cfg, nil
}

// vetConfig validates a parsed configuration and surfaces parser and
// validation warnings through the logger. Warnings never fail the load;
// validation errors do.
func vetConfig(cfg *config.Config, parseWarnings []string, logger Logger) error {
	if logger == nil {
		logger = NopLogger()
	}
	for _, w := range parseWarnings {
		logger.Warn(w)
	}
	result := config.Validate(cfg)
	for _, w := range result.Warnings {
		logger.Warn("config warning", "field", w.Field, "detail", w.Message)
	}
	return result.Error()
}
