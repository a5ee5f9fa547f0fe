// Package main provides the entry point for the walkbg-go wallpaper
// daemon. It renders a slowly evolving random walk onto background-layer
// surfaces, one per output, through the walkbg public API.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-walkbg/internal/config"
	"github.com/opd-ai/go-walkbg/internal/profiling"
	"github.com/opd-ai/go-walkbg/pkg/walkbg"
)

// Version is the current version of walkbg-go.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

// configEnvVar is consulted for the config path when no -c flag is given,
// before falling back to the default location.
const configEnvVar = "WALKBG_CONFIG"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("c", "", "Path to configuration file (TOML)")
	display := flag.String("display", "", "Display to connect to (defaults to $DISPLAY)")
	version := flag.Bool("v", false, "Print version and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	watch := flag.Bool("watch", false, "Reload the configuration file automatically when it changes")
	cpuProfile := flag.String("cpuprofile", "", "Write CPU profile to file")
	memProfile := flag.String("memprofile", "", "Write memory profile to file")
	memWatch := flag.Bool("memwatch", false, "Log sustained memory growth")
	flag.Parse()

	if *version {
		fmt.Printf("walkbg-go version %s\n", Version)
		return 0
	}

	// Initialize profiling if requested
	profConfig := profiling.Config{
		CPUProfilePath: *cpuProfile,
		MemProfilePath: *memProfile,
	}
	profiler := profiling.New(profConfig)
	if profConfig.Enabled() {
		if err := profiler.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start profiling: %v\n", err)
			return 1
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to stop profiling: %v\n", err)
			}
		}()
	}

	logger := walkbg.DefaultLogger()
	if *debug {
		logger = walkbg.DebugLogger()
	}

	path, explicit := resolveConfigPath(*configPath)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			switch {
			case os.IsNotExist(err) && !explicit:
				// A config at the default location is optional.
				logger.Warn("no config file found, using defaults", "path", path)
				path = ""
			case os.IsNotExist(err):
				fmt.Fprintf(os.Stderr, "Configuration file not found: %s\n", path)
				return 1
			default:
				fmt.Fprintf(os.Stderr, "Error accessing configuration file %s: %v\n", path, err)
				return 1
			}
		}
	}

	opts := walkbg.DefaultOptions()
	opts.Display = *display
	opts.Logger = logger
	opts.WatchConfig = *watch

	w, err := walkbg.New(path, &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return walkbg.ExitCode(err)
	}

	w.SetErrorHandler(func(err error) {
		logger.Error("runtime error", "error", err)
	})

	// Optional leak watchdog for long sessions
	if *memWatch {
		watcher := profiling.NewMemWatcher(profiling.DefaultMemWatchConfig())
		watcher.OnGrowth(func(g profiling.Growth) {
			logger.Warn("sustained memory growth", "detail", g.String())
		})
		if err := watcher.Start(); err != nil {
			logger.Warn("memory watchdog unavailable", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	if err := w.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return walkbg.ExitCode(err)
	}

	logger.Info("walkbg running", "version", Version, "config", w.Status().ConfigSource)

	// SIGHUP reloads in place; SIGINT and SIGTERM shut down.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Info("received SIGHUP, reloading configuration")
				if err := w.ReloadConfig(); err != nil {
					fmt.Fprintf(os.Stderr, "Reload failed: %v\n", err)
				}
			default:
				logger.Info("shutting down", "signal", sig.String())
				if err := w.Stop(); err != nil {
					fmt.Fprintf(os.Stderr, "Stop error: %v\n", err)
					return 1
				}
				return 0
			}

		case <-w.Done():
			// The frame loop ended on its own: clean when every surface
			// vanished, fatal otherwise.
			err := w.Status().TerminalError
			if err != nil {
				fmt.Fprintf(os.Stderr, "walkbg exited: %v\n", err)
			}
			return walkbg.ExitCode(err)
		}
	}
}

// resolveConfigPath picks the configuration file path from the flag, the
// environment or the default location, in that order. explicit reports
// whether the user named the path directly, in which case a missing file
// is an error rather than a fallback to defaults.
func resolveConfigPath(flagValue string) (path string, explicit bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if env := os.Getenv(configEnvVar); env != "" {
		return env, true
	}
	return config.DefaultPath(), false
}
