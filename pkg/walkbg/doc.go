// Package walkbg provides the public API for embedding the walkbg wallpaper
// renderer. It allows third-party applications to run the random-walk
// background as a library component with full lifecycle management and
// configuration flexibility.
//
// # Basic Usage
//
// The simplest way to use walkbg is to create an instance from a configuration
// file:
//
//	w, err := walkbg.New("/path/to/config.toml", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
//
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//
// # Configuration Sources
//
// Walkbg supports three configuration sources:
//
//   - Disk file: Use [New] to load from a filesystem path
//   - Embedded FS: Use [NewFromFS] to load from an [io/fs.FS]
//   - io.Reader: Use [NewFromReader] for dynamic configurations
//
// Passing an empty path to [New] runs with built-in defaults.
//
// # Lifecycle Management
//
// The [Wallpaper] interface provides full lifecycle control:
//
//   - [Wallpaper.Start] connects to the display server and begins rendering
//   - [Wallpaper.Stop] gracefully shuts the instance down
//   - [Wallpaper.Restart] reloads configuration and restarts
//   - [Wallpaper.ReloadConfig] applies new configuration without restarting
//   - [Wallpaper.IsRunning] checks if the instance is active
//   - [Wallpaper.Done] is closed when the instance stops for any reason
//
// All methods are thread-safe and can be called from any goroutine.
//
// # Error Handling
//
// Runtime errors are reported through [ErrorHandler]:
//
//	w.SetErrorHandler(func(err error) {
//		log.Printf("walkbg error: %v", err)
//	})
//
// The handler is called asynchronously; do not block in the handler.
//
// A display session can refuse walkbg outright, for example when the window
// manager does not honor desktop-type windows. [ExitCode] maps such errors
// to the process exit codes the walkbg-go binary documents.
package walkbg
