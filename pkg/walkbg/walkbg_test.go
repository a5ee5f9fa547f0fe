package walkbg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/opd-ai/go-walkbg/internal/config"
)

const validTOML = `
walks_per_minute = 120.0
pixels_per_point = 8
dot_radius = 2
bg_color = "#101010"
fg_color = "#3a86ff"
active_color = "#ffbe0b"
seed = 42
step_set = "diagonal"
boundary = "wrap"
steps_per_frame = 2
palette = "heat"
trail_length = 32
`

func TestNew_Defaults(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New(\"\") error = %v", err)
	}

	status := w.Status()
	if status.Running {
		t.Error("new instance reports running")
	}
	if status.ConfigSource != "defaults" {
		t.Errorf("ConfigSource = %q, want %q", status.ConfigSource, "defaults")
	}
	if w.IsRunning() {
		t.Error("IsRunning() = true before Start")
	}
	if w.Done() != nil {
		t.Error("Done() before first Start should be nil")
	}
}

func TestNew_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(validTOML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w, err := New(path, nil)
	if err != nil {
		t.Fatalf("New(%q) error = %v", path, err)
	}
	if got := w.Status().ConfigSource; got != path {
		t.Errorf("ConfigSource = %q, want %q", got, path)
	}
}

func TestNew_MissingFile(t *testing.T) {
	if _, err := New("/nonexistent/walkbg.toml", nil); err == nil {
		t.Error("New with a missing file should fail")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	bad := strings.Replace(validTOML, `step_set = "diagonal"`, `step_set = "teleport"`, 1)
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := New(path, nil); err == nil {
		t.Error("New with an invalid step_set should fail validation")
	}
}

func TestNew_MalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("walks_per_minute = = 60"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := New(path, nil); err == nil {
		t.Error("New with malformed TOML should fail")
	}
}

func TestNewFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"configs/walkbg.toml": &fstest.MapFile{Data: []byte(validTOML)},
	}

	w, err := NewFromFS(fsys, "configs/walkbg.toml", nil)
	if err != nil {
		t.Fatalf("NewFromFS error = %v", err)
	}
	if got := w.Status().ConfigSource; got != "embedded:configs/walkbg.toml" {
		t.Errorf("ConfigSource = %q, want embedded:configs/walkbg.toml", got)
	}
}

func TestNewFromFS_MissingFile(t *testing.T) {
	fsys := fstest.MapFS{}
	if _, err := NewFromFS(fsys, "configs/walkbg.toml", nil); err == nil {
		t.Error("NewFromFS with a missing file should fail")
	}
}

func TestNewFromReader(t *testing.T) {
	w, err := NewFromReader(strings.NewReader(validTOML), nil)
	if err != nil {
		t.Fatalf("NewFromReader error = %v", err)
	}
	if got := w.Status().ConfigSource; got != "reader" {
		t.Errorf("ConfigSource = %q, want reader", got)
	}
}

func TestNewFromReader_Malformed(t *testing.T) {
	if _, err := NewFromReader(strings.NewReader("not [valid"), nil); err == nil {
		t.Error("NewFromReader with malformed TOML should fail")
	}
}

func TestNewFromReader_UnknownKeyIsWarning(t *testing.T) {
	// Unknown keys warn but do not fail, so configs stay forward-compatible.
	content := validTOML + "\nfuture_knob = true\n"

	var warned bool
	logger := &recordingLogger{onWarn: func(string) { warned = true }}
	opts := DefaultOptions()
	opts.Logger = logger

	if _, err := NewFromReader(strings.NewReader(content), &opts); err != nil {
		t.Fatalf("NewFromReader error = %v", err)
	}
	if !warned {
		t.Error("unknown key did not produce a warning")
	}
}

func TestStopBeforeStart(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop before Start error = %v, want nil", err)
	}
}

func TestReloadConfigBeforeStart(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := w.ReloadConfig(); err == nil {
		t.Error("ReloadConfig before Start should fail")
	}
}

func TestHealthBeforeStart(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	health := w.Health()
	if !health.IsUnhealthy() {
		t.Errorf("Health().Status = %v, want unhealthy before Start", health.Status)
	}
	if health.Uptime != 0 {
		t.Errorf("Uptime = %v, want 0 before Start", health.Uptime)
	}
	if _, ok := health.Components["instance"]; !ok {
		t.Error("health is missing the instance component")
	}
}

func TestSetHandlersBeforeStart(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	// Registering handlers on a stopped instance must be safe.
	w.SetErrorHandler(func(error) {})
	w.SetEventHandler(func(Event) {})
}

func TestParseAndVet(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg, err := parseAndVet([]byte(validTOML), nil)
		if err != nil {
			t.Fatalf("parseAndVet error = %v", err)
		}
		if cfg.WalksPerMinute != 120.0 {
			t.Errorf("WalksPerMinute = %f, want 120", cfg.WalksPerMinute)
		}
		if cfg.StepSet != "diagonal" {
			t.Errorf("StepSet = %q, want diagonal", cfg.StepSet)
		}
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("WALKBG_TEST_COLOR", "#aabbcc")
		cfg, err := parseAndVet([]byte(strings.Replace(validTOML,
			`fg_color = "#3a86ff"`, `fg_color = "${WALKBG_TEST_COLOR}"`, 1)), nil)
		if err != nil {
			t.Fatalf("parseAndVet error = %v", err)
		}
		if cfg.FGColor != "#aabbcc" {
			t.Errorf("FGColor = %q, want expanded #aabbcc", cfg.FGColor)
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		bad := strings.Replace(validTOML, "walks_per_minute = 120.0", "walks_per_minute = -5.0", 1)
		if _, err := parseAndVet([]byte(bad), nil); err == nil {
			t.Error("negative cadence should fail validation")
		}
	})
}

func TestVetConfig_WarningsDoNotFail(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WalksPerMinute = 12000 // Under 10ms per step, warns but passes

	var warnings int
	logger := &recordingLogger{onWarn: func(string) { warnings++ }}

	if err := vetConfig(&cfg, nil, logger); err != nil {
		t.Errorf("vetConfig error = %v, want nil for warning-only config", err)
	}
	if warnings == 0 {
		t.Error("expected a warning for extreme cadence")
	}
}

// recordingLogger counts warnings for tests.
type recordingLogger struct {
	onWarn func(msg string)
}

func (l *recordingLogger) Debug(msg string, args ...any) {}
func (l *recordingLogger) Info(msg string, args ...any)  {}
func (l *recordingLogger) Warn(msg string, args ...any) {
	if l.onWarn != nil {
		l.onWarn(msg)
	}
}
func (l *recordingLogger) Error(msg string, args ...any) {}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Display != "" {
		t.Errorf("Display = %q, want empty (environment default)", opts.Display)
	}
	if opts.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want %v", opts.ShutdownTimeout, DefaultShutdownTimeout)
	}
	if opts.WalkInterval != 0 {
		t.Errorf("WalkInterval = %v, want 0 (config decides)", opts.WalkInterval)
	}
	if opts.WatchConfig {
		t.Error("WatchConfig should default to false")
	}
	if opts.WatchDebounce != 0 {
		t.Errorf("WatchDebounce = %v, want 0 (watcher default applies)", opts.WatchDebounce)
	}
}

func TestWatchEnabled(t *testing.T) {
	mk := func(source string, optWatch, cfgWatch bool) *wallpaperImpl {
		cfg := config.DefaultConfig()
		cfg.WatchConfig = cfgWatch
		opts := DefaultOptions()
		opts.WatchConfig = optWatch
		return &wallpaperImpl{cfg: &cfg, opts: opts, configSource: source}
	}

	tests := []struct {
		name string
		impl *wallpaperImpl
		want bool
	}{
		{"disk path with option", mk("/tmp/config.toml", true, false), true},
		{"disk path with config flag", mk("/tmp/config.toml", false, true), true},
		{"disk path without request", mk("/tmp/config.toml", false, false), false},
		{"defaults source", mk("defaults", true, true), false},
		{"reader source", mk("reader", true, true), false},
		{"embedded source", mk("embedded:configs/a.toml", true, true), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.impl.watchEnabled(); got != tt.want {
				t.Errorf("watchEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNotifyError_Handler(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	impl := w.(*wallpaperImpl)
	if err := impl.initComponents(); err != nil {
		t.Fatalf("initComponents error = %v", err)
	}

	got := make(chan error, 1)
	w.SetErrorHandler(func(e error) { got <- e })

	testErr := os.ErrPermission
	impl.notifyError(testErr)

	select {
	case e := <-got:
		if e != testErr {
			t.Errorf("handler received %v, want %v", e, testErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not invoked")
	}

	if status := w.Status(); status.LastError != testErr {
		t.Errorf("Status().LastError = %v, want %v", status.LastError, testErr)
	}
}

func TestEmitEvent_Handler(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	impl := w.(*wallpaperImpl)

	got := make(chan Event, 1)
	w.SetEventHandler(func(ev Event) { got <- ev })

	impl.emitEvent(EventConfigReloaded, "test reload")

	select {
	case ev := <-got:
		if ev.Type != EventConfigReloaded {
			t.Errorf("event type = %v, want %v", ev.Type, EventConfigReloaded)
		}
		if ev.Message != "test reload" {
			t.Errorf("event message = %q, want %q", ev.Message, "test reload")
		}
		if ev.Timestamp.IsZero() {
			t.Error("event timestamp is zero")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event handler was not invoked")
	}
}

func TestEmitEvent_HandlerPanicIsContained(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	impl := w.(*wallpaperImpl)

	caught := make(chan error, 1)
	w.SetErrorHandler(func(e error) { caught <- e })
	w.SetEventHandler(func(Event) { panic("bad handler") })

	impl.emitEvent(EventStarted, "boom trigger")

	select {
	case e := <-caught:
		if !strings.Contains(e.Error(), "panic in event handler") {
			t.Errorf("error = %v, want panic wrapper", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("panic in event handler was not reported")
	}
}
