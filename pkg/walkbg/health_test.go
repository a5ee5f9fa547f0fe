package walkbg

import (
	"errors"
	"testing"
	"time"
)

func TestHealthCheck_Predicates(t *testing.T) {
	tests := []struct {
		status        HealthStatus
		wantHealthy   bool
		wantDegraded  bool
		wantUnhealthy bool
	}{
		{HealthOK, true, false, false},
		{HealthDegraded, false, true, false},
		{HealthUnhealthy, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			h := HealthCheck{Status: tt.status}
			if got := h.IsHealthy(); got != tt.wantHealthy {
				t.Errorf("IsHealthy() = %v, want %v", got, tt.wantHealthy)
			}
			if got := h.IsDegraded(); got != tt.wantDegraded {
				t.Errorf("IsDegraded() = %v, want %v", got, tt.wantDegraded)
			}
			if got := h.IsUnhealthy(); got != tt.wantUnhealthy {
				t.Errorf("IsUnhealthy() = %v, want %v", got, tt.wantUnhealthy)
			}
		})
	}
}

func TestHealth_StoppedInstance(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	health := w.Health()

	if !health.IsUnhealthy() {
		t.Errorf("stopped instance Status = %v, want unhealthy", health.Status)
	}
	if health.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
	if health.Message == "" {
		t.Error("Message is empty")
	}

	for _, name := range []string{"instance", "surfaces", "errors"} {
		if _, ok := health.Components[name]; !ok {
			t.Errorf("missing component %q", name)
		}
	}
	if got := health.Components["instance"].Status; got != HealthUnhealthy {
		t.Errorf("instance component = %v, want unhealthy", got)
	}
}

func TestHealth_ErrorsComponentReflectsLastError(t *testing.T) {
	w, err := New("", nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	impl := w.(*wallpaperImpl)
	if err := impl.initComponents(); err != nil {
		t.Fatalf("initComponents error = %v", err)
	}

	if got := w.Health().Components["errors"].Status; got != HealthOK {
		t.Errorf("errors component with no errors = %v, want ok", got)
	}

	// notifyError stores the error synchronously; only handlers run async.
	impl.notifyError(errors.New("present failed"))

	health := w.Health()
	errComp := health.Components["errors"]
	if errComp.Status != HealthDegraded {
		t.Errorf("errors component after error = %v, want degraded", errComp.Status)
	}
	if errComp.Message == "" {
		t.Error("errors component message is empty")
	}
	if time.Since(errComp.LastUpdated) > time.Minute {
		t.Error("LastUpdated is stale")
	}
}
