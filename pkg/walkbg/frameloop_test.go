package walkbg

import (
	"testing"
	"time"

	"github.com/opd-ai/go-walkbg/internal/config"
	"github.com/opd-ai/go-walkbg/internal/walk"
)

func TestFrameLoop_ApplySettings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WalksPerMinute = 120.0
	cfg.StepSet = "diagonal"
	cfg.Boundary = "wrap"
	cfg.StepsPerFrame = 3
	cfg.TrailLength = 16

	l := &frameLoop{}
	if err := l.applySettings(&cfg); err != nil {
		t.Fatalf("applySettings error = %v", err)
	}

	if l.interval != 500*time.Millisecond {
		t.Errorf("interval = %v, want 500ms", l.interval)
	}
	if l.stepSet != walk.StepDiagonal {
		t.Errorf("stepSet = %v, want diagonal", l.stepSet)
	}
	if l.boundary != walk.BoundaryWrap {
		t.Errorf("boundary = %v, want wrap", l.boundary)
	}
	if l.stepsPerFrame != 3 {
		t.Errorf("stepsPerFrame = %d, want 3", l.stepsPerFrame)
	}
	if l.trailLen != 16 {
		t.Errorf("trailLen = %d, want 16", l.trailLen)
	}
	if l.renderer == nil {
		t.Error("renderer is nil after applySettings")
	}
}

func TestFrameLoop_ApplySettings_Override(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WalksPerMinute = 60.0 // 1s per step

	l := &frameLoop{override: 50 * time.Millisecond}
	if err := l.applySettings(&cfg); err != nil {
		t.Fatalf("applySettings error = %v", err)
	}

	if l.interval != 50*time.Millisecond {
		t.Errorf("interval = %v, want the 50ms override", l.interval)
	}
}

func TestFrameLoop_ApplySettings_BadRules(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StepSet = "teleport"

	l := &frameLoop{}
	if err := l.applySettings(&cfg); err == nil {
		t.Error("applySettings should reject an unknown step set")
	}
}

func TestFrameLoop_NewTrail(t *testing.T) {
	l := &frameLoop{trailLen: 0}
	if got := l.newTrail(); got != nil {
		t.Errorf("newTrail with length 0 = %v, want nil", got)
	}

	l.trailLen = 8
	trail := l.newTrail()
	if trail == nil {
		t.Fatal("newTrail with length 8 returned nil")
	}
	if trail.Cap() != 8 {
		t.Errorf("trail capacity = %d, want 8", trail.Cap())
	}
}
