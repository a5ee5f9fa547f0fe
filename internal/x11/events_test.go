package x11

import (
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shm"
	"github.com/jezek/xgb/xproto"
)

func TestTranslateConfigure(t *testing.T) {
	ev := translate(xproto.ConfigureNotifyEvent{
		Window: 7,
		Width:  1920,
		Height: 1080,
	})
	cfg, ok := ev.(Configured)
	if !ok {
		t.Fatalf("translate(ConfigureNotify) = %T, want Configured", ev)
	}
	if cfg.Window != 7 || cfg.Width != 1920 || cfg.Height != 1080 {
		t.Errorf("Configured = %+v, want window 7, 1920x1080", cfg)
	}
}

func TestTranslateCompletion(t *testing.T) {
	ev := translate(shm.CompletionEvent{
		Drawable: xproto.Drawable(9),
		Shmseg:   shm.Seg(4),
	})
	done, ok := ev.(FrameDone)
	if !ok {
		t.Fatalf("translate(CompletionEvent) = %T, want FrameDone", ev)
	}
	if done.Window != 9 || done.Seg != 4 {
		t.Errorf("FrameDone = %+v, want window 9, seg 4", done)
	}
}

func TestTranslateExpose(t *testing.T) {
	// Intermediate events of an expose series are dropped; only the final
	// one (Count == 0) triggers a repaint.
	if ev := translate(xproto.ExposeEvent{Window: 3, Count: 2}); ev != nil {
		t.Errorf("translate(Expose count=2) = %v, want nil", ev)
	}

	ev := translate(xproto.ExposeEvent{Window: 3, Count: 0})
	exp, ok := ev.(Exposed)
	if !ok {
		t.Fatalf("translate(Expose count=0) = %T, want Exposed", ev)
	}
	if exp.Window != 3 {
		t.Errorf("Exposed.Window = %d, want 3", exp.Window)
	}
}

func TestTranslateDestroy(t *testing.T) {
	ev := translate(xproto.DestroyNotifyEvent{Window: 5})
	closed, ok := ev.(Closed)
	if !ok {
		t.Fatalf("translate(DestroyNotify) = %T, want Closed", ev)
	}
	if closed.Window != 5 {
		t.Errorf("Closed.Window = %d, want 5", closed.Window)
	}
}

func TestTranslateIgnoresOthers(t *testing.T) {
	ignored := []xgb.Event{
		xproto.MapNotifyEvent{Window: 1},
		xproto.UnmapNotifyEvent{Window: 1},
		xproto.ReparentNotifyEvent{Window: 1},
	}
	for _, ev := range ignored {
		if got := translate(ev); got != nil {
			t.Errorf("translate(%T) = %v, want nil", ev, got)
		}
	}
}
