package walkbg

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jezek/xgb/xproto"

	"github.com/opd-ai/go-walkbg/internal/config"
	"github.com/opd-ai/go-walkbg/internal/render"
	"github.com/opd-ai/go-walkbg/internal/walk"
	"github.com/opd-ai/go-walkbg/internal/x11"
)

var (
	// errSurfacesGone means every background window was destroyed by an
	// outside actor, leaving nothing to draw on. The loop treats it as a
	// clean shutdown.
	errSurfacesGone = errors.New("all surfaces closed")

	errEventStreamClosed = errors.New("event stream closed")
	errServerHungUp      = errors.New("connection closed by server")
)

// canvas pairs one surface with the walk it displays. Each output runs
// its own walk, so a two-monitor session shows two independent walks.
type canvas struct {
	surface *x11.Surface
	walker  *walk.Walker
	grid    *walk.Grid
	trail   *walk.Trail

	// redraw marks a frame owed to the surface as soon as it can take
	// one, set whenever a present had to be skipped or state changed
	// while a commit was in flight.
	redraw bool
}

// frameLoopDeps carries what the frame loop borrows from its owner.
type frameLoopDeps struct {
	logger  Logger
	metrics *Metrics
	frames  *atomic.Uint64

	// override forces the walk cadence regardless of configuration.
	// Zero means the configuration decides.
	override time.Duration
}

// frameLoop owns the display connection, every surface and all walk state.
// Everything below runs on a single goroutine; the only concurrent piece
// is the event pump, which communicates exclusively through a channel.
type frameLoop struct {
	client  *x11.Client
	logger  Logger
	metrics *Metrics
	frames  *atomic.Uint64

	override time.Duration

	// Working form of the applied configuration snapshot.
	renderer      *render.Renderer
	stepSet       walk.StepSet
	boundary      walk.BoundaryPolicy
	seed          int64
	stepsPerFrame int
	trailLen      int
	interval      time.Duration

	canvases map[xproto.Window]*canvas

	// reload carries validated config snapshots from ReloadConfig into
	// the loop goroutine.
	reload chan *config.Config

	ticker *time.Ticker
}

// newFrameLoop creates one surface per connected output and prepares the
// loop. On error the caller owns closing the client, which also destroys
// any surfaces created before the failure.
func newFrameLoop(client *x11.Client, cfg *config.Config, deps frameLoopDeps) (*frameLoop, error) {
	l := &frameLoop{
		client:   client,
		logger:   deps.logger,
		metrics:  deps.metrics,
		frames:   deps.frames,
		override: deps.override,
		canvases: make(map[xproto.Window]*canvas),
		reload:   make(chan *config.Config),
	}
	if err := l.applySettings(cfg); err != nil {
		return nil, err
	}

	outputs := client.Outputs()
	for _, geom := range outputs {
		s, err := client.CreateSurface(geom)
		if err != nil {
			return nil, fmt.Errorf("create surface for output %dx%d%+d%+d: %w",
				geom.Width, geom.Height, geom.X, geom.Y, err)
		}
		l.canvases[s.ID()] = &canvas{surface: s}
	}

	l.logger.Info("surfaces created",
		"outputs", len(outputs),
		"vendor", client.Vendor())
	return l, nil
}

// surfaceCount returns the number of live canvases.
func (l *frameLoop) surfaceCount() int {
	return len(l.canvases)
}

// applySettings decomposes a validated configuration snapshot into the
// loop's working form. Per-canvas state is untouched; applyConfig and
// configure handle that.
func (l *frameLoop) applySettings(cfg *config.Config) error {
	stepSet, boundary, err := cfg.Rules()
	if err != nil {
		return err
	}
	rc, err := cfg.RenderConfig()
	if err != nil {
		return err
	}

	l.stepSet = stepSet
	l.boundary = boundary
	l.seed = cfg.Seed
	l.stepsPerFrame = cfg.StepsPerFrame
	l.trailLen = cfg.TrailLength
	l.renderer = render.NewRenderer(rc)

	l.interval = cfg.WalkInterval()
	if l.override > 0 {
		l.interval = l.override
	}
	return nil
}

// run drives the loop until the context is cancelled or a fatal error
// arrives. It returns nil on clean shutdown, including the case where
// every surface was destroyed from outside.
func (l *frameLoop) run(ctx context.Context) error {
	stop := make(chan struct{})
	events := make(chan x11.Event, 16)
	go l.client.Pump(stop, events)

	l.ticker = time.NewTicker(l.interval)

	defer func() {
		l.ticker.Stop()
		close(stop)
		// Closing the connection is what unblocks the pump; draining the
		// channel until the pump closes it guarantees it exited.
		l.client.Close()
		for range events {
		}
	}()

	l.logger.Info("frame loop running",
		"surfaces", len(l.canvases),
		"interval", l.interval,
		"steps_per_frame", l.stepsPerFrame)

	for {
		select {
		case <-ctx.Done():
			return nil

		case cfg := <-l.reload:
			if err := l.applyConfig(cfg); err != nil {
				return err
			}

		case <-l.ticker.C:
			if err := l.tick(); err != nil {
				return err
			}

		case ev, ok := <-events:
			if !ok {
				return &x11.ProtocolError{Op: "event pump", Err: errEventStreamClosed}
			}
			if err := l.handle(ev); err != nil {
				if errors.Is(err, errSurfacesGone) {
					l.logger.Warn("all surfaces closed, shutting down")
					return nil
				}
				return err
			}
		}
	}
}

// tick advances every configured walk by stepsPerFrame cells and presents
// the result. A surface that cannot take a frame right now drops it; the
// walk advances regardless, so cadence never depends on the server.
func (l *frameLoop) tick() error {
	for _, cv := range l.canvases {
		if cv.walker == nil {
			continue
		}

		for i := 0; i < l.stepsPerFrame; i++ {
			p := cv.walker.Advance()
			cv.grid.Visit(p)
			if cv.trail != nil {
				cv.trail.Push(p)
			}
		}
		l.metrics.AddSteps(int64(l.stepsPerFrame))

		presented, err := l.present(cv)
		if err != nil {
			return err
		}
		if !presented {
			l.metrics.IncrementDroppedFrames()
		}
	}
	return nil
}

// present draws the canvas into a free buffer and commits it. When the
// surface cannot take a frame, because it is unconfigured, mid-resize or
// still waiting on the previous commit, the frame is owed instead and
// retried on the next completion.
func (l *frameLoop) present(cv *canvas) (bool, error) {
	s := cv.surface
	if cv.walker == nil || !s.SizeSettled() || s.AwaitingFrame() {
		cv.redraw = true
		return false, nil
	}

	buf, err := s.Acquire()
	if err != nil {
		if errors.Is(err, x11.ErrNoFreeBuffer) {
			cv.redraw = true
			return false, nil
		}
		return false, err
	}

	start := time.Now()
	l.renderer.Draw(buf.Pix, cv.grid, cv.trail, cv.walker.Pos())
	l.metrics.RecordRenderLatency(time.Since(start))

	start = time.Now()
	if err := s.Present(buf); err != nil {
		return false, err
	}
	l.metrics.RecordPresentLatency(time.Since(start))

	l.metrics.IncrementFramesPresented()
	l.frames.Add(1)
	cv.redraw = false
	return true, nil
}

// handle dispatches one display-server event. A non-nil return is fatal,
// except errSurfacesGone which run translates into a clean exit.
func (l *frameLoop) handle(ev x11.Event) error {
	switch e := ev.(type) {
	case x11.Configured:
		cv, ok := l.canvases[e.Window]
		if !ok {
			return nil
		}
		return l.configure(cv, e.Width, e.Height)

	case x11.FrameDone:
		cv, ok := l.canvases[e.Window]
		if !ok {
			return nil
		}
		if err := cv.surface.FrameDone(e.Seg); err != nil {
			return err
		}
		l.metrics.IncrementFramesCompleted()
		// A deferred resize may have just landed.
		l.syncGrid(cv)
		if cv.redraw {
			_, err := l.present(cv)
			return err
		}
		return nil

	case x11.Exposed:
		cv, ok := l.canvases[e.Window]
		if !ok {
			return nil
		}
		// Repaint current state without advancing the walk.
		_, err := l.present(cv)
		return err

	case x11.Closed:
		if _, ok := l.canvases[e.Window]; !ok {
			return nil
		}
		l.logger.Warn("surface destroyed from outside", "window", e.Window)
		l.client.Forget(e.Window)
		delete(l.canvases, e.Window)
		l.metrics.SetActiveSurfaces(len(l.canvases))
		if len(l.canvases) == 0 {
			return errSurfacesGone
		}
		return nil

	case x11.Disconnected:
		return &x11.ProtocolError{Op: "connection", Err: errServerHungUp}

	case x11.Fault:
		return e.Err
	}
	return nil
}

// configure records a server-granted size and shapes the canvas's walk
// state to the implied grid. The first configure creates the walk; later
// ones mean the output changed size.
func (l *frameLoop) configure(cv *canvas, width, height int) error {
	if err := cv.surface.SetSize(width, height); err != nil {
		return err
	}

	if cv.walker == nil {
		gw, gh := l.renderer.GridSize(width, height)
		cv.walker = walk.NewWalker(gw, gh, l.stepSet, l.boundary, l.seed)
		cv.grid = walk.NewGrid(gw, gh)
		cv.trail = l.newTrail()
		l.logger.Debug("surface configured",
			"window", cv.surface.ID(),
			"size", fmt.Sprintf("%dx%d", width, height),
			"grid", fmt.Sprintf("%dx%d", gw, gh))
	} else {
		l.syncGrid(cv)
	}

	_, err := l.present(cv)
	return err
}

// syncGrid reshapes the canvas's walk state when the pool size no longer
// matches it, which happens on a resize, possibly one deferred past an
// in-flight frame. The walker keeps its position and random stream; the
// visit history restarts because old counts describe a different grid.
func (l *frameLoop) syncGrid(cv *canvas) {
	if cv.walker == nil {
		return
	}
	w, h := cv.surface.Size()
	gw, gh := l.renderer.GridSize(w, h)
	if cw, ch := cv.walker.Size(); cw != gw || ch != gh {
		cv.walker.Resize(gw, gh)
		cv.grid.Resize(gw, gh)
		if cv.trail != nil {
			cv.trail.Reset()
		}
		cv.redraw = true
	}
}

// newTrail builds a trail ring at the configured length, or nil when the
// trail is disabled.
func (l *frameLoop) newTrail() *walk.Trail {
	if l.trailLen <= 0 {
		return nil
	}
	return walk.NewTrail(l.trailLen)
}

// applyConfig swaps a new configuration snapshot in between frames. Walks
// keep their position and random stream; a changed cell size reshapes the
// grids, and a changed seed only affects walks created afterwards.
func (l *frameLoop) applyConfig(cfg *config.Config) error {
	oldTrailLen := l.trailLen
	if err := l.applySettings(cfg); err != nil {
		// Snapshots are validated before they reach the loop.
		l.logger.Error("config snapshot rejected, keeping previous", "error", err)
		return nil
	}
	l.ticker.Reset(l.interval)

	for _, cv := range l.canvases {
		if cv.walker == nil {
			continue
		}
		cv.walker.SetRules(l.stepSet, l.boundary)
		l.syncGrid(cv)
		if l.trailLen != oldTrailLen {
			cv.trail = l.newTrail()
		}

		// Everything below the active dot may look different now.
		if _, err := l.present(cv); err != nil {
			return err
		}
	}

	l.logger.Info("configuration applied",
		"interval", l.interval,
		"steps_per_frame", l.stepsPerFrame,
		"step_set", l.stepSet.String(),
		"trail_length", l.trailLen)
	return nil
}
