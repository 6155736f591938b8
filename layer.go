package drape

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/maptile"
	"github.com/sirupsen/logrus"

	"github.com/drapemap/drape/geo"
	"github.com/drapemap/drape/internal/d3"
	"github.com/drapemap/drape/render"
)

// Config constructs a Layer.
type Config struct {
	// ID is the host-facing layer id. Generated when empty.
	ID string
	// TilesetURL is the 3D Tiles manifest URL handed to the engine.
	TilesetURL string
	Anchor     Anchor
	// TileSpan is the host's tile pixel span. Default 512.
	TileSpan     float64
	LOD          LODConfig
	Processor    ProcessorConfig
	Capabilities Capabilities
	// RepaintInterval is the repaint-loop polling interval. Default
	// 50ms.
	RepaintInterval time.Duration
	Logger          *logrus.Logger
}

func (c Config) withDefaults() (Config, error) {
	if c.TilesetURL == "" {
		return c, errors.New("drape: tileset URL required")
	}
	if c.ID == "" {
		c.ID = "b3dm-" + uuid.NewString()
	}
	if c.TileSpan == 0 {
		c.TileSpan = DefaultTileSpan
	}
	if c.RepaintInterval == 0 {
		c.RepaintInterval = 50 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	c.LOD = c.LOD.withDefaults()
	return c, nil
}

// Layer is a custom layer conforming to the host renderer's
// attach/render/detach lifecycle. It drives the streaming engine, rebuilds
// the precision-split camera every frame and keeps repainting while
// asynchronous tile work is outstanding.
type Layer struct {
	cfg   Config
	log   *logrus.Entry
	hooks *Hooks

	// wantRepaint defers a repaint-loop start requested while a frame
	// holds the mutex.
	wantRepaint atomic.Bool

	mu       sync.Mutex
	engine   Engine
	renderer render.Renderer
	host     Host
	gc       render.Context
	lod      LODCamera
	repaint  *time.Ticker
	stopped  chan struct{}
}

// NewLayer builds a layer over an engine and a renderer. The tile
// post-processor is registered at PhaseProcess before the engine can fire
// any load event; fade plugins and other decoration register against
// Hooks() at PhaseDecorate.
func NewLayer(cfg Config, engine Engine, renderer render.Renderer) (*Layer, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, errors.New("drape: nil streaming engine")
	}
	if renderer == nil {
		return nil, errors.New("drape: nil renderer")
	}
	l := &Layer{
		cfg:      cfg,
		log:      cfg.Logger.WithField("layer", cfg.ID),
		hooks:    &Hooks{},
		engine:   engine,
		renderer: renderer,
	}
	proc := NewTileProcessor(cfg.Processor, cfg.Logger)
	l.hooks.OnModelLoaded(PhaseProcess, proc.Process)
	l.hooks.OnTilesetLoaded(func() {
		l.log.WithField("url", cfg.TilesetURL).Info("tileset manifest loaded")
		l.requestRepaint()
	})
	l.hooks.OnLoadError(func(url string, err error) {
		// Policy: log and take no corrective action. The tile stays
		// absent or at parent LOD; retry is the engine's concern.
		l.log.WithFields(logrus.Fields{"tile": url, "error": err}).Error("tile load failed")
	})
	l.hooks.OnNeedsRender(func() {
		l.requestRepaint()
	})
	engine.SetHooks(l.hooks)
	return l, nil
}

// ID returns the layer id.
func (l *Layer) ID() string { return l.cfg.ID }

// Hooks exposes the observer list so decoration plugins can register at
// PhaseDecorate.
func (l *Layer) Hooks() *Hooks { return l.hooks }

// Attach binds the layer to a host and its graphics context. The decoy
// traversal camera is created here, once, and never moves afterward.
func (l *Layer) Attach(host Host, gc render.Context) error {
	if host == nil || gc == nil {
		return errors.New("drape: attach needs a host and a graphics context")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine == nil {
		return errors.New("drape: layer already disposed")
	}
	l.host = host
	l.gc = gc
	l.lod = NewLODCamera(l.cfg.Anchor, l.cfg.LOD)
	if ce, ok := l.engine.(CapableEngine); ok {
		ce.Apply(l.cfg.Capabilities)
	}
	l.engine.SetTraversalCamera(l.lod)
	w, h := host.CanvasSize()
	l.engine.SetVirtualResolution(l.lod.VirtualResolution(w, h))

	t := geo.Tile(l.cfg.Anchor.Lng, l.cfg.Anchor.Lat, maptile.Zoom(16))
	l.log.WithFields(logrus.Fields{
		"anchor":  []float64{l.cfg.Anchor.Lng, l.cfg.Anchor.Lat},
		"tile_16": []uint32{t.X, t.Y},
	}).Info("layer attached")
	return nil
}

// Render draws one frame. It is a silent no-op whenever required state is
// missing, which is the defense against repaint ticks racing teardown. Any
// failure inside the frame is logged and contained; one bad frame must not
// break the host's subsequent frames.
func (l *Layer) Render() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.host == nil || l.gc == nil || l.engine == nil || l.renderer == nil {
		return
	}

	// Track window resizes in the virtual resolution.
	w, h := l.host.CanvasSize()
	l.engine.SetVirtualResolution(l.lod.VirtualResolution(w, h))

	// Rebuild transform state from the current frame's host camera; no
	// caching across a zoom change.
	ws := WorldSize(l.cfg.TileSpan, l.host.Zoom())
	e2m := EcefToMercator(l.cfg.Anchor, ws)
	lng, lat := l.host.Center()
	camX, camY := ViewCenterMercator(lng, lat, ws)
	cam := SplitCamera(d3.NewTransformColMajor(l.host.ProjectionMatrix()), e2m, camX, camY)

	l.engine.Update()

	root := l.engine.Scene()
	if root != nil {
		guard := l.gc.Save()
		l.gc.ClearDepth()
		if err := l.renderer.Render(root, cam); err != nil {
			l.log.WithField("error", err).Error("tile draw failed")
		}
		guard.Restore()
	}

	if l.wantRepaint.Swap(false) || l.engine.Stats().Busy() {
		l.ensureRepaintLoopLocked()
	}
}

// Detach tears the layer down: stops the repaint loop, disposes the engine
// and drops every reference. Idempotent; a still-scheduled Render after
// Detach is a no-op.
func (l *Layer) Detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopRepaintLocked()
	if l.engine != nil {
		l.engine.Dispose()
	}
	l.engine = nil
	l.renderer = nil
	l.host = nil
	l.gc = nil
}

// requestRepaint asks for the repaint loop from event dispatch. The engine
// fires events inside Update, which runs with the frame holding the mutex;
// taking it unconditionally here would deadlock. When the mutex is busy the
// request is parked in wantRepaint and the in-progress frame starts the
// loop at its end.
func (l *Layer) requestRepaint() {
	l.wantRepaint.Store(true)
	if !l.mu.TryLock() {
		return
	}
	defer l.mu.Unlock()
	if l.wantRepaint.Swap(false) {
		l.ensureRepaintLoopLocked()
	}
}

// ensureRepaintLoopLocked starts the polling bridge between the engine's
// event-driven pipeline and a host that only redraws on interaction. The
// loop self-terminates when a tick observes no outstanding work.
// Re-entrant starts are no-ops.
func (l *Layer) ensureRepaintLoopLocked() {
	if l.repaint != nil || l.host == nil {
		return
	}
	l.repaint = time.NewTicker(l.cfg.RepaintInterval)
	l.stopped = make(chan struct{})
	go l.repaintLoop(l.repaint, l.stopped)
}

func (l *Layer) repaintLoop(tick *time.Ticker, stopped chan struct{}) {
	for {
		select {
		case <-stopped:
			return
		case <-tick.C:
		}
		l.mu.Lock()
		if l.engine == nil || l.host == nil {
			l.stopRepaintLocked()
			l.mu.Unlock()
			return
		}
		if !l.engine.Stats().Busy() {
			l.stopRepaintLocked()
			l.mu.Unlock()
			return
		}
		host := l.host
		l.mu.Unlock()
		host.TriggerRepaint()
	}
}

func (l *Layer) stopRepaintLocked() {
	if l.repaint == nil {
		return
	}
	l.repaint.Stop()
	close(l.stopped)
	l.repaint = nil
	l.stopped = nil
}

// Running reports whether the repaint loop is currently active. Diagnostic.
func (l *Layer) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repaint != nil
}
