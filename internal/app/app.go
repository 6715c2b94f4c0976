// Package app wires the window, renderer, viewer and pin overlays into the
// panorama viewer main loop.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/config"
	"github.com/Faultbox/panoview/internal/engine"
	"github.com/Faultbox/panoview/internal/engine/capture"
	"github.com/Faultbox/panoview/internal/engine/input"
	"github.com/Faultbox/panoview/internal/engine/renderer"
	"github.com/Faultbox/panoview/internal/engine/texture"
	"github.com/Faultbox/panoview/internal/engine/window"
	"github.com/Faultbox/panoview/internal/logger"
	"github.com/Faultbox/panoview/internal/overlay"
	"github.com/Faultbox/panoview/internal/overlay/host"
	"github.com/Faultbox/panoview/internal/overlay/pinstore"
	"github.com/Faultbox/panoview/internal/viewer"
)

// App is the running viewer.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	engine   *renderer.Engine
	viewer   *viewer.Viewer
	events   *input.Queue
	capturer *capture.Capturer

	local   *host.Local
	store   pinstore.Store
	overlay *overlay.Handle

	mu      sync.Mutex
	meshes  []engine.Mesh // Loaded panoramas, in config order
	current int           // Index into meshes of the shown panorama, -1 if none
	pinNext int

	running     bool
	captureNext bool
}

// New creates the window, GL renderer and viewer.
func New(cfg *config.Config) (*App, error) {
	log := logger.Named("app")
	log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("panoramas", len(cfg.Viewer.Panoramas)),
	)

	a := &App{
		cfg:      cfg,
		log:      log,
		events:   input.NewQueue(),
		capturer: capture.New("screenshots", "panoview"),
		current:  -1,
	}

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      "panoview",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	a.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	a.engine = renderer.NewEngine(a.renderer, &texture.Loader{})

	a.viewer = viewer.New(a.engine,
		viewer.WithFieldOfView(cfg.Viewer.FieldOfView),
		viewer.WithDamping(cfg.Viewer.Damping),
		viewer.WithDragSensitivity(cfg.Viewer.DragSensitivity),
		viewer.WithZoomSensitivity(cfg.Viewer.ZoomSensitivity),
	)
	if err := a.viewer.Init(a.window); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to init viewer: %w", err)
	}

	a.local = host.NewLocal(a.viewer)
	a.local.Overlays.OnChange(a.updateMarkers)

	if err := a.setupPins(); err != nil {
		a.Close()
		return nil, err
	}

	log.Info("viewer initialized successfully")
	return a, nil
}

func (a *App) setupPins() error {
	pc := a.cfg.Pins
	if pc.ModelID == "" {
		return nil
	}

	store, err := pinstore.Open(pc.Store, pc.Path)
	if err != nil {
		return fmt.Errorf("failed to open pin store: %w", err)
	}
	a.store = store

	var opts []overlay.Option
	if pc.Timeout > 0 {
		opts = append(opts, overlay.WithTimeout(pc.Timeout))
	}
	if pc.IsolateFailures {
		opts = append(opts, overlay.WithIsolatedFailures())
	}

	a.overlay, err = overlay.Setup(a.local.Platform(store), nil, pc.ModelID, opts...)
	if err != nil {
		return fmt.Errorf("failed to set up overlays: %w", err)
	}
	return nil
}

// Run starts the main loop and blocks until the window closes or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.running = true
	go a.loadPanoramas(ctx)
	if a.overlay != nil {
		go a.loadPins(ctx)
	}

	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")

	for a.running {
		if ctx.Err() != nil {
			break
		}

		// 1. Process input
		a.window.PollEvents(a.events)
		for _, e := range a.events.Drain() {
			a.handle(ctx, e)
		}

		// 2. GL work queued by loaders
		a.engine.Pump()

		// 3. Render (runs the viewer frame loop)
		a.renderer.Frame()
		if a.captureNext {
			a.captureNext = false
			a.screenshot()
		}

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handle(ctx context.Context, e input.Event) {
	switch e.Type {
	case input.EventQuit:
		a.running = false
	case input.EventKeyDown:
		switch e.Key {
		case input.KeyEscape:
			a.running = false
		case input.KeySpace:
			a.nextPanorama()
		case input.KeyTab:
			go a.nextPin(ctx)
		case input.KeyF12:
			a.captureNext = true
		}
	default:
		a.viewer.HandleEvent(e)
	}
}

// loadPanoramas loads every configured panorama and shows the first one that
// loads. Failures are logged and skipped.
func (a *App) loadPanoramas(ctx context.Context) {
	for _, src := range a.cfg.Viewer.Panoramas {
		mesh, err := a.viewer.CreateMesh(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.log.Error("failed to load panorama", zap.String("src", src), zap.Error(err))
			continue
		}

		a.mu.Lock()
		a.meshes = append(a.meshes, mesh)
		first := a.current < 0
		if first {
			a.current = 0
		}
		a.mu.Unlock()

		if first {
			a.viewer.AddScene(mesh)
		}
	}

	a.mu.Lock()
	loaded := len(a.meshes)
	a.mu.Unlock()
	a.log.Info("panoramas loaded",
		zap.Int("loaded", loaded),
		zap.Int("configured", len(a.cfg.Viewer.Panoramas)),
	)
}

// nextPanorama swaps the shown panorama for the next loaded one.
func (a *App) nextPanorama() {
	a.mu.Lock()
	if len(a.meshes) < 2 {
		a.mu.Unlock()
		return
	}
	old := a.meshes[a.current]
	a.current = (a.current + 1) % len(a.meshes)
	next := a.meshes[a.current]
	a.mu.Unlock()

	a.viewer.UpdateScene(old, next)
	a.log.Info("panorama switched", zap.String("to", next.Name()))
}

func (a *App) loadPins(ctx context.Context) {
	if err := a.overlay.AddPins(ctx); err != nil {
		a.log.Error("failed to add pins",
			zap.String("model", a.cfg.Pins.ModelID),
			zap.Error(err),
		)
		return
	}
	a.log.Info("pins added", zap.Int("count", len(a.overlay.Registered())))
}

// nextPin turns the camera to the next registered pin.
func (a *App) nextPin(ctx context.Context) {
	if a.overlay == nil {
		return
	}
	ids := a.overlay.Registered()
	if len(ids) == 0 {
		return
	}

	a.mu.Lock()
	id := ids[a.pinNext%len(ids)]
	a.pinNext++
	a.mu.Unlock()

	if err := a.overlay.MoveToPin(ctx, id); err != nil {
		a.log.Warn("failed to move to pin", zap.String("pin", id), zap.Error(err))
	}
}

// screenshot reads the frame just rendered and writes it in the background.
func (a *App) screenshot() {
	pixels, width, height := a.renderer.ReadPixels()
	go func() {
		path, err := a.capturer.Save(pixels, width, height)
		if err != nil {
			a.log.Warn("screenshot failed", zap.Error(err))
			return
		}
		a.log.Info("screenshot saved", zap.String("path", path))
	}()
}

// updateMarkers hands the overlay list to the renderer on the render thread.
func (a *App) updateMarkers(list []overlay.Overlay) {
	points := host.Markers(list)
	markers := make([]renderer.Marker, len(points))
	for i, p := range points {
		markers[i] = renderer.Marker{Position: p.Position, Color: p.Color}
	}
	a.engine.Submit(func() {
		a.renderer.SetMarkers(markers)
	})
}

// Close cleans up viewer resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.viewer != nil {
		a.viewer.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("failed to close pin store", zap.Error(err))
		}
	}

	a.mu.Lock()
	meshes := a.meshes
	a.meshes = nil
	a.mu.Unlock()
	for _, m := range meshes {
		if mesh, ok := m.(*renderer.Mesh); ok {
			renderer.DisposeMesh(mesh)
		}
	}

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
