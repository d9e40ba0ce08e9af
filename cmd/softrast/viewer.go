package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/introsent/Dual-Rasterizer/pkg/config"
	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
	"github.com/introsent/Dual-Rasterizer/pkg/render"
)

const (
	torqueStrength = 3.0
	// autoSpin is the idle yaw rate in radians per second.
	autoSpin    = math.Pi / 2
	minDistance = 1.0
	maxDistance = 20.0
)

// viewer is the interactive terminal loop. Key handling and drawing both
// run on the loop goroutine; only the settings pointer is shared with the
// config watcher.
type viewer struct {
	term     *uv.Terminal
	renderer *render.Renderer
	camera   *render.Camera
	scene    *scene
	hud      *HUD
	logger   *log.Logger

	settings *atomic.Pointer[render.Settings]
	initial  render.Settings

	rotation *RotationState
	torque   struct{ pitch, yaw, roll float64 }
	distance float64
	paused   bool
	width    int
	height   int
}

func runViewer(ctx context.Context, opts *options, sc *scene, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	initial, err := opts.cfg.Settings()
	if err != nil {
		return err
	}
	var current atomic.Pointer[render.Settings]
	current.Store(&initial)
	if opts.configPath != "" {
		watchConfig(ctx, opts.configPath, &current, logger)
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	// Each terminal cell shows two pixels stacked vertically.
	r, err := render.NewRenderer(width, height*2,
		render.WithWorkers(opts.cfg.Workers),
		render.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	v := &viewer{
		term:     term,
		renderer: r,
		camera:   newCamera(opts.cfg.FOVRadians(), width, height*2, cameraDistance),
		scene:    sc,
		hud:      NewHUD(filepath.Base(opts.model), sc.mesh.TriangleCount()),
		logger:   logger,
		settings: &current,
		initial:  initial,
		rotation: NewRotationState(opts.fps),
		distance: cameraDistance,
		width:    width,
		height:   height,
	}

	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	targetDuration := time.Second / time.Duration(opts.fps)
	lastFrame := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
	drain:
		for {
			select {
			case ev := <-events:
				if quit := v.handle(ev); quit {
					return nil
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		if err := v.frame(dt); err != nil {
			return err
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// watchConfig swaps reloaded settings in through current. A frame that is
// already drawing keeps the snapshot it started with.
func watchConfig(ctx context.Context, path string, current *atomic.Pointer[render.Settings], logger *log.Logger) {
	w, err := config.NewWatcher(path)
	if err != nil {
		logger.Warn("config reload disabled", "err", err)
		return
	}
	go w.Run(ctx, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Warn("config reload failed", "path", path, "err", err)
			return
		}
		s, err := cfg.Settings()
		if err != nil {
			logger.Warn("config reload failed", "path", path, "err", err)
			return
		}
		current.Store(&s)
		logger.Info("config reloaded", "path", path)
	})
}

// update applies fn to a copy of the current settings and publishes it.
func (v *viewer) update(fn func(*render.Settings)) {
	s := *v.settings.Load()
	fn(&s)
	v.settings.Store(&s)
}

// toggleDisplay switches between mode and the final color view.
func toggleDisplay(s *render.Settings, mode render.DisplayMode) {
	if s.Display == mode {
		s.Display = render.DisplayFinalColor
	} else {
		s.Display = mode
	}
}

// toggleClearColor switches the background between the configured color
// and a uniform black, or gray when black is what was configured.
func toggleClearColor(s *render.Settings, configured color.RGBA) {
	alt := render.ColorBlack
	if configured == alt {
		alt = render.ColorGray
	}
	if s.ClearColor == configured {
		s.ClearColor = alt
	} else {
		s.ClearColor = configured
	}
}

// handle applies one terminal event and reports whether to quit.
func (v *viewer) handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.width, v.height = ev.Width, ev.Height
		v.term.Erase()
		v.term.Resize(v.width, v.height)
		if err := v.renderer.Resize(v.width, v.height*2); err != nil {
			v.logger.Warn("resize failed", "err", err)
			return false
		}
		v.camera.SetAspectRatio(float64(v.width) / float64(v.height*2))

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return true
		case ev.MatchString("c"):
			v.update(func(s *render.Settings) { s.Culling = s.Culling.Next() })
		case ev.MatchString("s"):
			v.update(func(s *render.Settings) { s.Shading = s.Shading.Next() })
		case ev.MatchString("n"):
			v.update(func(s *render.Settings) { s.NormalMap = !s.NormalMap })
		case ev.MatchString("z"):
			v.update(func(s *render.Settings) { toggleDisplay(s, render.DisplayDepthBuffer) })
		case ev.MatchString("b"):
			v.update(func(s *render.Settings) { toggleDisplay(s, render.DisplayBoundingBox) })
		case ev.MatchString("u"):
			configured := v.initial.ClearColor
			v.update(func(s *render.Settings) { toggleClearColor(s, configured) })
		case ev.MatchString("p"):
			v.paused = !v.paused
		case ev.MatchString("r"):
			v.rotation.Reset()
			v.distance = cameraDistance
			v.camera.SetPosition(cameraPosition(v.distance))
			initial := v.initial
			v.settings.Store(&initial)
		case ev.MatchString("w", "up"):
			v.torque.pitch = -torqueStrength
		case ev.MatchString("down"):
			v.torque.pitch = torqueStrength
		case ev.MatchString("a", "left"):
			v.torque.yaw = -torqueStrength
		case ev.MatchString("d", "right"):
			v.torque.yaw = torqueStrength
		case ev.MatchString("q"):
			v.torque.roll = -torqueStrength
		case ev.MatchString("e"):
			v.torque.roll = torqueStrength
		case ev.MatchString("space"):
			v.rotation.ApplyImpulse(
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
			)
		case ev.MatchString("+", "="):
			v.zoom(-0.5)
		case ev.MatchString("-", "_"):
			v.zoom(0.5)
		case ev.MatchString("?", "shift+/"):
			v.hud.Visible = !v.hud.Visible
			if !v.hud.Visible {
				v.term.Erase()
			}
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.zoom(-0.5)
		case uv.MouseWheelDown:
			v.zoom(0.5)
		}
	}
	return false
}

func (v *viewer) zoom(delta float64) {
	world := v.scene.world(v.rotation.Pitch.Position, v.rotation.Yaw.Position, v.rotation.Roll.Position)
	v.distance = zoomCamera(v.camera, v.distance, delta, v.scene.bounds(world))
}

// zoomCamera moves cam along its view axis so that it ends up distance+delta
// from the origin, clamped to [minDistance, maxDistance]. A move that would
// put the camera inside bounds or leave the origin outside the view is
// undone. It returns the resulting distance.
func zoomCamera(cam *render.Camera, distance, delta float64, bounds render.AABB) float64 {
	next := math.Max(minDistance, math.Min(maxDistance, distance+delta))
	cam.MoveForward(distance - next)

	view := render.NewFrustumFromMatrix(cam.Snapshot().ViewProjection())
	if bounds.ContainsPoint(cam.Position) || !view.ContainsPoint(math3d.Zero3()) {
		cam.MoveForward(next - distance)
		return distance
	}
	return next
}

// frame advances the animation by dt seconds, renders and presents.
func (v *viewer) frame(dt float64) error {
	// Key release events are unreliable, so torque decays on its own.
	v.rotation.ApplyImpulse(v.torque.pitch*dt, v.torque.yaw*dt, v.torque.roll*dt)
	v.torque.pitch *= 0.9
	v.torque.yaw *= 0.9
	v.torque.roll *= 0.9
	if !v.paused {
		v.rotation.Yaw.Position += autoSpin * dt
	}
	v.rotation.Update()

	s := *v.settings.Load()
	world := v.scene.world(v.rotation.Pitch.Position, v.rotation.Yaw.Position, v.rotation.Roll.Position)
	stats, err := v.renderer.Render(s, v.scene.mesh, world, v.scene.mat, v.camera.Snapshot())
	if err != nil {
		return err
	}

	v.renderer.Framebuffer().Draw(v.term, uv.Rect(0, 0, v.width, v.height))
	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	v.hud.UpdateFPS()
	v.hud.Render(os.Stdout, v.width, v.height, s, stats)
	return nil
}
