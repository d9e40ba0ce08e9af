package main

import (
	"context"
	"errors"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/introsent/Dual-Rasterizer/pkg/config"
	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
	"github.com/introsent/Dual-Rasterizer/pkg/models"
	"github.com/introsent/Dual-Rasterizer/pkg/render"
)

const cubePath = "../../testdata/cube.obj"

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestParseOptions(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "softrast.yaml")
	if err := os.WriteFile(cfgPath, []byte("width: 100\nheight: 50\nshading: specular\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		check func(*testing.T, *options)
	}{
		{
			name: "defaults",
			args: []string{"model.obj"},
			check: func(t *testing.T, o *options) {
				if *o.cfg != *config.Default() {
					t.Errorf("cfg = %+v, want defaults", o.cfg)
				}
				if o.frames != 36 || o.model != "model.obj" {
					t.Errorf("unexpected options %+v", o)
				}
			},
		},
		{
			name: "config file",
			args: []string{"-config", cfgPath, "model.obj"},
			check: func(t *testing.T, o *options) {
				if o.cfg.Width != 100 || o.cfg.Shading != "specular" {
					t.Errorf("cfg = %+v", o.cfg)
				}
			},
		},
		{
			name: "flags override config file",
			args: []string{"-config", cfgPath, "-width", "64", "-shading", "diffuse", "-normalmap=false", "-diffuse", "d.png", "model.obj"},
			check: func(t *testing.T, o *options) {
				if o.cfg.Width != 64 || o.cfg.Height != 50 {
					t.Errorf("size = %dx%d, want 64x50", o.cfg.Width, o.cfg.Height)
				}
				if o.cfg.Shading != "diffuse" || o.cfg.NormalMap || o.cfg.Textures.Diffuse != "d.png" {
					t.Errorf("cfg = %+v", o.cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseOptions(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseOptions: %v", err)
			}
			tt.check(t, o)
		})
	}
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no model", []string{}, "usage"},
		{"two models", []string{"a.obj", "b.obj"}, "usage"},
		{"bad cull", []string{"-cull", "sideways", "a.obj"}, "sideways"},
		{"bad frames", []string{"-frames", "0", "a.obj"}, "frames"},
		{"bad width", []string{"-width", "-3", "a.obj"}, "viewport"},
		{"missing config", []string{"-config", "nope.toml", "a.obj"}, "nope.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOptions(tt.args, io.Discard)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	if _, err := parseOptions(nil, io.Discard); !errors.Is(err, errUsage) {
		t.Errorf("error = %v, want errUsage", err)
	}
}

func TestLoadSceneFitsModel(t *testing.T) {
	sc, err := loadScene(cubePath, config.Textures{}, discardLogger())
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	if sc.mesh.TriangleCount() != 12 {
		t.Errorf("triangles = %d, want 12", sc.mesh.TriangleCount())
	}

	m, ok := sc.mat.(*render.TextureMaterial)
	if !ok || !m.Has(render.MapDiffuse) {
		t.Error("expected a checker diffuse fallback")
	}

	lo, hi := sc.mesh.GetBounds()
	for _, p := range []math3d.Vec3{lo, hi} {
		q := sc.fit.MulVec3(p)
		for _, c := range []float64{q.X, q.Y, q.Z} {
			if math.Abs(math.Abs(c)-1) > 1e-9 {
				t.Errorf("fitted corner %v not on the unit cube", q)
			}
		}
	}
}

func TestLoadSceneErrors(t *testing.T) {
	if _, err := loadScene("model.fbx", config.Textures{}, discardLogger()); !errors.Is(err, models.ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := loadScene(cubePath, config.Textures{Normal: "missing.png"}, discardLogger()); err == nil {
		t.Error("expected error for a missing texture")
	}
}

func TestRunTurntable(t *testing.T) {
	out := t.TempDir()
	opts, err := parseOptions([]string{"-out", out, "-frames", "3", "-width", "32", "-height", "24", "-workers", "4", cubePath}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := loadScene(opts.model, opts.cfg.Textures, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	if err := runTurntable(context.Background(), opts, sc, discardLogger(), io.Discard); err != nil {
		t.Fatalf("runTurntable: %v", err)
	}

	for _, name := range []string{"frame_000.png", "frame_001.png", "frame_002.png"} {
		img, err := models.LoadImage(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
			t.Errorf("%s is %v", name, b)
		}
	}

	// The cube's lit front face covers the center of the first frame.
	img, _ := models.LoadImage(filepath.Join(out, "frame_000.png"))
	r, g, b, _ := img.At(16, 12).RGBA()
	if r>>8 == 100 && g>>8 == 100 && b>>8 == 100 {
		t.Error("center pixel is the clear color")
	}
}

func TestRunTurntableCanceled(t *testing.T) {
	opts, err := parseOptions([]string{"-out", t.TempDir(), "-width", "16", "-height", "16", cubePath}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := loadScene(opts.model, opts.cfg.Textures, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runTurntable(ctx, opts, sc, discardLogger(), io.Discard); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRotationDecays(t *testing.T) {
	r := NewRotationState(60)
	r.ApplyImpulse(0, 1, 0)
	for range 600 {
		r.Update()
	}
	if math.Abs(r.Yaw.Velocity) > 1e-3 {
		t.Errorf("yaw velocity = %v after 10s, want ~0", r.Yaw.Velocity)
	}
	if r.Yaw.Position <= 0 {
		t.Errorf("yaw position = %v, want positive", r.Yaw.Position)
	}
	r.Reset()
	if r.Yaw.Position != 0 || r.Yaw.Velocity != 0 {
		t.Error("reset did not clear the axis")
	}
}

func TestToggleDisplay(t *testing.T) {
	s := render.DefaultSettings()
	toggleDisplay(&s, render.DisplayDepthBuffer)
	if s.Display != render.DisplayDepthBuffer {
		t.Fatalf("display = %v", s.Display)
	}
	toggleDisplay(&s, render.DisplayBoundingBox)
	if s.Display != render.DisplayBoundingBox {
		t.Fatalf("display = %v", s.Display)
	}
	toggleDisplay(&s, render.DisplayBoundingBox)
	if s.Display != render.DisplayFinalColor {
		t.Fatalf("display = %v", s.Display)
	}
}

func TestToggleClearColor(t *testing.T) {
	tests := []struct {
		name       string
		configured color.RGBA
		alt        color.RGBA
	}{
		{"gray configured", render.ColorGray, render.ColorBlack},
		{"black configured", render.ColorBlack, render.ColorGray},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := render.DefaultSettings()
			s.ClearColor = tt.configured
			toggleClearColor(&s, tt.configured)
			if s.ClearColor != tt.alt {
				t.Errorf("first toggle = %v, want %v", s.ClearColor, tt.alt)
			}
			toggleClearColor(&s, tt.configured)
			if s.ClearColor != tt.configured {
				t.Errorf("second toggle = %v, want %v", s.ClearColor, tt.configured)
			}
		})
	}
}

func TestZoomCamera(t *testing.T) {
	unit := render.NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))
	tests := []struct {
		name  string
		delta float64
		want  float64
	}{
		{"zoom in", -1, cameraDistance - 1},
		{"zoom out", 2, cameraDistance + 2},
		{"clamped to max", 100, maxDistance},
		{"stops outside the model", -10, cameraDistance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := newCamera(math.Pi/3, 64, 64, cameraDistance)
			got := zoomCamera(cam, cameraDistance, tt.delta, unit)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("distance = %v, want %v", got, tt.want)
			}
			if d := cam.Position.Sub(cameraPosition(got)).Len(); d > 1e-9 {
				t.Errorf("camera at %v, want %v", cam.Position, cameraPosition(got))
			}
		})
	}
}

func TestHUD(t *testing.T) {
	h := NewHUD("cube.obj", 12)
	var sb strings.Builder
	h.Render(&sb, 80, 24, render.DefaultSettings(), render.FrameStats{})
	if sb.Len() != 0 {
		t.Errorf("hidden HUD wrote %q", sb.String())
	}

	h.Visible = true
	h.Render(&sb, 80, 24, render.DefaultSettings(), render.FrameStats{})
	out := sb.String()
	for _, want := range []string{"cube.obj", "12 tris", "cull:back", "shading:combined", "display:final"} {
		if !strings.Contains(out, want) {
			t.Errorf("HUD output missing %q: %q", want, out)
		}
	}
}
