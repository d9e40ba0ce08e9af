package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
	"github.com/introsent/Dual-Rasterizer/pkg/models"
)

// ErrInvalidViewport is returned for a width or height <= 0.
var ErrInvalidViewport = errors.New("invalid viewport size")

// FrameStats summarizes one BeginFrame/EndFrame cycle.
type FrameStats struct {
	RasterStats
	Frame        uint64
	Meshes       int // Meshes passed to Draw
	MeshesCulled int // Meshes skipped because their bounds were outside the frustum
	Duration     time.Duration
}

// Renderer owns the frame and depth buffers and drives the pipeline for
// one frame at a time. Its methods must be called from a single goroutine;
// the parallelism happens inside Draw and EndFrame.
type Renderer struct {
	fb     *Framebuffer
	depth  *DepthBuffer
	pool   *Pool
	raster *Rasterizer
	logger *log.Logger

	settings     Settings
	frame        uint64
	frameStart   time.Time
	meshes       int
	meshesCulled int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWorkers sets the worker count; <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		r.pool = NewPool(n)
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// NewRenderer creates a renderer with buffers of the given size.
func NewRenderer(width, height int, opts ...Option) (*Renderer, error) {
	r := &Renderer{settings: DefaultSettings()}
	for _, opt := range opts {
		opt(r)
	}
	if r.pool == nil {
		r.pool = NewPool(0)
	}
	if r.logger == nil {
		r.logger = log.Default().WithPrefix("render")
	}
	if err := r.allocate(width, height); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) allocate(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%dx%d: %w", width, height, ErrInvalidViewport)
	}
	r.fb = NewFramebuffer(width, height)
	r.depth = NewDepthBuffer(width, height)
	r.raster = NewRasterizer(r.depth, r.pool)
	return nil
}

// Resize reallocates both buffers. The next frame must start with
// BeginFrame.
func (r *Renderer) Resize(width, height int) error {
	if r.fb != nil && width == r.fb.Width && height == r.fb.Height {
		return nil
	}
	if err := r.allocate(width, height); err != nil {
		return err
	}
	r.logger.Info("viewport resized", "width", width, "height", height)
	return nil
}

// Width returns the viewport width in pixels.
func (r *Renderer) Width() int { return r.fb.Width }

// Height returns the viewport height in pixels.
func (r *Renderer) Height() int { return r.fb.Height }

// Workers returns the size of the worker pool.
func (r *Renderer) Workers() int { return r.pool.Workers() }

// Framebuffer returns the color buffer. It is complete after EndFrame.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// DepthBuffer returns the depth buffer, for diagnostics.
func (r *Renderer) DepthBuffer() *DepthBuffer { return r.depth }

// Settings returns the settings of the current frame.
func (r *Renderer) Settings() Settings { return r.settings }

// BeginFrame clears both buffers and fixes the settings for the frame.
func (r *Renderer) BeginFrame(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	r.settings = s
	r.frame++
	r.frameStart = time.Now()
	r.meshes, r.meshesCulled = 0, 0

	r.fb.Clear(s.ClearColor)
	r.depth.Clear(r.pool)
	r.raster.Reset()
	return nil
}

// Draw transforms and rasterizes one mesh. Meshes whose world bounds are
// entirely outside the view frustum are skipped without being transformed.
func (r *Renderer) Draw(mesh *models.Mesh, world math3d.Mat4, mat Material, cam CameraState) {
	r.meshes++

	bounds := NewAABB(mesh.GetBounds()).Transform(world)
	if !NewFrustumFromMatrix(cam.ViewProjection()).IntersectAABB(bounds) {
		r.meshesCulled++
		return
	}

	TransformVertices(mesh, world, cam, r.pool)
	r.raster.RasterizeMesh(mesh, mat, r.settings)
}

// EndFrame resolves depth-tested colors into the framebuffer, paints any
// bounding boxes on top and returns the frame's statistics.
func (r *Renderer) EndFrame() FrameStats {
	r.depth.Resolve(r.fb, r.pool)

	if boxes := r.raster.Boxes(); len(boxes) > 0 {
		c := PackRGBA(r.settings.BoundingBoxColor)
		// Rows are disjoint across iterations, so no pixel has two writers.
		r.pool.For(r.fb.Height, func(y int) {
			for _, b := range boxes {
				if y >= b.Y0 && y < b.Y1 {
					r.fb.FillRow(y, b.X0, b.X1, c)
				}
			}
		})
	}

	stats := FrameStats{
		RasterStats:  r.raster.Stats(),
		Frame:        r.frame,
		Meshes:       r.meshes,
		MeshesCulled: r.meshesCulled,
		Duration:     time.Since(r.frameStart),
	}
	r.logger.Debug("frame done",
		"frame", stats.Frame,
		"triangles", stats.Triangles,
		"rejected", stats.Degenerate+stats.Behind+stats.Outside,
		"fragments", stats.Fragments,
		"took", stats.Duration,
	)
	return stats
}

// Render is BeginFrame, one Draw and EndFrame.
func (r *Renderer) Render(s Settings, mesh *models.Mesh, world math3d.Mat4, mat Material, cam CameraState) (FrameStats, error) {
	if err := r.BeginFrame(s); err != nil {
		return FrameStats{}, err
	}
	r.Draw(mesh, world, mat, cam)
	return r.EndFrame(), nil
}
