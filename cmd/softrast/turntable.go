package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"

	"github.com/introsent/Dual-Rasterizer/pkg/render"
)

// runTurntable renders opts.frames views of the model spinning once about
// Y and writes them to opts.out as frame_000.png, frame_001.png, ...
func runTurntable(ctx context.Context, opts *options, sc *scene, logger *log.Logger, progress io.Writer) error {
	settings, err := opts.cfg.Settings()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	r, err := render.NewRenderer(opts.cfg.Width, opts.cfg.Height,
		render.WithWorkers(opts.cfg.Workers),
		render.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	cam := newCamera(opts.cfg.FOVRadians(), opts.cfg.Width, opts.cfg.Height, cameraDistance).Snapshot()

	bar := progressbar.NewOptions(opts.frames,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionShowCount(),
	)
	defer bar.Close()

	var pixels int64
	for i := range opts.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		yaw := 2 * math.Pi * float64(i) / float64(opts.frames)
		stats, err := r.Render(settings, sc.mesh, sc.world(0, yaw, 0), sc.mat, cam)
		if err != nil {
			return err
		}
		path := filepath.Join(opts.out, fmt.Sprintf("frame_%03d.png", i))
		if err := r.Framebuffer().SavePNG(path); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		pixels += stats.Written
		bar.Add(1)
	}

	logger.Info("turntable written",
		"dir", opts.out,
		"frames", opts.frames,
		"size", fmt.Sprintf("%dx%d", opts.cfg.Width, opts.cfg.Height),
		"workers", r.Workers(),
		"pixels", pixels,
	)
	return nil
}
