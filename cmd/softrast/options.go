package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/introsent/Dual-Rasterizer/pkg/config"
)

var errUsage = errors.New("usage")

// options is the merged result of the config file and the command line.
type options struct {
	model      string
	configPath string
	out        string
	frames     int
	fps        int
	logLevel   string
	logFile    string
	cfg        *config.Config
}

const usageHeader = `softrast - CPU software rasterizer

Usage: softrast [options] <model.glb|model.gltf|model.obj>

Renders into the terminal when stdout is a terminal and -out is empty,
otherwise renders a turntable of PNG frames into -out.

Options:
`

const usageKeys = `
Controls:
  c           - Cycle culling (back, front, none)
  s           - Cycle shading (observed, diffuse, specular, combined)
  n           - Toggle normal map
  z           - Toggle depth buffer view
  b           - Toggle bounding box view
  u           - Toggle uniform black background
  p           - Pause rotation
  W/A/D       - Pitch and yaw (arrows too)
  Q/E         - Roll left/right
  Space       - Random spin
  +/-         - Zoom
  R           - Reset view and settings
  ?           - Toggle HUD overlay
  Esc         - Quit
`

// parseOptions parses args (without the program name). Flags that are set
// explicitly override values from the -config file.
func parseOptions(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("softrast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	def := config.Default()

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Config file (.toml, .yaml)")
	fs.StringVar(&opts.out, "out", "", "Write turntable PNG frames to this directory")
	fs.IntVar(&opts.frames, "frames", 36, "Number of turntable frames")
	fs.IntVar(&opts.fps, "fps", 30, "Target FPS in the terminal viewer")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFile, "log-file", "", "Log to this file instead of stderr")

	width := fs.Int("width", def.Width, "Image width for headless rendering")
	height := fs.Int("height", def.Height, "Image height for headless rendering")
	fov := fs.Float64("fov", def.FOV, "Vertical field of view in degrees")
	workers := fs.Int("workers", def.Workers, "Rasterizer workers (0 = GOMAXPROCS)")
	cull := fs.String("cull", def.Cull, "Culling mode (back, front, none)")
	display := fs.String("display", def.Display, "Display mode (final, depth, shading, bbox)")
	shading := fs.String("shading", def.Shading, "Shading mode (observed, diffuse, specular, combined)")
	normalMap := fs.Bool("normalmap", def.NormalMap, "Apply the normal map")
	diffuse := fs.String("diffuse", "", "Diffuse texture")
	normal := fs.String("normal", "", "Tangent-space normal map")
	specular := fs.String("specular", "", "Specular map")
	gloss := fs.String("gloss", "", "Glossiness map")

	fs.Usage = func() {
		fmt.Fprint(stderr, usageHeader)
		fs.PrintDefaults()
		fmt.Fprint(stderr, usageKeys)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errUsage
	}
	opts.model = fs.Arg(0)

	cfg := def
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "fov":
			cfg.FOV = *fov
		case "workers":
			cfg.Workers = *workers
		case "cull":
			cfg.Cull = *cull
		case "display":
			cfg.Display = *display
		case "shading":
			cfg.Shading = *shading
		case "normalmap":
			cfg.NormalMap = *normalMap
		case "diffuse":
			cfg.Textures.Diffuse = *diffuse
		case "normal":
			cfg.Textures.Normal = *normal
		case "specular":
			cfg.Textures.Specular = *specular
		case "gloss":
			cfg.Textures.Gloss = *gloss
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", opts.frames)
	}
	if opts.fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", opts.fps)
	}
	opts.cfg = cfg
	return opts, nil
}
