// Package config loads viewer and render settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/introsent/Dual-Rasterizer/pkg/render"
)

// ErrUnknownFormat is returned for config files that are neither TOML
// nor YAML.
var ErrUnknownFormat = errors.New("unknown config format")

// Format is a config file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// maxConfigSize guards against reading something that is clearly not a
// config file.
const maxConfigSize = 1 << 20

// Textures names the optional material maps, as image paths.
type Textures struct {
	Diffuse  string `toml:"diffuse" yaml:"diffuse"`
	Normal   string `toml:"normal" yaml:"normal"`
	Specular string `toml:"specular" yaml:"specular"`
	Gloss    string `toml:"gloss" yaml:"gloss"`
}

// Config is the file form of the viewer configuration. Enum fields hold
// the String forms of the render modes.
type Config struct {
	Width   int     `toml:"width" yaml:"width"`
	Height  int     `toml:"height" yaml:"height"`
	FOV     float64 `toml:"fov" yaml:"fov"` // vertical, in degrees
	Workers int     `toml:"workers" yaml:"workers"`

	Cull      string `toml:"cull" yaml:"cull"`
	Display   string `toml:"display" yaml:"display"`
	Shading   string `toml:"shading" yaml:"shading"`
	NormalMap bool   `toml:"normal_map" yaml:"normal_map"`

	DepthNear  float64 `toml:"depth_near" yaml:"depth_near"`
	DepthFar   float64 `toml:"depth_far" yaml:"depth_far"`
	ClearColor [3]int  `toml:"clear_color" yaml:"clear_color"`

	Textures Textures `toml:"textures" yaml:"textures"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	s := render.DefaultSettings()
	return &Config{
		Width:      160,
		Height:     90,
		FOV:        45,
		Workers:    0,
		Cull:       s.Culling.String(),
		Display:    s.Display.String(),
		Shading:    s.Shading.String(),
		NormalMap:  s.NormalMap,
		DepthNear:  s.DepthBandNear,
		DepthFar:   s.DepthBandFar,
		ClearColor: [3]int{int(s.ClearColor.R), int(s.ClearColor.G), int(s.ClearColor.B)},
	}
}

// FormatOf picks the syntax from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Load reads and validates a config file. Keys missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config %s is %d bytes, limit is %d", path, info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates config data.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, ErrUnknownFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and that every mode name is known.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("viewport %dx%d: %w", c.Width, c.Height, render.ErrInvalidViewport)
	}
	if !(c.FOV > 0 && c.FOV < 180) {
		return fmt.Errorf("fov %v out of range (0, 180)", c.FOV)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d is negative", c.Workers)
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 255 {
			return fmt.Errorf("clear_color[%d] = %d out of range [0, 255]", i, v)
		}
	}
	s, err := c.Settings()
	if err != nil {
		return err
	}
	return s.Validate()
}

// Settings converts the config into an immutable render.Settings value.
func (c *Config) Settings() (render.Settings, error) {
	s := render.DefaultSettings()

	var err error
	if s.Culling, err = render.ParseCullMode(c.Cull); err != nil {
		return s, err
	}
	if s.Display, err = render.ParseDisplayMode(c.Display); err != nil {
		return s, err
	}
	if s.Shading, err = render.ParseShadingMode(c.Shading); err != nil {
		return s, err
	}
	s.NormalMap = c.NormalMap
	s.DepthBandNear = c.DepthNear
	s.DepthBandFar = c.DepthFar
	s.ClearColor = color.RGBA{uint8(c.ClearColor[0]), uint8(c.ClearColor[1]), uint8(c.ClearColor[2]), 255}
	return s, nil
}

// FOVRadians returns the vertical field of view in radians.
func (c *Config) FOVRadians() float64 {
	return c.FOV * math.Pi / 180
}
