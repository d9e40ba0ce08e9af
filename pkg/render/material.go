package render

import (
	"fmt"
	"image"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
	"github.com/introsent/Dual-Rasterizer/pkg/models"
)

// MapKind names one of the surface property maps a material exposes.
type MapKind int

const (
	MapDiffuse MapKind = iota
	MapNormal
	MapSpecular
	MapGloss

	mapKindCount
)

func (k MapKind) String() string {
	switch k {
	case MapDiffuse:
		return "diffuse"
	case MapNormal:
		return "normal"
	case MapSpecular:
		return "specular"
	case MapGloss:
		return "gloss"
	default:
		return fmt.Sprintf("MapKind(%d)", int(k))
	}
}

// Material is the shading stage's view of a surface: a linear color for
// each map kind at a texture coordinate. Implementations must be safe for
// concurrent use.
type Material interface {
	Sample(kind MapKind, uv math3d.Vec2) ColorRGB
}

// Values used for maps a material does not provide.
var (
	DefaultDiffuse  = Gray(0.8)
	DefaultNormal   = ColorRGB{0.5, 0.5, 1} // tangent-space +Z, i.e. unperturbed
	DefaultSpecular = Gray(0.3)
	DefaultGloss    = Gray(0.5)
)

// FlatMaterial returns the same color everywhere for each map.
type FlatMaterial struct {
	Diffuse  ColorRGB
	Specular ColorRGB
	Gloss    float64
}

// DefaultMaterial returns a flat material built from the package defaults.
func DefaultMaterial() FlatMaterial {
	return FlatMaterial{
		Diffuse:  DefaultDiffuse,
		Specular: DefaultSpecular,
		Gloss:    DefaultGloss.R,
	}
}

// Sample implements Material.
func (m FlatMaterial) Sample(kind MapKind, _ math3d.Vec2) ColorRGB {
	switch kind {
	case MapDiffuse:
		return m.Diffuse
	case MapSpecular:
		return m.Specular
	case MapGloss:
		return Gray(m.Gloss)
	default:
		return DefaultNormal
	}
}

// TextureMaterial samples one texture per map kind. Missing maps fall back
// to the package defaults.
type TextureMaterial struct {
	maps [mapKindCount]*Texture
}

// NewTextureMaterial creates a material from up to four textures; any may
// be nil.
func NewTextureMaterial(diffuse, normal, specular, gloss *Texture) *TextureMaterial {
	return &TextureMaterial{maps: [mapKindCount]*Texture{diffuse, normal, specular, gloss}}
}

// MaterialFromModel wraps the images a loader found in textures.
func MaterialFromModel(m models.Material, filter FilterMode) *TextureMaterial {
	var maps [mapKindCount]*Texture
	for i, img := range [mapKindCount]image.Image{m.Diffuse, m.Normal, m.Specular, m.Gloss} {
		if img == nil {
			continue
		}
		tex := TextureFromImage(img)
		tex.FilterMode = filter
		maps[i] = tex
	}
	return &TextureMaterial{maps: maps}
}

// SetMap replaces one map. It must not be called while a frame is drawing.
func (m *TextureMaterial) SetMap(kind MapKind, tex *Texture) {
	m.maps[kind] = tex
}

// Has reports whether a texture backs the given map.
func (m *TextureMaterial) Has(kind MapKind) bool {
	return m.maps[kind] != nil
}

// Sample implements Material.
func (m *TextureMaterial) Sample(kind MapKind, uv math3d.Vec2) ColorRGB {
	if tex := m.maps[kind]; tex != nil {
		return tex.Sample(uv)
	}
	switch kind {
	case MapDiffuse:
		return DefaultDiffuse
	case MapNormal:
		return DefaultNormal
	case MapSpecular:
		return DefaultSpecular
	default:
		return DefaultGloss
	}
}
