package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
	"github.com/introsent/Dual-Rasterizer/pkg/models"
)

func TestTextureSampleNearest(t *testing.T) {
	tex := NewCheckerTexture(4, 4, 2, ColorRGB{1, 0, 0}, ColorRGB{0, 0, 1})
	red, blue := ColorRGB{1, 0, 0}, ColorRGB{0, 0, 1}

	tests := []struct {
		name string
		uv   math3d.Vec2
		wrap WrapMode
		want ColorRGB
	}{
		{"top left", math3d.V2(0.1, 0.1), WrapRepeat, red},
		{"top right", math3d.V2(0.9, 0.1), WrapRepeat, blue},
		{"bottom right", math3d.V2(0.9, 0.9), WrapRepeat, red},
		{"repeat past one", math3d.V2(1.9, 0.1), WrapRepeat, blue},
		{"repeat negative", math3d.V2(-0.1, 0.1), WrapRepeat, blue},
		{"clamp past one", math3d.V2(1.9, 0.1), WrapClamp, blue},
		{"clamp negative", math3d.V2(-5, -5), WrapClamp, red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex.WrapU, tex.WrapV = tt.wrap, tt.wrap
			if got := tex.Sample(tt.uv); got != tt.want {
				t.Errorf("Sample(%v) = %v, want %v", tt.uv, got, tt.want)
			}
		})
	}
}

func TestTextureSampleBilinear(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, Gray(0))
	tex.SetPixel(1, 0, Gray(1))
	tex.FilterMode = FilterBilinear
	tex.WrapU, tex.WrapV = WrapClamp, WrapClamp

	if got := tex.Sample(math3d.V2(0.5, 0.5)); !got.near(Gray(0.5), 1e-9) {
		t.Errorf("midpoint = %v, want 0.5 gray", got)
	}
	if got := tex.Sample(math3d.V2(0.25, 0.5)); !got.near(Gray(0), 1e-9) {
		t.Errorf("first texel center = %v, want black", got)
	}
}

func TestTextureFromImageTopLeftOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 1, color.RGBA{0, 255, 0, 255})

	tex := TextureFromImage(img)
	if got := tex.Sample(math3d.V2(0.1, 0.1)); !got.near(ColorRGB{1, 0, 0}, 1e-9) {
		t.Errorf("uv (0,0) = %v, want the top-left texel", got)
	}
	if got := tex.Sample(math3d.V2(0.9, 0.9)); !got.near(ColorRGB{0, 1, 0}, 1e-9) {
		t.Errorf("uv (1,1) = %v, want the bottom-right texel", got)
	}
	if got := NewTexture(0, 0).Sample(math3d.V2(0.5, 0.5)); got != (ColorRGB{}) {
		t.Errorf("empty texture sample = %v", got)
	}
}

func TestMaterialDefaults(t *testing.T) {
	uv := math3d.V2(0.3, 0.3)
	m := NewTextureMaterial(NewSolidTexture(ColorRGB{0.1, 0.2, 0.3}), nil, nil, nil)

	tests := []struct {
		kind MapKind
		want ColorRGB
	}{
		{MapDiffuse, ColorRGB{0.1, 0.2, 0.3}},
		{MapNormal, DefaultNormal},
		{MapSpecular, DefaultSpecular},
		{MapGloss, DefaultGloss},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := m.Sample(tt.kind, uv); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if !m.Has(MapDiffuse) || m.Has(MapGloss) {
		t.Error("Has reports the wrong maps")
	}
	m.SetMap(MapGloss, NewSolidTexture(Gray(1)))
	if got := m.Sample(MapGloss, uv); got != Gray(1) {
		t.Errorf("gloss after SetMap = %v", got)
	}
}

func TestMaterialFromModel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{0, 0, 255, 255})

	m := MaterialFromModel(models.Material{Name: "m", Normal: img}, FilterBilinear)
	if m.Has(MapDiffuse) || !m.Has(MapNormal) {
		t.Fatal("expected only a normal map")
	}
	if got := m.Sample(MapNormal, math3d.V2(0.5, 0.5)); !got.near(ColorRGB{0, 0, 1}, 1e-9) {
		t.Errorf("normal sample = %v", got)
	}
}

func TestFlatMaterial(t *testing.T) {
	m := DefaultMaterial()
	if got := m.Sample(MapDiffuse, math3d.Vec2{}); got != DefaultDiffuse {
		t.Errorf("diffuse = %v", got)
	}
	if got := m.Sample(MapNormal, math3d.Vec2{}); got != DefaultNormal {
		t.Errorf("normal = %v", got)
	}
}

func TestColorPackAndClamp(t *testing.T) {
	tests := []struct {
		c    ColorRGB
		want uint32
	}{
		{ColorRGB{0, 0, 0}, 0xFF000000},
		{ColorRGB{1, 1, 1}, 0xFFFFFFFF},
		{ColorRGB{2, -1, 0.5}, 0xFFFF007F},
		{ColorRGB{math.NaN(), 0, 0}, 0xFF000000},
	}
	for _, tt := range tests {
		if got := tt.c.Pack(); got != tt.want {
			t.Errorf("Pack(%v) = %#x, want %#x", tt.c, got, tt.want)
		}
	}
	if got := UnpackRGBA(PackRGBA(ColorGray)); got != ColorGray {
		t.Errorf("unpack(pack(gray)) = %v", got)
	}
}

func TestFramebufferFill(t *testing.T) {
	fb := NewFramebuffer(7, 5)
	fb.Clear(ColorGray)
	for i, p := range fb.Pixels {
		if p != PackRGBA(ColorGray) {
			t.Fatalf("pixel %d not cleared", i)
		}
	}

	white := PackRGBA(ColorWhite)
	fb.FillRect(-2, 1, 3, 10, white)
	for y := range 5 {
		for x := range 7 {
			want := PackRGBA(ColorGray)
			if x < 3 && y >= 1 {
				want = white
			}
			if got := fb.At(x, y); got != want {
				t.Errorf("(%d,%d) = %#x, want %#x", x, y, got, want)
			}
		}
	}

	fb.Set(100, 100, 0) // ignored
	if fb.At(100, 100) != 0 {
		t.Error("out of bounds At should be 0")
	}
	img := fb.ToImage()
	if c := img.RGBAAt(0, 1); c != ColorWhite {
		t.Errorf("ToImage pixel = %v", c)
	}
}
